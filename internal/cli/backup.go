package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/dmitrijs2005/famledger/internal/backup"
)

// newS3Client is a test seam.
var newS3Client = func(ctx context.Context, c backup.Config) (backup.ObjectPutter, error) {
	return backup.NewS3Client(ctx, c)
}

// Backup exports -owner's books to the configured bucket, or under -dir
// when given.
func (a *App) Backup(ctx context.Context, args []string) (err error) {
	fs := flag.NewFlagSet("backup", flag.ContinueOnError)
	owner := fs.String("owner", "", "uid whose books are exported")
	dir := fs.String("dir", "", "write to this directory instead of S3")
	if err := parseCommandFlags(fs, args); err != nil {
		return err
	}
	if *owner == "" {
		return errors.New("backup: -owner is required")
	}

	s, closeBooks, err := a.openBooks(ctx, *owner)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, closeBooks()) }()

	set, err := s.Repositories()
	if err != nil {
		return err
	}

	if *dir != "" {
		file, err := backup.WriteDir(ctx, *dir, *owner, set)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Backup written to %s\n", file)
		return nil
	}

	client, err := newS3Client(ctx, backup.Config{
		Region:    a.config.S3Region,
		AccessKey: a.config.S3RootUser,
		SecretKey: a.config.S3RootPassword,
		Endpoint:  a.config.S3BaseEndpoint,
		Bucket:    a.config.S3Bucket,
	})
	if err != nil {
		return err
	}
	key, err := backup.NewExporter(client, a.config.S3Bucket, a.logger).Export(ctx, *owner, set)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Backup uploaded to s3://%s/%s\n", a.config.S3Bucket, key)
	return nil
}
