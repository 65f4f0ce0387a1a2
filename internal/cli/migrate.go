package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/dmitrijs2005/famledger/internal/migrate"
	"github.com/dmitrijs2005/famledger/internal/server"
	"github.com/dmitrijs2005/famledger/internal/session"
)

// Migrate copies the local books of -owner into the remote document store.
// Records already present remotely under the same id are replaced.
func (a *App) Migrate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	owner := fs.String("owner", "", "uid whose books are copied")
	yes := fs.Bool("yes", false, "do not ask for confirmation")
	if err := parseCommandFlags(fs, args); err != nil {
		return err
	}
	if *owner == "" {
		return errors.New("migrate: -owner is required")
	}
	if err := a.ensurePassphrase(); err != nil {
		return err
	}

	if !*yes {
		q := fmt.Sprintf("Copy the local books of %s to the %s store?", *owner, a.config.RemoteDriver)
		ok, err := Confirm(a.reader, q, a.out)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(a.out, "Aborted.")
			return nil
		}
	}

	store, err := openKV(ctx, a.config.LocalDriver, a.config.LocalDSN())
	if err != nil {
		return fmt.Errorf("failed to open local store: %w", err)
	}
	defer store.Close()

	docs, err := openDocStore(ctx, a.config.RemoteDriver, a.config.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("failed to open remote store: %w", err)
	}
	defer docs.Close()

	opts := a.sessionOptions()
	src, err := session.LocalFactory(store, opts)(ctx, *owner, *owner)
	if err != nil {
		return err
	}
	dst, err := session.NewRemote(docs, server.NewWriteQueue(a.config, a.logger), *owner, *owner, opts)
	if err != nil {
		return err
	}
	if err := dst.Initialize(ctx); err != nil {
		return errors.Join(fmt.Errorf("failed to load remote books: %w", err), dst.Close(ctx))
	}

	srcSet, err := src.Repositories()
	if err != nil {
		return errors.Join(err, dst.Close(ctx))
	}
	dstSet, err := dst.Repositories()
	if err != nil {
		return errors.Join(err, dst.Close(ctx))
	}

	res, err := migrate.Collections(ctx, srcSet, dstSet)
	// remote writes are queued; closing waits for them
	if closeErr := dst.Close(ctx); closeErr != nil {
		err = errors.Join(err, fmt.Errorf("failed to flush remote writes: %w", closeErr))
	}
	if err != nil {
		a.logger.Error(ctx, "migration stopped", "owner_uid", *owner, "copied", res.Total, "error", err)
		_ = a.printJSON(res)
		return err
	}

	a.logger.Info(ctx, "migration finished", "owner_uid", *owner, "copied", res.Total)
	return a.printJSON(res)
}
