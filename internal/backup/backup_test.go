package backup

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/famledger/internal/common"
	"github.com/dmitrijs2005/famledger/internal/logging"
	"github.com/dmitrijs2005/famledger/internal/models"
	"github.com/dmitrijs2005/famledger/internal/repositories"
	"github.com/dmitrijs2005/famledger/internal/repositories/local"
	"github.com/dmitrijs2005/famledger/internal/repositories/remote"
	"github.com/dmitrijs2005/famledger/internal/storage/docstore"
	"github.com/dmitrijs2005/famledger/internal/storage/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.in = in
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = b
	return &s3.PutObjectOutput{}, nil
}

func freeze(t *testing.T, at time.Time, id string) {
	t.Helper()
	origNow, origID := now, newID
	now = func() time.Time { return at }
	newID = func() string { return id }
	t.Cleanup(func() { now, newID = origNow, origID })
}

func TestKey(t *testing.T) {
	at := time.Date(2024, 3, 7, 23, 30, 0, 0, time.FixedZone("x", -2*3600))
	assert.Equal(t, "backups/alice/2024/03/08/abc.json", Key("alice", at, "abc"))
}

func TestExport_UploadsSnapshot(t *testing.T) {
	ctx := context.Background()
	freeze(t, time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), "id-1")

	set := local.NewSet(kv.NewMemoryStore(), "", repositories.DefaultCodecs(nil), nil)
	owner := models.NewOwner("Alice")
	require.NoError(t, set.Owners.Create(ctx, owner))
	secret := "hunter2"
	tpl := models.NewPaymentTemplate(models.CreatePaymentTemplateInput{
		Name: "Power", Value: 40, OwnerID: owner.ID, CategoryID: "c1", WebsitePassword: &secret,
	})
	require.NoError(t, set.PaymentTemplates.Create(ctx, tpl))

	put := &fakePutter{}
	key, err := NewExporter(put, "books", logging.Discard()).Export(ctx, "alice", set)
	require.NoError(t, err)
	assert.Equal(t, "backups/alice/2024/05/01/id-1.json", key)
	assert.Equal(t, "books", aws.ToString(put.in.Bucket))
	assert.Equal(t, key, aws.ToString(put.in.Key))
	assert.Equal(t, "application/json", aws.ToString(put.in.ContentType))
	assert.NotContains(t, string(put.body), secret)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(put.body, &snap))
	assert.Equal(t, "alice", snap.OwnerUID)
	require.Len(t, snap.Owners, 1)
	assert.Equal(t, "Alice", snap.Owners[0].Name)
	require.Len(t, snap.PaymentTemplates, 1)
	assert.Nil(t, snap.PaymentTemplates[0].WebsitePassword)
	assert.Empty(t, snap.Payments)

	stored, err := set.PaymentTemplates.GetByID(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, secret, *stored.WebsitePassword, "the books are not modified")
}

func TestExport_UploadError(t *testing.T) {
	set := local.NewSet(kv.NewMemoryStore(), "", repositories.DefaultCodecs(nil), nil)
	put := &fakePutter{err: errors.New("denied")}
	_, err := NewExporter(put, "books", nil).Export(context.Background(), "alice", set)
	require.ErrorContains(t, err, "denied")
}

func TestExport_NotReadyBooks(t *testing.T) {
	backend := remote.NewBackend(docstore.NewMemoryStore(), nil, "alice", repositories.DefaultCodecs(nil), nil)
	put := &fakePutter{}
	_, err := NewExporter(put, "books", nil).Export(context.Background(), "alice", backend.Set())
	require.ErrorIs(t, err, common.ErrorNotReady)
	assert.Nil(t, put.in)
}

func TestWriteDir(t *testing.T) {
	ctx := context.Background()
	freeze(t, time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), "id-2")

	set := local.NewSet(kv.NewMemoryStore(), "", repositories.DefaultCodecs(nil), nil)
	require.NoError(t, set.Owners.Create(ctx, models.NewOwner("Bob")))

	dir := t.TempDir()
	file, err := WriteDir(ctx, dir, "bob", set)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "backups", "bob", "2024", "05", "01", "id-2.json"), file)

	body, err := os.ReadFile(file)
	require.NoError(t, err)
	var snap Snapshot
	require.NoError(t, json.Unmarshal(body, &snap))
	require.Len(t, snap.Owners, 1)
	assert.Equal(t, "Bob", snap.Owners[0].Name)
}

func TestWriteDir_NotReadyBooks(t *testing.T) {
	backend := remote.NewBackend(docstore.NewMemoryStore(), nil, "alice", repositories.DefaultCodecs(nil), nil)
	dir := t.TempDir()
	_, err := WriteDir(context.Background(), dir, "alice", backend.Set())
	require.ErrorIs(t, err, common.ErrorNotReady)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNewS3Client(t *testing.T) {
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() { loadDefaultAWSConfig, newS3ClientFromConfig = origLoad, origNew })

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "eu-central-1", lo.Region)
		require.NotNil(t, lo.Credentials)
		creds, err := lo.Credentials.Retrieve(ctx)
		require.NoError(t, err)
		assert.Equal(t, "minio", creds.AccessKeyID)
		return aws.Config{}, nil
	}
	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}

	client, err := NewS3Client(context.Background(), Config{
		Region: "eu-central-1", AccessKey: "minio", SecretKey: "minio123", Endpoint: "http://127.0.0.1:9000",
	})
	require.NoError(t, err)
	assert.NotNil(t, client)
	assert.Equal(t, "http://127.0.0.1:9000", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)

	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}
	_, err = NewS3Client(context.Background(), Config{})
	require.ErrorContains(t, err, "no config")
}
