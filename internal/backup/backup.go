// Package backup exports a household's books as one JSON document to an
// S3-compatible bucket.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/famledger/internal/filex"
	"github.com/dmitrijs2005/famledger/internal/logging"
	"github.com/dmitrijs2005/famledger/internal/models"
	"github.com/dmitrijs2005/famledger/internal/repositories"
	"github.com/google/uuid"
)

// seams for tests
var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	now   = func() time.Time { return time.Now().UTC() }
	newID = uuid.NewString
)

// Config locates the bucket. Endpoint is optional and points the client
// at MinIO or another S3-compatible service.
type Config struct {
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string
	Bucket    string
}

// ObjectPutter is the part of *s3.Client the exporter needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client builds a client with static credentials.
func NewS3Client(ctx context.Context, c Config) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load s3 config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		}
	})
	return client, nil
}

// Snapshot is the exported document. Template website passwords are
// left out.
type Snapshot struct {
	OwnerUID          string                   `json:"ownerUid"`
	CreatedAt         time.Time                `json:"createdAt"`
	Owners            []models.Owner           `json:"owners"`
	BankAccounts      []models.BankAccount     `json:"bankAccounts"`
	Transactions      []models.Transaction     `json:"transactions"`
	PaymentCategories []models.PaymentCategory `json:"paymentCategories"`
	PaymentTemplates  []models.PaymentTemplate `json:"paymentTemplates"`
	Payments          []models.Payment         `json:"payments"`
	PaymentBatches    []models.PaymentBatch    `json:"paymentBatches"`
}

// Take reads every collection of set.
func Take(ctx context.Context, ownerUID string, set *repositories.Set) (Snapshot, error) {
	s := Snapshot{OwnerUID: ownerUID, CreatedAt: now()}
	var err error

	if s.Owners, err = set.Owners.GetAll(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("read owners: %w", err)
	}
	if s.BankAccounts, err = set.BankAccounts.GetAll(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("read bank accounts: %w", err)
	}
	if s.Transactions, err = set.Transactions.GetAll(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("read transactions: %w", err)
	}
	if s.PaymentCategories, err = set.PaymentCategories.GetAll(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("read categories: %w", err)
	}
	if s.PaymentTemplates, err = set.PaymentTemplates.GetAll(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("read templates: %w", err)
	}
	if s.Payments, err = set.Payments.GetAll(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("read payments: %w", err)
	}
	if s.PaymentBatches, err = set.PaymentBatches.GetAll(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("read payment batches: %w", err)
	}

	for i := range s.PaymentTemplates {
		s.PaymentTemplates[i].WebsitePassword = nil
	}
	return s, nil
}

// Key returns "backups/<owner>/<yyyy>/<mm>/<dd>/<id>.json".
func Key(ownerUID string, at time.Time, id string) string {
	at = at.UTC()
	return path.Join("backups", ownerUID,
		fmt.Sprintf("%04d", at.Year()), fmt.Sprintf("%02d", int(at.Month())), fmt.Sprintf("%02d", at.Day()),
		id+".json")
}

type Exporter struct {
	client ObjectPutter
	bucket string
	logger logging.Logger
}

func NewExporter(client ObjectPutter, bucket string, logger logging.Logger) *Exporter {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Exporter{client: client, bucket: bucket, logger: logger.With("component", "backup")}
}

// encode takes a snapshot of set and picks its object key.
func encode(ctx context.Context, ownerUID string, set *repositories.Set) (string, []byte, error) {
	snap, err := Take(ctx, ownerUID, set)
	if err != nil {
		return "", nil, err
	}
	body, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return Key(ownerUID, snap.CreatedAt, newID()), body, nil
}

// Export uploads a snapshot of set and returns the object key.
func (e *Exporter) Export(ctx context.Context, ownerUID string, set *repositories.Set) (string, error) {
	key, body, err := encode(ctx, ownerUID, set)
	if err != nil {
		return "", err
	}

	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		e.logger.Error(ctx, "backup upload failed", "owner_uid", ownerUID, "key", key, "error", err)
		return "", fmt.Errorf("failed to upload backup: %w", err)
	}

	e.logger.Info(ctx, "backup uploaded", "owner_uid", ownerUID, "key", key, "bytes", len(body))
	return key, nil
}

// WriteDir stores a snapshot of set under dir using the same layout as
// the bucket and returns the file path.
func WriteDir(ctx context.Context, dir, ownerUID string, set *repositories.Set) (string, error) {
	key, body, err := encode(ctx, ownerUID, set)
	if err != nil {
		return "", err
	}
	root, err := filex.EnsureDir(dir)
	if err != nil {
		return "", err
	}
	file := filepath.Join(root, filepath.FromSlash(key))
	if err := filex.WriteFile(file, body); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	return file, nil
}
