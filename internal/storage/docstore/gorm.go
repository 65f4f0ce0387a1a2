package docstore

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// documentRecord maps the MySQL "documents" table.
type documentRecord struct {
	OwnerUID   string    `gorm:"column:owner_uid;primaryKey;size:128"`
	Collection string    `gorm:"column:collection;primaryKey;size:64"`
	ID         string    `gorm:"column:id;primaryKey;size:64"`
	Data       string    `gorm:"column:data;type:json;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (*documentRecord) TableName() string {
	return "documents"
}

// shareRecord and sharedEmailRecord are the MySQL side of the sharing
// tables that migrations/00002_create_shares.sql creates on postgres.
type shareRecord struct {
	Email     string    `gorm:"column:email;primaryKey;size:320"`
	OwnerUID  string    `gorm:"column:owner_uid;size:128;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (*shareRecord) TableName() string {
	return "shares"
}

type sharedEmailRecord struct {
	OwnerUID  string    `gorm:"column:owner_uid;primaryKey;size:128"`
	Email     string    `gorm:"column:email;primaryKey;size:320"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (*sharedEmailRecord) TableName() string {
	return "shared_emails"
}

// GormStore keeps documents in MySQL through gorm.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// OpenMySQL connects with the gorm MySQL dialector and auto-migrates the
// documents and sharing tables.
func OpenMySQL(ctx context.Context, dsn string) (*GormStore, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.db: %w", err)
	}
	if err := pingWithRetry(ctx, sqlDB.PingContext); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	if err := db.WithContext(ctx).AutoMigrate(&documentRecord{}, &shareRecord{}, &sharedEmailRecord{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return &GormStore{db: db}, nil
}

// DB is the gorm handle, for repositories that keep their tables next to
// the documents.
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

func (s *GormStore) List(ctx context.Context, ownerUID, collection string) ([]Document, error) {
	var records []documentRecord
	err := s.db.WithContext(ctx).
		Select("id", "data").
		Where("owner_uid = ? AND collection = ?", ownerUID, collection).
		Order("created_at, id").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	docs := make([]Document, 0, len(records))
	for _, r := range records {
		docs = append(docs, Document{ID: r.ID, Data: []byte(r.Data)})
	}
	return docs, nil
}

func (s *GormStore) Put(ctx context.Context, ownerUID, collection, id string, data []byte) error {
	record := documentRecord{
		OwnerUID:   ownerUID,
		Collection: collection,
		ID:         id,
		Data:       string(data),
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"})}).
		Create(&record).Error
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, ownerUID, collection, id string) error {
	err := s.db.WithContext(ctx).
		Where("owner_uid = ? AND collection = ? AND id = ?", ownerUID, collection, id).
		Delete(&documentRecord{}).Error
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
