package sharing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/famledger/internal/common"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type shareRow struct {
	Email     string    `gorm:"column:email;primaryKey"`
	OwnerUID  string    `gorm:"column:owner_uid"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (shareRow) TableName() string { return "shares" }

type sharedEmailRow struct {
	OwnerUID  string    `gorm:"column:owner_uid;primaryKey"`
	Email     string    `gorm:"column:email;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (sharedEmailRow) TableName() string { return "shared_emails" }

// GormRepository keeps grants in the MySQL shares and shared_emails tables
// that the gorm document store migrates.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) ResolveDataOwner(ctx context.Context, email string) (string, error) {
	var rows []shareRow
	err := r.db.WithContext(ctx).
		Select("owner_uid").
		Where("email = ?", email).
		Find(&rows).Error
	if err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	if len(rows) == 0 {
		return "", common.ErrorNotFound
	}
	return rows[0].OwnerUID, nil
}

func (r *GormRepository) GetSharedEmails(ctx context.Context, ownerUID string) ([]string, error) {
	emails := []string{}
	err := r.db.WithContext(ctx).
		Model(&sharedEmailRow{}).
		Where("owner_uid = ?", ownerUID).
		Order("created_at, email").
		Pluck("email", &emails).Error
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return emails, nil
}

func (r *GormRepository) AddSharedEmail(ctx context.Context, ownerUID, email string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// a previous owner loses the grant
		if err := tx.Where("email = ? AND owner_uid <> ?", email, ownerUID).Delete(&sharedEmailRow{}).Error; err != nil {
			return err
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"owner_uid"}),
		}).Create(&shareRow{Email: email, OwnerUID: ownerUID}).Error
		if err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&sharedEmailRow{OwnerUID: ownerUID, Email: email}).Error
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *GormRepository) RemoveSharedEmail(ctx context.Context, ownerUID, email string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("owner_uid = ? AND email = ?", ownerUID, email).Delete(&sharedEmailRow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return common.ErrorNotFound
		}
		return tx.Where("email = ? AND owner_uid = ?", email, ownerUID).Delete(&shareRow{}).Error
	})
	if errors.Is(err, common.ErrorNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
