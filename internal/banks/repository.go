package banks

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	ListBanks(ctx context.Context) ([]Bank, error)
	CountBanks(ctx context.Context) (int64, error)
	CreateBanks(ctx context.Context, banks []Bank) error

	SearchAccounts(ctx context.Context, term string, limit int) ([]ChartOfAccount, error)
	ReplaceAccounts(ctx context.Context, accounts []ChartOfAccount) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) ListBanks(ctx context.Context) ([]Bank, error) {
	var out []Bank
	err := r.db.WithContext(ctx).Order("name ASC").Find(&out).Error
	return out, err
}

func (r *gormRepository) CountBanks(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Bank{}).Count(&n).Error
	return n, err
}

func (r *gormRepository) CreateBanks(ctx context.Context, banks []Bank) error {
	return r.db.WithContext(ctx).Create(&banks).Error
}

func (r *gormRepository) SearchAccounts(ctx context.Context, term string, limit int) ([]ChartOfAccount, error) {
	q := r.db.WithContext(ctx).Model(&ChartOfAccount{})
	if term != "" {
		like := "%" + term + "%"
		q = q.Where("code ILIKE ? OR name ILIKE ? OR full_name ILIKE ?", like, like, like)
	}
	var out []ChartOfAccount
	err := q.Order("code ASC").Limit(limit).Find(&out).Error
	return out, err
}

// ReplaceAccounts swaps the whole chart in one transaction, the way a fresh
// listing import expects.
func (r *gormRepository) ReplaceAccounts(ctx context.Context, accounts []ChartOfAccount) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Unscoped().Delete(&ChartOfAccount{}).Error; err != nil {
			return err
		}
		if len(accounts) == 0 {
			return nil
		}
		return tx.Create(&accounts).Error
	})
}
