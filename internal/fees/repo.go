package fees

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jsivak/soleplug-backend/pkg/db/models"
)

// ErrNoConfig is returned when admin_settings holds no row yet.
var ErrNoConfig = errors.New("fee config not found")

// Repository exposes persistence helpers for the admin fee configuration.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetLatest(ctx context.Context) (*models.FeeConfig, error)
	Update(ctx context.Context, percent, fixed decimal.Decimal) (*models.FeeConfig, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a fee repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) GetLatest(ctx context.Context) (*models.FeeConfig, error) {
	var row models.FeeConfig
	err := r.db.WithContext(ctx).
		Order("updated_at DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repositoryImpl) Update(ctx context.Context, percent, fixed decimal.Decimal) (*models.FeeConfig, error) {
	var row models.FeeConfig
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Order("updated_at DESC").First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = models.FeeConfig{ID: uuid.New(), FeePercent: percent, FeeFixed: fixed}
			return tx.Create(&row).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&row).Updates(map[string]any{
			"fee_percent": percent,
			"fee_fixed":   fixed,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	row.FeePercent = percent
	row.FeeFixed = fixed
	return &row, nil
}
