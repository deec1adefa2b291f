package products

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jsivak/soleplug-backend/pkg/db/models"
	"github.com/jsivak/soleplug-backend/pkg/pagination"
)

// SizePrice pairs a size with the lowest asking price currently listed for it.
type SizePrice struct {
	Size        string          `json:"size"`
	LowestPrice decimal.Decimal `json:"lowest_price"`
}

// Repository exposes catalog lookups.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Search(ctx context.Context, query string, params searchParams) ([]models.Product, *pagination.Cursor, error)
	SizeLowestPrices(ctx context.Context, productID uuid.UUID) ([]SizePrice, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a products repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type searchParams struct {
	Limit  int
	Cursor *pagination.Cursor
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var row models.Product
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repositoryImpl) Search(ctx context.Context, query string, params searchParams) ([]models.Product, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	builder := r.db.WithContext(ctx).Model(&models.Product{})
	if query != "" {
		pattern := "%" + query + "%"
		builder = builder.Where("name LIKE ? OR sku LIKE ?", pattern, pattern)
	}
	if params.Cursor != nil {
		builder = builder.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.Product
	if err := builder.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		rows = rows[:normalized]
		last := rows[normalized-1]
		return rows, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return rows, nil, nil
}

func (r *repositoryImpl) SizeLowestPrices(ctx context.Context, productID uuid.UUID) ([]SizePrice, error) {
	type row struct {
		Size   string
		Lowest decimal.Decimal
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Select("size, MIN(price) AS lowest").
		Where("product_id = ?", productID).
		Group("size").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	prices := make([]SizePrice, 0, len(rows))
	for _, r := range rows {
		prices = append(prices, SizePrice{Size: r.Size, LowestPrice: r.Lowest})
	}
	return prices, nil
}
