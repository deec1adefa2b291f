package pricing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jsivak/soleplug-backend/pkg/db/models"
)

// Repository exposes the market-price lookups backing the classifier.
type Repository interface {
	// LowestListingPrice returns the lowest asking price among listings for
	// the product and normalized size, or nil when none exist.
	LowestListingPrice(ctx context.Context, productID uuid.UUID, size string) (*decimal.Decimal, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a pricing repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) LowestListingPrice(ctx context.Context, productID uuid.UUID, size string) (*decimal.Decimal, error) {
	var row models.Listing
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND size = ?", productID, NormalizeSize(size)).
		Order("price ASC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	price := row.Price
	return &price, nil
}
