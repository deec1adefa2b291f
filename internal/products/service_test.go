package products

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jsivak/soleplug-backend/pkg/db/models"
	pkgerrors "github.com/jsivak/soleplug-backend/pkg/errors"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  sku TEXT NOT NULL,
  image_url TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	listings := `
CREATE TABLE IF NOT EXISTS listings (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  size TEXT NOT NULL,
  price NUMERIC NOT NULL,
  payout NUMERIC NOT NULL,
  original_price NUMERIC,
  sku TEXT NOT NULL,
  image_url TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(products).Error)
	require.NoError(t, db.Exec(listings).Error)
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name, sku string, createdAt time.Time) models.Product {
	t.Helper()
	product := models.Product{
		ID:        uuid.New(),
		Name:      name,
		SKU:       sku,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func seedProductListing(t *testing.T, db *gorm.DB, productID uuid.UUID, size, price string) {
	t.Helper()
	listing := models.Listing{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		ProductID: productID,
		Name:      "seeded",
		Size:      size,
		Price:     decimal.RequireFromString(price),
		Payout:    decimal.RequireFromString(price),
		SKU:       "SEED-001",
	}
	require.NoError(t, db.Create(&listing).Error)
}

func newProductsService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	return svc
}

func TestSearchMatchesNameAndSKU(t *testing.T) {
	db := setupProductsTestDB(t)
	svc := newProductsService(t, db)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	seedProduct(t, db, "Air Zoom Velocity", "AZV-100", base)
	seedProduct(t, db, "Court Classic", "CC-200", base.Add(time.Minute))
	seedProduct(t, db, "Trail Runner", "AZV-300", base.Add(2*time.Minute))

	result, err := svc.Search(ctx, "AZV", SearchParams{})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)

	result, err = svc.Search(ctx, "Court", SearchParams{})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	require.Equal(t, "Court Classic", result.Items[0].Name)

	result, err = svc.Search(ctx, "", SearchParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	require.NotEmpty(t, result.NextCursor)
}

func TestSearchRejectsInvalidCursor(t *testing.T) {
	svc := newProductsService(t, setupProductsTestDB(t))

	_, err := svc.Search(context.Background(), "", SearchParams{Cursor: "garbage"})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestSizesReturnsLowestPerSizeSorted(t *testing.T) {
	db := setupProductsTestDB(t)
	svc := newProductsService(t, db)
	ctx := context.Background()

	product := seedProduct(t, db, "Air Zoom Velocity", "AZV-100", time.Now())
	seedProductListing(t, db, product.ID, "10", "170")
	seedProductListing(t, db, product.ID, "9.5", "180")
	seedProductListing(t, db, product.ID, "9.5", "150")
	seedProductListing(t, db, uuid.New(), "9.5", "90")

	sizes, err := svc.Sizes(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, sizes, 2)
	require.Equal(t, "9.5", sizes[0].Size)
	require.True(t, sizes[0].LowestPrice.Equal(decimal.NewFromInt(150)))
	require.Equal(t, "10", sizes[1].Size)
	require.True(t, sizes[1].LowestPrice.Equal(decimal.NewFromInt(170)))
}

func TestGetProductValidation(t *testing.T) {
	svc := newProductsService(t, setupProductsTestDB(t))

	_, err := svc.GetProduct(context.Background(), uuid.Nil)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeValidation, appErr.Code())

	product, err := svc.GetProduct(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Nil(t, product)
}
