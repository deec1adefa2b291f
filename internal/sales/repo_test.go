package sales

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jsivak/soleplug-backend/pkg/db/models"
	"github.com/jsivak/soleplug-backend/pkg/enums"
)

func seedSale(t *testing.T, f *salesFixture, userID uuid.UUID, status enums.SaleStatus, createdAt time.Time) models.Sale {
	t.Helper()
	sale := models.Sale{
		ID:        uuid.New(),
		ListingID: uuid.New(),
		UserID:    userID,
		ProductID: uuid.New(),
		Name:      "Dunk Low",
		Size:      "10",
		Price:     decimal.NewFromInt(120),
		Payout:    decimal.NewFromInt(91),
		SKU:       "DL-010",
		Status:    status,
		CreatedAt: createdAt,
	}
	require.NoError(t, f.db.Create(&sale).Error)
	return sale
}

func TestSalesRepoCursorPagination(t *testing.T) {
	f := newSalesFixture(t)
	ctx := context.Background()

	userID := uuid.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedSale(t, f, userID, enums.SaleStatusAccepted, base.Add(time.Duration(i)*time.Minute))
	}

	first, cursor, err := f.repo.ListByUser(ctx, userID, listQueryParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.NotNil(t, cursor)
	// newest first
	require.True(t, first[0].CreatedAt.After(first[1].CreatedAt))

	second, cursor, err := f.repo.ListByUser(ctx, userID, listQueryParams{Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, second, 2)
	require.NotNil(t, cursor)
	require.True(t, first[1].CreatedAt.After(second[0].CreatedAt))

	last, cursor, err := f.repo.ListByUser(ctx, userID, listQueryParams{Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, last, 1)
	require.Nil(t, cursor)
}

func TestSalesRepoStatusFilter(t *testing.T) {
	f := newSalesFixture(t)
	ctx := context.Background()

	userID := uuid.New()
	now := time.Now().UTC()
	seedSale(t, f, userID, enums.SaleStatusAccepted, now)
	shipped := seedSale(t, f, userID, enums.SaleStatusShipped, now.Add(time.Minute))

	status := enums.SaleStatusShipped
	rows, _, err := f.repo.ListAll(ctx, listQueryParams{Status: &status})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, shipped.ID, rows[0].ID)
}

func TestSalesRepoHistoryOrderedOldestFirst(t *testing.T) {
	f := newSalesFixture(t)
	ctx := context.Background()

	saleID := uuid.New()
	accepted := enums.SaleStatusAccepted
	processing := enums.SaleStatusProcessing
	entries := []models.SaleStatusHistory{
		{ID: uuid.New(), SaleID: saleID, OldStatus: &accepted, NewStatus: processing, CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
		{ID: uuid.New(), SaleID: saleID, OldStatus: &processing, NewStatus: enums.SaleStatusShipped, CreatedAt: time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)},
	}
	for i := range entries {
		require.NoError(t, f.db.Create(&entries[i]).Error)
	}

	rows, err := f.repo.HistoryBySale(ctx, saleID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, processing, rows[0].NewStatus)
	require.Equal(t, enums.SaleStatusShipped, rows[1].NewStatus)
}

func TestSalesRepoUpdateAndGet(t *testing.T) {
	f := newSalesFixture(t)
	ctx := context.Background()

	sale := seedSale(t, f, uuid.New(), enums.SaleStatusAccepted, time.Now().UTC())

	err := f.repo.Update(ctx, sale.ID, map[string]any{
		"status":      enums.SaleStatusDelivered,
		"external_id": "EXT-42",
	})
	require.NoError(t, err)

	loaded, err := f.repo.GetByID(ctx, sale.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Equal(t, enums.SaleStatusDelivered, loaded.Status)
	require.NotNil(t, loaded.ExternalID)
	require.Equal(t, "EXT-42", *loaded.ExternalID)

	missing, err := f.repo.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	require.Nil(t, missing)
}
