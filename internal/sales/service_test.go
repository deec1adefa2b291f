package sales

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jsivak/soleplug-backend/internal/listings"
	"github.com/jsivak/soleplug-backend/pkg/db/models"
	"github.com/jsivak/soleplug-backend/pkg/enums"
	pkgerrors "github.com/jsivak/soleplug-backend/pkg/errors"
	"github.com/jsivak/soleplug-backend/pkg/outbox"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func setupSalesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS listings (
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
);`,
		`CREATE TABLE IF NOT EXISTS user_sales (
  id TEXT PRIMARY KEY,
  listing_id TEXT NOT NULL UNIQUE,
  user_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  size TEXT NOT NULL,
  price NUMERIC NOT NULL,
  payout NUMERIC NOT NULL,
  sku TEXT NOT NULL,
  image_url TEXT,
  status TEXT NOT NULL DEFAULT 'accepted',
  external_id TEXT,
  status_notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS sales_status_history (
  id TEXT PRIMARY KEY,
  sale_id TEXT NOT NULL,
  old_status TEXT,
  new_status TEXT NOT NULL,
  notes TEXT,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type salesFixture struct {
	db          *gorm.DB
	service     Service
	repo        Repository
	listingRepo listings.Repository
	outboxRepo  *outbox.Repository
}

func newSalesFixture(t *testing.T) *salesFixture {
	t.Helper()

	db := setupSalesTestDB(t)
	repo := NewRepository(db)
	listingRepo := listings.NewRepository(db)
	outboxRepo := outbox.NewRepository(db)
	publisher := outbox.NewService(outboxRepo, nil)

	svc, err := NewService(repo, listingRepo, gormTxRunner{db: db}, publisher, nil, nil)
	require.NoError(t, err)

	return &salesFixture{
		db:          db,
		service:     svc,
		repo:        repo,
		listingRepo: listingRepo,
		outboxRepo:  outboxRepo,
	}
}

func (f *salesFixture) seedListing(t *testing.T, price, payout string) models.Listing {
	t.Helper()
	listing := models.Listing{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		ProductID: uuid.New(),
		Name:      "Air Zoom Test",
		Size:      "9.5",
		Price:     decimal.RequireFromString(price),
		Payout:    decimal.RequireFromString(payout),
		SKU:       "AZT-001",
	}
	require.NoError(t, f.db.Create(&listing).Error)
	return listing
}

func TestConvertListingToSale(t *testing.T) {
	f := newSalesFixture(t)
	ctx := context.Background()

	listing := f.seedListing(t, "200", "155")

	sale, err := f.service.ConvertListingToSale(ctx, ConvertParams{
		ListingID:  listing.ID,
		ExternalID: "AIR-001",
		Actor:      Actor{UserID: uuid.New(), Role: enums.MemberRoleAdmin},
	})
	require.NoError(t, err)
	require.Equal(t, enums.SaleStatusAccepted, sale.Status)
	require.NotNil(t, sale.ExternalID)
	require.Equal(t, "AIR-001", *sale.ExternalID)
	require.True(t, sale.Payout.Equal(decimal.NewFromInt(155)))
	require.Equal(t, listing.UserID, sale.UserID)

	// source listing is gone
	remaining, err := f.listingRepo.GetByID(ctx, listing.ID)
	require.NoError(t, err)
	require.Nil(t, remaining)

	// no history entry at conversion time
	history, err := f.service.History(ctx, sale.ID)
	require.NoError(t, err)
	require.Empty(t, history)

	// the accepted event is queued for the notifier
	events, err := f.outboxRepo.FetchUnpublished(10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, enums.EventSaleAccepted, events[0].EventType)
	require.Equal(t, sale.ID, events[0].AggregateID)
}

func TestConvertListingToSale_Validation(t *testing.T) {
	f := newSalesFixture(t)
	ctx := context.Background()

	_, err := f.service.ConvertListingToSale(ctx, ConvertParams{ExternalID: "AIR-001"})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeValidation, appErr.Code())

	_, err = f.service.ConvertListingToSale(ctx, ConvertParams{ListingID: uuid.New(), ExternalID: "  "})
	appErr = pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeValidation, appErr.Code())

	_, err = f.service.ConvertListingToSale(ctx, ConvertParams{ListingID: uuid.New(), ExternalID: "AIR-001"})
	appErr = pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestConvertListingToSale_SecondConvertFails(t *testing.T) {
	f := newSalesFixture(t)
	ctx := context.Background()

	listing := f.seedListing(t, "150", "115")
	params := ConvertParams{ListingID: listing.ID, ExternalID: "AIR-002"}

	_, err := f.service.ConvertListingToSale(ctx, params)
	require.NoError(t, err)

	_, err = f.service.ConvertListingToSale(ctx, params)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestTransition_StatusChangeAppendsHistory(t *testing.T) {
	f := newSalesFixture(t)
	ctx := context.Background()

	listing := f.seedListing(t, "200", "155")
	sale, err := f.service.ConvertListingToSale(ctx, ConvertParams{ListingID: listing.ID, ExternalID: "AIR-003"})
	require.NoError(t, err)

	next := enums.SaleStatusProcessing
	updated, err := f.service.Transition(ctx, TransitionParams{
		SaleID:    sale.ID,
		NewStatus: &next,
	})
	require.NoError(t, err)
	require.Equal(t, enums.SaleStatusProcessing, updated.Status)

	history, err := f.service.History(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.NotNil(t, history[0].OldStatus)
	require.Equal(t, enums.SaleStatusAccepted, *history[0].OldStatus)
	require.Equal(t, enums.SaleStatusProcessing, history[0].NewStatus)

	// only the conversion event is in the outbox: transitions notify nobody
	events, err := f.outboxRepo.FetchUnpublished(10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, enums.EventSaleAccepted, events[0].EventType)
}

func TestTransition_NoOp(t *testing.T) {
	f := newSalesFixture(t)
	ctx := context.Background()

	listing := f.seedListing(t, "100", "75")
	sale, err := f.service.ConvertListingToSale(ctx, ConvertParams{ListingID: listing.ID, ExternalID: "AIR-004"})
	require.NoError(t, err)

	same := enums.SaleStatusAccepted
	sameExternal := "AIR-004"
	emptyNotes := "   "
	result, err := f.service.Transition(ctx, TransitionParams{
		SaleID:     sale.ID,
		NewStatus:  &same,
		ExternalID: &sameExternal,
		Notes:      &emptyNotes,
	})
	require.NoError(t, err)
	require.Equal(t, enums.SaleStatusAccepted, result.Status)

	history, err := f.service.History(ctx, sale.ID)
	require.NoError(t, err)
	require.Empty(t, history)
}

func TestTransition_NotesOnlyAppendsHistory(t *testing.T) {
	f := newSalesFixture(t)
	ctx := context.Background()

	listing := f.seedListing(t, "100", "75")
	sale, err := f.service.ConvertListingToSale(ctx, ConvertParams{ListingID: listing.ID, ExternalID: "AIR-005"})
	require.NoError(t, err)

	notes := "carrier picked up late"
	updated, err := f.service.Transition(ctx, TransitionParams{
		SaleID: sale.ID,
		Notes:  &notes,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.StatusNotes)
	require.Equal(t, notes, *updated.StatusNotes)
	require.Equal(t, enums.SaleStatusAccepted, updated.Status)

	history, err := f.service.History(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, enums.SaleStatusAccepted, history[0].NewStatus)
	require.NotNil(t, history[0].Notes)
	require.Equal(t, notes, *history[0].Notes)
}

func TestTransition_ExternalIDOnlySkipsHistory(t *testing.T) {
	f := newSalesFixture(t)
	ctx := context.Background()

	listing := f.seedListing(t, "100", "75")
	sale, err := f.service.ConvertListingToSale(ctx, ConvertParams{ListingID: listing.ID, ExternalID: "AIR-006"})
	require.NoError(t, err)

	newExternal := "AIR-006-B"
	updated, err := f.service.Transition(ctx, TransitionParams{
		SaleID:     sale.ID,
		ExternalID: &newExternal,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.ExternalID)
	require.Equal(t, newExternal, *updated.ExternalID)

	history, err := f.service.History(ctx, sale.ID)
	require.NoError(t, err)
	require.Empty(t, history)
}

func TestTransition_UnknownStatusRejected(t *testing.T) {
	f := newSalesFixture(t)

	bogus := enums.SaleStatus("lost-in-transit")
	_, err := f.service.Transition(context.Background(), TransitionParams{
		SaleID:    uuid.New(),
		NewStatus: &bogus,
	})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestLifecycleEndToEnd(t *testing.T) {
	f := newSalesFixture(t)
	ctx := context.Background()

	// listing at 200 with 20% + 5 fees carries payout 155
	listing := f.seedListing(t, "200", "155")

	sale, err := f.service.ConvertListingToSale(ctx, ConvertParams{ListingID: listing.ID, ExternalID: "AIR-001"})
	require.NoError(t, err)
	require.Equal(t, enums.SaleStatusAccepted, sale.Status)
	require.True(t, sale.Payout.Equal(decimal.NewFromInt(155)))

	completed := enums.SaleStatusCompleted
	updated, err := f.service.Transition(ctx, TransitionParams{SaleID: sale.ID, NewStatus: &completed})
	require.NoError(t, err)
	require.Equal(t, enums.SaleStatusCompleted, updated.Status)

	// conversion itself writes no history, only the explicit transition does
	history, err := f.service.History(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, enums.SaleStatusAccepted, *history[0].OldStatus)
	require.Equal(t, enums.SaleStatusCompleted, history[0].NewStatus)
}

func TestListMineFiltersByUserAndStatus(t *testing.T) {
	f := newSalesFixture(t)
	ctx := context.Background()

	first := f.seedListing(t, "100", "75")
	second := f.seedListing(t, "150", "115")

	saleA, err := f.service.ConvertListingToSale(ctx, ConvertParams{ListingID: first.ID, ExternalID: "AIR-010"})
	require.NoError(t, err)
	_, err = f.service.ConvertListingToSale(ctx, ConvertParams{ListingID: second.ID, ExternalID: "AIR-011"})
	require.NoError(t, err)

	shipped := enums.SaleStatusShipped
	_, err = f.service.Transition(ctx, TransitionParams{SaleID: saleA.ID, NewStatus: &shipped})
	require.NoError(t, err)

	mine, err := f.service.ListMine(ctx, first.UserID, ListParams{})
	require.NoError(t, err)
	require.Len(t, mine.Items, 1)
	require.Equal(t, saleA.ID, mine.Items[0].ID)

	all, err := f.service.ListAll(ctx, ListParams{Status: &shipped})
	require.NoError(t, err)
	require.Len(t, all.Items, 1)
	require.Equal(t, saleA.ID, all.Items[0].ID)
}
