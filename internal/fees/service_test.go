package fees

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jsivak/soleplug-backend/pkg/config"
	"github.com/jsivak/soleplug-backend/pkg/db/models"
	pkgerrors "github.com/jsivak/soleplug-backend/pkg/errors"
)

type fakeRepository struct {
	getLatestFn func(ctx context.Context) (*models.FeeConfig, error)
	updateFn    func(ctx context.Context, percent, fixed decimal.Decimal) (*models.FeeConfig, error)
	getCalls    int
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) GetLatest(ctx context.Context) (*models.FeeConfig, error) {
	f.getCalls++
	if f.getLatestFn != nil {
		return f.getLatestFn(ctx)
	}
	return nil, ErrNoConfig
}

func (f *fakeRepository) Update(ctx context.Context, percent, fixed decimal.Decimal) (*models.FeeConfig, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, percent, fixed)
	}
	return &models.FeeConfig{FeePercent: percent, FeeFixed: fixed}, nil
}

func testFeesConfig() config.FeesConfig {
	return config.FeesConfig{
		CacheTTL:       5 * time.Minute,
		DefaultPercent: 0.20,
		DefaultFixed:   5,
	}
}

func storedConfig(percent, fixed string) *models.FeeConfig {
	return &models.FeeConfig{
		FeePercent: decimal.RequireFromString(percent),
		FeeFixed:   decimal.RequireFromString(fixed),
	}
}

func newServiceWithRepo(t *testing.T, repo Repository) *service {
	t.Helper()
	svc, err := NewService(repo, testFeesConfig(), nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc.(*service)
}

func TestCurrent_CachesWithinTTL(t *testing.T) {
	repo := &fakeRepository{
		getLatestFn: func(ctx context.Context) (*models.FeeConfig, error) {
			return storedConfig("0.15", "3"), nil
		},
	}
	svc := newServiceWithRepo(t, repo)

	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	first := svc.Current(context.Background())
	if !first.Percent.Equal(decimal.RequireFromString("0.15")) {
		t.Fatalf("unexpected percent %s", first.Percent)
	}

	now = now.Add(4 * time.Minute)
	svc.Current(context.Background())
	if repo.getCalls != 1 {
		t.Fatalf("expected cached read within TTL, got %d fetches", repo.getCalls)
	}

	now = now.Add(2 * time.Minute)
	svc.Current(context.Background())
	if repo.getCalls != 2 {
		t.Fatalf("expected refetch after TTL, got %d fetches", repo.getCalls)
	}
}

func TestCurrent_FallsBackToStaleCacheOnError(t *testing.T) {
	healthy := true
	repo := &fakeRepository{
		getLatestFn: func(ctx context.Context) (*models.FeeConfig, error) {
			if !healthy {
				return nil, errors.New("connection refused")
			}
			return storedConfig("0.10", "2"), nil
		},
	}
	svc := newServiceWithRepo(t, repo)

	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	svc.Current(context.Background())

	healthy = false
	now = now.Add(10 * time.Minute)
	got := svc.Current(context.Background())
	if !got.Percent.Equal(decimal.RequireFromString("0.10")) {
		t.Fatalf("expected stale cached percent, got %s", got.Percent)
	}
}

func TestCurrent_FallsBackToDefaultsWithoutCache(t *testing.T) {
	repo := &fakeRepository{
		getLatestFn: func(ctx context.Context) (*models.FeeConfig, error) {
			return nil, ErrNoConfig
		},
	}
	svc := newServiceWithRepo(t, repo)

	got := svc.Current(context.Background())
	if !got.Percent.Equal(decimal.NewFromFloat(0.20)) {
		t.Fatalf("expected default percent, got %s", got.Percent)
	}
	if !got.Fixed.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("expected default fixed, got %s", got.Fixed)
	}
}

func TestCurrent_CachesDefaultsWhenStoreEmpty(t *testing.T) {
	repo := &fakeRepository{
		getLatestFn: func(ctx context.Context) (*models.FeeConfig, error) {
			return nil, ErrNoConfig
		},
	}
	svc := newServiceWithRepo(t, repo)

	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	got := svc.Current(context.Background())
	if !got.Percent.Equal(decimal.NewFromFloat(0.20)) {
		t.Fatalf("expected default percent, got %s", got.Percent)
	}

	now = now.Add(4 * time.Minute)
	svc.Current(context.Background())
	if repo.getCalls != 1 {
		t.Fatalf("expected defaults cached within TTL, got %d fetches", repo.getCalls)
	}

	now = now.Add(2 * time.Minute)
	svc.Current(context.Background())
	if repo.getCalls != 2 {
		t.Fatalf("expected refetch after TTL, got %d fetches", repo.getCalls)
	}
}

func TestClearCacheForcesRefetch(t *testing.T) {
	repo := &fakeRepository{
		getLatestFn: func(ctx context.Context) (*models.FeeConfig, error) {
			return storedConfig("0.25", "4"), nil
		},
	}
	svc := newServiceWithRepo(t, repo)

	svc.Current(context.Background())
	svc.Current(context.Background())
	if repo.getCalls != 1 {
		t.Fatalf("expected one fetch, got %d", repo.getCalls)
	}

	svc.ClearCache()
	svc.Current(context.Background())
	if repo.getCalls != 2 {
		t.Fatalf("expected refetch after clear, got %d", repo.getCalls)
	}
}

func TestCalculatePayoutUsesCurrentSchedule(t *testing.T) {
	repo := &fakeRepository{
		getLatestFn: func(ctx context.Context) (*models.FeeConfig, error) {
			return storedConfig("0.2", "5"), nil
		},
	}
	svc := newServiceWithRepo(t, repo)

	payout, err := svc.CalculatePayout(context.Background(), decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !payout.Equal(decimal.NewFromInt(75)) {
		t.Fatalf("expected payout 75, got %s", payout)
	}

	_, err = svc.CalculatePayout(context.Background(), decimal.NewFromInt(-1))
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateValidatesAndRefreshesCache(t *testing.T) {
	repo := &fakeRepository{
		getLatestFn: func(ctx context.Context) (*models.FeeConfig, error) {
			return storedConfig("0.2", "5"), nil
		},
	}
	svc := newServiceWithRepo(t, repo)

	svc.Current(context.Background())

	updated, err := svc.Update(context.Background(), decimal.RequireFromString("0.3"), decimal.NewFromInt(7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.Percent.Equal(decimal.RequireFromString("0.3")) {
		t.Fatalf("unexpected percent %s", updated.Percent)
	}

	// cache was refreshed in place, no extra store read
	got := svc.Current(context.Background())
	if !got.Fixed.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("expected cached fixed 7, got %s", got.Fixed)
	}
	if repo.getCalls != 1 {
		t.Fatalf("expected no refetch after update, got %d", repo.getCalls)
	}

	_, err = svc.Update(context.Background(), decimal.RequireFromString("1.5"), decimal.Zero)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = svc.Update(context.Background(), decimal.RequireFromString("0.2"), decimal.NewFromInt(-1))
	appErr = pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
