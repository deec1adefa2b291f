package fees

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jsivak/soleplug-backend/pkg/config"
	pkgerrors "github.com/jsivak/soleplug-backend/pkg/errors"
	"github.com/jsivak/soleplug-backend/pkg/logger"
)

// Service exposes the fee schedule and payout calculations.
type Service interface {
	// Current returns the active fee schedule, serving a cached copy within
	// the configured TTL. When the store is unreachable it falls back to the
	// last cached schedule, then to the configured defaults.
	Current(ctx context.Context) Schedule
	// CalculatePayout computes the seller payout for the given price under
	// the current schedule.
	CalculatePayout(ctx context.Context, price decimal.Decimal) (decimal.Decimal, error)
	// Update persists a new schedule and refreshes the cache.
	Update(ctx context.Context, percent, fixed decimal.Decimal) (Schedule, error)
	// ClearCache drops the cached schedule so the next read hits the store.
	ClearCache()
}

type service struct {
	repo Repository
	cfg  config.FeesConfig
	logg *logger.Logger

	mtx       sync.Mutex
	cached    *Schedule
	fetchedAt time.Time
	now       func() time.Time
}

// NewService wires fee dependencies.
func NewService(repo Repository, cfg config.FeesConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "fees repository required")
	}
	return &service{
		repo: repo,
		cfg:  cfg,
		logg: logg,
		now:  time.Now,
	}, nil
}

func (s *service) Current(ctx context.Context) Schedule {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	now := s.now()
	if s.cached != nil && now.Sub(s.fetchedAt) < s.cfg.CacheTTL {
		return *s.cached
	}

	fetchCtx := ctx
	if s.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.cfg.FetchTimeout)
		defer cancel()
	}

	row, err := s.repo.GetLatest(fetchCtx)
	if errors.Is(err, ErrNoConfig) {
		// empty store is a valid answer: cache the defaults so calls
		// inside the TTL window do not re-hit the store
		schedule := s.defaults()
		s.cached = &schedule
		s.fetchedAt = now
		return schedule
	}
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "fee config fetch failed, using fallback: "+err.Error())
		}
		if s.cached != nil {
			// keep serving the stale schedule until the store recovers
			return *s.cached
		}
		return s.defaults()
	}

	schedule := Schedule{Percent: row.FeePercent, Fixed: row.FeeFixed}
	s.cached = &schedule
	s.fetchedAt = now
	return schedule
}

func (s *service) CalculatePayout(ctx context.Context, price decimal.Decimal) (decimal.Decimal, error) {
	if price.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
	}
	return CalculatePayout(price, s.Current(ctx)), nil
}

func (s *service) Update(ctx context.Context, percent, fixed decimal.Decimal) (Schedule, error) {
	if percent.IsNegative() || percent.GreaterThan(decimal.NewFromInt(1)) {
		return Schedule{}, pkgerrors.New(pkgerrors.CodeValidation, "fee percent must be between 0 and 1")
	}
	if fixed.IsNegative() {
		return Schedule{}, pkgerrors.New(pkgerrors.CodeValidation, "fee fixed must be non-negative")
	}

	writeCtx := ctx
	if s.cfg.UpdateWriteTimeout > 0 {
		var cancel context.CancelFunc
		writeCtx, cancel = context.WithTimeout(ctx, s.cfg.UpdateWriteTimeout)
		defer cancel()
	}

	row, err := s.repo.Update(writeCtx, percent, fixed)
	if err != nil {
		return Schedule{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update fee config")
	}

	schedule := Schedule{Percent: row.FeePercent, Fixed: row.FeeFixed}
	s.mtx.Lock()
	s.cached = &schedule
	s.fetchedAt = s.now()
	s.mtx.Unlock()
	return schedule, nil
}

func (s *service) ClearCache() {
	s.mtx.Lock()
	s.cached = nil
	s.fetchedAt = time.Time{}
	s.mtx.Unlock()
}

func (s *service) defaults() Schedule {
	return Schedule{
		Percent: decimal.NewFromFloat(s.cfg.DefaultPercent),
		Fixed:   decimal.NewFromFloat(s.cfg.DefaultFixed),
	}
}
