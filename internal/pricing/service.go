package pricing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jsivak/soleplug-backend/pkg/config"
	"github.com/jsivak/soleplug-backend/pkg/enums"
	pkgerrors "github.com/jsivak/soleplug-backend/pkg/errors"
	"github.com/jsivak/soleplug-backend/pkg/logger"
	redispkg "github.com/jsivak/soleplug-backend/pkg/redis"
)

const noPriceSentinel = "none"

// PriceCache is the subset of the redis client used for market-price lookups.
type PriceCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	MarketPriceKey(productID, size string) string
}

// Service classifies asking prices against the market.
type Service interface {
	CheckPrice(ctx context.Context, params CheckParams) (*CheckResult, error)
}

// CheckParams identifies the product, size and asking price to classify.
type CheckParams struct {
	ProductID uuid.UUID
	Size      string
	Price     decimal.Decimal
}

// CheckResult carries the verdict and the market price it was judged against.
type CheckResult struct {
	Verdict      enums.PriceVerdict `json:"verdict"`
	Message      string             `json:"message,omitempty"`
	MarketLowest *decimal.Decimal   `json:"market_lowest,omitempty"`
}

type service struct {
	repo  Repository
	cache PriceCache
	cfg   config.MarketConfig
	logg  *logger.Logger
}

// NewService wires pricing dependencies. The cache is optional; without it
// every check hits the database.
func NewService(repo Repository, cache PriceCache, cfg config.MarketConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "pricing repository required")
	}
	return &service{
		repo:  repo,
		cache: cache,
		cfg:   cfg,
		logg:  logg,
	}, nil
}

func (s *service) CheckPrice(ctx context.Context, params CheckParams) (*CheckResult, error) {
	if params.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	size := NormalizeSize(params.Size)
	if size == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "size required")
	}
	if params.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
	}

	if s.cfg.LookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.LookupTimeout)
		defer cancel()
	}

	lowest, err := s.lowestPrice(ctx, params.ProductID, size)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "market price lookup")
	}

	verdict := Classify(params.Price, lowest)
	return &CheckResult{
		Verdict:      verdict.Verdict,
		Message:      verdict.Message,
		MarketLowest: lowest,
	}, nil
}

func (s *service) lowestPrice(ctx context.Context, productID uuid.UUID, size string) (*decimal.Decimal, error) {
	var key string
	if s.cache != nil {
		key = s.cache.MarketPriceKey(productID.String(), size)
		cached, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			if cached == noPriceSentinel {
				return nil, nil
			}
			if value, parseErr := decimal.NewFromString(strings.TrimSpace(cached)); parseErr == nil {
				return &value, nil
			}
		case !redispkg.IsNil(err):
			if s.logg != nil {
				s.logg.Warn(ctx, "market price cache read failed: "+err.Error())
			}
		}
	}

	lowest, err := s.repo.LowestListingPrice(ctx, productID, size)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		value := noPriceSentinel
		if lowest != nil {
			value = lowest.String()
		}
		if err := s.cache.Set(ctx, key, value, s.cfg.PriceCacheTTL); err != nil && s.logg != nil {
			s.logg.Warn(ctx, "market price cache write failed: "+err.Error())
		}
	}
	return lowest, nil
}
