package products

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/jsivak/soleplug-backend/internal/pricing"
	"github.com/jsivak/soleplug-backend/pkg/db/models"
	pkgerrors "github.com/jsivak/soleplug-backend/pkg/errors"
	"github.com/jsivak/soleplug-backend/pkg/pagination"
)

// Service exposes catalog search and size/price overviews.
type Service interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Search(ctx context.Context, query string, params SearchParams) (*SearchResult, error)
	Sizes(ctx context.Context, productID uuid.UUID) ([]SizePrice, error)
}

// SearchParams configures pagination for catalog search.
type SearchParams struct {
	Limit  int
	Cursor string
}

// SearchResult wraps matched products plus the next page cursor.
type SearchResult struct {
	Items      []models.Product `json:"items"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

type service struct {
	repo Repository
}

// NewService wires catalog dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "products repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) Search(ctx context.Context, query string, params SearchParams) (*SearchResult, error) {
	search := searchParams{Limit: params.Limit}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		search.Cursor = cursor
	}

	rows, next, err := s.repo.Search(ctx, strings.TrimSpace(query), search)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search products")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &SearchResult{Items: rows, NextCursor: cursor}, nil
}

func (s *service) Sizes(ctx context.Context, productID uuid.UUID) ([]SizePrice, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	prices, err := s.repo.SizeLowestPrices(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load size prices")
	}
	sort.Slice(prices, func(i, j int) bool {
		return pricing.CompareSizes(prices[i].Size, prices[j].Size) < 0
	})
	return prices, nil
}
