package listings

import (
	"context"

	"github.com/google/uuid"

	"github.com/jsivak/soleplug-backend/internal/fees"
	"github.com/jsivak/soleplug-backend/internal/pricing"
	"github.com/jsivak/soleplug-backend/pkg/db/models"
	pkgerrors "github.com/jsivak/soleplug-backend/pkg/errors"
	"github.com/jsivak/soleplug-backend/pkg/pagination"
)

// ProductCatalog is the product lookup the listing flow depends on.
type ProductCatalog interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service defines the seller/admin listing operations.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*models.Listing, error)
	UpdatePrice(ctx context.Context, params UpdatePriceParams) (*models.Listing, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	Delete(ctx context.Context, id, requesterID uuid.UUID, admin bool) error
	ListMine(ctx context.Context, userID uuid.UUID, params ListParams) (*ListResult, error)
	ListAll(ctx context.Context, params ListParams) (*ListResult, error)
}

type service struct {
	repo    Repository
	catalog ProductCatalog
	fees    fees.Service
}

// NewService wires listing dependencies.
func NewService(repo Repository, catalog ProductCatalog, feeSvc fees.Service) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "listings repository required")
	}
	if catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "product catalog required")
	}
	if feeSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "fees service required")
	}
	return &service{repo: repo, catalog: catalog, fees: feeSvc}, nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*models.Listing, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if params.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	size := pricing.NormalizeSize(params.Size)
	if size == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "size required")
	}
	if !params.Price.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}

	product, err := s.catalog.GetProduct(ctx, params.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	payout, err := s.fees.CalculatePayout(ctx, params.Price)
	if err != nil {
		return nil, err
	}

	listing := &models.Listing{
		UserID:        params.UserID,
		ProductID:     product.ID,
		Name:          product.Name,
		Size:          size,
		Price:         params.Price,
		Payout:        payout,
		OriginalPrice: params.OriginalPrice,
		SKU:           product.SKU,
		ImageURL:      product.ImageURL,
	}
	if err := s.repo.Create(ctx, listing); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create listing")
	}
	return listing, nil
}

func (s *service) UpdatePrice(ctx context.Context, params UpdatePriceParams) (*models.Listing, error) {
	if params.ListingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}
	if !params.Price.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}

	listing, err := s.repo.GetByID(ctx, params.ListingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	if listing == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
	}
	if listing.UserID != params.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "listing belongs to another seller")
	}

	payout, err := s.fees.CalculatePayout(ctx, params.Price)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{
		"price":  params.Price,
		"payout": payout,
	}
	if err := s.repo.Update(ctx, listing.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update listing")
	}
	listing.Price = params.Price
	listing.Payout = payout
	return listing, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}
	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	if listing == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
	}
	return listing, nil
}

func (s *service) Delete(ctx context.Context, id, requesterID uuid.UUID, admin bool) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}

	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	if listing == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
	}
	if !admin && listing.UserID != requesterID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "listing belongs to another seller")
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete listing")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
	}
	return nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, params ListParams) (*ListResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	query, err := buildListQuery(params)
	if err != nil {
		return nil, err
	}
	rows, next, err := s.repo.ListByUser(ctx, userID, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list listings")
	}
	return buildListResult(rows, next), nil
}

func (s *service) ListAll(ctx context.Context, params ListParams) (*ListResult, error) {
	query, err := buildListQuery(params)
	if err != nil {
		return nil, err
	}
	rows, next, err := s.repo.ListAll(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list listings")
	}
	return buildListResult(rows, next), nil
}

func buildListQuery(params ListParams) (listQueryParams, error) {
	query := listQueryParams{Limit: params.Limit}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return listQueryParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}
	return query, nil
}

func buildListResult(rows []models.Listing, next *pagination.Cursor) *ListResult {
	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, NextCursor: cursor}
}
