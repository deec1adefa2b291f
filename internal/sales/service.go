package sales

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jsivak/soleplug-backend/internal/listings"
	dbpkg "github.com/jsivak/soleplug-backend/pkg/db"
	"github.com/jsivak/soleplug-backend/pkg/db/models"
	"github.com/jsivak/soleplug-backend/pkg/enums"
	pkgerrors "github.com/jsivak/soleplug-backend/pkg/errors"
	"github.com/jsivak/soleplug-backend/pkg/logger"
	"github.com/jsivak/soleplug-backend/pkg/metrics"
	"github.com/jsivak/soleplug-backend/pkg/outbox"
	"github.com/jsivak/soleplug-backend/pkg/outbox/payloads"
	"github.com/jsivak/soleplug-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service owns the sale lifecycle: listing conversion, status transitions,
// and the audit/history reads.
type Service interface {
	ConvertListingToSale(ctx context.Context, params ConvertParams) (*models.Sale, error)
	Transition(ctx context.Context, params TransitionParams) (*models.Sale, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	History(ctx context.Context, saleID uuid.UUID) ([]models.SaleStatusHistory, error)
	ListMine(ctx context.Context, userID uuid.UUID, params ListParams) (*ListResult, error)
	ListAll(ctx context.Context, params ListParams) (*ListResult, error)
}

type service struct {
	repo     Repository
	listings listings.Repository
	tx       txRunner
	outbox   outboxPublisher
	metrics  *metrics.SaleMetrics
	logg     *logger.Logger
}

// NewService builds a sale service with the required dependencies. Metrics
// and logger are optional.
func NewService(repo Repository, listingRepo listings.Repository, tx txRunner, publisher outboxPublisher, saleMetrics *metrics.SaleMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sales repository required")
	}
	if listingRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "listings repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if publisher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox publisher required")
	}
	return &service{
		repo:     repo,
		listings: listingRepo,
		tx:       tx,
		outbox:   publisher,
		metrics:  saleMetrics,
		logg:     logg,
	}, nil
}

// ConvertListingToSale atomically materializes a sale from a listing and
// removes the listing. The two writes share one transaction so a failed
// delete rolls back the insert instead of leaving both rows behind.
func (s *service) ConvertListingToSale(ctx context.Context, params ConvertParams) (*models.Sale, error) {
	start := time.Now()
	if params.ListingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}
	externalID := strings.TrimSpace(params.ExternalID)
	if externalID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "external id required")
	}

	listing, err := s.listings.GetByID(ctx, params.ListingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	if listing == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
	}

	sale := &models.Sale{
		ListingID:  listing.ID,
		UserID:     listing.UserID,
		ProductID:  listing.ProductID,
		Name:       listing.Name,
		Size:       listing.Size,
		Price:      listing.Price,
		Payout:     listing.Payout,
		SKU:        listing.SKU,
		ImageURL:   listing.ImageURL,
		Status:     enums.SaleStatusAccepted,
		ExternalID: &externalID,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		listingRepo := s.listings.WithTx(tx)

		if err := repo.Create(ctx, sale); err != nil {
			return err
		}
		deleted, err := listingRepo.Delete(ctx, listing.ID)
		if err != nil {
			return err
		}
		if !deleted {
			s.logConversionFailure(ctx, listing.ID, sale.ID, externalID, "listing vanished during conversion")
			return pkgerrors.New(pkgerrors.CodeConflict, "listing no longer exists")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSaleAccepted,
			AggregateType: enums.AggregateSale,
			AggregateID:   sale.ID,
			Actor:         buildActor(params.Actor),
			Version:       1,
			Data: payloads.SaleAcceptedEvent{
				SaleID:      sale.ID,
				ListingID:   listing.ID,
				SellerID:    listing.UserID,
				ProductName: listing.Name,
				Size:        listing.Size,
				SalePrice:   listing.Price,
				Payout:      listing.Payout,
				ExternalID:  externalID,
			},
		})
	})
	if err != nil {
		s.metrics.IncConversion("failed")
		if appErr := pkgerrors.As(err); appErr != nil {
			return nil, appErr
		}
		if dbpkg.IsUniqueViolation(err, "ux_user_sales_listing") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "listing already converted")
		}
		s.logConversionFailure(ctx, listing.ID, sale.ID, externalID, err.Error())
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "convert listing")
	}

	s.metrics.IncConversion("success")
	s.metrics.ObserveDuration("convert", time.Since(start))
	return sale, nil
}

// Transition applies an admin's status/externalId/notes update. When nothing
// actually changes the call is a no-op and no history is written. Status and
// history are committed together; a failed write leaves the sale untouched.
func (s *service) Transition(ctx context.Context, params TransitionParams) (*models.Sale, error) {
	if params.SaleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale id required")
	}
	if params.NewStatus != nil && !params.NewStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown sale status")
	}

	sale, err := s.repo.GetByID(ctx, params.SaleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
	}
	if sale == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
	}

	oldStatus := sale.Status
	statusChanged := params.NewStatus != nil && *params.NewStatus != sale.Status
	externalChanged := params.ExternalID != nil && !equalStringPtr(params.ExternalID, sale.ExternalID)
	notes := ""
	if params.Notes != nil {
		notes = strings.TrimSpace(*params.Notes)
	}
	notesChanged := notes != "" && !equalStringPtr(&notes, sale.StatusNotes)

	if !statusChanged && !externalChanged && !notesChanged {
		return sale, nil
	}

	updates := map[string]any{}
	if statusChanged {
		updates["status"] = *params.NewStatus
		sale.Status = *params.NewStatus
	}
	if externalChanged {
		updates["external_id"] = *params.ExternalID
		sale.ExternalID = params.ExternalID
	}
	if notesChanged {
		updates["status_notes"] = notes
		sale.StatusNotes = &notes
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := repo.Update(ctx, sale.ID, updates); err != nil {
			return err
		}

		if statusChanged || notesChanged {
			entry := &models.SaleStatusHistory{
				SaleID:    sale.ID,
				OldStatus: &oldStatus,
				NewStatus: sale.Status,
			}
			if notesChanged {
				entry.Notes = &notes
			}
			if err := repo.AppendHistory(ctx, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if appErr := pkgerrors.As(err); appErr != nil {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update sale")
	}

	if statusChanged {
		s.metrics.IncTransition(string(sale.Status))
		if s.logg != nil {
			logCtx := s.logg.WithSaleID(ctx, sale.ID.String())
			logCtx = s.logg.WithFields(logCtx, map[string]any{
				"old_status": string(oldStatus),
				"new_status": string(sale.Status),
				"actor_id":   params.Actor.UserID.String(),
			})
			s.logg.Info(logCtx, "sale status updated")
		}
	}
	return sale, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale id required")
	}
	sale, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
	}
	if sale == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
	}
	return sale, nil
}

func (s *service) History(ctx context.Context, saleID uuid.UUID) ([]models.SaleStatusHistory, error) {
	if saleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale id required")
	}
	rows, err := s.repo.HistoryBySale(ctx, saleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale history")
	}
	return rows, nil
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales")
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales")
	}
	return buildListResult(rows, next), nil
}

func (s *service) logConversionFailure(ctx context.Context, listingID, saleID uuid.UUID, externalID, reason string) {
	if s.logg == nil {
		return
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"listing_id":  listingID.String(),
		"sale_id":     saleID.String(),
		"external_id": externalID,
	})
	s.logg.Warn(logCtx, "listing conversion failed: "+reason)
}

func buildActor(actor Actor) *outbox.ActorRef {
	if actor.UserID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{UserID: actor.UserID, Role: string(actor.Role)}
}

func buildListQuery(params ListParams) (listQueryParams, error) {
	if params.Status != nil && !params.Status.IsValid() {
		return listQueryParams{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown sale status")
	}
	query := listQueryParams{Limit: params.Limit, Status: params.Status}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return listQueryParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}
	return query, nil
}

func buildListResult(rows []models.Sale, next *pagination.Cursor) *ListResult {
	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, NextCursor: cursor}
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
