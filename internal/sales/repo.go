package sales

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jsivak/soleplug-backend/pkg/db/models"
	"github.com/jsivak/soleplug-backend/pkg/enums"
	"github.com/jsivak/soleplug-backend/pkg/pagination"
)

// Repository exposes persistence helpers for sales and their audit trail.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, sale *models.Sale) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	AppendHistory(ctx context.Context, entry *models.SaleStatusHistory) error
	HistoryBySale(ctx context.Context, saleID uuid.UUID) ([]models.SaleStatusHistory, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params listQueryParams) ([]models.Sale, *pagination.Cursor, error)
	ListAll(ctx context.Context, params listQueryParams) ([]models.Sale, *pagination.Cursor, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a sales repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listQueryParams struct {
	Limit  int
	Cursor *pagination.Cursor
	Status *enums.SaleStatus
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, sale *models.Sale) error {
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(sale).Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	var row models.Sale
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repositoryImpl) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repositoryImpl) AppendHistory(ctx context.Context, entry *models.SaleStatusHistory) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repositoryImpl) HistoryBySale(ctx context.Context, saleID uuid.UUID) ([]models.SaleStatusHistory, error) {
	var rows []models.SaleStatusHistory
	err := r.db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID, params listQueryParams) ([]models.Sale, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).Model(&models.Sale{}).Where("user_id = ?", userID)
	return r.list(query, params)
}

func (r *repositoryImpl) ListAll(ctx context.Context, params listQueryParams) ([]models.Sale, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).Model(&models.Sale{}).Preload("Profile")
	return r.list(query, params)
}

func (r *repositoryImpl) list(query *gorm.DB, params listQueryParams) ([]models.Sale, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.Sale
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		rows = rows[:normalized]
		last := rows[normalized-1]
		return rows, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return rows, nil, nil
}
