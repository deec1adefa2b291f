package notifier

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jsivak/soleplug-backend/pkg/db/models"
)

// Repository resolves seller contact details for outgoing notifications.
type Repository interface {
	SellerEmail(ctx context.Context, userID uuid.UUID) (string, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

// SellerEmail returns the profile email for a seller, or "" when no profile
// row exists.
func (r *repositoryImpl) SellerEmail(ctx context.Context, userID uuid.UUID) (string, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return profile.Email, nil
}
