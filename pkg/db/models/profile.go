package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile carries the seller contact information managed by the identity
// provider. This service only reads it (admin listing views, notifications).
type Profile struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Email     string    `gorm:"column:email;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
