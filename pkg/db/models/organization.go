package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization is the tenant boundary. Identity and membership live in the
// external identity provider; we only keep the profile needed locally (the
// classifier needs the organization's display name).
type Organization struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	LegalName *string   `gorm:"column:legal_name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
