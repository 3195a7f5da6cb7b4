package models

import (
	"time"

	"github.com/google/uuid"
)

// Vendor is an org-scoped counterparty referenced by invoices.
type Vendor struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrgID     uuid.UUID `gorm:"column:org_id;type:uuid;not null;uniqueIndex:vendors_org_name_key"`
	Name      string    `gorm:"column:name;not null;uniqueIndex:vendors_org_name_key"`
	Email     *string   `gorm:"column:email"`
	Notes     *string   `gorm:"column:notes"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
