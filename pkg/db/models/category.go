package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is an org-scoped lookup used to bucket invoices for reporting.
type Category struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrgID     uuid.UUID `gorm:"column:org_id;type:uuid;not null;uniqueIndex:categories_org_name_key"`
	Name      string    `gorm:"column:name;not null;uniqueIndex:categories_org_name_key"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
