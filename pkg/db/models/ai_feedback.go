package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/billfoldhq/billfold-backend/pkg/enums"
)

// AIFeedback records a user correction to an extracted field, keyed by vendor
// name. Count is a plain frequency; suggestions re-rank by it.
type AIFeedback struct {
	ID         uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrgID      uuid.UUID          `gorm:"column:org_id;type:uuid;not null;index:ai_feedback_org_vendor_idx"`
	VendorName string             `gorm:"column:vendor_name;not null;index:ai_feedback_org_vendor_idx"`
	Kind       enums.FeedbackKind `gorm:"column:kind;type:feedback_kind_enum;not null"`
	FieldName  *string            `gorm:"column:field_name"`
	Value      string             `gorm:"column:value;not null"`
	Count      int                `gorm:"column:count;not null;default:1"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
