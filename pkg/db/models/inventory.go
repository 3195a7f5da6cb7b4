package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/billfoldhq/billfold-backend/pkg/enums"
)

// InventoryItem tracks a product's on-hand quantity. Quantity never goes
// negative; writers clamp at zero.
type InventoryItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrgID     uuid.UUID `gorm:"column:org_id;type:uuid;not null;index"`
	Name      string    `gorm:"column:name;not null"`
	SKU       *string   `gorm:"column:sku;index"`
	Quantity  int       `gorm:"column:quantity;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// InventoryHistory is the append-only audit trail. Every quantity change
// writes exactly one row.
type InventoryHistory struct {
	ID          uuid.UUID                   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ItemID      uuid.UUID                   `gorm:"column:item_id;type:uuid;not null;index"`
	PreviousQty int                         `gorm:"column:previous_qty;not null"`
	NewQty      int                         `gorm:"column:new_qty;not null"`
	Reason      enums.InventoryChangeReason `gorm:"column:reason;type:inventory_change_reason_enum;not null"`
	InvoiceID   *uuid.UUID                  `gorm:"column:invoice_id;type:uuid"`
	CreatedAt   time.Time                   `gorm:"column:created_at;autoCreateTime"`
}
