package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem belongs to exactly one invoice.
type LineItem struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvoiceID   uuid.UUID        `gorm:"column:invoice_id;type:uuid;not null;index"`
	Description string           `gorm:"column:description;not null"`
	Quantity    decimal.Decimal  `gorm:"column:quantity;type:numeric(14,3);not null;default:1"`
	UnitPrice   decimal.Decimal  `gorm:"column:unit_price;type:numeric(14,2);not null;default:0"`
	TotalPrice  decimal.Decimal  `gorm:"column:total_price;type:numeric(14,2);not null;default:0"`
	TaxRate     *decimal.Decimal `gorm:"column:tax_rate;type:numeric(6,3)"`
	TaxAmount   *decimal.Decimal `gorm:"column:tax_amount;type:numeric(14,2)"`
	Discount    *decimal.Decimal `gorm:"column:discount;type:numeric(14,2)"`
	SKU         *string          `gorm:"column:sku"`

	Attributes []LineItemAttribute `gorm:"foreignKey:LineItemID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// LineItemAttribute is an open schema-less name/value property on a line item
// (e.g. color=red). The OCR engines emit arbitrary pairs here.
type LineItemAttribute struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	LineItemID uuid.UUID `gorm:"column:line_item_id;type:uuid;not null;index"`
	Name       string    `gorm:"column:name;not null"`
	Value      string    `gorm:"column:value;not null"`
}
