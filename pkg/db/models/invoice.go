package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/billfoldhq/billfold-backend/pkg/enums"
)

// Invoice is the central record produced by an upload or manual entry.
// ExtractedData keeps the full raw OCR payload for audit and debugging.
type Invoice struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrgID         uuid.UUID           `gorm:"column:org_id;type:uuid;not null;index"`
	InvoiceNumber *string             `gorm:"column:invoice_number"`
	VendorName    string              `gorm:"column:vendor_name;not null;default:''"`
	VendorID      *uuid.UUID          `gorm:"column:vendor_id;type:uuid"`
	CategoryID    *uuid.UUID          `gorm:"column:category_id;type:uuid"`
	IssueDate     *time.Time          `gorm:"column:issue_date"`
	DueDate       *time.Time          `gorm:"column:due_date"`
	Amount        decimal.Decimal     `gorm:"column:amount;type:numeric(14,2);not null;default:0"`
	Currency      enums.Currency      `gorm:"column:currency;type:currency_enum;not null;default:'USD'"`
	Status        enums.InvoiceStatus `gorm:"column:status;type:invoice_status_enum;not null;default:'PENDING'"`
	Type          enums.InvoiceType   `gorm:"column:type;type:invoice_type_enum;not null;default:'PURCHASE'"`
	Confidence    *float64            `gorm:"column:confidence;type:numeric(4,3)"`
	Notes         *string             `gorm:"column:notes"`

	// Upload/extraction bookkeeping.
	StorageObject    *string          `gorm:"column:storage_object"`
	OriginalFilename *string          `gorm:"column:original_filename"`
	ContentType      *string          `gorm:"column:content_type"`
	FileSizeBytes    *int64           `gorm:"column:file_size_bytes"`
	OCREngine        *enums.OCREngine `gorm:"column:ocr_engine"`
	ProcessedAt      *time.Time       `gorm:"column:processed_at"`
	ExtractedData    json.RawMessage  `gorm:"column:extracted_data;type:jsonb"`

	LineItems []LineItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
