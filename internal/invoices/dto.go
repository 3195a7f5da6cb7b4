package invoices

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/billfoldhq/billfold-backend/pkg/db/models"
	"github.com/billfoldhq/billfold-backend/pkg/enums"
	"github.com/billfoldhq/billfold-backend/pkg/pagination"
)

type ListFilters struct {
	Status     *enums.InvoiceStatus
	Type       *enums.InvoiceType
	CategoryID *uuid.UUID
	VendorID   *uuid.UUID
	Search     string
}

type ListQuery struct {
	OrgID      uuid.UUID
	Pagination pagination.Params
	Filters    ListFilters
}

type ListResult struct {
	Invoices   []models.Invoice `json:"invoices"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

type LineItemInput struct {
	Description string           `json:"description" validate:"required"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	TotalPrice  decimal.Decimal  `json:"total_price"`
	TaxRate     *decimal.Decimal `json:"tax_rate,omitempty"`
	TaxAmount   *decimal.Decimal `json:"tax_amount,omitempty"`
	Discount    *decimal.Decimal `json:"discount,omitempty"`
	SKU         *string          `json:"sku,omitempty"`
}

type CreateInvoiceInput struct {
	InvoiceNumber *string           `json:"invoice_number,omitempty"`
	VendorName    string            `json:"vendor_name" validate:"required"`
	IssueDate     *time.Time        `json:"issue_date,omitempty"`
	DueDate       *time.Time        `json:"due_date,omitempty"`
	Amount        decimal.Decimal   `json:"amount"`
	Currency      enums.Currency    `json:"currency,omitempty"`
	Type          enums.InvoiceType `json:"type,omitempty"`
	Notes         *string           `json:"notes,omitempty"`
	LineItems     []LineItemInput   `json:"line_items,omitempty"`
}

type UpdateInvoiceInput struct {
	InvoiceNumber *string            `json:"invoice_number,omitempty"`
	VendorName    *string            `json:"vendor_name,omitempty"`
	IssueDate     *time.Time         `json:"issue_date,omitempty"`
	DueDate       *time.Time         `json:"due_date,omitempty"`
	Amount        *decimal.Decimal   `json:"amount,omitempty"`
	Currency      *enums.Currency    `json:"currency,omitempty"`
	Type          *enums.InvoiceType `json:"type,omitempty"`
	Notes         *string            `json:"notes,omitempty"`
}

type CategorizeInput struct {
	CategoryID    *uuid.UUID `json:"category_id,omitempty"`
	IsNewCategory bool       `json:"is_new_category,omitempty"`
	CategoryName  string     `json:"category_name,omitempty"`
}

type AssignVendorInput struct {
	VendorID    *uuid.UUID `json:"vendor_id,omitempty"`
	IsNewVendor bool       `json:"is_new_vendor,omitempty"`
	VendorName  string     `json:"vendor_name,omitempty"`
}
