package ocr

import (
	"github.com/shopspring/decimal"
)

// ExtractionRequest is the JSON contract handed to every engine. FileURL is a
// short-lived signed download link to the stored document.
type ExtractionRequest struct {
	FileURL            string       `json:"file_url"`
	Fields             []string     `json:"fields"`
	Organization       Organization `json:"organization"`
	CustomInstructions string       `json:"custom_instructions,omitempty"`
}

type Organization struct {
	Name      string `json:"name"`
	LegalName string `json:"legal_name,omitempty"`
}

// DefaultFields lists what engines are asked to pull from a document.
var DefaultFields = []string{
	"invoice_number",
	"vendor_name",
	"issue_date",
	"due_date",
	"amount",
	"currency",
	"line_items",
	"tax_amount",
	"notes",
	"language",
}

// ExtractionResult is the normalized engine output. Dates are ISO 8601
// (YYYY-MM-DD) strings; missing fields stay empty.
type ExtractionResult struct {
	InvoiceNumber string           `json:"invoice_number,omitempty"`
	VendorName    string           `json:"vendor_name,omitempty"`
	IssueDate     string           `json:"issue_date,omitempty"`
	DueDate       string           `json:"due_date,omitempty"`
	Amount        decimal.Decimal  `json:"amount"`
	Currency      string           `json:"currency,omitempty"`
	LineItems     []LineItem       `json:"line_items,omitempty"`
	TaxAmount     *decimal.Decimal `json:"tax_amount,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	Language      string           `json:"language,omitempty"`
	InvoiceType   string           `json:"invoice_type,omitempty"`
	Confidence    float64          `json:"confidence,omitempty"`
}

type LineItem struct {
	Description string            `json:"description"`
	Quantity    decimal.Decimal   `json:"quantity"`
	UnitPrice   decimal.Decimal   `json:"unit_price"`
	TotalPrice  decimal.Decimal   `json:"total_price"`
	TaxRate     *decimal.Decimal  `json:"tax_rate,omitempty"`
	TaxAmount   *decimal.Decimal  `json:"tax_amount,omitempty"`
	Discount    *decimal.Decimal  `json:"discount,omitempty"`
	SKU         *string           `json:"sku,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}
