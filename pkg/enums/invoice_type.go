package enums

import "fmt"

// InvoiceType states whether the organization pays (purchase) or gets paid (payment).
type InvoiceType string

const (
	InvoiceTypePurchase InvoiceType = "PURCHASE"
	InvoiceTypePayment  InvoiceType = "PAYMENT"
)

var validInvoiceTypes = []InvoiceType{
	InvoiceTypePurchase,
	InvoiceTypePayment,
}

// String implements fmt.Stringer.
func (t InvoiceType) String() string {
	return string(t)
}

// IsValid reports whether the value matches the canonical invoice type enum.
func (t InvoiceType) IsValid() bool {
	for _, candidate := range validInvoiceTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseInvoiceType converts raw input into InvoiceType.
func ParseInvoiceType(value string) (InvoiceType, error) {
	for _, candidate := range validInvoiceTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid invoice type %q", value)
}
