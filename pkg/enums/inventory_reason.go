package enums

import "fmt"

// InventoryChangeReason maps to the inventory_change_reason_enum enum in Postgres.
type InventoryChangeReason string

const (
	InventoryChangeReasonPurchase   InventoryChangeReason = "PURCHASE"
	InventoryChangeReasonSale       InventoryChangeReason = "SALE"
	InventoryChangeReasonAdjustment InventoryChangeReason = "ADJUSTMENT"
)

var validInventoryChangeReasons = []InventoryChangeReason{
	InventoryChangeReasonPurchase,
	InventoryChangeReasonSale,
	InventoryChangeReasonAdjustment,
}

// IsValid reports whether the value matches the canonical reason enum.
func (r InventoryChangeReason) IsValid() bool {
	for _, candidate := range validInventoryChangeReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseInventoryChangeReason converts raw input into InventoryChangeReason.
func ParseInventoryChangeReason(value string) (InventoryChangeReason, error) {
	for _, candidate := range validInventoryChangeReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid inventory change reason %q", value)
}
