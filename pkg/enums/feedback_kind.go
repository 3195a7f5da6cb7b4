package enums

import "fmt"

// FeedbackKind identifies which extracted field a user correction applies to.
type FeedbackKind string

const (
	FeedbackKindCategory FeedbackKind = "CATEGORY"
	FeedbackKindVendor   FeedbackKind = "VENDOR"
	FeedbackKindField    FeedbackKind = "FIELD"
)

var validFeedbackKinds = []FeedbackKind{
	FeedbackKindCategory,
	FeedbackKindVendor,
	FeedbackKindField,
}

// IsValid reports whether the value matches the canonical feedback kind enum.
func (k FeedbackKind) IsValid() bool {
	for _, candidate := range validFeedbackKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseFeedbackKind converts raw input into FeedbackKind.
func ParseFeedbackKind(value string) (FeedbackKind, error) {
	for _, candidate := range validFeedbackKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid feedback kind %q", value)
}
