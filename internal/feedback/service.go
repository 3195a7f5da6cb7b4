package feedback

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/billfoldhq/billfold-backend/pkg/db"
	"github.com/billfoldhq/billfold-backend/pkg/db/models"
	"github.com/billfoldhq/billfold-backend/pkg/enums"
	"github.com/billfoldhq/billfold-backend/pkg/errors"
)

type RecordInput struct {
	VendorName string             `json:"vendor_name" validate:"required"`
	Kind       enums.FeedbackKind `json:"kind" validate:"required"`
	FieldName  *string            `json:"field_name,omitempty"`
	Value      string             `json:"value" validate:"required"`
}

// Suggestion is a ranked correction candidate for a vendor.
type Suggestion struct {
	Kind      enums.FeedbackKind `json:"kind"`
	FieldName *string            `json:"field_name,omitempty"`
	Value     string             `json:"value"`
	Count     int                `json:"count"`
}

type Service interface {
	Record(ctx context.Context, orgID uuid.UUID, input RecordInput) (*models.AIFeedback, error)
	Suggestions(ctx context.Context, orgID uuid.UUID, vendorName string) ([]Suggestion, error)
}

type service struct {
	repo   Repository
	client *db.Client
}

func NewService(repo Repository, client *db.Client) (Service, error) {
	if repo == nil {
		return nil, errors.New(errors.CodeInternal, "feedback repository required")
	}
	if client == nil {
		return nil, errors.New(errors.CodeInternal, "db client required")
	}
	return &service{repo: repo, client: client}, nil
}

// Record stores a correction, bumping the frequency counter when the same
// correction was seen before.
func (s *service) Record(ctx context.Context, orgID uuid.UUID, input RecordInput) (*models.AIFeedback, error) {
	vendorName := strings.TrimSpace(input.VendorName)
	value := strings.TrimSpace(input.Value)

	if orgID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "org id is required")
	}
	if vendorName == "" {
		return nil, errors.New(errors.CodeValidation, "vendor_name is required")
	}
	if value == "" {
		return nil, errors.New(errors.CodeValidation, "value is required")
	}
	if !input.Kind.IsValid() {
		return nil, errors.New(errors.CodeValidation, "invalid feedback kind")
	}
	if input.Kind == enums.FeedbackKindField && (input.FieldName == nil || strings.TrimSpace(*input.FieldName) == "") {
		return nil, errors.New(errors.CodeValidation, "field_name is required for field feedback")
	}

	var entry *models.AIFeedback
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.Find(ctx, orgID, vendorName, input.Kind, input.FieldName, value)
		if err != nil {
			return err
		}
		if existing != nil {
			existing.Count++
			if err := repo.Update(ctx, existing); err != nil {
				return err
			}
			entry = existing
			return nil
		}

		entry = &models.AIFeedback{
			OrgID:      orgID,
			VendorName: vendorName,
			Kind:       input.Kind,
			FieldName:  input.FieldName,
			Value:      value,
			Count:      1,
		}
		return repo.Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Suggestions returns the recorded corrections for a vendor, most frequent
// first, so callers can pre-fill the likeliest values.
func (s *service) Suggestions(ctx context.Context, orgID uuid.UUID, vendorName string) ([]Suggestion, error) {
	vendorName = strings.TrimSpace(vendorName)
	if vendorName == "" {
		return nil, errors.New(errors.CodeValidation, "vendor_name is required")
	}

	entries, err := s.repo.ListByVendor(ctx, orgID, vendorName)
	if err != nil {
		return nil, err
	}

	suggestions := make([]Suggestion, 0, len(entries))
	for _, entry := range entries {
		suggestions = append(suggestions, Suggestion{
			Kind:      entry.Kind,
			FieldName: entry.FieldName,
			Value:     entry.Value,
			Count:     entry.Count,
		})
	}
	return suggestions, nil
}
