package organizations

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/billfoldhq/billfold-backend/pkg/db/models"
	"github.com/billfoldhq/billfold-backend/pkg/errors"
)

// SyncInput mirrors the identity provider's organization webhook payload.
type SyncInput struct {
	ID        uuid.UUID `json:"id" validate:"required"`
	Name      string    `json:"name" validate:"required"`
	LegalName *string   `json:"legal_name,omitempty"`
}

type Service interface {
	Sync(ctx context.Context, input SyncInput) (*models.Organization, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Organization, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, errors.New(errors.CodeInternal, "organizations repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Sync(ctx context.Context, input SyncInput) (*models.Organization, error) {
	if input.ID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "organization id is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.New(errors.CodeValidation, "organization name is required")
	}

	org := &models.Organization{
		ID:        input.ID,
		Name:      name,
		LegalName: input.LegalName,
	}
	if err := s.repo.Upsert(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	org, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, errors.New(errors.CodeNotFound, "organization not found")
	}
	return org, nil
}
