package vendors

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/billfoldhq/billfold-backend/pkg/db"
	"github.com/billfoldhq/billfold-backend/pkg/db/models"
	"github.com/billfoldhq/billfold-backend/pkg/errors"
)

// InvoiceCounter reports how many invoices reference a vendor. Satisfied by
// the invoices repository.
type InvoiceCounter interface {
	CountByVendor(ctx context.Context, orgID, vendorID uuid.UUID) (int64, error)
}

type UpdateVendorInput struct {
	Name  *string
	Email *string
	Notes *string
}

type Service interface {
	List(ctx context.Context, orgID uuid.UUID) ([]models.Vendor, error)
	Create(ctx context.Context, orgID uuid.UUID, name string, email, notes *string) (*models.Vendor, error)
	Update(ctx context.Context, orgID, id uuid.UUID, input UpdateVendorInput) (*models.Vendor, error)
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}

type service struct {
	repo     Repository
	invoices InvoiceCounter
}

func NewService(repo Repository, invoices InvoiceCounter) (Service, error) {
	if repo == nil {
		return nil, errors.New(errors.CodeInternal, "vendors repository required")
	}
	if invoices == nil {
		return nil, errors.New(errors.CodeInternal, "invoice counter required")
	}
	return &service{repo: repo, invoices: invoices}, nil
}

func (s *service) List(ctx context.Context, orgID uuid.UUID) ([]models.Vendor, error) {
	if orgID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "org id is required")
	}
	return s.repo.List(ctx, orgID)
}

func (s *service) Create(ctx context.Context, orgID uuid.UUID, name string, email, notes *string) (*models.Vendor, error) {
	name = strings.TrimSpace(name)
	if orgID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "org id is required")
	}
	if name == "" {
		return nil, errors.New(errors.CodeValidation, "name is required")
	}

	vendor := &models.Vendor{OrgID: orgID, Name: name, Email: email, Notes: notes}
	if err := s.repo.Create(ctx, vendor); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, errors.New(errors.CodeConflict, "vendor already exists")
		}
		return nil, err
	}
	return vendor, nil
}

func (s *service) Update(ctx context.Context, orgID, id uuid.UUID, input UpdateVendorInput) (*models.Vendor, error) {
	vendor, err := s.repo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, errors.New(errors.CodeNotFound, "vendor not found")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, errors.New(errors.CodeValidation, "name cannot be empty")
		}
		vendor.Name = name
	}
	if input.Email != nil {
		vendor.Email = input.Email
	}
	if input.Notes != nil {
		vendor.Notes = input.Notes
	}

	if err := s.repo.Update(ctx, vendor); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, errors.New(errors.CodeConflict, "vendor already exists")
		}
		return nil, err
	}
	return vendor, nil
}

func (s *service) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	vendor, err := s.repo.GetByID(ctx, orgID, id)
	if err != nil {
		return err
	}
	if vendor == nil {
		return errors.New(errors.CodeNotFound, "vendor not found")
	}

	count, err := s.invoices.CountByVendor(ctx, orgID, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.New(errors.CodeStateConflict, "vendor is referenced by invoices")
	}

	return s.repo.Delete(ctx, orgID, id)
}

// Resolve returns the vendor named by name inside an existing transaction,
// creating it when missing.
func Resolve(ctx context.Context, tx *gorm.DB, repo Repository, orgID uuid.UUID, name string) (*models.Vendor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New(errors.CodeValidation, "vendor name is required")
	}

	scoped := repo.WithTx(tx)
	existing, err := scoped.GetByName(ctx, orgID, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	vendor := &models.Vendor{OrgID: orgID, Name: name}
	if err := scoped.Create(ctx, vendor); err != nil {
		if db.IsUniqueViolation(err) {
			return scoped.GetByName(ctx, orgID, name)
		}
		return nil, err
	}
	return vendor, nil
}
