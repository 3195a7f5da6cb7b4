package categories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/billfoldhq/billfold-backend/pkg/db"
	"github.com/billfoldhq/billfold-backend/pkg/db/models"
	"github.com/billfoldhq/billfold-backend/pkg/errors"
)

// InvoiceCounter reports how many invoices reference a category. Satisfied by
// the invoices repository.
type InvoiceCounter interface {
	CountByCategory(ctx context.Context, orgID, categoryID uuid.UUID) (int64, error)
}

type Service interface {
	List(ctx context.Context, orgID uuid.UUID) ([]models.Category, error)
	Create(ctx context.Context, orgID uuid.UUID, name string) (*models.Category, error)
	Rename(ctx context.Context, orgID, id uuid.UUID, name string) (*models.Category, error)
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}

type service struct {
	repo     Repository
	invoices InvoiceCounter
}

func NewService(repo Repository, invoices InvoiceCounter) (Service, error) {
	if repo == nil {
		return nil, errors.New(errors.CodeInternal, "categories repository required")
	}
	if invoices == nil {
		return nil, errors.New(errors.CodeInternal, "invoice counter required")
	}
	return &service{repo: repo, invoices: invoices}, nil
}

func (s *service) List(ctx context.Context, orgID uuid.UUID) ([]models.Category, error) {
	if orgID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "org id is required")
	}
	return s.repo.List(ctx, orgID)
}

func (s *service) Create(ctx context.Context, orgID uuid.UUID, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if orgID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "org id is required")
	}
	if name == "" {
		return nil, errors.New(errors.CodeValidation, "name is required")
	}

	category := &models.Category{OrgID: orgID, Name: name}
	if err := s.repo.Create(ctx, category); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, errors.New(errors.CodeConflict, "category already exists")
		}
		return nil, err
	}
	return category, nil
}

func (s *service) Rename(ctx context.Context, orgID, id uuid.UUID, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New(errors.CodeValidation, "name is required")
	}

	category, err := s.repo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, errors.New(errors.CodeNotFound, "category not found")
	}

	category.Name = name
	if err := s.repo.Update(ctx, category); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, errors.New(errors.CodeConflict, "category already exists")
		}
		return nil, err
	}
	return category, nil
}

func (s *service) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	category, err := s.repo.GetByID(ctx, orgID, id)
	if err != nil {
		return err
	}
	if category == nil {
		return errors.New(errors.CodeNotFound, "category not found")
	}

	count, err := s.invoices.CountByCategory(ctx, orgID, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.New(errors.CodeStateConflict, "category is referenced by invoices")
	}

	return s.repo.Delete(ctx, orgID, id)
}

// Resolve returns the category named by name inside an existing transaction,
// creating it when missing. Upload categorization uses this.
func Resolve(ctx context.Context, tx *gorm.DB, repo Repository, orgID uuid.UUID, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New(errors.CodeValidation, "category name is required")
	}

	scoped := repo.WithTx(tx)
	existing, err := scoped.GetByName(ctx, orgID, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	category := &models.Category{OrgID: orgID, Name: name}
	if err := scoped.Create(ctx, category); err != nil {
		if db.IsUniqueViolation(err) {
			return scoped.GetByName(ctx, orgID, name)
		}
		return nil, err
	}
	return category, nil
}
