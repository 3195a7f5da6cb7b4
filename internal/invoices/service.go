package invoices

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/billfoldhq/billfold-backend/internal/categories"
	"github.com/billfoldhq/billfold-backend/internal/vendors"
	"github.com/billfoldhq/billfold-backend/pkg/db"
	"github.com/billfoldhq/billfold-backend/pkg/db/models"
	"github.com/billfoldhq/billfold-backend/pkg/enums"
	"github.com/billfoldhq/billfold-backend/pkg/errors"
	"github.com/billfoldhq/billfold-backend/pkg/logger"
)

// Service exposes invoice reads and the manual-entry write paths. Upload
// ingestion lives in the extraction package.
type Service interface {
	List(ctx context.Context, query ListQuery) (*ListResult, error)
	Get(ctx context.Context, orgID, id uuid.UUID) (*models.Invoice, error)
	Create(ctx context.Context, orgID uuid.UUID, input CreateInvoiceInput) (*models.Invoice, error)
	Update(ctx context.Context, orgID, id uuid.UUID, input UpdateInvoiceInput) (*models.Invoice, error)
	SetStatus(ctx context.Context, orgID, id uuid.UUID, status enums.InvoiceStatus) (*models.Invoice, error)
	Categorize(ctx context.Context, orgID, id uuid.UUID, input CategorizeInput) (*models.Invoice, error)
	AssignVendor(ctx context.Context, orgID, id uuid.UUID, input AssignVendorInput) (*models.Invoice, error)
	Cancel(ctx context.Context, orgID, id uuid.UUID) (*models.Invoice, error)
}

type service struct {
	repo       Repository
	categories categories.Repository
	vendors    vendors.Repository
	client     *db.Client
	logg       *logger.Logger
}

func NewService(repo Repository, catRepo categories.Repository, vendorRepo vendors.Repository, client *db.Client, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New(errors.CodeInternal, "invoices repository required")
	}
	if catRepo == nil {
		return nil, errors.New(errors.CodeInternal, "categories repository required")
	}
	if vendorRepo == nil {
		return nil, errors.New(errors.CodeInternal, "vendors repository required")
	}
	if client == nil {
		return nil, errors.New(errors.CodeInternal, "db client required")
	}
	if logg == nil {
		return nil, errors.New(errors.CodeInternal, "logger required")
	}
	return &service{
		repo:       repo,
		categories: catRepo,
		vendors:    vendorRepo,
		client:     client,
		logg:       logg,
	}, nil
}

func (s *service) List(ctx context.Context, query ListQuery) (*ListResult, error) {
	if query.OrgID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "org id is required")
	}
	if query.Filters.Status != nil && !query.Filters.Status.IsValid() {
		return nil, errors.New(errors.CodeValidation, "invalid status filter")
	}
	if query.Filters.Type != nil && !query.Filters.Type.IsValid() {
		return nil, errors.New(errors.CodeValidation, "invalid type filter")
	}
	return s.repo.List(ctx, query)
}

func (s *service) Get(ctx context.Context, orgID, id uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.repo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, errors.New(errors.CodeNotFound, "invoice not found")
	}
	return invoice, nil
}

func (s *service) Create(ctx context.Context, orgID uuid.UUID, input CreateInvoiceInput) (*models.Invoice, error) {
	if orgID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "org id is required")
	}
	if input.Amount.IsNegative() {
		return nil, errors.New(errors.CodeValidation, "amount cannot be negative")
	}

	currency := input.Currency
	if currency == "" {
		currency = enums.CurrencyUSD
	}
	if !currency.IsValid() {
		return nil, errors.New(errors.CodeValidation, "invalid currency")
	}

	invoiceType := input.Type
	if invoiceType == "" {
		invoiceType = enums.InvoiceTypePurchase
	}
	if !invoiceType.IsValid() {
		return nil, errors.New(errors.CodeValidation, "invalid invoice type")
	}

	invoice := &models.Invoice{
		OrgID:         orgID,
		InvoiceNumber: input.InvoiceNumber,
		VendorName:    input.VendorName,
		IssueDate:     input.IssueDate,
		DueDate:       input.DueDate,
		Amount:        input.Amount,
		Currency:      currency,
		Status:        enums.InvoiceStatusPending,
		Type:          invoiceType,
		Notes:         input.Notes,
		LineItems:     buildLineItems(input.LineItems),
	}

	if err := s.repo.Create(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func buildLineItems(inputs []LineItemInput) []models.LineItem {
	if len(inputs) == 0 {
		return nil
	}
	items := make([]models.LineItem, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, models.LineItem{
			Description: in.Description,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			TotalPrice:  in.TotalPrice,
			TaxRate:     in.TaxRate,
			TaxAmount:   in.TaxAmount,
			Discount:    in.Discount,
			SKU:         in.SKU,
		})
	}
	return items
}

func (s *service) Update(ctx context.Context, orgID, id uuid.UUID, input UpdateInvoiceInput) (*models.Invoice, error) {
	invoice, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	if input.InvoiceNumber != nil {
		invoice.InvoiceNumber = input.InvoiceNumber
	}
	if input.VendorName != nil {
		invoice.VendorName = *input.VendorName
	}
	if input.IssueDate != nil {
		invoice.IssueDate = input.IssueDate
	}
	if input.DueDate != nil {
		invoice.DueDate = input.DueDate
	}
	if input.Amount != nil {
		if input.Amount.IsNegative() {
			return nil, errors.New(errors.CodeValidation, "amount cannot be negative")
		}
		invoice.Amount = *input.Amount
	}
	if input.Currency != nil {
		if !input.Currency.IsValid() {
			return nil, errors.New(errors.CodeValidation, "invalid currency")
		}
		invoice.Currency = *input.Currency
	}
	if input.Type != nil {
		if !input.Type.IsValid() {
			return nil, errors.New(errors.CodeValidation, "invalid invoice type")
		}
		invoice.Type = *input.Type
	}
	if input.Notes != nil {
		invoice.Notes = input.Notes
	}

	if err := s.repo.Update(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *service) SetStatus(ctx context.Context, orgID, id uuid.UUID, status enums.InvoiceStatus) (*models.Invoice, error) {
	if !status.IsValid() {
		return nil, errors.New(errors.CodeValidation, "invalid status")
	}

	invoice, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status == enums.InvoiceStatusCancelled && status != enums.InvoiceStatusCancelled {
		return nil, errors.New(errors.CodeStateConflict, "cancelled invoices cannot change status")
	}

	invoice.Status = status
	if err := s.repo.Update(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *service) Categorize(ctx context.Context, orgID, id uuid.UUID, input CategorizeInput) (*models.Invoice, error) {
	if !input.IsNewCategory && input.CategoryID == nil {
		return nil, errors.New(errors.CodeValidation, "category_id or is_new_category is required")
	}

	var updated *models.Invoice
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		invoice, err := repo.GetByID(ctx, orgID, id)
		if err != nil {
			return err
		}
		if invoice == nil {
			return errors.New(errors.CodeNotFound, "invoice not found")
		}

		var category *models.Category
		if input.IsNewCategory {
			category, err = categories.Resolve(ctx, tx, s.categories, orgID, input.CategoryName)
			if err != nil {
				return err
			}
		} else {
			category, err = s.categories.WithTx(tx).GetByID(ctx, orgID, *input.CategoryID)
			if err != nil {
				return err
			}
			if category == nil {
				return errors.New(errors.CodeNotFound, "category not found")
			}
		}

		invoice.CategoryID = &category.ID
		if err := repo.Update(ctx, invoice); err != nil {
			return err
		}
		updated = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithInvoiceID(ctx, id.String()), "invoice categorized")
	return updated, nil
}

func (s *service) AssignVendor(ctx context.Context, orgID, id uuid.UUID, input AssignVendorInput) (*models.Invoice, error) {
	if !input.IsNewVendor && input.VendorID == nil {
		return nil, errors.New(errors.CodeValidation, "vendor_id or is_new_vendor is required")
	}

	var updated *models.Invoice
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		invoice, err := repo.GetByID(ctx, orgID, id)
		if err != nil {
			return err
		}
		if invoice == nil {
			return errors.New(errors.CodeNotFound, "invoice not found")
		}

		var vendor *models.Vendor
		if input.IsNewVendor {
			vendor, err = vendors.Resolve(ctx, tx, s.vendors, orgID, input.VendorName)
			if err != nil {
				return err
			}
		} else {
			vendor, err = s.vendors.WithTx(tx).GetByID(ctx, orgID, *input.VendorID)
			if err != nil {
				return err
			}
			if vendor == nil {
				return errors.New(errors.CodeNotFound, "vendor not found")
			}
		}

		invoice.VendorID = &vendor.ID
		invoice.VendorName = vendor.Name
		if err := repo.Update(ctx, invoice); err != nil {
			return err
		}
		updated = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithInvoiceID(ctx, id.String()), "vendor assigned to invoice")
	return updated, nil
}

// Cancel soft-deletes the invoice. Aggregation paths keep CANCELLED rows out
// of their sums but the record stays.
func (s *service) Cancel(ctx context.Context, orgID, id uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status == enums.InvoiceStatusCancelled {
		return invoice, nil
	}

	invoice.Status = enums.InvoiceStatusCancelled
	if err := s.repo.Update(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}
