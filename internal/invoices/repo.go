package invoices

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/billfoldhq/billfold-backend/pkg/db/models"
	"github.com/billfoldhq/billfold-backend/pkg/enums"
	"github.com/billfoldhq/billfold-backend/pkg/pagination"
)

// Repository manages persistence for invoices and their line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, invoice *models.Invoice) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Invoice, error)
	List(ctx context.Context, query ListQuery) (*ListResult, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Invoice, error)
	Update(ctx context.Context, invoice *models.Invoice) error
	ReplaceLineItems(ctx context.Context, invoiceID uuid.UUID, items []models.LineItem) error
	CountByCategory(ctx context.Context, orgID, categoryID uuid.UUID) (int64, error)
	CountByVendor(ctx context.Context, orgID, vendorID uuid.UUID) (int64, error)
	MarkOverdue(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *repository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Preload("LineItems.Attributes").
		Preload("LineItems").
		Where("org_id = ? AND id = ?", orgID, id).
		First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *repository) List(ctx context.Context, query ListQuery) (*ListResult, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("org_id = ?", query.OrgID)

	filter := query.Filters
	if filter.Status != nil {
		qb = qb.Where("status = ?", *filter.Status)
	}
	if filter.Type != nil {
		qb = qb.Where("type = ?", *filter.Type)
	}
	if filter.CategoryID != nil {
		qb = qb.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.VendorID != nil {
		qb = qb.Where("vendor_id = ?", *filter.VendorID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(vendor_name) LIKE ? OR LOWER(COALESCE(invoice_number, '')) LIKE ?)", pattern, pattern)
	}

	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	qb = qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer)

	var records []models.Invoice
	if err := qb.Find(&records).Error; err != nil {
		return nil, err
	}

	resultRows := records
	nextCursor := ""
	if len(records) > pageSize {
		resultRows = records[:pageSize]
		last := resultRows[len(resultRows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return &ListResult{
		Invoices:   resultRows,
		NextCursor: nextCursor,
	}, nil
}

// ListByOrg returns every invoice for the org without pagination. Report
// aggregation reads the full set.
func (r *repository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("issue_date DESC NULLS LAST, created_at DESC").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repository) Update(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).
		Omit("LineItems").
		Save(invoice).Error
}

// ReplaceLineItems swaps an invoice's line items wholesale. Reprocessing
// overwrites extracted rows rather than merging.
func (r *repository) ReplaceLineItems(ctx context.Context, invoiceID uuid.UUID, items []models.LineItem) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("invoice_id = ?", invoiceID).Delete(&models.LineItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].InvoiceID = invoiceID
	}
	return tx.Create(&items).Error
}

func (r *repository) CountByCategory(ctx context.Context, orgID, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("org_id = ? AND category_id = ?", orgID, categoryID).
		Count(&count).Error
	return count, err
}

func (r *repository) CountByVendor(ctx context.Context, orgID, vendorID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("org_id = ? AND vendor_id = ?", orgID, vendorID).
		Count(&count).Error
	return count, err
}

// MarkOverdue flips PENDING invoices whose due date passed. Returns rows
// changed so the sweep job can report.
func (r *repository) MarkOverdue(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("status = ? AND due_date IS NOT NULL AND due_date < ?", enums.InvoiceStatusPending, cutoff).
		Update("status", enums.InvoiceStatusOverdue)
	return result.RowsAffected, result.Error
}
