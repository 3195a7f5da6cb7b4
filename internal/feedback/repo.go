package feedback

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/billfoldhq/billfold-backend/pkg/db/models"
	"github.com/billfoldhq/billfold-backend/pkg/enums"
)

// Repository manages AI correction feedback rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Find(ctx context.Context, orgID uuid.UUID, vendorName string, kind enums.FeedbackKind, fieldName *string, value string) (*models.AIFeedback, error)
	Create(ctx context.Context, entry *models.AIFeedback) error
	Update(ctx context.Context, entry *models.AIFeedback) error
	ListByVendor(ctx context.Context, orgID uuid.UUID, vendorName string) ([]models.AIFeedback, error)
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

func (r *repository) Find(ctx context.Context, orgID uuid.UUID, vendorName string, kind enums.FeedbackKind, fieldName *string, value string) (*models.AIFeedback, error) {
	qb := r.db.WithContext(ctx).
		Where("org_id = ? AND vendor_name = ? AND kind = ? AND value = ?", orgID, vendorName, kind, value)
	if fieldName != nil {
		qb = qb.Where("field_name = ?", *fieldName)
	} else {
		qb = qb.Where("field_name IS NULL")
	}

	var entry models.AIFeedback
	if err := qb.First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *repository) Create(ctx context.Context, entry *models.AIFeedback) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) Update(ctx context.Context, entry *models.AIFeedback) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

// ListByVendor returns corrections ranked by frequency, most corrected first.
func (r *repository) ListByVendor(ctx context.Context, orgID uuid.UUID, vendorName string) ([]models.AIFeedback, error) {
	var entries []models.AIFeedback
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND vendor_name = ?", orgID, vendorName).
		Order("count DESC, updated_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
