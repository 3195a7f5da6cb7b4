package inventory

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/billfoldhq/billfold-backend/pkg/db/models"
)

// Repository manages inventory items and their append-only history.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateItem(ctx context.Context, item *models.InventoryItem) error
	GetItem(ctx context.Context, orgID, id uuid.UUID) (*models.InventoryItem, error)
	FindItemBySKUOrName(ctx context.Context, orgID uuid.UUID, sku, name string) (*models.InventoryItem, error)
	ListItems(ctx context.Context, orgID uuid.UUID) ([]models.InventoryItem, error)
	UpdateItem(ctx context.Context, item *models.InventoryItem) error
	AppendHistory(ctx context.Context, entry *models.InventoryHistory) error
	ListHistory(ctx context.Context, itemID uuid.UUID) ([]models.InventoryHistory, error)
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

func (r *repository) CreateItem(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) GetItem(ctx context.Context, orgID, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// FindItemBySKUOrName matches line items to stock: SKU first, then an exact
// case-insensitive name match.
func (r *repository) FindItemBySKUOrName(ctx context.Context, orgID uuid.UUID, sku, name string) (*models.InventoryItem, error) {
	var item models.InventoryItem

	if sku = strings.TrimSpace(sku); sku != "" {
		err := r.db.WithContext(ctx).
			Where("org_id = ? AND sku = ?", orgID, sku).
			First(&item).Error
		if err == nil {
			return &item, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if name = strings.TrimSpace(name); name == "" {
		return nil, nil
	}
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND LOWER(name) = LOWER(?)", orgID, name).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repository) ListItems(ctx context.Context, orgID uuid.UUID) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("name ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) UpdateItem(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *repository) AppendHistory(ctx context.Context, entry *models.InventoryHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListHistory(ctx context.Context, itemID uuid.UUID) ([]models.InventoryHistory, error) {
	var entries []models.InventoryHistory
	err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
