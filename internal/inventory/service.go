package inventory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/billfoldhq/billfold-backend/pkg/db"
	"github.com/billfoldhq/billfold-backend/pkg/db/models"
	"github.com/billfoldhq/billfold-backend/pkg/enums"
	"github.com/billfoldhq/billfold-backend/pkg/errors"
	"github.com/billfoldhq/billfold-backend/pkg/logger"
)

// InvoiceReader loads an invoice with its line items. Satisfied by the
// invoices repository.
type InvoiceReader interface {
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Invoice, error)
}

// ApplyResult summarizes one invoice-impact run.
type ApplyResult struct {
	ItemsChanged int         `json:"items_changed"`
	ItemsCreated int         `json:"items_created"`
	Skipped      []string    `json:"skipped,omitempty"`
	InvoiceID    uuid.UUID   `json:"invoice_id"`
	Changes      []ChangeRow `json:"changes"`
}

type ChangeRow struct {
	ItemID      uuid.UUID `json:"item_id"`
	Name        string    `json:"name"`
	PreviousQty int       `json:"previous_qty"`
	NewQty      int       `json:"new_qty"`
}

type Service interface {
	ListItems(ctx context.Context, orgID uuid.UUID) ([]models.InventoryItem, error)
	CreateItem(ctx context.Context, orgID uuid.UUID, name string, sku *string, quantity int) (*models.InventoryItem, error)
	Adjust(ctx context.Context, orgID, itemID uuid.UUID, delta int) (*models.InventoryItem, error)
	ApplyInvoice(ctx context.Context, orgID, invoiceID uuid.UUID) (*ApplyResult, error)
	ListHistory(ctx context.Context, orgID, itemID uuid.UUID) ([]models.InventoryHistory, error)
}

type service struct {
	repo     Repository
	invoices InvoiceReader
	client   *db.Client
	logg     *logger.Logger
}

func NewService(repo Repository, invoices InvoiceReader, client *db.Client, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New(errors.CodeInternal, "inventory repository required")
	}
	if invoices == nil {
		return nil, errors.New(errors.CodeInternal, "invoice reader required")
	}
	if client == nil {
		return nil, errors.New(errors.CodeInternal, "db client required")
	}
	if logg == nil {
		return nil, errors.New(errors.CodeInternal, "logger required")
	}
	return &service{repo: repo, invoices: invoices, client: client, logg: logg}, nil
}

func (s *service) ListItems(ctx context.Context, orgID uuid.UUID) ([]models.InventoryItem, error) {
	if orgID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "org id is required")
	}
	return s.repo.ListItems(ctx, orgID)
}

func (s *service) CreateItem(ctx context.Context, orgID uuid.UUID, name string, sku *string, quantity int) (*models.InventoryItem, error) {
	name = strings.TrimSpace(name)
	if orgID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "org id is required")
	}
	if name == "" {
		return nil, errors.New(errors.CodeValidation, "name is required")
	}
	if quantity < 0 {
		return nil, errors.New(errors.CodeValidation, "quantity cannot be negative")
	}

	item := &models.InventoryItem{OrgID: orgID, Name: name, SKU: sku, Quantity: quantity}

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateItem(ctx, item); err != nil {
			return err
		}
		if quantity == 0 {
			return nil
		}
		return repo.AppendHistory(ctx, &models.InventoryHistory{
			ItemID:      item.ID,
			PreviousQty: 0,
			NewQty:      quantity,
			Reason:      enums.InventoryChangeReasonAdjustment,
		})
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Adjust applies a manual quantity delta, clamping the result at zero. Every
// change writes exactly one history row.
func (s *service) Adjust(ctx context.Context, orgID, itemID uuid.UUID, delta int) (*models.InventoryItem, error) {
	if delta == 0 {
		return nil, errors.New(errors.CodeValidation, "delta cannot be zero")
	}

	var updated *models.InventoryItem
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		item, err := repo.GetItem(ctx, orgID, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return errors.New(errors.CodeNotFound, "inventory item not found")
		}

		previous := item.Quantity
		item.Quantity = clamp(previous + delta)
		if err := repo.UpdateItem(ctx, item); err != nil {
			return err
		}
		if err := repo.AppendHistory(ctx, &models.InventoryHistory{
			ItemID:      item.ID,
			PreviousQty: previous,
			NewQty:      item.Quantity,
			Reason:      enums.InventoryChangeReasonAdjustment,
		}); err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ApplyInvoice moves stock for each line item on the invoice: purchases add,
// payments subtract. Unknown items are created for purchases and skipped for
// payments. The whole run is one transaction.
func (s *service) ApplyInvoice(ctx context.Context, orgID, invoiceID uuid.UUID) (*ApplyResult, error) {
	result := &ApplyResult{InvoiceID: invoiceID}

	invoice, err := s.invoices.GetByID(ctx, orgID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, errors.New(errors.CodeNotFound, "invoice not found")
	}
	if invoice.Status == enums.InvoiceStatusCancelled {
		return nil, errors.New(errors.CodeStateConflict, "cancelled invoices cannot affect inventory")
	}
	if len(invoice.LineItems) == 0 {
		return nil, errors.New(errors.CodeValidation, "invoice has no line items")
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		reason := enums.InventoryChangeReasonPurchase
		sign := 1
		if invoice.Type == enums.InvoiceTypePayment {
			reason = enums.InventoryChangeReasonSale
			sign = -1
		}

		for _, line := range invoice.LineItems {
			qty := int(line.Quantity.IntPart())
			if qty <= 0 {
				continue
			}

			sku := ""
			if line.SKU != nil {
				sku = *line.SKU
			}
			item, err := repo.FindItemBySKUOrName(ctx, orgID, sku, line.Description)
			if err != nil {
				return err
			}

			if item == nil {
				if sign < 0 {
					result.Skipped = append(result.Skipped, line.Description)
					continue
				}
				item = &models.InventoryItem{
					OrgID:    orgID,
					Name:     strings.TrimSpace(line.Description),
					SKU:      line.SKU,
					Quantity: 0,
				}
				if err := repo.CreateItem(ctx, item); err != nil {
					return err
				}
				result.ItemsCreated++
			}

			previous := item.Quantity
			item.Quantity = clamp(previous + sign*qty)
			if err := repo.UpdateItem(ctx, item); err != nil {
				return err
			}
			if err := repo.AppendHistory(ctx, &models.InventoryHistory{
				ItemID:      item.ID,
				PreviousQty: previous,
				NewQty:      item.Quantity,
				Reason:      reason,
				InvoiceID:   &invoice.ID,
			}); err != nil {
				return err
			}

			result.ItemsChanged++
			result.Changes = append(result.Changes, ChangeRow{
				ItemID:      item.ID,
				Name:        item.Name,
				PreviousQty: previous,
				NewQty:      item.Quantity,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithInvoiceID(ctx, invoiceID.String()), "inventory impacts applied")
	return result, nil
}

func (s *service) ListHistory(ctx context.Context, orgID, itemID uuid.UUID) ([]models.InventoryHistory, error) {
	item, err := s.repo.GetItem(ctx, orgID, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errors.New(errors.CodeNotFound, "inventory item not found")
	}
	return s.repo.ListHistory(ctx, itemID)
}

func clamp(qty int) int {
	if qty < 0 {
		return 0
	}
	return qty
}
