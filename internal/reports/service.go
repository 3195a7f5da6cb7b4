package reports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/billfoldhq/billfold-backend/pkg/db/models"
	"github.com/billfoldhq/billfold-backend/pkg/errors"
	"github.com/billfoldhq/billfold-backend/pkg/logger"
)

// InvoiceSource feeds the aggregators. Satisfied by the invoices repository.
type InvoiceSource interface {
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Invoice, error)
}

// CategorySource names categories for P&L and trial-balance buckets.
// Satisfied by the categories repository.
type CategorySource interface {
	List(ctx context.Context, orgID uuid.UUID) ([]models.Category, error)
}

type Service interface {
	Ledger(ctx context.Context, orgID uuid.UUID) (*LedgerReport, error)
	ProfitLoss(ctx context.Context, orgID uuid.UUID, window Window) (*ProfitLossReport, error)
	BalanceSheet(ctx context.Context, orgID uuid.UUID) (*BalanceSheetReport, error)
	TrialBalance(ctx context.Context, orgID uuid.UUID) (*TrialBalanceReport, error)
	CashFlow(ctx context.Context, orgID uuid.UUID, horizonDays int) (*CashFlowReport, error)
}

type service struct {
	invoices   InvoiceSource
	categories CategorySource
	logg       *logger.Logger
	now        func() time.Time
}

func NewService(invoices InvoiceSource, categories CategorySource, logg *logger.Logger) (Service, error) {
	if invoices == nil {
		return nil, errors.New(errors.CodeInternal, "invoice source required")
	}
	if categories == nil {
		return nil, errors.New(errors.CodeInternal, "category source required")
	}
	if logg == nil {
		return nil, errors.New(errors.CodeInternal, "logger required")
	}
	return &service{invoices: invoices, categories: categories, logg: logg, now: time.Now}, nil
}

func (s *service) Ledger(ctx context.Context, orgID uuid.UUID) (*LedgerReport, error) {
	invoices, err := s.load(ctx, orgID, "ledger")
	if err != nil {
		return nil, err
	}
	return BuildLedger(invoices), nil
}

func (s *service) ProfitLoss(ctx context.Context, orgID uuid.UUID, window Window) (*ProfitLossReport, error) {
	if _, err := window.Months(); err != nil {
		return nil, err
	}

	invoices, err := s.load(ctx, orgID, "profit and loss")
	if err != nil {
		return nil, err
	}
	names, err := s.categoryNames(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return BuildProfitLoss(invoices, names, window, s.now())
}

func (s *service) BalanceSheet(ctx context.Context, orgID uuid.UUID) (*BalanceSheetReport, error) {
	invoices, err := s.load(ctx, orgID, "balance sheet")
	if err != nil {
		return nil, err
	}
	return BuildBalanceSheet(invoices), nil
}

func (s *service) TrialBalance(ctx context.Context, orgID uuid.UUID) (*TrialBalanceReport, error) {
	invoices, err := s.load(ctx, orgID, "trial balance")
	if err != nil {
		return nil, err
	}
	names, err := s.categoryNames(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return BuildTrialBalance(invoices, names), nil
}

func (s *service) CashFlow(ctx context.Context, orgID uuid.UUID, horizonDays int) (*CashFlowReport, error) {
	if !ValidHorizon(horizonDays) {
		return nil, errors.New(errors.CodeValidation, "horizon must be 30, 60 or 90 days")
	}

	invoices, err := s.load(ctx, orgID, "cash flow")
	if err != nil {
		return nil, err
	}
	return BuildCashFlow(invoices, horizonDays, s.now())
}

// load fetches the org's invoices, wrapping fetch failures behind a generic
// report error.
func (s *service) load(ctx context.Context, orgID uuid.UUID, reportName string) ([]models.Invoice, error) {
	if orgID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "org id is required")
	}

	invoices, err := s.invoices.ListByOrg(ctx, orgID)
	if err != nil {
		s.logg.Error(ctx, "failed to load invoices for "+reportName+" report", err)
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to fetch "+reportName+" report")
	}
	return invoices, nil
}

func (s *service) categoryNames(ctx context.Context, orgID uuid.UUID) (map[string]string, error) {
	categories, err := s.categories.List(ctx, orgID)
	if err != nil {
		s.logg.Error(ctx, "failed to load categories for report", err)
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to fetch report categories")
	}

	names := make(map[string]string, len(categories))
	for _, category := range categories {
		names[category.ID.String()] = category.Name
	}
	return names, nil
}
