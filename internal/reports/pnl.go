package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/billfoldhq/billfold-backend/pkg/db/models"
	"github.com/billfoldhq/billfold-backend/pkg/enums"
	"github.com/billfoldhq/billfold-backend/pkg/errors"
)

const uncategorized = "Uncategorized"

// Window is a profit-and-loss lookback period.
type Window string

const (
	WindowOneMonth     Window = "1m"
	WindowThreeMonths  Window = "3m"
	WindowTwelveMonths Window = "12m"
)

func (w Window) Months() (int, error) {
	switch w {
	case WindowOneMonth:
		return 1, nil
	case WindowThreeMonths:
		return 3, nil
	case WindowTwelveMonths:
		return 12, nil
	default:
		return 0, errors.New(errors.CodeValidation, "window must be one of 1m, 3m, 12m")
	}
}

type ProfitLossReport struct {
	Window        Window                     `json:"window"`
	PeriodStart   time.Time                  `json:"period_start"`
	PeriodEnd     time.Time                  `json:"period_end"`
	Revenue       map[string]decimal.Decimal `json:"revenue"`
	Expenses      map[string]decimal.Decimal `json:"expenses"`
	TotalRevenue  decimal.Decimal            `json:"total_revenue"`
	TotalExpenses decimal.Decimal            `json:"total_expenses"`
	NetProfit     decimal.Decimal            `json:"net_profit"`
	// Percent change versus the immediately preceding window of equal length.
	RevenueChangePct float64 `json:"revenue_change_pct"`
	ExpenseChangePct float64 `json:"expense_change_pct"`
}

// BuildProfitLoss partitions invoices into the requested window, sums revenue
// and expenses by category, and compares totals against the preceding window.
func BuildProfitLoss(invoices []models.Invoice, categoryNames map[string]string, window Window, now time.Time) (*ProfitLossReport, error) {
	months, err := window.Months()
	if err != nil {
		return nil, err
	}

	periodEnd := now
	periodStart := now.AddDate(0, -months, 0)
	priorStart := periodStart.AddDate(0, -months, 0)

	report := &ProfitLossReport{
		Window:        window,
		PeriodStart:   periodStart,
		PeriodEnd:     periodEnd,
		Revenue:       map[string]decimal.Decimal{},
		Expenses:      map[string]decimal.Decimal{},
		TotalRevenue:  decimal.Zero,
		TotalExpenses: decimal.Zero,
	}

	priorRevenue := decimal.Zero
	priorExpenses := decimal.Zero

	for _, inv := range activeInvoices(invoices) {
		date := invoiceDate(inv)

		switch {
		case !date.Before(periodStart) && !date.After(periodEnd):
			category := categoryLabel(inv, categoryNames)
			if inv.Type == enums.InvoiceTypePayment {
				report.Revenue[category] = report.Revenue[category].Add(inv.Amount)
				report.TotalRevenue = report.TotalRevenue.Add(inv.Amount)
			} else {
				report.Expenses[category] = report.Expenses[category].Add(inv.Amount)
				report.TotalExpenses = report.TotalExpenses.Add(inv.Amount)
			}

		case !date.Before(priorStart) && date.Before(periodStart):
			if inv.Type == enums.InvoiceTypePayment {
				priorRevenue = priorRevenue.Add(inv.Amount)
			} else {
				priorExpenses = priorExpenses.Add(inv.Amount)
			}
		}
	}

	report.NetProfit = report.TotalRevenue.Sub(report.TotalExpenses)
	report.RevenueChangePct = percentChange(priorRevenue, report.TotalRevenue)
	report.ExpenseChangePct = percentChange(priorExpenses, report.TotalExpenses)

	return report, nil
}

func categoryLabel(inv models.Invoice, categoryNames map[string]string) string {
	if inv.CategoryID != nil {
		if name, ok := categoryNames[inv.CategoryID.String()]; ok {
			return name
		}
	}
	return uncategorized
}

// percentChange guards division by zero: a zero prior total counts as a 100%
// change whenever the current total is non-zero.
func percentChange(prior, current decimal.Decimal) float64 {
	if prior.IsZero() {
		if current.IsZero() {
			return 0
		}
		return 100
	}
	diff := current.Sub(prior).Div(prior).Mul(decimal.NewFromInt(100))
	f, _ := diff.Float64()
	return f
}
