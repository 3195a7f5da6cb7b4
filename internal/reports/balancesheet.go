package reports

import (
	"github.com/shopspring/decimal"

	"github.com/billfoldhq/billfold-backend/pkg/db/models"
	"github.com/billfoldhq/billfold-backend/pkg/enums"
)

type BalanceSheetAssets struct {
	Cash               decimal.Decimal `json:"cash"`
	AccountsReceivable decimal.Decimal `json:"accounts_receivable"`
	FixedAssets        decimal.Decimal `json:"fixed_assets"`
	Total              decimal.Decimal `json:"total"`
}

type BalanceSheetLiabilities struct {
	AccountsPayable     decimal.Decimal `json:"accounts_payable"`
	LongTermLiabilities decimal.Decimal `json:"long_term_liabilities"`
	Total               decimal.Decimal `json:"total"`
}

type BalanceSheetReport struct {
	Assets      BalanceSheetAssets      `json:"assets"`
	Liabilities BalanceSheetLiabilities `json:"liabilities"`
	Equity      decimal.Decimal         `json:"equity"`
}

// BuildBalanceSheet derives a point-in-time position from (type, status)
// sums. Fixed assets and long-term liabilities are constant zero: nothing in
// the invoice stream carries them.
func BuildBalanceSheet(invoices []models.Invoice) *BalanceSheetReport {
	cash := decimal.Zero
	receivables := decimal.Zero
	payables := decimal.Zero

	for _, inv := range activeInvoices(invoices) {
		switch inv.Type {
		case enums.InvoiceTypePayment:
			if inv.Status == enums.InvoiceStatusPaid {
				cash = cash.Add(inv.Amount)
			} else {
				receivables = receivables.Add(inv.Amount)
			}
		case enums.InvoiceTypePurchase:
			if inv.Status == enums.InvoiceStatusPaid {
				cash = cash.Sub(inv.Amount)
			} else {
				payables = payables.Add(inv.Amount)
			}
		}
	}

	report := &BalanceSheetReport{
		Assets: BalanceSheetAssets{
			Cash:               cash,
			AccountsReceivable: receivables,
			FixedAssets:        decimal.Zero,
		},
		Liabilities: BalanceSheetLiabilities{
			AccountsPayable:     payables,
			LongTermLiabilities: decimal.Zero,
		},
	}
	report.Assets.Total = cash.Add(receivables)
	report.Liabilities.Total = payables
	report.Equity = report.Assets.Total.Sub(report.Liabilities.Total)

	return report
}
