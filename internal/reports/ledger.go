package reports

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/billfoldhq/billfold-backend/pkg/db/models"
	"github.com/billfoldhq/billfold-backend/pkg/enums"
)

// LedgerEntry is one invoice rendered as a debit/credit pair. Purchases debit
// (money out), payments credit (money in).
type LedgerEntry struct {
	InvoiceID     uuid.UUID           `json:"invoice_id"`
	InvoiceNumber *string             `json:"invoice_number,omitempty"`
	VendorName    string              `json:"vendor_name"`
	Date          *time.Time          `json:"date,omitempty"`
	Type          enums.InvoiceType   `json:"type"`
	Status        enums.InvoiceStatus `json:"status"`
	Debit         decimal.Decimal     `json:"debit"`
	Credit        decimal.Decimal     `json:"credit"`
	Balance       decimal.Decimal     `json:"balance"`
}

type LedgerReport struct {
	Entries      []LedgerEntry   `json:"entries"`
	TotalDebits  decimal.Decimal `json:"total_debits"`
	TotalCredits decimal.Decimal `json:"total_credits"`
}

// BuildLedger renders invoices as ledger rows in reverse chronological order.
// The running balance accumulates credit minus debit in iteration order.
func BuildLedger(invoices []models.Invoice) *LedgerReport {
	active := activeInvoices(invoices)
	sortByDateDesc(active)

	report := &LedgerReport{
		Entries:      make([]LedgerEntry, 0, len(active)),
		TotalDebits:  decimal.Zero,
		TotalCredits: decimal.Zero,
	}

	balance := decimal.Zero
	for _, inv := range active {
		entry := LedgerEntry{
			InvoiceID:     inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			VendorName:    inv.VendorName,
			Date:          inv.IssueDate,
			Type:          inv.Type,
			Status:        inv.Status,
			Debit:         decimal.Zero,
			Credit:        decimal.Zero,
		}

		if inv.Type == enums.InvoiceTypePurchase {
			entry.Debit = inv.Amount
		} else {
			entry.Credit = inv.Amount
		}

		balance = balance.Add(entry.Credit).Sub(entry.Debit)
		entry.Balance = balance

		report.TotalDebits = report.TotalDebits.Add(entry.Debit)
		report.TotalCredits = report.TotalCredits.Add(entry.Credit)
		report.Entries = append(report.Entries, entry)
	}

	return report
}

func activeInvoices(invoices []models.Invoice) []models.Invoice {
	active := make([]models.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if inv.Status == enums.InvoiceStatusCancelled {
			continue
		}
		active = append(active, inv)
	}
	return active
}

func invoiceDate(inv models.Invoice) time.Time {
	if inv.IssueDate != nil {
		return *inv.IssueDate
	}
	return inv.CreatedAt
}

func sortByDateDesc(invoices []models.Invoice) {
	sort.SliceStable(invoices, func(i, j int) bool {
		return invoiceDate(invoices[i]).After(invoiceDate(invoices[j]))
	})
}
