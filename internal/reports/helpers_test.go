package reports

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/billfoldhq/billfold-backend/pkg/db/models"
	"github.com/billfoldhq/billfold-backend/pkg/enums"
)

type invoiceSpec struct {
	invoiceType enums.InvoiceType
	status      enums.InvoiceStatus
	amount      float64
	issueDate   *time.Time
	dueDate     *time.Time
	vendorName  string
	categoryID  *uuid.UUID
}

func makeInvoice(spec invoiceSpec) models.Invoice {
	status := spec.status
	if status == "" {
		status = enums.InvoiceStatusPending
	}
	return models.Invoice{
		ID:         uuid.New(),
		OrgID:      uuid.New(),
		VendorName: spec.vendorName,
		CategoryID: spec.categoryID,
		IssueDate:  spec.issueDate,
		DueDate:    spec.dueDate,
		Amount:     decimal.NewFromFloat(spec.amount),
		Currency:   enums.CurrencyUSD,
		Status:     status,
		Type:       spec.invoiceType,
		CreatedAt:  time.Now(),
	}
}

func daysFrom(base time.Time, days int) *time.Time {
	t := base.AddDate(0, 0, days)
	return &t
}
