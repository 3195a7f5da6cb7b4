package reports

import (
	"testing"
	"time"

	"github.com/billfoldhq/billfold-backend/pkg/db/models"
	"github.com/billfoldhq/billfold-backend/pkg/enums"
)

func TestBuildCashFlowShortageMatchesNegativeBalance(t *testing.T) {
	t.Parallel()

	now := time.Now()

	// A large outflow before any inflow forces the balance negative.
	invoices := []models.Invoice{
		makeInvoice(invoiceSpec{invoiceType: enums.InvoiceTypePurchase, amount: 1000, dueDate: daysFrom(now, 2), vendorName: "Supplier"}),
		makeInvoice(invoiceSpec{invoiceType: enums.InvoiceTypePayment, amount: 5000, dueDate: daysFrom(now, 20), vendorName: "Client"}),
	}

	report, err := BuildCashFlow(invoices, 30, now)
	if err != nil {
		t.Fatalf("BuildCashFlow: %v", err)
	}

	negative := false
	for _, p := range report.Predictions {
		if p.Balance.IsNegative() {
			negative = true
		}
	}
	if report.RiskAssessment.CashShortage != negative {
		t.Fatalf("cashShortage=%v but negative daily balance=%v", report.RiskAssessment.CashShortage, negative)
	}
	if !report.RiskAssessment.CashShortage {
		t.Fatal("expected a cash shortage in this scenario")
	}
	if report.RiskAssessment.Level != enums.RiskLevelHigh {
		t.Fatalf("shortage should force high risk, got %s", report.RiskAssessment.Level)
	}
}

func TestBuildCashFlowNoShortage(t *testing.T) {
	t.Parallel()

	now := time.Now()
	invoices := []models.Invoice{
		makeInvoice(invoiceSpec{invoiceType: enums.InvoiceTypePayment, amount: 2000, dueDate: daysFrom(now, 1), vendorName: "Client"}),
		makeInvoice(invoiceSpec{invoiceType: enums.InvoiceTypePurchase, amount: 100, dueDate: daysFrom(now, 10), vendorName: "Supplier"}),
	}

	report, err := BuildCashFlow(invoices, 30, now)
	if err != nil {
		t.Fatalf("BuildCashFlow: %v", err)
	}

	if report.RiskAssessment.CashShortage {
		t.Fatal("did not expect a shortage")
	}
	for _, p := range report.Predictions {
		if p.Balance.IsNegative() {
			t.Fatalf("no daily balance should be negative, got %s on %s", p.Balance, p.Date)
		}
	}
}

func TestBuildCashFlowHorizonValidation(t *testing.T) {
	t.Parallel()

	if _, err := BuildCashFlow(nil, 45, time.Now()); err == nil {
		t.Fatal("expected error for unsupported horizon")
	}
	for _, days := range []int{30, 60, 90} {
		report, err := BuildCashFlow(nil, days, time.Now())
		if err != nil {
			t.Fatalf("horizon %d: %v", days, err)
		}
		if len(report.Predictions) != days {
			t.Fatalf("horizon %d: expected %d predictions, got %d", days, days, len(report.Predictions))
		}
	}
}

func TestBuildCashFlowIgnoresPaidAndCancelled(t *testing.T) {
	t.Parallel()

	now := time.Now()
	invoices := []models.Invoice{
		makeInvoice(invoiceSpec{invoiceType: enums.InvoiceTypePayment, status: enums.InvoiceStatusPaid, amount: 100, dueDate: daysFrom(now, 1)}),
		makeInvoice(invoiceSpec{invoiceType: enums.InvoiceTypePurchase, status: enums.InvoiceStatusCancelled, amount: 100, dueDate: daysFrom(now, 1)}),
	}

	report, err := BuildCashFlow(invoices, 30, now)
	if err != nil {
		t.Fatalf("BuildCashFlow: %v", err)
	}
	for _, p := range report.Predictions {
		if !p.Inflow.IsZero() || !p.Outflow.IsZero() {
			t.Fatalf("paid/cancelled invoices must not contribute, got %+v", p)
		}
	}
}

func TestPaymentProbability(t *testing.T) {
	t.Parallel()

	now := time.Now()

	base := makeInvoice(invoiceSpec{invoiceType: enums.InvoiceTypePayment, amount: 100, dueDate: daysFrom(now, 15), vendorName: "Some Vendor"})
	if p := paymentProbability(base, now); p != 0.8 {
		t.Fatalf("expected base probability 0.8, got %v", p)
	}

	reliable := makeInvoice(invoiceSpec{invoiceType: enums.InvoiceTypePayment, amount: 100, dueDate: daysFrom(now, 15), vendorName: "Reliable Partners Inc"})
	if p := paymentProbability(reliable, now); p <= 0.8 {
		t.Fatalf("expected reliable vendor bonus, got %v", p)
	}

	overdue := makeInvoice(invoiceSpec{invoiceType: enums.InvoiceTypePayment, status: enums.InvoiceStatusOverdue, amount: 100, dueDate: daysFrom(now, -5), vendorName: "Late Co"})
	if p := paymentProbability(overdue, now); p >= 0.8 {
		t.Fatalf("expected overdue penalty, got %v", p)
	}

	// Probability stays within the clamp bounds.
	if p := paymentProbability(overdue, now); p < minProbability || p > maxProbability {
		t.Fatalf("probability %v outside [%v, %v]", p, minProbability, maxProbability)
	}
}
