package reports

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/billfoldhq/billfold-backend/pkg/db/models"
	"github.com/billfoldhq/billfold-backend/pkg/enums"
	"github.com/billfoldhq/billfold-backend/pkg/errors"
)

const (
	baseProbability         = 0.8
	overduePenalty          = 0.3
	pastDuePenalty          = 0.2
	nearDuePenalty          = 0.1
	reliableVendorBonus     = 0.1
	nearDueDays             = 3
	minProbability          = 0.1
	maxProbability          = 0.95
	highVolatilityThreshold = 0.5
	medVolatilityThreshold  = 0.2
)

type DailyPrediction struct {
	Date    time.Time       `json:"date"`
	Inflow  decimal.Decimal `json:"inflow"`
	Outflow decimal.Decimal `json:"outflow"`
	Net     decimal.Decimal `json:"net"`
	Balance decimal.Decimal `json:"balance"`
}

type RiskAssessment struct {
	Level        enums.RiskLevel `json:"level"`
	CashShortage bool            `json:"cash_shortage"`
	Volatility   float64         `json:"volatility"`
}

type CashFlowReport struct {
	HorizonDays    int               `json:"horizon_days"`
	Predictions    []DailyPrediction `json:"predictions"`
	RiskAssessment RiskAssessment    `json:"risk_assessment"`
}

// ValidHorizon reports whether the requested projection length is supported.
func ValidHorizon(days int) bool {
	return days == 30 || days == 60 || days == 90
}

// BuildCashFlow projects daily cash movement over the horizon. Expected
// inflows are weighted by a payment-probability heuristic; outflows are taken
// at face value. CashShortage is set exactly when some daily balance dips
// below zero.
func BuildCashFlow(invoices []models.Invoice, horizonDays int, now time.Time) (*CashFlowReport, error) {
	if !ValidHorizon(horizonDays) {
		return nil, errors.New(errors.CodeValidation, "horizon must be 30, 60 or 90 days")
	}

	today := truncateToDay(now)

	type dayFlow struct {
		inflow  decimal.Decimal
		outflow decimal.Decimal
	}
	flows := make(map[string]*dayFlow, horizonDays)

	for _, inv := range activeInvoices(invoices) {
		if inv.Status == enums.InvoiceStatusPaid || inv.DueDate == nil {
			continue
		}

		due := truncateToDay(*inv.DueDate)
		offset := int(due.Sub(today).Hours() / 24)
		if offset < 0 || offset >= horizonDays {
			continue
		}

		key := due.Format("2006-01-02")
		flow, ok := flows[key]
		if !ok {
			flow = &dayFlow{inflow: decimal.Zero, outflow: decimal.Zero}
			flows[key] = flow
		}

		if inv.Type == enums.InvoiceTypePayment {
			probability := paymentProbability(inv, now)
			expected := inv.Amount.Mul(decimal.NewFromFloat(probability))
			flow.inflow = flow.inflow.Add(expected)
		} else {
			flow.outflow = flow.outflow.Add(inv.Amount)
		}
	}

	report := &CashFlowReport{
		HorizonDays: horizonDays,
		Predictions: make([]DailyPrediction, 0, horizonDays),
	}

	balance := decimal.Zero
	balances := make([]float64, 0, horizonDays)
	shortage := false

	for day := 0; day < horizonDays; day++ {
		date := today.AddDate(0, 0, day)
		prediction := DailyPrediction{
			Date:    date,
			Inflow:  decimal.Zero,
			Outflow: decimal.Zero,
		}
		if flow, ok := flows[date.Format("2006-01-02")]; ok {
			prediction.Inflow = flow.inflow
			prediction.Outflow = flow.outflow
		}

		prediction.Net = prediction.Inflow.Sub(prediction.Outflow)
		balance = balance.Add(prediction.Net)
		prediction.Balance = balance

		if balance.IsNegative() {
			shortage = true
		}
		f, _ := balance.Float64()
		balances = append(balances, f)

		report.Predictions = append(report.Predictions, prediction)
	}

	volatility := coefficientOfVariation(balances)
	report.RiskAssessment = RiskAssessment{
		Level:        riskLevel(volatility, shortage),
		CashShortage: shortage,
		Volatility:   volatility,
	}

	return report, nil
}

// paymentProbability estimates how likely an expected inflow lands on its due
// date. Base 0.8 with penalties for overdue/near-due status and a bonus for
// vendors flagged reliable.
func paymentProbability(inv models.Invoice, now time.Time) float64 {
	probability := baseProbability

	if inv.Status == enums.InvoiceStatusOverdue {
		probability -= overduePenalty
	}

	if inv.DueDate != nil {
		daysUntilDue := inv.DueDate.Sub(now).Hours() / 24
		switch {
		case daysUntilDue < 0:
			probability -= pastDuePenalty
		case daysUntilDue <= nearDueDays:
			probability -= nearDuePenalty
		}
	}

	if strings.Contains(strings.ToLower(inv.VendorName), "reliable") {
		probability += reliableVendorBonus
	}

	if probability < minProbability {
		return minProbability
	}
	if probability > maxProbability {
		return maxProbability
	}
	return probability
}

func riskLevel(volatility float64, shortage bool) enums.RiskLevel {
	switch {
	case shortage || volatility > highVolatilityThreshold:
		return enums.RiskLevelHigh
	case volatility > medVolatilityThreshold:
		return enums.RiskLevelMedium
	default:
		return enums.RiskLevelLow
	}
}

func coefficientOfVariation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	if mean == 0 {
		return 0
	}

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))

	return math.Abs(math.Sqrt(variance) / mean)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
