package ocr

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/billfoldhq/billfold-backend/pkg/enums"
)

// simulatedEngine produces deterministic placeholder data so that uploads
// still land as reviewable invoices when no real engine is reachable. Output
// derives from the file URL, so the same document yields the same result.
type simulatedEngine struct {
	now func() time.Time
}

func NewSimulatedEngine() Engine {
	return &simulatedEngine{now: time.Now}
}

func (e *simulatedEngine) Name() enums.OCREngine {
	return enums.OCREngineSimulated
}

func (e *simulatedEngine) Extract(_ context.Context, req ExtractionRequest) (*ExtractionResult, error) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(req.FileURL))
	seed := h.Sum32()

	amount := decimal.NewFromInt(int64(seed%90000 + 1000)).Div(decimal.NewFromInt(100))
	issue := e.now().AddDate(0, 0, -int(seed%28))
	due := issue.AddDate(0, 0, 30)

	return &ExtractionResult{
		InvoiceNumber: fmt.Sprintf("SIM-%06d", seed%1000000),
		VendorName:    "Unknown Vendor",
		IssueDate:     issue.Format("2006-01-02"),
		DueDate:       due.Format("2006-01-02"),
		Amount:        amount,
		Currency:      "USD",
		Notes:         "Simulated extraction; review all fields before use.",
		Language:      "en",
		Confidence:    0.1,
	}, nil
}
