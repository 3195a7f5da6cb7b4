package extraction

import (
	"io"

	"github.com/google/uuid"

	"github.com/billfoldhq/billfold-backend/pkg/enums"
)

// UploadFile is one multipart file from the batch endpoint.
type UploadFile struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// BatchItemStatus labels the per-file outcome.
type BatchItemStatus string

const (
	BatchItemProcessed BatchItemStatus = "processed"
	BatchItemFailed    BatchItemStatus = "failed"
)

// BatchItem reports what happened to one file. InvoiceID is set whenever a
// record was persisted, including the uploaded-but-unprocessed case.
type BatchItem struct {
	Filename  string          `json:"filename"`
	Status    BatchItemStatus `json:"status"`
	InvoiceID *uuid.UUID      `json:"invoice_id,omitempty"`
	Engine    enums.OCREngine `json:"engine,omitempty"`
	Error     string          `json:"error,omitempty"`
}

type BatchResult struct {
	Items     []BatchItem `json:"items"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}
