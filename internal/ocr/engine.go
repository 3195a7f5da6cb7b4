package ocr

import (
	"context"

	"github.com/billfoldhq/billfold-backend/pkg/enums"
)

// Engine extracts invoice fields from a stored document. Implementations make
// exactly one attempt per call; retry policy belongs to the caller.
type Engine interface {
	Name() enums.OCREngine
	Extract(ctx context.Context, req ExtractionRequest) (*ExtractionResult, error)
}
