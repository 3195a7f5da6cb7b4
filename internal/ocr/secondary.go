package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/billfoldhq/billfold-backend/pkg/config"
	"github.com/billfoldhq/billfold-backend/pkg/enums"
	pkgerrors "github.com/billfoldhq/billfold-backend/pkg/errors"
)

// secondaryEngine calls a document-OCR HTTP API that speaks the extraction
// contract natively.
type secondaryEngine struct {
	httpClient *http.Client
	url        string
	apiKey     string
}

// NewSecondaryEngine builds the fallback OCR API engine. Returns nil when the
// endpoint is not configured.
func NewSecondaryEngine(cfg config.OCRConfig) Engine {
	url := strings.TrimSpace(cfg.SecondaryURL)
	if url == "" {
		return nil
	}
	return &secondaryEngine{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		url:        url,
		apiKey:     cfg.SecondaryAPIKey,
	}
}

func (e *secondaryEngine) Name() enums.OCREngine {
	return enums.OCREngineSecondary
}

func (e *secondaryEngine) Extract(ctx context.Context, req ExtractionRequest) (*ExtractionResult, error) {
	if e == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "secondary ocr engine not configured")
	}
	if strings.TrimSpace(req.FileURL) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file url is required")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal ocr request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build ocr request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute ocr request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(
			pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			"ocr request failed",
		)
	}

	var result ExtractionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode ocr response")
	}
	return &result, nil
}
