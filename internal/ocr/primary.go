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

const responseBodyReadLimit int64 = 2048

// primaryEngine calls an OpenAI-compatible vision endpoint and asks the model
// to emit the extraction contract as JSON.
type primaryEngine struct {
	httpClient *http.Client
	url        string
	apiKey     string
	model      string
}

// NewPrimaryEngine builds the LLM-backed engine from config. Returns nil when
// the endpoint is not configured so the chain can skip it.
func NewPrimaryEngine(cfg config.OCRConfig) Engine {
	url := strings.TrimSpace(cfg.PrimaryURL)
	if url == "" {
		return nil
	}
	return &primaryEngine{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		url:        url,
		apiKey:     cfg.PrimaryAPIKey,
		model:      cfg.PrimaryModel,
	}
}

func (e *primaryEngine) Name() enums.OCREngine {
	return enums.OCREnginePrimary
}

type chatMessagePart struct {
	Type     string         `json:"type"`
	Text     string         `json:"text,omitempty"`
	ImageURL *chatImagePart `json:"image_url,omitempty"`
}

type chatImagePart struct {
	URL string `json:"url"`
}

type chatMessage struct {
	Role    string            `json:"role"`
	Content []chatMessagePart `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

func (e *primaryEngine) Extract(ctx context.Context, req ExtractionRequest) (*ExtractionResult, error) {
	if e == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "primary ocr engine not configured")
	}
	if strings.TrimSpace(req.FileURL) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file url is required")
	}

	body := chatRequest{
		Model: e.model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []chatMessagePart{
				{Type: "text", Text: buildPrompt(req)},
				{Type: "image_url", ImageURL: &chatImagePart{URL: req.FileURL}},
			},
		}},
	}
	body.ResponseFormat.Type = "json_object"

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal extraction request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build extraction request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute extraction request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(
			pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			"extraction request failed",
		)
	}

	var apiResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode extraction response")
	}
	if len(apiResp.Choices) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "extraction response has no choices")
	}

	var result ExtractionResult
	if err := json.Unmarshal([]byte(apiResp.Choices[0].Message.Content), &result); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "parse extracted fields")
	}
	return &result, nil
}

func buildPrompt(req ExtractionRequest) string {
	var b strings.Builder
	b.WriteString("Extract the following fields from the invoice document and respond with a single JSON object: ")
	b.WriteString(strings.Join(req.Fields, ", "))
	b.WriteString(". Dates must be YYYY-MM-DD. Amounts must be plain decimal numbers.")
	if req.Organization.Name != "" {
		b.WriteString(" The document belongs to the organization \"")
		b.WriteString(req.Organization.Name)
		b.WriteString("\".")
	}
	if req.CustomInstructions != "" {
		b.WriteString(" ")
		b.WriteString(req.CustomInstructions)
	}
	return b.String()
}
