package controllers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/billfoldhq/billfold-backend/internal/extraction"
	"github.com/billfoldhq/billfold-backend/pkg/config"
	"github.com/billfoldhq/billfold-backend/pkg/db/models"
)

type testExtractionService struct {
	processFn   func(ctx context.Context, orgID uuid.UUID, files []extraction.UploadFile) (*extraction.BatchResult, error)
	reprocessFn func(ctx context.Context, orgID, invoiceID uuid.UUID) (*models.Invoice, error)
}

func (s *testExtractionService) ProcessUpload(ctx context.Context, orgID uuid.UUID, files []extraction.UploadFile) (*extraction.BatchResult, error) {
	if s.processFn != nil {
		return s.processFn(ctx, orgID, files)
	}
	return &extraction.BatchResult{Succeeded: len(files)}, nil
}

func (s *testExtractionService) Reprocess(ctx context.Context, orgID, invoiceID uuid.UUID) (*models.Invoice, error) {
	if s.reprocessFn != nil {
		return s.reprocessFn(ctx, orgID, invoiceID)
	}
	return &models.Invoice{ID: invoiceID, OrgID: orgID}, nil
}

func testUploadConfig() config.UploadConfig {
	return config.UploadConfig{MaxFileMB: 1, MaxBatchSize: 3}
}

func multipartBody(t *testing.T, filenames ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, name := range filenames {
		part, err := writer.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte("%PDF-1.4 test")); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestInvoiceUploadPassesFilesToService(t *testing.T) {
	orgID := uuid.New()
	var seenFiles []extraction.UploadFile
	svc := &testExtractionService{
		processFn: func(ctx context.Context, gotOrg uuid.UUID, files []extraction.UploadFile) (*extraction.BatchResult, error) {
			if gotOrg != orgID {
				t.Fatalf("unexpected org %s", gotOrg)
			}
			seenFiles = files
			items := make([]extraction.BatchItem, len(files))
			for i, f := range files {
				items[i] = extraction.BatchItem{Filename: f.Filename, Status: extraction.BatchItemProcessed}
			}
			return &extraction.BatchResult{Items: items, Succeeded: len(files)}, nil
		},
	}

	body, contentType := multipartBody(t, "a.pdf", "b.pdf")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/uploads", body)
	req.Header.Set("Content-Type", contentType)
	req = withOrg(req, orgID)
	resp := httptest.NewRecorder()
	InvoiceUpload(svc, testUploadConfig(), testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if len(seenFiles) != 2 {
		t.Fatalf("expected 2 files got %d", len(seenFiles))
	}
	if seenFiles[0].Filename != "a.pdf" || seenFiles[1].Filename != "b.pdf" {
		t.Fatalf("unexpected filenames %q %q", seenFiles[0].Filename, seenFiles[1].Filename)
	}
}

func TestInvoiceUploadRequiresFiles(t *testing.T) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/uploads", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req = withOrg(req, uuid.New())
	resp := httptest.NewRecorder()
	InvoiceUpload(&testExtractionService{}, testUploadConfig(), testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestInvoiceUploadAllFailedReturns422(t *testing.T) {
	svc := &testExtractionService{
		processFn: func(ctx context.Context, orgID uuid.UUID, files []extraction.UploadFile) (*extraction.BatchResult, error) {
			items := make([]extraction.BatchItem, len(files))
			for i, f := range files {
				items[i] = extraction.BatchItem{Filename: f.Filename, Status: extraction.BatchItemFailed, Error: "extraction failed"}
			}
			return &extraction.BatchResult{Items: items, Failed: len(files)}, nil
		},
	}

	body, contentType := multipartBody(t, "broken.pdf")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/uploads", body)
	req.Header.Set("Content-Type", contentType)
	req = withOrg(req, uuid.New())
	resp := httptest.NewRecorder()
	InvoiceUpload(svc, testUploadConfig(), testLogger())(resp, req)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestInvoiceReprocessReadsRouteParam(t *testing.T) {
	orgID := uuid.New()
	invoiceID := uuid.New()
	called := false
	svc := &testExtractionService{
		reprocessFn: func(ctx context.Context, gotOrg, gotID uuid.UUID) (*models.Invoice, error) {
			called = true
			if gotOrg != orgID || gotID != invoiceID {
				t.Fatalf("unexpected args org=%s id=%s", gotOrg, gotID)
			}
			return &models.Invoice{ID: gotID, OrgID: gotOrg}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/"+invoiceID.String()+"/reprocess", nil)
	req = withOrg(req, orgID)
	req = addRouteParam(req, "invoiceId", invoiceID.String())
	resp := httptest.NewRecorder()
	InvoiceReprocess(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatal("expected service called")
	}
}
