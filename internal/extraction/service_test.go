package extraction

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/billfoldhq/billfold-backend/internal/invoices"
	"github.com/billfoldhq/billfold-backend/internal/ocr"
	"github.com/billfoldhq/billfold-backend/pkg/config"
	"github.com/billfoldhq/billfold-backend/pkg/db/models"
	"github.com/billfoldhq/billfold-backend/pkg/enums"
	pkgerrors "github.com/billfoldhq/billfold-backend/pkg/errors"
	"github.com/billfoldhq/billfold-backend/pkg/logger"
)

type fakeInvoiceRepo struct {
	invoices.Repository

	created  []*models.Invoice
	updated  []*models.Invoice
	replaced map[uuid.UUID][]models.LineItem
	byID     map[uuid.UUID]*models.Invoice

	createErr error
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{
		replaced: map[uuid.UUID][]models.LineItem{},
		byID:     map[uuid.UUID]*models.Invoice{},
	}
}

func (f *fakeInvoiceRepo) WithTx(_ *gorm.DB) invoices.Repository { return f }

func (f *fakeInvoiceRepo) Create(_ context.Context, invoice *models.Invoice) error {
	if f.createErr != nil {
		return f.createErr
	}
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	f.created = append(f.created, invoice)
	f.byID[invoice.ID] = invoice
	return nil
}

func (f *fakeInvoiceRepo) GetByID(_ context.Context, _, id uuid.UUID) (*models.Invoice, error) {
	return f.byID[id], nil
}

func (f *fakeInvoiceRepo) Update(_ context.Context, invoice *models.Invoice) error {
	f.updated = append(f.updated, invoice)
	f.byID[invoice.ID] = invoice
	return nil
}

func (f *fakeInvoiceRepo) ReplaceLineItems(_ context.Context, invoiceID uuid.UUID, items []models.LineItem) error {
	f.replaced[invoiceID] = items
	return nil
}

type fakeOrgReader struct {
	org *models.Organization
	err error
}

func (f *fakeOrgReader) GetByID(_ context.Context, _ uuid.UUID) (*models.Organization, error) {
	return f.org, f.err
}

type fakeStore struct {
	uploads   []string
	uploadErr error
	signErr   error
}

func (f *fakeStore) UploadObject(_ context.Context, _, object, _ string, body io.Reader) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	if body != nil {
		io.Copy(io.Discard, body)
	}
	f.uploads = append(f.uploads, object)
	return nil
}

func (f *fakeStore) SignedReadURL(_, object string, _ time.Duration) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	return "https://storage.example.com/" + object, nil
}

type fakeExtractor struct {
	result *ocr.ExtractionResult
	engine enums.OCREngine
	err    error
	calls  int
}

func (f *fakeExtractor) Extract(_ context.Context, _ ocr.ExtractionRequest) (*ocr.ExtractionResult, enums.OCREngine, error) {
	f.calls++
	return f.result, f.engine, f.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func uploadCfg() config.UploadConfig {
	return config.UploadConfig{MaxFileMB: 10, MaxBatchSize: 10}
}

func newTestService(t *testing.T, repo *fakeInvoiceRepo, orgs *fakeOrgReader, store *fakeStore, extractor *fakeExtractor) Service {
	t.Helper()
	svc, err := NewService(repo, orgs, store, extractor, uploadCfg(),
		config.GCSConfig{BucketName: "billfold-test", DownloadURLExpiry: 15 * time.Minute}, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func pdfFile(name string) UploadFile {
	return UploadFile{
		Filename:    name,
		ContentType: "application/pdf",
		Size:        2048,
		Content:     strings.NewReader("%PDF-1.4 stub"),
	}
}

func TestProcessUploadPersistsExtractedInvoice(t *testing.T) {
	t.Parallel()

	repo := newFakeInvoiceRepo()
	orgs := &fakeOrgReader{org: &models.Organization{ID: uuid.New(), Name: "Billfold Test Co"}}
	store := &fakeStore{}
	extractor := &fakeExtractor{
		engine: enums.OCREnginePrimary,
		result: &ocr.ExtractionResult{
			InvoiceNumber: "INV-1001",
			VendorName:    "Acme",
			IssueDate:     "2026-08-01",
			DueDate:       "2026-08-31",
			Amount:        decimal.NewFromInt(100),
			Currency:      "USD",
			LineItems: []ocr.LineItem{
				{
					Description: "Widgets",
					Quantity:    decimal.NewFromInt(4),
					UnitPrice:   decimal.NewFromInt(25),
					TotalPrice:  decimal.NewFromInt(100),
					Attributes:  map[string]string{"color": "red"},
				},
			},
		},
	}

	svc := newTestService(t, repo, orgs, store, extractor)

	result, err := svc.ProcessUpload(context.Background(), uuid.New(), []UploadFile{pdfFile("acme.pdf")})
	if err != nil {
		t.Fatalf("ProcessUpload: %v", err)
	}
	if result.Succeeded != 1 || result.Failed != 0 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one persisted invoice, got %d", len(repo.created))
	}

	invoice := repo.created[0]
	if invoice.Status != enums.InvoiceStatusPending {
		t.Fatalf("expected PENDING status, got %s", invoice.Status)
	}
	if invoice.VendorName != "Acme" {
		t.Fatalf("expected vendor Acme, got %q", invoice.VendorName)
	}
	if !invoice.Amount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected amount 100, got %s", invoice.Amount)
	}
	if invoice.InvoiceNumber == nil || *invoice.InvoiceNumber != "INV-1001" {
		t.Fatal("invoice number not applied")
	}
	if invoice.OCREngine == nil || *invoice.OCREngine != enums.OCREnginePrimary {
		t.Fatal("engine not recorded")
	}
	if invoice.ProcessedAt == nil {
		t.Fatal("processed_at not set")
	}
	if invoice.Confidence == nil {
		t.Fatal("classifier confidence not set")
	}
	if len(invoice.LineItems) != 1 || invoice.LineItems[0].Description != "Widgets" {
		t.Fatalf("line items not applied: %+v", invoice.LineItems)
	}
	if len(invoice.LineItems[0].Attributes) != 1 || invoice.LineItems[0].Attributes[0].Name != "color" {
		t.Fatalf("attributes not applied: %+v", invoice.LineItems[0].Attributes)
	}
	if len(invoice.ExtractedData) == 0 {
		t.Fatal("raw extraction payload not kept")
	}
	if len(store.uploads) != 1 || !strings.HasSuffix(store.uploads[0], ".pdf") {
		t.Fatalf("unexpected object path %v", store.uploads)
	}
}

func TestProcessUploadBatchContinuesPastFailures(t *testing.T) {
	t.Parallel()

	repo := newFakeInvoiceRepo()
	orgs := &fakeOrgReader{}
	store := &fakeStore{}
	extractor := &fakeExtractor{engine: enums.OCREngineSimulated, result: &ocr.ExtractionResult{VendorName: "V"}}

	svc := newTestService(t, repo, orgs, store, extractor)

	files := []UploadFile{
		{Filename: "malware.exe", ContentType: "application/octet-stream", Size: 100, Content: strings.NewReader("x")},
		pdfFile("ok.pdf"),
	}

	result, err := svc.ProcessUpload(context.Background(), uuid.New(), files)
	if err != nil {
		t.Fatalf("ProcessUpload: %v", err)
	}
	if result.Failed != 1 || result.Succeeded != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if result.Items[0].Status != BatchItemFailed || result.Items[0].Error == "" {
		t.Fatalf("rejected file should be marked failed: %+v", result.Items[0])
	}
	if result.Items[1].Status != BatchItemProcessed {
		t.Fatalf("valid file should still process: %+v", result.Items[1])
	}
}

func TestProcessUploadRejectsOversizedBatch(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFakeInvoiceRepo(), &fakeOrgReader{}, &fakeStore{}, &fakeExtractor{})

	files := make([]UploadFile, 11)
	for i := range files {
		files[i] = pdfFile("f.pdf")
	}

	_, err := svc.ProcessUpload(context.Background(), uuid.New(), files)
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestProcessUploadRejectsOversizedFile(t *testing.T) {
	t.Parallel()

	repo := newFakeInvoiceRepo()
	svc := newTestService(t, repo, &fakeOrgReader{}, &fakeStore{}, &fakeExtractor{})

	file := pdfFile("big.pdf")
	file.Size = 11 << 20

	result, err := svc.ProcessUpload(context.Background(), uuid.New(), []UploadFile{file})
	if err != nil {
		t.Fatalf("ProcessUpload: %v", err)
	}
	if result.Failed != 1 {
		t.Fatalf("oversized file should fail: %+v", result)
	}
	if len(repo.created) != 0 {
		t.Fatal("no invoice should be persisted for a rejected file")
	}
}

func TestProcessUploadKeepsUnprocessedInvoiceOnExtractionFailure(t *testing.T) {
	t.Parallel()

	repo := newFakeInvoiceRepo()
	store := &fakeStore{}
	extractor := &fakeExtractor{err: errors.New("all engines down")}

	svc := newTestService(t, repo, &fakeOrgReader{}, store, extractor)

	result, err := svc.ProcessUpload(context.Background(), uuid.New(), []UploadFile{pdfFile("stuck.pdf")})
	if err != nil {
		t.Fatalf("ProcessUpload: %v", err)
	}
	if result.Failed != 1 {
		t.Fatalf("item should be failed: %+v", result)
	}

	item := result.Items[0]
	if item.InvoiceID == nil {
		t.Fatal("partial invoice should be persisted for manual retry")
	}

	invoice := repo.created[0]
	if invoice.StorageObject == nil || *invoice.StorageObject == "" {
		t.Fatal("storage object should be recorded")
	}
	if invoice.ProcessedAt != nil {
		t.Fatal("unprocessed invoice should not have processed_at")
	}
}

func TestReprocessOverwritesExtractedFields(t *testing.T) {
	t.Parallel()

	repo := newFakeInvoiceRepo()
	orgID := uuid.New()
	object := "invoices/" + orgID.String() + "/abc.pdf"
	stored := &models.Invoice{
		ID:            uuid.New(),
		OrgID:         orgID,
		Status:        enums.InvoiceStatusPending,
		StorageObject: &object,
	}
	repo.byID[stored.ID] = stored

	extractor := &fakeExtractor{
		engine: enums.OCREngineSecondary,
		result: &ocr.ExtractionResult{
			VendorName: "Recovered Vendor",
			Amount:     decimal.NewFromInt(250),
			LineItems:  []ocr.LineItem{{Description: "Service fee", TotalPrice: decimal.NewFromInt(250)}},
		},
	}

	svc := newTestService(t, repo, &fakeOrgReader{}, &fakeStore{}, extractor)

	invoice, err := svc.Reprocess(context.Background(), orgID, stored.ID)
	if err != nil {
		t.Fatalf("Reprocess: %v", err)
	}
	if invoice.VendorName != "Recovered Vendor" {
		t.Fatalf("vendor not overwritten: %q", invoice.VendorName)
	}
	if invoice.OCREngine == nil || *invoice.OCREngine != enums.OCREngineSecondary {
		t.Fatal("engine not recorded")
	}
	if len(repo.replaced[stored.ID]) != 1 {
		t.Fatal("line items should be replaced")
	}
}

func TestReprocessRequiresStoredFile(t *testing.T) {
	t.Parallel()

	repo := newFakeInvoiceRepo()
	orgID := uuid.New()
	stored := &models.Invoice{ID: uuid.New(), OrgID: orgID, Status: enums.InvoiceStatusPending}
	repo.byID[stored.ID] = stored

	svc := newTestService(t, repo, &fakeOrgReader{}, &fakeStore{}, &fakeExtractor{})

	_, err := svc.Reprocess(context.Background(), orgID, stored.ID)
	if pkgerrors.CodeOf(err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestReprocessUnknownInvoice(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFakeInvoiceRepo(), &fakeOrgReader{}, &fakeStore{}, &fakeExtractor{})

	_, err := svc.Reprocess(context.Background(), uuid.New(), uuid.New())
	if pkgerrors.CodeOf(err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
