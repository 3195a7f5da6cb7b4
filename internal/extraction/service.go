package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/billfoldhq/billfold-backend/internal/classifier"
	"github.com/billfoldhq/billfold-backend/internal/invoices"
	"github.com/billfoldhq/billfold-backend/internal/ocr"
	"github.com/billfoldhq/billfold-backend/pkg/config"
	"github.com/billfoldhq/billfold-backend/pkg/db/models"
	"github.com/billfoldhq/billfold-backend/pkg/enums"
	"github.com/billfoldhq/billfold-backend/pkg/errors"
	"github.com/billfoldhq/billfold-backend/pkg/logger"
)

// allowedContentTypes is the upload whitelist.
var allowedContentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/tiff":      true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"text/csv": true,
}

// ObjectStore is the slice of the GCS client the pipeline needs.
type ObjectStore interface {
	UploadObject(ctx context.Context, bucket, object, contentType string, body io.Reader) error
	SignedReadURL(bucket, object string, expires time.Duration) (string, error)
}

// Extractor runs the OCR engine chain.
type Extractor interface {
	Extract(ctx context.Context, req ocr.ExtractionRequest) (*ocr.ExtractionResult, enums.OCREngine, error)
}

// OrgReader supplies the organization profile for classification.
type OrgReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
}

// Service runs the upload-to-invoice pipeline: validate, store, extract,
// classify, persist. Files process sequentially; a failed file is reported
// and the batch continues.
type Service interface {
	ProcessUpload(ctx context.Context, orgID uuid.UUID, files []UploadFile) (*BatchResult, error)
	Reprocess(ctx context.Context, orgID, invoiceID uuid.UUID) (*models.Invoice, error)
}

type service struct {
	repo      invoices.Repository
	orgs      OrgReader
	store     ObjectStore
	extractor Extractor
	uploadCfg config.UploadConfig
	urlExpiry time.Duration
	logg      *logger.Logger
	now       func() time.Time
}

func NewService(
	repo invoices.Repository,
	orgs OrgReader,
	store ObjectStore,
	extractor Extractor,
	uploadCfg config.UploadConfig,
	gcsCfg config.GCSConfig,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, errors.New(errors.CodeInternal, "invoices repository required")
	}
	if orgs == nil {
		return nil, errors.New(errors.CodeInternal, "organization reader required")
	}
	if store == nil {
		return nil, errors.New(errors.CodeInternal, "object store required")
	}
	if extractor == nil {
		return nil, errors.New(errors.CodeInternal, "extractor required")
	}
	if logg == nil {
		return nil, errors.New(errors.CodeInternal, "logger required")
	}
	return &service{
		repo:      repo,
		orgs:      orgs,
		store:     store,
		extractor: extractor,
		uploadCfg: uploadCfg,
		urlExpiry: gcsCfg.DownloadURLExpiry,
		logg:      logg,
		now:       time.Now,
	}, nil
}

func (s *service) ProcessUpload(ctx context.Context, orgID uuid.UUID, files []UploadFile) (*BatchResult, error) {
	if orgID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "org id is required")
	}
	if len(files) == 0 {
		return nil, errors.New(errors.CodeValidation, "at least one file is required")
	}
	if len(files) > s.uploadCfg.MaxBatchSize {
		return nil, errors.New(errors.CodeValidation,
			fmt.Sprintf("batch exceeds the maximum of %d files", s.uploadCfg.MaxBatchSize))
	}

	orgName := s.orgName(ctx, orgID)

	result := &BatchResult{Items: make([]BatchItem, 0, len(files))}
	for _, file := range files {
		item := s.processOne(ctx, orgID, orgName, file)
		if item.Status == BatchItemProcessed {
			result.Succeeded++
		} else {
			result.Failed++
		}
		result.Items = append(result.Items, item)
	}
	return result, nil
}

// processOne runs the full pipeline for a single file. Steps after the GCS
// write deliberately keep partial state: an invoice row with file metadata
// but no extracted fields stays behind for manual reprocessing.
func (s *service) processOne(ctx context.Context, orgID uuid.UUID, orgName string, file UploadFile) BatchItem {
	item := BatchItem{Filename: file.Filename, Status: BatchItemFailed}

	if err := s.validateFile(file); err != nil {
		item.Error = err.Error()
		return item
	}

	object := objectPath(orgID, file.Filename)
	if err := s.store.UploadObject(ctx, "", object, file.ContentType, file.Content); err != nil {
		s.logg.Error(ctx, "storing upload failed", err)
		item.Error = "failed to store file"
		return item
	}

	invoice := &models.Invoice{
		OrgID:            orgID,
		Status:           enums.InvoiceStatusPending,
		Type:             enums.InvoiceTypePurchase,
		Currency:         enums.CurrencyUSD,
		StorageObject:    &object,
		OriginalFilename: ptr(file.Filename),
		ContentType:      ptr(file.ContentType),
		FileSizeBytes:    ptr64(file.Size),
	}

	extracted, engine, err := s.extract(ctx, orgName, object)
	if err != nil {
		// Keep the uploaded-but-unprocessed invoice for manual retry.
		s.logg.Error(s.logg.WithOrgID(ctx, orgID.String()), "extraction failed, persisting unprocessed invoice", err)
		if createErr := s.repo.Create(ctx, invoice); createErr != nil {
			item.Error = "failed to persist invoice"
			return item
		}
		item.InvoiceID = &invoice.ID
		item.Error = "extraction failed; invoice stored for reprocessing"
		return item
	}

	s.applyExtraction(invoice, extracted, engine, orgName)
	if err := s.repo.Create(ctx, invoice); err != nil {
		s.logg.Error(ctx, "persisting invoice failed", err)
		item.Error = "failed to persist invoice"
		return item
	}

	item.Status = BatchItemProcessed
	item.InvoiceID = &invoice.ID
	item.Engine = engine
	return item
}

func (s *service) Reprocess(ctx context.Context, orgID, invoiceID uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.repo.GetByID(ctx, orgID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, errors.New(errors.CodeNotFound, "invoice not found")
	}
	if invoice.StorageObject == nil || *invoice.StorageObject == "" {
		return nil, errors.New(errors.CodeStateConflict, "invoice has no stored file to reprocess")
	}

	extracted, engine, err := s.extract(ctx, s.orgName(ctx, orgID), *invoice.StorageObject)
	if err != nil {
		return nil, err
	}

	s.applyExtraction(invoice, extracted, engine, s.orgName(ctx, orgID))

	lineItems := invoice.LineItems
	invoice.LineItems = nil
	if err := s.repo.Update(ctx, invoice); err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceLineItems(ctx, invoice.ID, lineItems); err != nil {
		return nil, err
	}
	invoice.LineItems = lineItems

	s.logg.Info(s.logg.WithInvoiceID(ctx, invoice.ID.String()), "invoice reprocessed")
	return invoice, nil
}

func (s *service) extract(ctx context.Context, orgName, object string) (*ocr.ExtractionResult, enums.OCREngine, error) {
	fileURL, err := s.store.SignedReadURL("", object, s.urlExpiry)
	if err != nil {
		return nil, "", errors.Wrap(errors.CodeDependency, err, "signing download url")
	}

	return s.extractor.Extract(ctx, ocr.ExtractionRequest{
		FileURL:      fileURL,
		Fields:       ocr.DefaultFields,
		Organization: ocr.Organization{Name: orgName},
	})
}

// applyExtraction copies engine output onto the invoice and runs the type
// classifier over the extracted text.
func (s *service) applyExtraction(invoice *models.Invoice, extracted *ocr.ExtractionResult, engine enums.OCREngine, orgName string) {
	if extracted.InvoiceNumber != "" {
		invoice.InvoiceNumber = ptr(extracted.InvoiceNumber)
	}
	if extracted.VendorName != "" {
		invoice.VendorName = extracted.VendorName
	}
	invoice.IssueDate = parseDate(extracted.IssueDate)
	invoice.DueDate = parseDate(extracted.DueDate)
	if !extracted.Amount.IsZero() {
		invoice.Amount = extracted.Amount
	}
	if currency, err := enums.ParseCurrency(extracted.Currency); err == nil {
		invoice.Currency = currency
	}
	if extracted.Notes != "" {
		invoice.Notes = ptr(extracted.Notes)
	}

	descriptions := make([]string, 0, len(extracted.LineItems))
	lineItems := make([]models.LineItem, 0, len(extracted.LineItems))
	for _, line := range extracted.LineItems {
		descriptions = append(descriptions, line.Description)

		item := models.LineItem{
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			TotalPrice:  line.TotalPrice,
			TaxRate:     line.TaxRate,
			TaxAmount:   line.TaxAmount,
			Discount:    line.Discount,
			SKU:         line.SKU,
		}
		for name, value := range line.Attributes {
			item.Attributes = append(item.Attributes, models.LineItemAttribute{Name: name, Value: value})
		}
		lineItems = append(lineItems, item)
	}
	invoice.LineItems = lineItems

	notes := ""
	if invoice.Notes != nil {
		notes = *invoice.Notes
	}
	verdict := classifier.Classify(classifier.Input{
		OrgName:              orgName,
		VendorName:           invoice.VendorName,
		Notes:                notes,
		LineItemDescriptions: descriptions,
	})
	invoice.Type = verdict.Type
	invoice.Confidence = &verdict.Confidence

	ocrEngine := engine
	invoice.OCREngine = &ocrEngine
	now := s.now()
	invoice.ProcessedAt = &now

	if raw, err := json.Marshal(extracted); err == nil {
		invoice.ExtractedData = raw
	}
}

func (s *service) validateFile(file UploadFile) error {
	if strings.TrimSpace(file.Filename) == "" {
		return errors.New(errors.CodeValidation, "filename is required")
	}
	if !allowedContentTypes[strings.ToLower(file.ContentType)] {
		return errors.New(errors.CodeValidation, fmt.Sprintf("unsupported file type %q", file.ContentType))
	}
	if file.Size <= 0 {
		return errors.New(errors.CodeValidation, "file is empty")
	}
	if file.Size > s.uploadCfg.MaxFileBytes() {
		return errors.New(errors.CodeValidation,
			fmt.Sprintf("file exceeds the %dMB limit", s.uploadCfg.MaxFileMB))
	}
	return nil
}

// orgName is best-effort: a missing organization profile only weakens the
// classifier, it does not block ingestion.
func (s *service) orgName(ctx context.Context, orgID uuid.UUID) string {
	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil || org == nil {
		return ""
	}
	return org.Name
}

func objectPath(orgID uuid.UUID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("invoices/%s/%s%s", orgID, uuid.NewString(), ext)
}

func parseDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil
	}
	return &t
}

func ptr(value string) *string {
	return &value
}

func ptr64(value int64) *int64 {
	return &value
}
