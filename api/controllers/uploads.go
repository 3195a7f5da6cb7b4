package controllers

import (
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/billfoldhq/billfold-backend/api/responses"
	"github.com/billfoldhq/billfold-backend/api/validators"
	"github.com/billfoldhq/billfold-backend/internal/extraction"
	"github.com/billfoldhq/billfold-backend/pkg/config"
	pkgerrors "github.com/billfoldhq/billfold-backend/pkg/errors"
	"github.com/billfoldhq/billfold-backend/pkg/logger"
)

// InvoiceUpload accepts a multipart batch under the "files" field and runs
// the extraction pipeline per file.
func InvoiceUpload(svc extraction.Service, uploadCfg config.UploadConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := orgFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// One extra MB of form overhead on top of the per-file cap.
		maxMemory := uploadCfg.MaxFileBytes() + (1 << 20)
		r.Body = http.MaxBytesReader(w, r.Body, maxMemory*int64(uploadCfg.MaxBatchSize))
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart request"))
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		headers := r.MultipartForm.File["files"]
		if len(headers) == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "at least one file is required"))
			return
		}

		files, closers, err := openUploads(headers)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer func() {
			for _, closer := range closers {
				_ = closer.Close()
			}
		}()

		result, err := svc.ProcessUpload(r.Context(), orgID, files)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusCreated
		if result.Succeeded == 0 {
			status = http.StatusUnprocessableEntity
		}
		responses.WriteSuccessStatus(w, status, result)
	}
}

func openUploads(headers []*multipart.FileHeader) ([]extraction.UploadFile, []multipart.File, error) {
	files := make([]extraction.UploadFile, 0, len(headers))
	closers := make([]multipart.File, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			for _, closer := range closers {
				_ = closer.Close()
			}
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading uploaded file")
		}
		closers = append(closers, file)
		files = append(files, extraction.UploadFile{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Content:     file,
		})
	}
	return files, closers, nil
}

// InvoiceReprocess re-runs extraction for an invoice whose OCR failed or
// produced bad data.
func InvoiceReprocess(svc extraction.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := orgFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		invoiceID, err := validators.ParsePathUUID(chi.URLParam(r, "invoiceId"), "invoiceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.Reprocess(r.Context(), orgID, invoiceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, invoice)
	}
}
