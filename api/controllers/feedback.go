package controllers

import (
	"net/http"
	"strings"

	"github.com/billfoldhq/billfold-backend/api/responses"
	"github.com/billfoldhq/billfold-backend/api/validators"
	feedbacksvc "github.com/billfoldhq/billfold-backend/internal/feedback"
	pkgerrors "github.com/billfoldhq/billfold-backend/pkg/errors"
	"github.com/billfoldhq/billfold-backend/pkg/logger"
)

func FeedbackRecord(svc feedbacksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := orgFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input feedbacksvc.RecordInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.Record(r.Context(), orgID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}

// FeedbackSuggestions returns correction candidates for a vendor, most
// frequently confirmed first.
func FeedbackSuggestions(svc feedbacksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := orgFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vendorName := strings.TrimSpace(r.URL.Query().Get("vendor_name"))
		if vendorName == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "vendor_name query parameter is required"))
			return
		}

		suggestions, err := svc.Suggestions(r.Context(), orgID, vendorName)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, suggestions)
	}
}
