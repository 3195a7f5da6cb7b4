package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/billfoldhq/billfold-backend/api/responses"
	"github.com/billfoldhq/billfold-backend/api/validators"
	apikeysvc "github.com/billfoldhq/billfold-backend/internal/apikeys"
	"github.com/billfoldhq/billfold-backend/pkg/logger"
)

type createAPIKeyRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

// APIKeyCreate mints a key and returns the plaintext in this response only.
func APIKeyCreate(svc apikeysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := orgFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createAPIKeyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), orgID, payload.Name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func APIKeyList(svc apikeysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := orgFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		keys, err := svc.List(r.Context(), orgID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, keys)
	}
}

func APIKeyRevoke(svc apikeysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := orgFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		keyID, err := validators.ParsePathUUID(chi.URLParam(r, "keyId"), "keyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Revoke(r.Context(), orgID, keyID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "revoked"})
	}
}
