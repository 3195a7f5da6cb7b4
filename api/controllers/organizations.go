package controllers

import (
	"net/http"

	"github.com/billfoldhq/billfold-backend/api/responses"
	"github.com/billfoldhq/billfold-backend/api/validators"
	orgsvc "github.com/billfoldhq/billfold-backend/internal/organizations"
	"github.com/billfoldhq/billfold-backend/pkg/logger"
)

type syncOrganizationRequest struct {
	Name      string  `json:"name" validate:"required,max=200"`
	LegalName *string `json:"legal_name,omitempty" validate:"omitempty,max=200"`
}

// OrganizationSync upserts the caller's organization from identity provider
// profile data. The org id always comes from the token, never the body.
func OrganizationSync(svc orgsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := orgFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload syncOrganizationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		org, err := svc.Sync(r.Context(), orgsvc.SyncInput{
			ID:        orgID,
			Name:      payload.Name,
			LegalName: payload.LegalName,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, org)
	}
}

func OrganizationDetail(svc orgsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := orgFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		org, err := svc.Get(r.Context(), orgID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, org)
	}
}
