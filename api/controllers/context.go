package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/billfoldhq/billfold-backend/api/middleware"
	pkgerrors "github.com/billfoldhq/billfold-backend/pkg/errors"
)

// orgFromRequest extracts the authenticated organization id seeded by the
// auth middlewares.
func orgFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.OrgIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "org context missing")
	}
	orgID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid org context")
	}
	return orgID, nil
}
