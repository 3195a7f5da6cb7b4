package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/billfoldhq/billfold-backend/api/responses"
	"github.com/billfoldhq/billfold-backend/pkg/db/models"
	pkgerrors "github.com/billfoldhq/billfold-backend/pkg/errors"
	"github.com/billfoldhq/billfold-backend/pkg/logger"
)

const apiKeyHeader = "X-Api-Key"

// APIKeyAuthenticator resolves a presented plaintext key to its record.
type APIKeyAuthenticator interface {
	Authenticate(ctx context.Context, plaintext string) (*models.APIKey, error)
}

// APIKeyOrAuth accepts either an X-Api-Key header or a bearer token. API keys
// carry org scope only; there is no user identity behind them.
func APIKeyOrAuth(keys APIKeyAuthenticator, jwtAuth func(http.Handler) http.Handler, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := strings.TrimSpace(r.Header.Get(apiKeyHeader))
			if presented == "" {
				jwtAuth(next).ServeHTTP(w, r)
				return
			}
			if keys == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "api key auth unavailable"))
				return
			}

			key, err := keys.Authenticate(r.Context(), presented)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if key.OrgID == uuid.Nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid api key"))
				return
			}

			ctx := WithOrgID(r.Context(), key.OrgID.String())
			ctx = withAuthSource(ctx, AuthSourceAPIKey)
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"org_id":     key.OrgID.String(),
					"api_key_id": key.ID.String(),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
