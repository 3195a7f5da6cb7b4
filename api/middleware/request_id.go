package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/billfoldhq/billfold-backend/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// RequestID tags each request with an ID, minting one when the caller did
// not send the header, and echoes it back on the response.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, id)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, id)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
