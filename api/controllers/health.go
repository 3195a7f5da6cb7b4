package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/billfoldhq/billfold-backend/api/responses"
	"github.com/billfoldhq/billfold-backend/pkg/config"
	pkgerrors "github.com/billfoldhq/billfold-backend/pkg/errors"
	"github.com/billfoldhq/billfold-backend/pkg/logger"
)

const envHeader = "X-Billfold-Env"

const readyCheckTimeout = 5 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every hard dependency; any failure flips the endpoint to
// 503 so the load balancer stops routing here.
func HealthReady(cfg *config.Config, logg *logger.Logger, db, cache, blobs pinger) http.HandlerFunc {
	checks := []struct {
		name string
		ping pinger
	}{
		{name: "db", ping: db},
		{name: "redis", ping: cache},
		{name: "gcs", ping: blobs},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		statuses := map[string]string{}
		healthy := true
		for _, check := range checks {
			if check.ping == nil {
				statuses[check.name] = "skipped"
				continue
			}
			if err := check.ping.Ping(ctx); err != nil {
				statuses[check.name] = "down"
				healthy = false
				if logg != nil {
					logg.Error(logg.WithField(ctx, "dependency", check.name), "readiness check failed", err)
				}
				continue
			}
			statuses[check.name] = "up"
		}

		if !healthy {
			responses.WriteError(ctx, nil, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(statuses))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": statuses})
	}
}
