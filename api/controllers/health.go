package controllers

import (
	"net/http"
	"time"

	"github.com/meditrack-ph/meditrack-backend/api/responses"
	"github.com/meditrack-ph/meditrack-backend/pkg/config"
	"github.com/meditrack-ph/meditrack-backend/pkg/db"
	pkgerrors "github.com/meditrack-ph/meditrack-backend/pkg/errors"
	"github.com/meditrack-ph/meditrack-backend/pkg/logger"
)

const readyCheckTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-MediTrack-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every hard dependency and reports per-check results.
func HealthReady(cfg *config.Config, logg *logger.Logger, pingers map[string]db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-MediTrack-Env", cfg.App.Env)

		ctx, cancel := timeoutContext(r, readyCheckTimeout)
		defer cancel()

		checks := map[string]string{}
		healthy := true
		for name, pinger := range pingers {
			if pinger == nil {
				checks[name] = "skipped"
				continue
			}
			if err := pinger.Ping(ctx); err != nil {
				checks[name] = "down"
				healthy = false
				continue
			}
			checks[name] = "ok"
		}

		if !healthy {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependency check failed").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
