package controllers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gmlima14/irf/api/responses"
	"github.com/gmlima14/irf/pkg/config"
	pkgerrors "github.com/gmlima14/irf/pkg/errors"
	"github.com/gmlima14/irf/pkg/logger"
	"github.com/gmlima14/irf/pkg/redis"
)

const readyTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-IRF-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every configured dependency. Nil checks are skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, checks map[string]redis.Pinger) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name, p := range checks {
		if p != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-IRF-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		status := make(map[string]string, len(names))
		var firstErr error
		for _, name := range names {
			if err := checks[name].Ping(ctx); err != nil {
				status[name] = "unavailable"
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			status[name] = "ok"
		}

		if firstErr != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, firstErr, "dependencies not ready").
				WithDetails(status))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": status})
	}
}
