package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gmlima14/irf/api/controllers"
	"github.com/gmlima14/irf/api/middleware"
	"github.com/gmlima14/irf/pkg/config"
	"github.com/gmlima14/irf/pkg/logger"
	"github.com/gmlima14/irf/pkg/redis"
)

// NewRouter wires the report endpoints. checks feed the readiness probe.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	checks map[string]redis.Pinger,
	reportService controllers.ReportService,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, checks))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/reports", func(r chi.Router) {
		r.Post("/", controllers.ReportDownload(reportService, cfg.Report, logg))
		r.Post("/ranking", controllers.ReportRanking(reportService, cfg.Report, logg))
	})

	return r
}
