package api

import (
	"net/http"
	"time"

	"github.com/gmlima14/irf/pkg/config"
)

// NewServer wraps handler in an http.Server listening on port. Scoring a
// large batch against a remote classifier can take a while, so the write
// timeout follows the classifier timeout.
func NewServer(cfg *config.Config, port string, handler http.Handler) *http.Server {
	writeTimeout := cfg.Classifier.Timeout + 30*time.Second
	return &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       2 * time.Minute,
	}
}
