package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler returns the Prometheus scrape handler. A nil handler
// falls back to the default registry.
func MetricsHandler(scrape http.Handler) http.Handler {
	if scrape == nil {
		return promhttp.Handler()
	}
	return scrape
}
