// internal/server/server.go
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pcaf-advisor/internal/common/logger"
)

// NewServeMux wires routes and the middleware stack, outermost first.
// Method-qualified patterns give non-POST calls to /api/ask a 405 without
// extra handling.
func NewServeMux(h *Handler, log logger.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("POST /api/ask", h.Ask)
	mux.Handle("GET /metrics", promhttp.Handler())

	var handler http.Handler = mux
	handler = Logging(log)(handler)
	handler = RequestID(handler)
	handler = Recovery(log)(handler)

	return handler
}
