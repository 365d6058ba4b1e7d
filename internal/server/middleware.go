package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/seriesheat/seriesheat/internal/metrics"
)

// statusRecorder captures the status code a handler writes so the request
// middleware can log and label it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestMiddleware logs every request and feeds the HTTP Prometheus
// metrics. The duration label uses the mux route template so show IDs do
// not blow up the metric cardinality.
func (s *Server) requestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		metrics.HTTPInFlightRequests.Inc()
		defer metrics.HTTPInFlightRequests.Dec()

		next.ServeHTTP(recorder, r)

		duration := time.Since(start)
		metrics.HTTPRequestDuration.
			WithLabelValues(routeTemplate(r), r.Method, strconv.Itoa(recorder.status)).
			Observe(duration.Seconds())

		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", duration).
			Msg("Request handled")
	})
}

// routeTemplate returns the matched mux route pattern, or a fixed fallback
// for requests that never matched a registered route.
func routeTemplate(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return "unmatched"
	}

	template, err := route.GetPathTemplate()
	if err != nil {
		return "unmatched"
	}

	return template
}
