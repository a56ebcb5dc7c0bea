package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/custodia-labs/hub/internal/logger"
	"github.com/custodia-labs/hub/internal/metrics"
)

// statusWriter records the status code written by a handler.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// requestMiddleware logs each request and counts it per route template.
func requestMiddleware(recorder *metrics.Recorder) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			started := time.Now()
			next.ServeHTTP(sw, r)

			route := "unmatched"
			if current := mux.CurrentRoute(r); current != nil {
				if name := current.GetName(); name != "" {
					route = name
				}
			}
			recorder.HTTPRequest(route, sw.status)
			logger.Debug("%s %s -> %d (%s)", r.Method, r.URL.Path, sw.status, time.Since(started))
		})
	}
}
