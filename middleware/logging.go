package middleware

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/ymmiz/berrifyApp/services"
)

// responseWriter wrapper capturing the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// isCriticalError reports whether a status should reach Slack. Server
// errors (5xx) and forbidden responses (403, usually CORS or privilege
// misconfiguration) qualify; plain client errors do not.
func isCriticalError(statusCode int) bool {
	if statusCode >= http.StatusInternalServerError {
		return true
	}

	return statusCode == http.StatusForbidden
}

// Logging logs failed requests and alerts Slack on critical ones
func Logging(slackService *services.SlackService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r)

			duration := time.Since(start)
			statusCode := rw.statusCode

			if statusCode < http.StatusBadRequest {
				return
			}

			log.Printf(
				"⚠️ %s %s -> %d (%s)",
				r.Method,
				r.RequestURI,
				statusCode,
				duration,
			)

			if !isCriticalError(statusCode) || slackService == nil {
				return
			}

			origin := r.Header.Get("Origin")
			userAgent := r.Header.Get("User-Agent")
			statusCodeStr := strconv.Itoa(statusCode)

			if statusCode >= http.StatusInternalServerError {
				slackService.SendCriticalError(r.Method, r.RequestURI, statusCodeStr, http.StatusText(statusCode), origin, userAgent)
			} else if origin != "" {
				slackService.SendCORSError(r.Method, r.RequestURI, origin, userAgent)
			} else {
				slackService.SendCriticalError(r.Method, r.RequestURI, statusCodeStr, "Access denied", origin, userAgent)
			}
		})
	}
}
