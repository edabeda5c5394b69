package api

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/auth"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/errors"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/logging"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/metrics"

	"github.com/google/uuid"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	requestIDKey  contextKey = "requestID"
	authResultKey contextKey = "authResult"
)

// LoggingMiddleware logs HTTP requests and responses
func LoggingMiddleware(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Wrap response writer to capture status code
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			// Get request ID from context
			reqID := GetRequestID(r.Context())

			// Log request
			logger.Info("HTTP request", map[string]interface{}{
				"method":     r.Method,
				"path":       r.URL.Path,
				"query":      r.URL.RawQuery,
				"remoteAddr": r.RemoteAddr,
				"requestID":  reqID,
			})

			// Call next handler
			next.ServeHTTP(wrapped, r)

			// Log response
			duration := time.Since(start)
			logger.Info("HTTP response", map[string]interface{}{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     wrapped.statusCode,
				"duration":   duration.String(),
				"durationMs": duration.Milliseconds(),
				"requestID":  reqID,
			})
		})
	}
}

// RecoveryMiddleware recovers from panics and logs them
func RecoveryMiddleware(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					reqID := GetRequestID(r.Context())
					logger.Error("Panic recovered", map[string]interface{}{
						"error":     fmt.Sprintf("%v", err),
						"stack":     string(debug.Stack()),
						"requestID": reqID,
					})

					// Return 500 error
					InternalError(w, "Internal server error", fmt.Errorf("%v", err))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// MetricsMiddleware records a request counter and a duration histogram per
// route. Paths carrying identifiers collapse to their pattern so the route
// label stays bounded.
func MetricsMiddleware(reg *metrics.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if reg == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			route := routeLabel(r.URL.Path)
			status := strconv.Itoa(wrapped.statusCode)
			reg.Metrics.HTTPRequestsTotal.WithLabelValues(route, r.Method, status).Inc()
			reg.Metrics.HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
		})
	}
}

// routeLabel maps a request path to its route pattern for metric labels
func routeLabel(path string) string {
	switch {
	case strings.HasPrefix(path, "/element/"):
		return "/element/{id}"
	case strings.HasPrefix(path, "/usage/"):
		return "/usage/{id}"
	}
	switch path {
	case "/", "/health", "/ready", "/status", "/schema/tree", "/schema/flat",
		"/elements", "/search", "/variables", "/report", "/reload",
		"/metrics", "/openapi.json":
		return path
	}
	return "unmatched"
}

// CORSMiddleware adds CORS headers for local development
func CORSMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Set CORS headers
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			w.Header().Set("Access-Control-Max-Age", "86400")

			// Handle preflight requests
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Check if request ID already exists in header
			reqID := r.Header.Get("X-Request-ID")
			if reqID == "" {
				// Generate new request ID
				reqID = uuid.New().String()
			}

			// Add request ID to context
			ctx := context.WithValue(r.Context(), requestIDKey, reqID)
			r = r.WithContext(ctx)

			// Add request ID to response header
			w.Header().Set("X-Request-ID", reqID)

			next.ServeHTTP(w, r)
		})
	}
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey).(string); ok {
		return reqID
	}
	return ""
}

// AuthMiddleware enforces bearer-token authentication. Mutating methods
// always require a token; read methods only when requireRead is set. Probe,
// scrape and discovery endpoints stay open so load balancers and dashboards
// keep working.
func AuthMiddleware(manager *auth.Manager, requireRead bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !authNeeded(r, requireRead) {
				next.ServeHTTP(w, r)
				return
			}

			if manager == nil {
				writeAuthError(w, &auth.Result{
					ErrorCode:    auth.ErrCodeUnavailable,
					ErrorMessage: "Token store unavailable",
				})
				return
			}

			result := manager.Authenticate(r.Context(), extractBearerToken(r))
			if !result.Authenticated {
				writeAuthError(w, result)
				return
			}

			ctx := context.WithValue(r.Context(), authResultKey, result)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// authNeeded decides whether a request must carry a token
func authNeeded(r *http.Request, requireRead bool) bool {
	switch r.URL.Path {
	case "/", "/health", "/ready", "/metrics", "/openapi.json":
		return false
	}
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return requireRead
	}
	return true
}

// extractBearerToken pulls the token out of the Authorization header
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return ""
	}
	return token
}

// writeAuthError maps an authentication failure to its HTTP status. A fresh
// installation with no issued tokens gets a 403 pointing at the command that
// opens the route up, not a misleading 401.
func writeAuthError(w http.ResponseWriter, result *auth.Result) {
	status := http.StatusUnauthorized
	switch result.ErrorCode {
	case auth.ErrCodeNoTokens:
		status = http.StatusForbidden
	case auth.ErrCodeUnavailable:
		status = http.StatusServiceUnavailable
	}

	resp := ErrorResponse{
		Error: result.ErrorMessage,
		Code:  result.ErrorCode,
	}
	if result.ErrorCode == auth.ErrCodeNoTokens || result.ErrorCode == auth.ErrCodeMissingToken {
		resp.SuggestedFixes = errors.GetSuggestedFixes(errors.TokenInvalid)
	}

	WriteJSON(w, resp, status)
}

// GetAuthResult retrieves the authentication result from context
func GetAuthResult(ctx context.Context) *auth.Result {
	if result, ok := ctx.Value(authResultKey).(*auth.Result); ok {
		return result
	}
	return nil
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code before writing it
func (rw *responseWriter) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

// Write ensures status code is set if WriteHeader wasn't called
func (rw *responseWriter) Write(data []byte) (int, error) {
	if rw.statusCode == 0 {
		rw.statusCode = http.StatusOK
	}
	return rw.ResponseWriter.Write(data)
}
