package httputil

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/quadrant/quadrant-backend/pkg/auth"
	"github.com/quadrant/quadrant-backend/pkg/logger"
	"github.com/quadrant/quadrant-backend/pkg/workspace"
)

type contextKey string

const (
	// RequestIDKey is the context key for the request ID
	RequestIDKey contextKey = "request_id"
)

// RequestID middleware adds a request ID to each request
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Logger middleware logs HTTP requests
func Logger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)

			log.Info().
				Str("request_id", GetRequestID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", wrapped.statusCode).
				Dur("duration", duration).
				Str("user_id", workspace.UserID(r.Context())).
				Str("remote_addr", r.RemoteAddr).
				Msg("HTTP request")
		})
	}
}

// Recoverer middleware recovers from panics
func Recoverer(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.Error().
						Interface("panic", err).
						Str("path", r.URL.Path).
						Msg("panic recovered")

					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// WorkspaceMiddleware resolves the workspace for each request and puts it in
// the context. It accepts either a bearer token carrying a workspace claim
// or, for trusted internal callers, an X-Workspace-ID header.
//
// Missing workspace context returns 403 (fail-fast): every repository query
// filters on workspace_id, so a request without one cannot touch data.
// /health is exempt for monitoring.
func WorkspaceMiddleware(verifier *auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			var workspaceID, userID, role string

			if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
				claims, err := verifier.Verify(strings.TrimPrefix(header, "Bearer "))
				if err != nil {
					Error(w, err)
					return
				}
				workspaceID = claims.WorkspaceID
				userID = claims.UserID
				role = claims.Role
			} else {
				workspaceID = r.Header.Get("X-Workspace-ID")
				userID = r.Header.Get("X-User-ID")
				role = r.Header.Get("X-User-Role")
			}

			if workspaceID == "" {
				http.Error(w, `{"ok":false,"error":{"code":"ACCESS_DENIED","message":"missing workspace context"}}`, http.StatusForbidden)
				return
			}

			ctx := workspace.WithWorkspaceContext(r.Context(), workspaceID, userID, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
