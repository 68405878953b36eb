package statusapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"lwos/pkg/logx"
)

type ctxKey string

const ctxKeyRequestID ctxKey = "request_id"

// RequestIDFromContext extracts the request ID from context.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return id
	}
	return ""
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := requestID()
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID, reqID)))
	})
}

// loggingMiddleware logs every request at debug level; the API is polled.
func loggingMiddleware(log logx.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			log.Debug("request",
				logx.String("method", r.Method),
				logx.String("path", r.URL.Path),
				logx.Int("status", sw.status),
				logx.Duration("took", time.Since(start)),
				logx.String("request_id", RequestIDFromContext(r.Context())),
			)
		})
	}
}

// bearerAuth accepts "Authorization: Bearer <token>". An empty token
// disables the check.
func bearerAuth(token string) func(http.Handler) http.Handler {
	tok := strings.TrimSpace(token)
	return func(next http.Handler) http.Handler {
		if tok == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const p = "Bearer "
			ah := r.Header.Get("Authorization")
			if !strings.HasPrefix(ah, p) || strings.TrimSpace(strings.TrimPrefix(ah, p)) != tok {
				w.Header().Set("WWW-Authenticate", "Bearer")
				respondError(w, r, http.StatusUnauthorized, "unauthorized", "missing or invalid bearer token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
