// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/logging"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/pkg/constants"
)

// RequestLoggerMiddleware creates a middleware that logs HTTP requests.
// Health check endpoints (/livez and /readyz) are excluded from logging to reduce noise.
func RequestLoggerMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now().UTC()

			isHealthCheck := r.URL.Path == constants.LivezPath || r.URL.Path == constants.ReadyzPath || r.URL.Path == constants.MetricsPath

			// Add request URL attributes to the context so that they can be used in all request handler logs
			ctx := r.Context()
			ctx = logging.AppendCtx(ctx, slog.String("method", r.Method))
			ctx = logging.AppendCtx(ctx, slog.String("path", r.URL.Path))
			ctx = logging.AppendCtx(ctx, slog.String("query", r.URL.RawQuery))
			ctx = logging.AppendCtx(ctx, slog.String("user_agent", r.UserAgent()))
			ctx = logging.AppendCtx(ctx, slog.String("remote_addr", r.RemoteAddr))

			if requestID, ok := ctx.Value(constants.RequestIDContextID).(string); ok {
				ctx = logging.AppendCtx(ctx, slog.String("request_id", requestID))
			}

			r = r.WithContext(ctx)

			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			if !isHealthCheck {
				slog.InfoContext(ctx, "HTTP request")
			}

			next.ServeHTTP(ww, r)

			if !isHealthCheck {
				slog.InfoContext(ctx, "HTTP response", "status", ww.statusCode, "duration", time.Since(start).String())
			}
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	return rw.ResponseWriter.Write(b)
}
