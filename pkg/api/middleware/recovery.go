package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/novachat/nova/pkg/api/response"
	"github.com/novachat/nova/pkg/logger"
)

// Recovery returns a middleware that recovers from panics.
func Recovery(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.ErrorContext(r.Context(), "panic recovered",
						"error", err,
						"path", r.URL.Path,
						"method", r.Method,
						"stack", string(debug.Stack()),
					)

					requestID := GetRequestID(r.Context())
					if requestID == "" {
						requestID = "unknown"
					}
					response.Error(w,
						http.StatusInternalServerError,
						response.ErrCodeInternalServer,
						"internal server error",
						requestID,
					)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
