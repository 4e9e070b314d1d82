package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"petclinic/internal/platform/logger"
)

// AccessLog registra una línea por request con status y duración.
// Va después de chimw.RequestID para poder incluir el request_id.
func AccessLog(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			fields := map[string]any{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
			}
			if id := chimw.GetReqID(r.Context()); id != "" {
				fields["request_id"] = id
			}
			if p, ok := GetPrincipal(r.Context()); ok {
				fields["user"] = p.Username
			}

			switch {
			case ww.Status() >= http.StatusInternalServerError:
				log.Error("http request", fields)
			default:
				log.Info("http request", fields)
			}
		})
	}
}
