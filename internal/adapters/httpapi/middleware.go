package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"golang.org/x/time/rate"
)

// RequestObserver recibe cada petición respondida (métricas).
type RequestObserver interface {
	ObserveRequest(route string, code int)
}

// errorHandler recupera panics y responde con el sobre de error estándar.
func errorHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		slog.Error("panic in handler", "path", c.Request.URL.Path, "panic", recovered)
		msg := "An unexpected error occurred"
		if s, ok := recovered.(string); ok {
			msg = s
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{Code: "INTERNAL_ERROR", Message: msg},
		})
	})
}

// requestLogger registra cada petición con slog y la notifica al observer.
func requestLogger(obs RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if obs != nil {
			obs.ObserveRequest(route, status)
		}
		level := slog.LevelDebug
		if status >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		slog.Log(c.Request.Context(), level, "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", route,
			"status", status,
			"elapsed", time.Since(start).Round(time.Microsecond),
		)
	}
}

// corsMiddleware adapta rs/cors a gin. Las preflight se cortan con 204.
func corsMiddleware(origins []string) gin.HandlerFunc {
	h := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return func(c *gin.Context) {
		h.HandlerFunc(c.Writer, c.Request)
		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// rateLimit aplica un token bucket global; sin tokens responde 429.
func rateLimit(l *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Error: ErrorDetail{Code: "RATE_LIMITED", Message: "too many requests"},
			})
			return
		}
		c.Next()
	}
}
