package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alejandrodnm/offtake/internal/adapters/storage"
	"github.com/alejandrodnm/offtake/internal/application/planner"
	"github.com/alejandrodnm/offtake/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// Defaults son los valores que toman los campos a cero de los requests.
type Defaults struct {
	Bid              domain.BidParams
	Stress           domain.StressParams
	ROI              domain.ROIParams
	AnnualGeneration float64
}

// Options controla el servidor HTTP.
type Options struct {
	RatePerSec  float64 // 0 = sin límite
	Burst       int
	CORSOrigins []string // vacío = sin CORS
	ReleaseMode bool
	Defaults    Defaults
}

// Server expone el planner sobre HTTP.
type Server struct {
	svc    *planner.Service
	opts   Options
	router *gin.Engine
}

// NewServer construye el router. obs y gatherer pueden ser nil; sin gatherer
// no se expone /metrics.
func NewServer(svc *planner.Service, obs RequestObserver, gatherer prometheus.Gatherer, opts Options) *Server {
	if opts.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(requestLogger(obs))
	router.Use(errorHandler())
	if len(opts.CORSOrigins) > 0 {
		router.Use(corsMiddleware(opts.CORSOrigins))
	}

	s := &Server{svc: svc, opts: opts, router: router}

	router.GET("/health", s.health)
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api/v1")
	if opts.RatePerSec > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		api.Use(rateLimit(rate.NewLimiter(rate.Limit(opts.RatePerSec), burst)))
	}
	{
		api.POST("/simulate", s.simulate)
		api.POST("/sweep", s.sweep)
		api.GET("/sweeps", s.listSweeps)
		api.GET("/sweeps/:id", s.getSweep)
		api.GET("/sweeps/:id/csv", s.sweepCSV)

		api.POST("/bid", s.bid)
		api.POST("/stress", s.stress)
		api.POST("/finance/npv", s.npv)
		api.POST("/finance/roi", s.roi)

		api.GET("/market", s.market)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: ErrorDetail{Code: "NOT_FOUND", Message: "route not found"}})
	})
	return s
}

// Handler devuelve el http.Handler del servidor.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"archive": s.svc.HasArchive(),
		"dataset": s.svc.HasDataset(),
	})
}

// badRequest responde 400 por un body que no pasa el binding.
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{Code: "INVALID_REQUEST", Message: err.Error()},
	})
}

// writeError traduce errores de dominio a status HTTP.
func writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL_ERROR"
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		status, code = http.StatusBadRequest, "INVALID_ARGUMENT"
	case errors.Is(err, storage.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, planner.ErrStorageDisabled), errors.Is(err, planner.ErrNoDataset):
		status, code = http.StatusServiceUnavailable, "NOT_CONFIGURED"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status, code = http.StatusServiceUnavailable, "CANCELLED"
	}
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "path", c.Request.URL.Path, "err", err)
	}
	c.JSON(status, ErrorResponse{Error: ErrorDetail{Code: code, Message: err.Error()}})
}
