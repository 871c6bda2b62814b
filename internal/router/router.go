package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "herd-weight-tracker/docs"
	mem "herd-weight-tracker/internal/adapters/storage/memory"
	"herd-weight-tracker/internal/domain/analytics"
	"herd-weight-tracker/internal/domain/forecast"
	"herd-weight-tracker/internal/domain/weights"
	"herd-weight-tracker/internal/middleware"
	"herd-weight-tracker/internal/platform/logger"
)

type Options struct {
	// Opcional: si es nil se usa el store en memoria.
	Repo weights.Repository

	Logger   logger.Logger
	Location *time.Location

	// Cero => defaults del dominio (0.8 kg/día, 90 días).
	DefaultGainPerDay float64
	HorizonDays       int
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestIDHeader)
	r.Use(middleware.AccessLog(log))
	r.Use(middleware.Recover(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	repo := opts.Repo
	if repo == nil {
		repo = mem.NewWeightsRepo()
	}

	// Services por módulo
	weightsSvc := weights.NewService(repo, weights.Options{Location: opts.Location, Logger: log})
	facade := analytics.NewFacade(weightsSvc, forecast.NewEngine(opts.DefaultGainPerDay), analytics.Options{
		HorizonDays: opts.HorizonDays,
		Logger:      log,
	})

	// Rutas por módulo
	weights.RegisterRoutes(r, weightsSvc)
	analytics.RegisterRoutes(r, facade)

	return r
}
