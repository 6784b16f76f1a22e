package controller

import (
	"net/http"
	"time"

	"github.com/cassiomorais/txviewer/internal/gateway"
	"github.com/cassiomorais/txviewer/internal/infrastructure/config"
	"github.com/cassiomorais/txviewer/internal/infrastructure/observability"
	customMW "github.com/cassiomorais/txviewer/internal/middleware"
	"github.com/cassiomorais/txviewer/internal/service"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type RouterDeps struct {
	View        *service.ViewOrchestrator
	RedisClient *redis.Client
	Breakers    *gateway.Breakers
	Metrics     *observability.Metrics
	// MetricsHandler serves /metrics; defaults to promhttp.Handler().
	MetricsHandler http.Handler
	CORSConfig     config.CORSConfig
	RequestTimeout time.Duration
	// RateLimitPerMinute limits view actions per client IP; 0 disables it.
	RateLimitPerMinute int
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	r.Use(chimw.RequestID)
	r.Use(customMW.Tracing())
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(timeout))
	r.Use(customMW.SecurityHeaders())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSConfig.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: deps.CORSConfig.AllowCredentials,
		MaxAge:           300,
	}))
	if deps.Metrics != nil {
		r.Use(customMW.Metrics(deps.Metrics))
	}

	healthH := NewHealthController(deps.RedisClient, deps.Breakers)
	viewH := NewViewController(deps.View)

	r.Get("/health", healthH.Health)
	r.Get("/health/live", healthH.Liveness)
	r.Get("/health/ready", healthH.Readiness)

	metricsHandler := deps.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Handle("/metrics", metricsHandler)

	r.Route("/api/v1/view", func(r chi.Router) {
		r.Get("/", viewH.Get)

		// Actions fetch from upstream.
		r.Group(func(r chi.Router) {
			if deps.RateLimitPerMinute > 0 {
				r.Use(customMW.RateLimit(deps.RateLimitPerMinute, customMW.WithRateLimitMetrics(deps.Metrics)))
			}
			r.Post("/load", viewH.LoadAll)
			r.Post("/employee", viewH.SelectEmployee)
			r.Post("/more", viewH.ViewMore)
		})
	})

	return r
}
