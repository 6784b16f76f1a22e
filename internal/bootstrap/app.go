package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/cassiomorais/txviewer/internal/gateway"
	"github.com/cassiomorais/txviewer/internal/infrastructure/config"
	"github.com/cassiomorais/txviewer/internal/infrastructure/observability"
	infraRedis "github.com/cassiomorais/txviewer/internal/infrastructure/redis"
	"github.com/cassiomorais/txviewer/internal/service"
	"github.com/cassiomorais/txviewer/internal/store"
	"github.com/cassiomorais/txviewer/pkg/retry"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Redis    *redis.Client // nil when the roster cache is disabled
	Metrics  *observability.Metrics
	Breakers *gateway.Breakers
	Upstream gateway.API
	View     *service.ViewOrchestrator

	tracer *sdktrace.TracerProvider
}

func New(ctx context.Context, serviceName string, metricsNamespace string) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := observability.InitLogger(cfg.Observability.LogLevel, os.Stdout)
	logger.Info().Str("service", serviceName).Str("instance", cfg.InstanceID).Msg("Starting")

	app := &App{Config: cfg, Logger: logger}

	if cfg.Observability.EnableTracing {
		endpoint := cfg.Observability.JaegerEndpoint
		if cfg.Observability.TraceExporter == observability.ExporterOTLP {
			endpoint = cfg.Observability.OTLPEndpoint
		}
		tp, err := observability.InitTracer(ctx, serviceName, cfg.Observability.TraceExporter, endpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
		} else {
			app.tracer = tp
			logger.Info().Str("exporter", cfg.Observability.TraceExporter).Msg("Tracing enabled")
		}
	}

	if cfg.Observability.EnableMetrics {
		app.Metrics = observability.NewMetrics(metricsNamespace, nil)
		logger.Info().Msg("Metrics initialized")
	}

	app.Breakers = gateway.NewBreakers(gateway.BreakerSettings{
		ConsecutiveFailures: cfg.Upstream.CircuitBreakerThreshold,
		OpenTimeout:         cfg.Upstream.CircuitBreakerTimeout,
	}, observability.Component(logger, "breaker"), app.Metrics)

	client, err := gateway.NewHTTPClient(cfg.Upstream.BaseURL,
		gateway.WithHTTPClient(&http.Client{Timeout: cfg.Upstream.RequestTimeout}),
		gateway.WithRetry(retry.Config{
			MaxAttempts:  cfg.Upstream.MaxRetries,
			InitialDelay: cfg.Upstream.RetryDelay,
			MaxDelay:     cfg.Upstream.RetryMaxDelay,
		}),
		gateway.WithBreakers(app.Breakers),
		gateway.WithLogger(observability.Component(logger, "upstream")),
	)
	if err != nil {
		return nil, fmt.Errorf("create upstream client: %w", err)
	}
	app.Upstream = client
	logger.Info().Str("base_url", cfg.Upstream.BaseURL).Msg("Upstream client configured")

	if cfg.Redis.Enabled {
		redisClient, err := infraRedis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			// The cache is an optimisation; serve straight from upstream without it.
			logger.Warn().Err(err).Msg("Redis unavailable, roster cache disabled")
		} else {
			app.Redis = redisClient
			app.Upstream = infraRedis.NewCachedRoster(client, infraRedis.NewClientCache(redisClient), cfg.Redis.RosterTTL,
				infraRedis.WithCacheLogger(logger),
				infraRedis.WithCacheMetrics(app.Metrics),
			)
			logger.Info().Dur("ttl", cfg.Redis.RosterTTL).Msg("Roster cache enabled")
		}
	}

	storeOpts := []store.Option{store.WithLogger(logger), store.WithMetrics(app.Metrics)}
	app.View = service.NewViewOrchestrator(service.Stores{
		Employees: store.NewEmployeeDirectory(app.Upstream, storeOpts...),
		Feed:      store.NewPagedTransactionFeed(app.Upstream, storeOpts...),
		Lookup:    store.NewEmployeeTransactionLookup(app.Upstream, storeOpts...),
	}, logger, app.Metrics)

	return app, nil
}

func (a *App) Close(ctx context.Context) {
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.tracer != nil {
		observability.Shutdown(ctx, a.tracer)
	}
}
