package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cassiomorais/txviewer/internal/fakeapi"
	"github.com/cassiomorais/txviewer/internal/gateway"
	"github.com/cassiomorais/txviewer/internal/infrastructure/observability"
	"github.com/valyala/fasthttp"
)

func main() {
	cfg, err := fakeapi.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.InitLogger(cfg.LogLevel, os.Stdout)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	employees, transactions := gateway.Seed(cfg.Seed, cfg.Employees, cfg.TransactionsPerEmployee)
	fixture := gateway.NewFixture(employees, transactions,
		gateway.WithPageSize(cfg.PageSize),
		gateway.WithLatency(cfg.Latency),
		gateway.WithFailureRate(cfg.FailureRate),
	)
	handler := fakeapi.NewHandler(ctx, fixture, observability.Component(logger, "fakeapi"))

	srv := &fasthttp.Server{
		Handler: handler.Serve,
		Name:    "txviewer-fakeapi",
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	go func() {
		logger.Info().
			Str("addr", addr).
			Int("employees", len(employees)).
			Int("transactions", len(transactions)).
			Int("page_size", cfg.PageSize).
			Msg("Starting fake upstream")
		if err := srv.ListenAndServe(addr); err != nil {
			logger.Fatal().Err(err).Msg("Fake upstream failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down fake upstream...")
	if err := srv.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("Fake upstream forced to shutdown")
	}
}
