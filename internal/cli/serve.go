package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/mrz1836/reasonkernel/internal/adapters/httpapi"
	"github.com/mrz1836/reasonkernel/internal/adapters/idempotency"
	"github.com/mrz1836/reasonkernel/internal/adapters/metricsagg"
	"github.com/mrz1836/reasonkernel/internal/adapters/tracestore"
	"github.com/mrz1836/reasonkernel/internal/config"
	"github.com/mrz1836/reasonkernel/internal/steps"
)

// AddServeCommand adds the serve command to the root command.
func AddServeCommand(root *cobra.Command, global *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run the reasoning engine behind an HTTP execution surface",
		Long: `Serve starts an HTTP server exposing POST /v1/execute (run a
ProblemSpec and return its final state and trace) and GET /v1/trace/{trace_id}
(fetch and verify a previously persisted trace, when trace_store.dsn is
configured).

Examples:
  enginectl serve
  enginectl serve --addr :9000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), global)
		},
	}

	root.AddCommand(cmd)
}

func runServe(ctx context.Context, _ *GlobalFlags) error {
	logger := Logger()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load config, using defaults")
		cfg = config.DefaultConfig()
	}

	prov, err := buildProvider(cfg.Provider)
	if err != nil {
		return err
	}

	var store tracestore.Store
	if cfg.TraceStore.DSN != "" {
		pg, err := tracestore.NewPostgresStore(ctx, cfg.TraceStore.DSN, cfg.TraceStore.MaxConns)
		if err != nil {
			return fmt.Errorf("connect trace store: %w", err)
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("prepare trace store schema: %w", err)
		}
		defer pg.Close()
		store = pg
	} else {
		logger.Info().Msg("trace_store.dsn not configured, GET /v1/trace/{trace_id} will always 404")
	}

	var cache idempotency.Cache
	if cfg.Idempotency.Addr != "" {
		redisCache, err := idempotency.NewRedisCache(ctx, cfg.Idempotency.Addr)
		if err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Idempotency.Addr).
				Msg("failed to connect idempotency cache, retried requests will re-run the engine")
		} else {
			defer func() { _ = redisCache.Close() }()
			cache = redisCache
		}
	}

	agg := metricsagg.NewAggregator()

	srv := httpapi.New(httpapi.Config{
		Addr:         cfg.HTTP.Addr,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}, steps.Dependencies{Provider: prov}, store, cache, agg, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	logger.Info().Str("addr", cfg.HTTP.Addr).Msg("http execution surface listening")

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info().Msg("shutting down http execution surface")
		return srv.Close()
	}
}
