package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"Sapper-App/internal/config"
	"Sapper-App/internal/handler"
	"Sapper-App/internal/infrastructure/elevation"
	"Sapper-App/internal/logging"
	"Sapper-App/internal/observability"
	"Sapper-App/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("起動に失敗: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("設定の読み込みに失敗: %w", err)
	}

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.TracingEnabled,
		ServiceName: cfg.TracingServiceName,
	}, logger)
	if err != nil {
		return err
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, logger)

	collector, err := observability.NewCollector(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("メトリクスの登録に失敗: %w", err)
	}

	provider, err := elevation.NewOpenElevationProvider(cfg.ElevationURL,
		elevation.WithTimeout(cfg.ElevationTimeout),
		elevation.WithMetrics(collector),
		elevation.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("標高プロバイダの初期化に失敗: %w", err)
	}

	planUseCase, err := usecase.NewSapperPlanUseCase(provider, usecase.PlanSettings{
		DefaultStrategy:      cfg.PathStrategy,
		WeightFactor:         cfg.ElevationWeightFactor,
		MaxGoroutines:        cfg.PathEvalMaxGoroutines,
		MaxConcurrentFetches: cfg.ElevationMaxConcurrency,
		RunTimeout:           cfg.RunTimeout,
	},
		usecase.WithCollector(collector),
		usecase.WithUseCaseLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("ユースケースの初期化に失敗: %w", err)
	}

	router := handler.NewRouter(handler.NewPlanHandler(planUseCase), collector.Handler())
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("🚀 Sapper-App server starting", slog.String("addr", srv.Addr), slog.String("elevation_url", cfg.ElevationURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("サーバーの起動に失敗: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("🛑 シャットダウン中...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("シャットダウンに失敗: %w", err)
	}
	logger.Info("✅ サーバーを停止しました")
	return nil
}
