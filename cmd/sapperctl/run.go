package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"Sapper-App/internal/config"
	"Sapper-App/internal/domain/model"
	"Sapper-App/internal/domain/repository"
	"Sapper-App/internal/infrastructure/elevation"
	"Sapper-App/internal/logging"
	"Sapper-App/internal/scenario"
	"Sapper-App/internal/usecase"
)

type planOptions struct {
	strategy     string
	weight       float64
	elevationURL string
	flat         bool
	format       string
}

// flatElevation はすべての地点で標高0を返す（オフライン計算用）
var flatElevation = repository.ElevationServiceFunc(func(ctx context.Context, _ model.Coordinate) (float64, error) {
	return 0, ctx.Err()
})

func newUseCase(cfg config.Config, source repository.ElevationService) (usecase.SapperPlanUseCase, error) {
	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	return usecase.NewSapperPlanUseCase(source, usecase.PlanSettings{
		DefaultStrategy:      cfg.PathStrategy,
		WeightFactor:         cfg.ElevationWeightFactor,
		MaxGoroutines:        cfg.PathEvalMaxGoroutines,
		MaxConcurrentFetches: cfg.ElevationMaxConcurrency,
		RunTimeout:           cfg.RunTimeout,
	}, usecase.WithUseCaseLogger(logger))
}

func runPlan(ctx context.Context, out io.Writer, path string, opts planOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	req, err := scenario.Load(path)
	if err != nil {
		return err
	}
	if opts.strategy != "" {
		req.Strategy = opts.strategy
	}
	if opts.weight >= 0 {
		w := opts.weight
		req.ElevationWeightFactor = &w
	}

	var source repository.ElevationService = flatElevation
	if !opts.flat {
		url := cfg.ElevationURL
		if opts.elevationURL != "" {
			url = opts.elevationURL
		}
		provider, err := elevation.NewOpenElevationProvider(url, elevation.WithTimeout(cfg.ElevationTimeout))
		if err != nil {
			return err
		}
		source = provider
	}

	uc, err := newUseCase(cfg, source)
	if err != nil {
		return err
	}
	resp, err := uc.CalculatePaths(ctx, req)
	if err != nil {
		return err
	}

	switch opts.format {
	case "json":
		return writeJSON(out, resp)
	case "geojson":
		return writeJSON(out, resp.GeoJSON)
	default:
		printPlan(out, resp)
		return nil
	}
}

func runAssign(ctx context.Context, out io.Writer, path string, format string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	req, err := scenario.Load(path)
	if err != nil {
		return err
	}

	// 割り当てでは標高を使わない
	uc, err := newUseCase(cfg, flatElevation)
	if err != nil {
		return err
	}
	resp, err := uc.AssignZones(ctx, req)
	if err != nil {
		return err
	}

	if format == "json" {
		return writeJSON(out, resp)
	}
	printAssignment(out, resp.Assignment)
	fmt.Fprintf(out, "合計ゾーン数: %d\n", resp.TotalZones)
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
