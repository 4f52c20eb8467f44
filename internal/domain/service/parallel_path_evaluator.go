package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"Sapper-App/internal/domain/model"
	"Sapper-App/internal/logging"
	"Sapper-App/internal/observability"
)

// DefaultMaxGoroutines は工兵ごとの経路評価の同時実行数の既定値
const DefaultMaxGoroutines = 5

// ParallelPathEvaluator は工兵ごとの経路評価を並行で実行する
// 工兵間の評価は独立しており、共有するのは標高キャッシュのみ
type ParallelPathEvaluator struct {
	planner       *PathPlanner
	evaluator     *PathCostEvaluator
	maxGoroutines int
	logger        *slog.Logger
}

// NewParallelPathEvaluator は新しい並行経路評価インスタンスを作成
func NewParallelPathEvaluator(planner *PathPlanner, evaluator *PathCostEvaluator, maxGoroutines int, logger *slog.Logger) *ParallelPathEvaluator {
	if maxGoroutines <= 0 {
		maxGoroutines = DefaultMaxGoroutines
	}
	return &ParallelPathEvaluator{
		planner:       planner,
		evaluator:     evaluator,
		maxGoroutines: maxGoroutines,
		logger:        logging.OrDiscard(logger),
	}
}

// EvaluateAll は割り当てられたゾーンを持つ工兵それぞれの経路を計画・評価する
// 結果は割り当ての工兵順に並び、ゾーンのない工兵は含まれない
func (p *ParallelPathEvaluator) EvaluateAll(ctx context.Context, assignment *model.Assignment) ([]*model.Path, error) {
	if assignment == nil || assignment.IsEmpty() {
		return []*model.Path{}, nil
	}

	start := time.Now()
	p.logger.InfoContext(ctx, "🚀 並行経路評価開始",
		slog.Int("agents", len(assignment.Agents)),
		slog.Int("zones", assignment.TotalZones()),
		slog.String("strategy", p.planner.StrategyName()),
	)

	results := make([]*model.Path, len(assignment.Agents))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxGoroutines)

	for i, aa := range assignment.Agents {
		if len(aa.Zones) == 0 {
			continue
		}
		g.Go(func() error {
			path, err := p.evaluateAgent(gctx, aa)
			if err != nil {
				return fmt.Errorf("工兵%sの経路評価に失敗: %w", aa.Agent.ID, err)
			}
			results[i] = path
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	paths := make([]*model.Path, 0, len(results))
	degraded := 0
	for _, path := range results {
		if path == nil {
			continue
		}
		if path.Degraded {
			degraded++
		}
		paths = append(paths, path)
	}

	p.logger.InfoContext(ctx, "✅ 並行経路評価完了",
		slog.Duration("elapsed", time.Since(start)),
		slog.Int("paths", len(paths)),
		slog.Int("degraded", degraded),
	)
	return paths, nil
}

func (p *ParallelPathEvaluator) evaluateAgent(ctx context.Context, aa model.AgentAssignment) (*model.Path, error) {
	ctx, span := observability.StartSpan(ctx, "path.evaluate",
		attribute.String("agent_id", aa.Agent.ID),
		attribute.Int("zones", len(aa.Zones)),
	)
	defer span.End()

	waypoints := p.planner.Plan(aa.Agent, aa.Zones)
	path, err := p.evaluator.Evaluate(ctx, aa.Agent.ID, waypoints)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Float64("total_cost", path.TotalCost),
		attribute.Bool("degraded", path.Degraded),
	)
	return path, nil
}
