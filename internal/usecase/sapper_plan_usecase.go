package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"Sapper-App/internal/domain/model"
	"Sapper-App/internal/domain/repository"
	"Sapper-App/internal/domain/service"
	"Sapper-App/internal/domain/strategy"
	"Sapper-App/internal/infrastructure/elevation"
	"Sapper-App/internal/logging"
	"Sapper-App/internal/observability"
)

type SapperPlanUseCase interface {
	// CalculatePaths はゾーンを工兵に割り当て、工兵ごとの経路とコストを計算する
	CalculatePaths(ctx context.Context, req *model.PlanRequest) (*model.PlanResponse, error)

	// AssignZones はゾーンの割り当てのみを行う（標高は取得しない）
	AssignZones(ctx context.Context, req *model.PlanRequest) (*model.AssignmentResponse, error)
}

// PlanSettings は経路計算の既定値
type PlanSettings struct {
	DefaultStrategy      string
	WeightFactor         float64
	MaxGoroutines        int
	MaxConcurrentFetches int
	RunTimeout           time.Duration
}

// DefaultPlanSettings は既定のPlanSettingsを返す
func DefaultPlanSettings() PlanSettings {
	return PlanSettings{
		DefaultStrategy:      model.StrategySequential,
		WeightFactor:         model.DefaultElevationWeightFactor,
		MaxGoroutines:        service.DefaultMaxGoroutines,
		MaxConcurrentFetches: elevation.DefaultMaxConcurrentFetches,
	}
}

// sapperPlanUseCaseImpl はSapperPlanUseCaseの実装
type sapperPlanUseCaseImpl struct {
	elevationSource repository.ElevationService
	assigner        *service.ZoneAssignmentService
	strategies      *strategy.Registry
	settings        PlanSettings
	metrics         *observability.Collector
	reporter        service.SegmentReporter
	logger          *slog.Logger
	newRunID        func() string
}

// UseCaseOption はユースケースのオプション
type UseCaseOption func(*sapperPlanUseCaseImpl)

// WithStepReporter は区間ごとの通知先を設定する（既定はログ出力）
func WithStepReporter(r service.SegmentReporter) UseCaseOption {
	return func(u *sapperPlanUseCaseImpl) {
		u.reporter = r
	}
}

// WithCollector はメトリクスの記録先を設定する
func WithCollector(c *observability.Collector) UseCaseOption {
	return func(u *sapperPlanUseCaseImpl) {
		u.metrics = c
	}
}

// WithUseCaseLogger はロガーを設定する
func WithUseCaseLogger(l *slog.Logger) UseCaseOption {
	return func(u *sapperPlanUseCaseImpl) {
		u.logger = logging.OrDiscard(l)
	}
}

// WithRunIDGenerator は実行IDの生成方法を差し替える
func WithRunIDGenerator(f func() string) UseCaseOption {
	return func(u *sapperPlanUseCaseImpl) {
		if f != nil {
			u.newRunID = f
		}
	}
}

// NewSapperPlanUseCase は新しいSapperPlanUseCaseインスタンスを作成
// elevationSource は実行をまたいで共有され、キャッシュは実行ごとに作り直す
func NewSapperPlanUseCase(elevationSource repository.ElevationService, settings PlanSettings, opts ...UseCaseOption) (SapperPlanUseCase, error) {
	if elevationSource == nil {
		return nil, errors.New("標高サービスが指定されていません")
	}
	strategies := strategy.NewRegistry()
	if settings.DefaultStrategy == "" {
		settings.DefaultStrategy = model.StrategySequential
	}
	if _, err := strategies.Get(settings.DefaultStrategy); err != nil {
		return nil, err
	}
	if err := validateWeight(settings.WeightFactor); err != nil {
		return nil, err
	}

	u := &sapperPlanUseCaseImpl{
		elevationSource: elevationSource,
		assigner:        service.NewZoneAssignmentService(),
		strategies:      strategies,
		settings:        settings,
		logger:          logging.Discard(),
		newRunID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u, nil
}

// AssignZones はゾーンの割り当てのみを行う
func (u *sapperPlanUseCaseImpl) AssignZones(ctx context.Context, req *model.PlanRequest) (*model.AssignmentResponse, error) {
	runID := u.newRunID()
	agents, zones, err := u.prepare(req)
	if err != nil {
		return nil, err
	}

	assignment, err := u.assigner.Assign(zones, agents)
	if err != nil {
		u.logger.WarnContext(ctx, "⚠️ ゾーン割り当てに失敗", slog.String("run_id", runID), slog.String("error", err.Error()))
		return nil, err
	}

	u.logger.InfoContext(ctx, "✅ ゾーン割り当て完了",
		slog.String("run_id", runID),
		slog.Int("agents", len(agents)),
		slog.Int("zones", assignment.TotalZones()),
	)
	return &model.AssignmentResponse{
		RunID:      runID,
		Assignment: model.NewAssignmentViews(assignment),
		TotalZones: assignment.TotalZones(),
	}, nil
}

// CalculatePaths は割り当て・経路計画・コスト評価を1回の実行として行う
func (u *sapperPlanUseCaseImpl) CalculatePaths(ctx context.Context, req *model.PlanRequest) (resp *model.PlanResponse, err error) {
	runID := u.newRunID()
	if u.settings.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.settings.RunTimeout)
		defer cancel()
	}

	ctx, span := observability.StartSpan(ctx, "plan.run", attribute.String("run_id", runID))
	defer span.End()

	outcome := observability.PlanOutcomeFailure
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		u.metrics.ObservePlanRun(outcome)
	}()

	agents, zones, err := u.prepare(req)
	if err != nil {
		outcome = observability.PlanOutcomeInvalid
		return nil, err
	}
	pathStrategy, weight, err := u.resolveOptions(req)
	if err != nil {
		outcome = observability.PlanOutcomeInvalid
		return nil, err
	}

	u.logger.InfoContext(ctx, "🚀 経路計算開始",
		slog.String("run_id", runID),
		slog.Int("agents", len(agents)),
		slog.Int("zones", len(zones)),
		slog.String("strategy", pathStrategy.Name()),
		slog.Float64("weight_factor", weight),
	)

	assignment, err := u.assigner.Assign(zones, agents)
	if err != nil {
		if errors.Is(err, model.ErrConfiguration) {
			outcome = observability.PlanOutcomeInvalid
		}
		return nil, err
	}

	cache := elevation.NewCachedElevationService(u.elevationSource, u.settings.MaxConcurrentFetches, u.cacheMetrics())
	evalOpts := []service.EvaluatorOption{
		service.WithEvaluatorLogger(u.logger.With(slog.String("run_id", runID))),
	}
	if u.reporter != nil {
		evalOpts = append(evalOpts, service.WithSegmentReporter(u.reporter))
	}
	if u.metrics != nil {
		evalOpts = append(evalOpts, service.WithFallbackObserver(u.metrics))
	}
	evaluator, err := service.NewPathCostEvaluator(cache, weight, evalOpts...)
	if err != nil {
		return nil, err
	}
	planner := service.NewPathPlanner(pathStrategy)
	parallel := service.NewParallelPathEvaluator(planner, evaluator, u.settings.MaxGoroutines, u.logger)

	paths, err := parallel.EvaluateAll(ctx, assignment)
	if err != nil {
		if ctx.Err() != nil {
			outcome = observability.PlanOutcomeCancelled
			u.logger.WarnContext(ctx, "⚠️ 経路計算が中断されました", slog.String("run_id", runID), slog.String("error", err.Error()))
			return nil, fmt.Errorf("経路計算が中断されました: %w", ctx.Err())
		}
		return nil, err
	}

	resp = &model.PlanResponse{
		RunID:      runID,
		Strategy:   pathStrategy.Name(),
		Assignment: model.NewAssignmentViews(assignment),
		Paths:      paths,
		GeoJSON:    model.BuildFeatureCollection(assignment, paths),
	}
	for _, p := range paths {
		resp.TotalCost += p.TotalCost
		if p.Degraded {
			resp.Degraded = true
		}
	}

	outcome = observability.PlanOutcomeSuccess
	if resp.Degraded {
		outcome = observability.PlanOutcomeDegraded
	}
	span.SetAttributes(
		attribute.Float64("total_cost", resp.TotalCost),
		attribute.Bool("degraded", resp.Degraded),
		attribute.Int64("elevation_fetches", cache.Fetches()),
	)
	u.logger.InfoContext(ctx, "✅ 経路計算完了",
		slog.String("run_id", runID),
		slog.Int("paths", len(paths)),
		slog.Float64("total_cost", resp.TotalCost),
		slog.Bool("degraded", resp.Degraded),
		slog.Int64("elevation_fetches", cache.Fetches()),
		slog.Int("cached_points", cache.Len()),
	)
	return resp, nil
}

// prepare はリクエストをドメインモデルに変換し、座標を検証する
func (u *sapperPlanUseCaseImpl) prepare(req *model.PlanRequest) ([]model.Agent, []model.HazardZone, error) {
	if req == nil {
		return nil, nil, fmt.Errorf("%w: リクエストが空です", model.ErrInvalidInput)
	}

	agents := req.ToAgents()
	seen := make(map[string]struct{}, len(agents))
	for _, a := range agents {
		if err := a.Validate(); err != nil {
			return nil, nil, err
		}
		if _, dup := seen[a.ID]; dup {
			return nil, nil, fmt.Errorf("%w: 工兵IDが重複しています: %s", model.ErrInvalidInput, a.ID)
		}
		seen[a.ID] = struct{}{}
	}

	zones, err := req.ToZones()
	if err != nil {
		return nil, nil, err
	}
	for _, z := range zones {
		if err := z.Validate(); err != nil {
			return nil, nil, err
		}
	}
	return agents, zones, nil
}

// resolveOptions はリクエストの指定とサーバ既定値から戦略と重み係数を決める
func (u *sapperPlanUseCaseImpl) resolveOptions(req *model.PlanRequest) (strategy.PathStrategy, float64, error) {
	name := req.Strategy
	if name == "" {
		name = u.settings.DefaultStrategy
	}
	s, err := u.strategies.Get(name)
	if err != nil {
		return nil, 0, err
	}

	weight := u.settings.WeightFactor
	if req.ElevationWeightFactor != nil {
		weight = *req.ElevationWeightFactor
		if err := validateWeight(weight); err != nil {
			return nil, 0, err
		}
	}
	return s, weight, nil
}

func (u *sapperPlanUseCaseImpl) cacheMetrics() elevation.Metrics {
	if u.metrics == nil {
		return nil
	}
	return u.metrics
}

func validateWeight(w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return fmt.Errorf("%w: 標高の重み係数は0以上の有限値である必要があります: %v", model.ErrInvalidInput, w)
	}
	return nil
}
