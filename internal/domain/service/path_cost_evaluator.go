package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"Sapper-App/internal/domain/helper"
	"Sapper-App/internal/domain/model"
	"Sapper-App/internal/domain/repository"
	"Sapper-App/internal/logging"
)

// SegmentReporter は区間コストと累計を計算した順に受け取る
type SegmentReporter interface {
	ReportSegment(ctx context.Context, agentID string, step int, seg model.PathSegment, runningTotal float64)
}

// SegmentReporterFunc は関数を SegmentReporter として扱うためのアダプタ
type SegmentReporterFunc func(ctx context.Context, agentID string, step int, seg model.PathSegment, runningTotal float64)

func (f SegmentReporterFunc) ReportSegment(ctx context.Context, agentID string, step int, seg model.PathSegment, runningTotal float64) {
	f(ctx, agentID, step, seg, runningTotal)
}

// LogSegmentReporter は各区間をログに出力する
type LogSegmentReporter struct {
	logger *slog.Logger
}

// NewLogSegmentReporter は新しいLogSegmentReporterインスタンスを作成する
func NewLogSegmentReporter(logger *slog.Logger) *LogSegmentReporter {
	return &LogSegmentReporter{logger: logging.OrDiscard(logger)}
}

func (r *LogSegmentReporter) ReportSegment(ctx context.Context, agentID string, step int, seg model.PathSegment, runningTotal float64) {
	r.logger.InfoContext(ctx, fmt.Sprintf("👣 ステップ%d: %s → %s", step, seg.From, seg.To),
		slog.String("agent_id", agentID),
		slog.Float64("segment_cost", seg.Cost),
		slog.Float64("total_cost", runningTotal),
		slog.Bool("degraded", seg.Degraded()),
	)
}

// FallbackObserver は標高の代替値が使われたことを記録する（*observability.Collector が満たす）
type FallbackObserver interface {
	ObserveFallback()
}

// PathCostEvaluator は距離と標高差から経路コストを計算する
// 区間コスト = 距離(m) + |標高差(m)| × elevationWeightFactor
type PathCostEvaluator struct {
	elevation    repository.ElevationService
	weightFactor float64
	reporter     SegmentReporter
	fallbacks    FallbackObserver
	logger       *slog.Logger
}

// EvaluatorOption はPathCostEvaluatorのオプション
type EvaluatorOption func(*PathCostEvaluator)

// WithSegmentReporter は区間ごとの通知先を設定する
func WithSegmentReporter(r SegmentReporter) EvaluatorOption {
	return func(e *PathCostEvaluator) {
		if r != nil {
			e.reporter = r
		}
	}
}

// WithFallbackObserver は代替値使用の記録先を設定する
func WithFallbackObserver(o FallbackObserver) EvaluatorOption {
	return func(e *PathCostEvaluator) {
		e.fallbacks = o
	}
}

// WithEvaluatorLogger はロガーを設定する
func WithEvaluatorLogger(l *slog.Logger) EvaluatorOption {
	return func(e *PathCostEvaluator) {
		e.logger = logging.OrDiscard(l)
	}
}

// NewPathCostEvaluator は新しいPathCostEvaluatorインスタンスを作成する
func NewPathCostEvaluator(elevation repository.ElevationService, weightFactor float64, opts ...EvaluatorOption) (*PathCostEvaluator, error) {
	if elevation == nil {
		return nil, errors.New("標高サービスが指定されていません")
	}
	if math.IsNaN(weightFactor) || math.IsInf(weightFactor, 0) || weightFactor < 0 {
		return nil, fmt.Errorf("標高の重み係数は0以上の有限値である必要があります: %v", weightFactor)
	}
	e := &PathCostEvaluator{
		elevation:    elevation,
		weightFactor: weightFactor,
		logger:       logging.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.reporter == nil {
		e.reporter = NewLogSegmentReporter(e.logger)
	}
	return e, nil
}

// WeightFactor は標高の重み係数を返す
func (e *PathCostEvaluator) WeightFactor() float64 {
	return e.weightFactor
}

// TotalCost は経路の総コストを返す（経由地が0または1の場合は0）
func (e *PathCostEvaluator) TotalCost(ctx context.Context, waypoints []model.Coordinate) (float64, error) {
	path, err := e.Evaluate(ctx, "", waypoints)
	if err != nil {
		return 0, err
	}
	return path.TotalCost, nil
}

type waypointElevation struct {
	value    float64
	fallback bool
	resolved bool
}

// Evaluate は経由地の順に区間コストを計算し、計算した区間から順に通知する
// 標高取得の失敗は標高0で代替して続行し、中断するのはコンテキストのキャンセル時のみ
func (e *PathCostEvaluator) Evaluate(ctx context.Context, agentID string, waypoints []model.Coordinate) (*model.Path, error) {
	path := &model.Path{
		AgentID:   agentID,
		Waypoints: append([]model.Coordinate(nil), waypoints...),
		Segments:  []model.PathSegment{},
	}
	if len(waypoints) < 2 {
		return path, nil
	}

	// 区間の計算は順序に依存するが、各地点の標高は先読みしてよい
	if p, ok := e.elevation.(repository.ElevationPrefetcher); ok {
		if err := p.Prefetch(ctx, waypoints); err != nil {
			return nil, fmt.Errorf("標高の先読みに失敗: %w", err)
		}
	}

	elevations := make([]waypointElevation, len(waypoints))
	resolve := func(i int) (waypointElevation, error) {
		if elevations[i].resolved {
			return elevations[i], nil
		}
		v, err := e.elevation.Elevation(ctx, waypoints[i])
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return waypointElevation{}, ctxErr
			}
			e.logger.WarnContext(ctx, "⚠️ 標高取得に失敗したため標高0で代替します",
				slog.String("agent_id", agentID),
				slog.Float64("lat", waypoints[i].Latitude),
				slog.Float64("lon", waypoints[i].Longitude),
				slog.String("error", err.Error()),
			)
			if e.fallbacks != nil {
				e.fallbacks.ObserveFallback()
			}
			elevations[i] = waypointElevation{value: 0, fallback: true, resolved: true}
			return elevations[i], nil
		}
		elevations[i] = waypointElevation{value: v, resolved: true}
		return elevations[i], nil
	}

	var total float64
	for i := 0; i+1 < len(waypoints); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		from, err := resolve(i)
		if err != nil {
			return nil, err
		}
		to, err := resolve(i + 1)
		if err != nil {
			return nil, err
		}

		seg := e.segment(waypoints[i], waypoints[i+1], from, to)
		total += seg.Cost
		path.Segments = append(path.Segments, seg)
		if seg.Degraded() {
			path.Degraded = true
		}
		e.reporter.ReportSegment(ctx, agentID, i+1, seg, total)
	}
	path.TotalCost = total
	return path, nil
}

func (e *PathCostEvaluator) segment(from, to model.Coordinate, fromElev, toElev waypointElevation) model.PathSegment {
	distance := helper.Distance(from, to)
	delta := math.Abs(fromElev.value - toElev.value)
	return model.PathSegment{
		From:                  from,
		To:                    to,
		DistanceMeters:        distance,
		FromElevation:         fromElev.value,
		ToElevation:           toElev.value,
		ElevationDelta:        delta,
		Cost:                  distance + delta*e.weightFactor,
		FromElevationFallback: fromElev.fallback,
		ToElevationFallback:   toElev.fallback,
	}
}
