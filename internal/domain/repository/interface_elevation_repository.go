package repository

import (
	"context"

	"Sapper-App/internal/domain/model"
)

// ElevationService は座標の地表標高（m）を取得するインターフェース
// 失敗時は *model.LookupFailure を返し、0 を黙って返してはならない
type ElevationService interface {
	Elevation(ctx context.Context, c model.Coordinate) (float64, error)
}

// ElevationServiceFunc は関数を ElevationService として扱うためのアダプタ
type ElevationServiceFunc func(ctx context.Context, c model.Coordinate) (float64, error)

func (f ElevationServiceFunc) Elevation(ctx context.Context, c model.Coordinate) (float64, error) {
	return f(ctx, c)
}

// ElevationPrefetcher は複数地点の標高を先読みできる実装が満たすインターフェース
type ElevationPrefetcher interface {
	Prefetch(ctx context.Context, coords []model.Coordinate) error
}
