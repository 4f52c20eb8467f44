package strategy

import "Sapper-App/internal/domain/model"

// SequentialStrategy は割り当て順のままゾーンを巡回する既定の戦略
// 経路の最適化は一切行わない
type SequentialStrategy struct{}

// NewSequentialStrategy は新しいSequentialStrategyインスタンスを作成する
func NewSequentialStrategy() *SequentialStrategy {
	return &SequentialStrategy{}
}

func (s *SequentialStrategy) Name() string {
	return model.StrategySequential
}

// Order は入力順のコピーを返す
func (s *SequentialStrategy) Order(_ model.Coordinate, zones []model.HazardZone) []model.HazardZone {
	return copyZones(zones)
}
