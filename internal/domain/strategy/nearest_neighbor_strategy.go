package strategy

import (
	"Sapper-App/internal/domain/helper"
	"Sapper-App/internal/domain/model"
)

// NearestNeighborStrategy は現在地から最も近い未訪問ゾーンを順に選ぶ貪欲法
type NearestNeighborStrategy struct{}

// NewNearestNeighborStrategy は新しいNearestNeighborStrategyインスタンスを作成する
func NewNearestNeighborStrategy() *NearestNeighborStrategy {
	return &NearestNeighborStrategy{}
}

func (s *NearestNeighborStrategy) Name() string {
	return model.StrategyNearestNeighbor
}

// Order は貪欲法で巡回順を決める。等距離の場合は割り当て順で先のゾーンを選ぶ
func (s *NearestNeighborStrategy) Order(start model.Coordinate, zones []model.HazardZone) []model.HazardZone {
	return nearestNeighborOrder(start, zones)
}

func nearestNeighborOrder(start model.Coordinate, zones []model.HazardZone) []model.HazardZone {
	remaining := copyZones(zones)
	ordered := make([]model.HazardZone, 0, len(zones))
	current := start
	for len(remaining) > 0 {
		centroids := make([]model.Coordinate, len(remaining))
		for i, z := range remaining {
			centroids[i] = z.Centroid
		}
		next := helper.NearestIndex(current, centroids, model.AssignmentTieEpsilonMeters)
		ordered = append(ordered, remaining[next])
		current = remaining[next].Centroid
		remaining = append(remaining[:next], remaining[next+1:]...)
	}
	return ordered
}
