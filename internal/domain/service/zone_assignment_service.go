package service

import (
	"Sapper-App/internal/domain/helper"
	"Sapper-App/internal/domain/model"
)

// ZoneAssignmentService はゾーンを最も近い工兵に割り当てる
// 負荷分散は行わないため、一人の工兵に全ゾーンが集中することもある
type ZoneAssignmentService struct {
	tieEpsilon float64
}

// NewZoneAssignmentService は新しいZoneAssignmentServiceインスタンスを作成する
func NewZoneAssignmentService() *ZoneAssignmentService {
	return &ZoneAssignmentService{tieEpsilon: model.AssignmentTieEpsilonMeters}
}

// Assign は各ゾーンを距離最小の工兵に割り当てる (O(Z·A))
// 等距離の工兵が複数いる場合は入力順で先の工兵を選ぶ
func (s *ZoneAssignmentService) Assign(zones []model.HazardZone, agents []model.Agent) (*model.Assignment, error) {
	assignment := model.NewAssignment(agents)
	if len(zones) == 0 {
		return assignment, nil
	}
	if len(agents) == 0 {
		return nil, model.ErrNoAgentsAvailable
	}

	locations := make([]model.Coordinate, len(agents))
	for i, a := range agents {
		locations[i] = a.Location
	}

	for _, zone := range zones {
		nearest := helper.NearestIndex(zone.Centroid, locations, s.tieEpsilon)
		assignment.Agents[nearest].Zones = append(assignment.Agents[nearest].Zones, zone)
	}
	return assignment, nil
}
