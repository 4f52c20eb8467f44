package service

import (
	"Sapper-App/internal/domain/model"
	"Sapper-App/internal/domain/strategy"
)

// PathPlanner は工兵が辿る経由地の列を作る
// 既定は sequential（開始地点 + 割り当て順のゾーン重心）で、最適化は明示的に戦略を選んだ場合のみ行う
type PathPlanner struct {
	strategy strategy.PathStrategy
}

// NewPathPlanner は新しいPathPlannerインスタンスを作成する（nil の場合は sequential）
func NewPathPlanner(s strategy.PathStrategy) *PathPlanner {
	if s == nil {
		s = strategy.NewSequentialStrategy()
	}
	return &PathPlanner{strategy: s}
}

// StrategyName は使用している戦略名を返す
func (p *PathPlanner) StrategyName() string {
	return p.strategy.Name()
}

// Plan は開始地点に続けてゾーン重心を並べた経由地を返す
func (p *PathPlanner) Plan(agent model.Agent, zones []model.HazardZone) []model.Coordinate {
	ordered := p.strategy.Order(agent.Location, zones)
	path := make([]model.Coordinate, 0, len(ordered)+1)
	path = append(path, agent.Location)
	for _, z := range ordered {
		path = append(path, z.Centroid)
	}
	return path
}
