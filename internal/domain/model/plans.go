package model

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// 経路計画戦略の名前
const (
	StrategySequential      = "sequential"
	StrategyNearestNeighbor = "nearest_neighbor"
	StrategyTwoOpt          = "two_opt"
)

// AgentInput はリクエストで受け取る工兵
type AgentInput struct {
	ID        string  `json:"id" yaml:"id"`
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// ZoneInput はリクエストで受け取るゾーン
// centroid / vertices / corners のいずれか一つを指定する
type ZoneInput struct {
	ID       string       `json:"id" yaml:"id"`
	Centroid *Coordinate  `json:"centroid,omitempty" yaml:"centroid,omitempty"`
	Vertices []Coordinate `json:"vertices,omitempty" yaml:"vertices,omitempty"`
	Corners  []Coordinate `json:"corners,omitempty" yaml:"corners,omitempty"` // 矩形の始点・終点
}

// PlanRequest は「経路計算」リクエスト
type PlanRequest struct {
	Agents                []AgentInput `json:"agents" yaml:"agents"`
	Zones                 []ZoneInput  `json:"zones" yaml:"zones"`
	Strategy              string       `json:"strategy" yaml:"strategy"`                                                   // 空の場合はサーバ既定値
	ElevationWeightFactor *float64     `json:"elevation_weight_factor,omitempty" yaml:"elevation_weight_factor,omitempty"` // 空の場合はサーバ既定値
}

// AssignmentView はレスポンス用の割り当て表現
type AssignmentView struct {
	AgentID  string       `json:"agent_id"`
	Location Coordinate   `json:"location"`
	Zones    []HazardZone `json:"zones"`
}

// AssignmentResponse は割り当てのみのレスポンス
type AssignmentResponse struct {
	RunID      string           `json:"run_id"`
	Assignment []AssignmentView `json:"assignment"`
	TotalZones int              `json:"total_zones"`
}

// PlanResponse は「経路計算」レスポンス
type PlanResponse struct {
	RunID      string                     `json:"run_id"`
	Strategy   string                     `json:"strategy"`
	Assignment []AssignmentView           `json:"assignment"`
	Paths      []*Path                    `json:"paths"`
	TotalCost  float64                    `json:"total_cost"`
	Degraded   bool                       `json:"degraded"`
	GeoJSON    *geojson.FeatureCollection `json:"geojson"`
}

// ToAgents はリクエストの工兵をドメインモデルに変換する（IDが空の場合は連番）
func (r *PlanRequest) ToAgents() []Agent {
	agents := make([]Agent, len(r.Agents))
	for i, in := range r.Agents {
		id := in.ID
		if id == "" {
			id = fmt.Sprintf("agent-%d", i+1)
		}
		agents[i] = NewAgent(id, NewCoordinate(in.Latitude, in.Longitude))
	}
	return agents
}

// ToZones はリクエストのゾーンをドメインモデルに変換する
func (r *PlanRequest) ToZones() ([]HazardZone, error) {
	zones := make([]HazardZone, len(r.Zones))
	for i, in := range r.Zones {
		id := in.ID
		if id == "" {
			id = fmt.Sprintf("zone-%d", i+1)
		}
		zone, err := in.toHazardZone(id)
		if err != nil {
			return nil, err
		}
		zones[i] = zone
	}
	return zones, nil
}

func (in ZoneInput) toHazardZone(id string) (HazardZone, error) {
	switch {
	case in.Centroid != nil:
		return NewHazardZoneAt(id, *in.Centroid), nil
	case len(in.Corners) > 0:
		if len(in.Corners) != 2 {
			return HazardZone{}, fmt.Errorf("%w: zone %s: corners must contain exactly 2 points", ErrInvalidZone, id)
		}
		return NewRectangleZone(id, in.Corners[0], in.Corners[1])
	default:
		return NewHazardZone(id, in.Vertices)
	}
}

// NewAssignmentViews は割り当て結果をレスポンス用に変換する
func NewAssignmentViews(a *Assignment) []AssignmentView {
	if a == nil {
		return []AssignmentView{}
	}
	views := make([]AssignmentView, len(a.Agents))
	for i, aa := range a.Agents {
		views[i] = AssignmentView{
			AgentID:  aa.Agent.ID,
			Location: aa.Agent.Location,
			Zones:    aa.Zones,
		}
	}
	return views
}

// BuildFeatureCollection は地図描画用のGeoJSONを作成する
// 工兵・ゾーン重心は Point、経路は LineString（コストをプロパティに持つ）
func BuildFeatureCollection(a *Assignment, paths []*Path) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	if a != nil {
		for _, aa := range a.Agents {
			f := geojson.NewFeature(aa.Agent.Location.Point())
			f.Properties["kind"] = "agent"
			f.Properties["agent_id"] = aa.Agent.ID
			f.Properties["zone_count"] = len(aa.Zones)
			fc.Append(f)

			for _, z := range aa.Zones {
				zf := geojson.NewFeature(z.Centroid.Point())
				zf.Properties["kind"] = "zone"
				zf.Properties["zone_id"] = z.ID
				zf.Properties["agent_id"] = aa.Agent.ID
				fc.Append(zf)
			}
		}
	}

	for _, p := range paths {
		if p == nil || len(p.Waypoints) < 2 {
			continue
		}
		line := make(orb.LineString, 0, len(p.Waypoints))
		for _, w := range p.Waypoints {
			line = append(line, w.Point())
		}
		f := geojson.NewFeature(line)
		f.BBox = geojson.NewBBox(line.Bound())
		f.Properties["kind"] = "route"
		f.Properties["agent_id"] = p.AgentID
		f.Properties["total_cost"] = p.TotalCost
		f.Properties["degraded"] = p.Degraded
		f.Properties["label"] = fmt.Sprintf("経路コスト: %.2f", p.TotalCost)
		fc.Append(f)
	}
	return fc
}
