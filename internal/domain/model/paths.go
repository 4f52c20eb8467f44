package model

// DefaultElevationWeightFactor は標高差1mあたりのペナルティ（メートル換算）
const DefaultElevationWeightFactor = 0.1

// ElevationSample は丸め座標キーと標高（m）の組
// Fallback が true の場合は取得に失敗しており Elevation は代替値 0
type ElevationSample struct {
	Key       CoordKey
	Elevation float64
	Fallback  bool
	Err       error
}

// PathSegment は経路の1区間
type PathSegment struct {
	From                  Coordinate `json:"from"`
	To                    Coordinate `json:"to"`
	DistanceMeters        float64    `json:"distance_meters"`
	FromElevation         float64    `json:"from_elevation"`
	ToElevation           float64    `json:"to_elevation"`
	ElevationDelta        float64    `json:"elevation_delta"` // |e1 - e2|
	Cost                  float64    `json:"cost"`
	FromElevationFallback bool       `json:"from_elevation_fallback,omitempty"`
	ToElevationFallback   bool       `json:"to_elevation_fallback,omitempty"`
}

// Degraded は区間のどちらかの端点で標高の代替値が使われたかを返す
func (s PathSegment) Degraded() bool {
	return s.FromElevationFallback || s.ToElevationFallback
}

// Path は一人の工兵の経路とコスト
type Path struct {
	AgentID   string        `json:"agent_id"`
	Waypoints []Coordinate  `json:"waypoints"`
	Segments  []PathSegment `json:"segments"`
	TotalCost float64       `json:"total_cost"`
	// Degraded は標高取得に失敗した地点があり、コストが権威的でないことを示す
	Degraded bool `json:"degraded"`
}

// DistanceMeters は経路の水平距離の合計を返す
func (p *Path) DistanceMeters() float64 {
	if p == nil {
		return 0
	}
	var total float64
	for _, s := range p.Segments {
		total += s.DistanceMeters
	}
	return total
}

// FallbackCount は代替値が使われた区間の数を返す
func (p *Path) FallbackCount() int {
	if p == nil {
		return 0
	}
	count := 0
	for _, s := range p.Segments {
		if s.Degraded() {
			count++
		}
	}
	return count
}
