package model

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Agent 工兵（割り当て時点の位置で識別される）
type Agent struct {
	ID       string     `json:"id"`
	Location Coordinate `json:"location"`
}

// HazardZone 危険区域（重心で識別される）
type HazardZone struct {
	ID       string       `json:"id"`
	Centroid Coordinate   `json:"centroid"`
	Vertices []Coordinate `json:"vertices,omitempty"`
}

// Validate は工兵の位置の範囲をチェックする
func (a Agent) Validate() error {
	if err := a.Location.Validate(); err != nil {
		return fmt.Errorf("agent %s: %w", a.ID, err)
	}
	return nil
}

// Validate はゾーン重心と頂点の範囲をチェックする
func (z HazardZone) Validate() error {
	if err := z.Centroid.Validate(); err != nil {
		return fmt.Errorf("zone %s: %w", z.ID, err)
	}
	for _, v := range z.Vertices {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("zone %s: %w", z.ID, err)
		}
	}
	return nil
}

// NewAgent は新しいAgentを作成する
func NewAgent(id string, location Coordinate) Agent {
	return Agent{ID: id, Location: location}
}

// NewHazardZoneAt は重心が既知のゾーンを作成する
func NewHazardZoneAt(id string, centroid Coordinate) HazardZone {
	return HazardZone{ID: id, Centroid: centroid}
}

// NewHazardZone はポリゴン頂点からゾーンを作成する（重心は頂点の平均）
func NewHazardZone(id string, vertices []Coordinate) (HazardZone, error) {
	centroid, err := Centroid(vertices)
	if err != nil {
		return HazardZone{}, fmt.Errorf("zone %s: %w", id, err)
	}
	vs := make([]Coordinate, len(vertices))
	copy(vs, vertices)
	return HazardZone{ID: id, Centroid: centroid, Vertices: vs}, nil
}

// NewRectangleZone はドラッグの始点と終点から矩形ゾーンを作成する
// 地図UIと同じく始点で閉じた5点のリングを作り、その頂点平均を重心とする
func NewRectangleZone(id string, start, end Coordinate) (HazardZone, error) {
	ring := RectangleRing(start, end)
	vertices := make([]Coordinate, 0, len(ring))
	for _, p := range ring {
		vertices = append(vertices, CoordinateFromPoint(p))
	}
	return NewHazardZone(id, vertices)
}

// RectangleRing は始点・終点から閉じた矩形リングを作成する
func RectangleRing(start, end Coordinate) orb.Ring {
	s := start.Point()
	e := end.Point()
	return orb.Ring{
		s,
		{e.Lon(), s.Lat()},
		e,
		{s.Lon(), e.Lat()},
		s,
	}
}

// Centroid は頂点の緯度・経度それぞれの算術平均を返す
func Centroid(points []Coordinate) (Coordinate, error) {
	if len(points) == 0 {
		return Coordinate{}, ErrEmptyPolygon
	}
	var sumLat, sumLng float64
	for _, p := range points {
		sumLat += p.Latitude
		sumLng += p.Longitude
	}
	n := float64(len(points))
	return Coordinate{Latitude: sumLat / n, Longitude: sumLng / n}, nil
}
