package model

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// CoordKeyPrecision はキー化する際に丸める小数点以下の桁数（約11m）
const CoordKeyPrecision = 4

const coordKeyScale = 1e4

// Coordinate 緯度経度（度）を表す基本的な型
type Coordinate struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// CoordKey は丸めた座標を固定小数点の整数ペアで表したキー
// 浮動小数点の揺らぎで別キーにならないよう、マップのキーには必ずこれを使う
type CoordKey struct {
	LatE4 int64
	LonE4 int64
}

// NewCoordinate は新しいCoordinateを作成する
func NewCoordinate(lat, lng float64) Coordinate {
	return Coordinate{Latitude: lat, Longitude: lng}
}

// Key は丸めた座標キーを返す
func (c Coordinate) Key() CoordKey {
	return CoordKey{
		LatE4: int64(math.Round(c.Latitude * coordKeyScale)),
		LonE4: int64(math.Round(c.Longitude * coordKeyScale)),
	}
}

// Canonical は丸めグリッド上に吸着させた座標を返す
func (c Coordinate) Canonical() Coordinate {
	return c.Key().Coordinate()
}

// Equal は丸めた座標同士で等価判定する
func (c Coordinate) Equal(other Coordinate) bool {
	return c.Key() == other.Key()
}

// Validate は緯度経度の範囲をチェックする
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Latitude) || math.IsInf(c.Latitude, 0) || c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v", ErrInvalidCoordinate, c.Latitude)
	}
	if math.IsNaN(c.Longitude) || math.IsInf(c.Longitude, 0) || c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v", ErrInvalidCoordinate, c.Longitude)
	}
	return nil
}

// Point は orb.Point ([lng, lat]) に変換する
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Longitude, c.Latitude}
}

// CoordinateFromPoint は orb.Point から Coordinate に変換する
func CoordinateFromPoint(p orb.Point) Coordinate {
	return Coordinate{Latitude: p.Lat(), Longitude: p.Lon()}
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", c.Latitude, c.Longitude)
}

// Coordinate はキーを度単位の座標に戻す
func (k CoordKey) Coordinate() Coordinate {
	return Coordinate{
		Latitude:  float64(k.LatE4) / coordKeyScale,
		Longitude: float64(k.LonE4) / coordKeyScale,
	}
}

// String はsingleflightなど文字列キーが必要な箇所で使う
func (k CoordKey) String() string {
	return fmt.Sprintf("%d,%d", k.LatE4, k.LonE4)
}
