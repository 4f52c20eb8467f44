package helper

import (
	"math"

	"Sapper-App/internal/domain/model"
)

// EarthRadiusMeters は球体地球モデルの半径（m）
// コア全体で距離・コスト・標高ペナルティはすべてメートルで扱う
const EarthRadiusMeters = 6371e3

// Distance は2地点間の大圏距離をハバーサイン式で計算する (m)
// 丸めグリッド上の座標で計算するため、丸めて等しい2点の距離は0になる
func Distance(a, b model.Coordinate) float64 {
	ka, kb := a.Key(), b.Key()
	if ka == kb {
		return 0
	}
	return haversine(ka.Coordinate(), kb.Coordinate())
}

func haversine(p1, p2 model.Coordinate) float64 {
	lat1 := degreesToRadians(p1.Latitude)
	lng1 := degreesToRadians(p1.Longitude)
	lat2 := degreesToRadians(p2.Latitude)
	lng2 := degreesToRadians(p2.Longitude)
	dLat := lat2 - lat1
	dLng := lng2 - lng1
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	// 丸め誤差で1をわずかに超えるのを防ぐ
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// PathDistance は経路上の連続する地点間距離の合計を返す (m)
func PathDistance(waypoints []model.Coordinate) float64 {
	var total float64
	for i := 0; i+1 < len(waypoints); i++ {
		total += Distance(waypoints[i], waypoints[i+1])
	}
	return total
}

// NearestIndex は origin に最も近い候補のインデックスを返す
// 距離が tieEpsilon 以内で並んだ場合は小さいインデックスを優先する。候補が空なら -1
func NearestIndex(origin model.Coordinate, candidates []model.Coordinate, tieEpsilon float64) int {
	best := -1
	bestDist := math.Inf(1)
	for i, c := range candidates {
		d := Distance(origin, c)
		if best == -1 || d < bestDist-tieEpsilon {
			best = i
			bestDist = d
		}
	}
	return best
}
