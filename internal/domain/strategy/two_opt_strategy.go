package strategy

import (
	"Sapper-App/internal/domain/helper"
	"Sapper-App/internal/domain/model"
)

const (
	defaultTwoOptMaxIters = 1000
	twoOptEps             = 1e-9
)

// TwoOptStrategy は最近傍法の結果を 2-opt で改善する
// 開始地点は固定、終点は自由（開始地点には戻らない）の開路として扱う
type TwoOptStrategy struct {
	maxIters int
}

// NewTwoOptStrategy は新しいTwoOptStrategyインスタンスを作成する（maxIters<=0で既定値）
func NewTwoOptStrategy(maxIters int) *TwoOptStrategy {
	if maxIters <= 0 {
		maxIters = defaultTwoOptMaxIters
	}
	return &TwoOptStrategy{maxIters: maxIters}
}

func (s *TwoOptStrategy) Name() string {
	return model.StrategyTwoOpt
}

// Order は最初に改善が見つかった時点で区間を反転し、改善がなくなるまで繰り返す
func (s *TwoOptStrategy) Order(start model.Coordinate, zones []model.HazardZone) []model.HazardZone {
	ordered := nearestNeighborOrder(start, zones)
	n := len(ordered)
	if n < 2 {
		return ordered
	}

	// pts[0] は開始地点、pts[1..n] はゾーン重心
	pts := make([]model.Coordinate, n+1)
	pts[0] = start
	for i, z := range ordered {
		pts[i+1] = z.Centroid
	}
	d := func(u, v int) float64 { return helper.Distance(pts[u], pts[v]) }

	// idx[i] は pts 上の位置 i にあるゾーンの ordered 内インデックス
	idx := make([]int, n+1)
	for i := range idx {
		idx[i] = i
	}

	for iter := 0; iter < s.maxIters; iter++ {
		improved := false
		for i := 1; i < n && !improved; i++ {
			for k := i + 1; k <= n; k++ {
				a, b, c := idx[i-1], idx[i], idx[k]
				delta := d(a, c) - d(a, b)
				if k < n {
					e := idx[k+1]
					delta += d(b, e) - d(c, e)
				}
				if delta < -twoOptEps {
					reverse(idx, i, k)
					improved = true
					break
				}
			}
		}
		if !improved {
			break
		}
	}

	result := make([]model.HazardZone, n)
	for i := 1; i <= n; i++ {
		result[i-1] = ordered[idx[i]-1]
	}
	return result
}

func reverse(a []int, i, k int) {
	for i < k {
		a[i], a[k] = a[k], a[i]
		i++
		k--
	}
}
