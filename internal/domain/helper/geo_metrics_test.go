package helper

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"Sapper-App/internal/domain/model"
)

func TestDistance_KnownValues(t *testing.T) {
	t.Run("赤道上の経度1度", func(t *testing.T) {
		d := Distance(model.NewCoordinate(0, 0), model.NewCoordinate(0, 1))
		// 2πR/360
		assert.InDelta(t, 111194.93, d, 0.1)
	})

	t.Run("東京駅から大阪駅", func(t *testing.T) {
		tokyo := model.NewCoordinate(35.6812, 139.7671)
		osaka := model.NewCoordinate(34.7025, 135.4959)
		assert.InDelta(t, 403_000, Distance(tokyo, osaka), 2_000)
	})

	t.Run("対蹠点", func(t *testing.T) {
		d := Distance(model.NewCoordinate(0, 0), model.NewCoordinate(0, 180))
		assert.InDelta(t, 20015086.8, d, 1)
	})
}

func TestDistance_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	random := func() model.Coordinate {
		return model.NewCoordinate(rng.Float64()*180-90, rng.Float64()*360-180)
	}

	for i := 0; i < 200; i++ {
		a, b, c := random(), random(), random()

		assert.GreaterOrEqual(t, Distance(a, b), 0.0)
		assert.Equal(t, Distance(a, b), Distance(b, a))
		assert.Equal(t, 0.0, Distance(a, a))
		assert.LessOrEqual(t, Distance(a, c), Distance(a, b)+Distance(b, c)+1e-3)
	}
}

func TestDistance_ZeroOnlyForSameKey(t *testing.T) {
	a := model.NewCoordinate(35.68121, 139.76712)
	sameKey := model.NewCoordinate(35.68124, 139.76709)
	neighbor := model.NewCoordinate(35.6813, 139.7671)

	assert.Equal(t, 0.0, Distance(a, sameKey))
	assert.Greater(t, Distance(a, neighbor), 0.0)
}

func TestPathDistance(t *testing.T) {
	pts := []model.Coordinate{
		model.NewCoordinate(0, 0),
		model.NewCoordinate(0, 1),
		model.NewCoordinate(1, 1),
	}
	want := Distance(pts[0], pts[1]) + Distance(pts[1], pts[2])
	assert.InDelta(t, want, PathDistance(pts), 1e-9)
	assert.Equal(t, 0.0, PathDistance(pts[:1]))
	assert.Equal(t, 0.0, PathDistance(nil))
}

func TestNearestIndex(t *testing.T) {
	origin := model.NewCoordinate(0, 0)

	t.Run("最も近い候補", func(t *testing.T) {
		candidates := []model.Coordinate{
			model.NewCoordinate(0, 3),
			model.NewCoordinate(0, 1),
			model.NewCoordinate(0, 2),
		}
		assert.Equal(t, 1, NearestIndex(origin, candidates, model.AssignmentTieEpsilonMeters))
	})

	t.Run("等距離なら先の候補", func(t *testing.T) {
		candidates := []model.Coordinate{
			model.NewCoordinate(0, 1),
			model.NewCoordinate(0, -1),
		}
		assert.Equal(t, 0, NearestIndex(origin, candidates, model.AssignmentTieEpsilonMeters))
	})

	t.Run("候補なし", func(t *testing.T) {
		assert.Equal(t, -1, NearestIndex(origin, nil, model.AssignmentTieEpsilonMeters))
	})
}
