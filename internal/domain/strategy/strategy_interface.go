package strategy

import (
	"fmt"
	"sort"

	"Sapper-App/internal/domain/model"
)

// PathStrategy は、工兵に割り当てられたゾーンを巡回する順序を決める戦略のインターフェース
type PathStrategy interface {
	// 戦略名（リクエストや設定で指定する名前）
	Name() string

	// 開始地点から巡回するゾーンの順序を返す
	// 入力スライスは変更せず、同じゾーンを過不足なく含む新しいスライスを返す
	Order(start model.Coordinate, zones []model.HazardZone) []model.HazardZone
}

// Registry は名前で戦略を引けるようにまとめたもの
type Registry struct {
	strategies map[string]PathStrategy
}

// NewRegistry は組み込みの全戦略を登録したレジストリを作成する
func NewRegistry() *Registry {
	r := &Registry{strategies: make(map[string]PathStrategy)}
	r.Register(NewSequentialStrategy())
	r.Register(NewNearestNeighborStrategy())
	r.Register(NewTwoOptStrategy(0))
	return r
}

// Register は戦略を登録する（同名は上書き）
func (r *Registry) Register(s PathStrategy) {
	r.strategies[s.Name()] = s
}

// Get は名前に対応する戦略を返す
func (r *Registry) Get(name string) (PathStrategy, error) {
	s, ok := r.strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w: 対応していない経路戦略です: %q (利用可能: %v)", model.ErrInvalidInput, name, r.Names())
	}
	return s, nil
}

// Names は登録済みの戦略名を昇順で返す
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func copyZones(zones []model.HazardZone) []model.HazardZone {
	out := make([]model.HazardZone, len(zones))
	copy(out, zones)
	return out
}
