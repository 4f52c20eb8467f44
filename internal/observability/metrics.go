package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 標高取得の結果ラベル
const (
	FetchOutcomeSuccess   = "success"
	FetchOutcomeFailure   = "failure"
	FetchOutcomeCancelled = "cancelled"
)

// 経路計算の実行結果ラベル
const (
	PlanOutcomeSuccess   = "success"
	PlanOutcomeDegraded  = "degraded"
	PlanOutcomeInvalid   = "invalid"
	PlanOutcomeFailure   = "failure"
	PlanOutcomeCancelled = "cancelled"
)

// Collector は標高取得と経路計算のPrometheusメトリクスをまとめる
// nil の Collector でも各メソッドは安全に呼び出せる
type Collector struct {
	gatherer prometheus.Gatherer

	ElevationLookups       *prometheus.CounterVec
	ElevationFetches       *prometheus.CounterVec
	ElevationFetchDuration prometheus.Histogram
	ElevationFallbacks     prometheus.Counter
	PlanRuns               *prometheus.CounterVec
}

// NewCollector はメトリクスを登録する。reg が nil の場合はグローバルレジストリを使う
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	lookups, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sapper_elevation_lookups_total",
		Help: "Elevation cache lookups, labeled by result (hit or miss).",
	}, []string{"result"}), "sapper_elevation_lookups_total")
	if err != nil {
		return nil, err
	}

	fetches, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sapper_elevation_fetches_total",
		Help: "Outbound elevation API fetches, labeled by outcome.",
	}, []string{"outcome"}), "sapper_elevation_fetches_total")
	if err != nil {
		return nil, err
	}

	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sapper_elevation_fetch_duration_seconds",
		Help:    "Elevation API fetch latency in seconds.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}), "sapper_elevation_fetch_duration_seconds")
	if err != nil {
		return nil, err
	}

	fallbacks, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sapper_elevation_fallbacks_total",
		Help: "Waypoints evaluated with the zero-elevation fallback after a failed lookup.",
	}), "sapper_elevation_fallbacks_total")
	if err != nil {
		return nil, err
	}

	runs, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sapper_plan_runs_total",
		Help: "Assign-and-evaluate runs, labeled by outcome.",
	}, []string{"outcome"}), "sapper_plan_runs_total")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:               gatherer,
		ElevationLookups:       lookups,
		ElevationFetches:       fetches,
		ElevationFetchDuration: duration,
		ElevationFallbacks:     fallbacks,
		PlanRuns:               runs,
	}, nil
}

// ObserveCacheLookup はキャッシュのヒット・ミスを記録する
func (c *Collector) ObserveCacheLookup(hit bool) {
	if c == nil || c.ElevationLookups == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.ElevationLookups.WithLabelValues(result).Inc()
}

// ObserveFetch は外部APIへの取得結果と所要時間を記録する
func (c *Collector) ObserveFetch(outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	if c.ElevationFetches != nil {
		c.ElevationFetches.WithLabelValues(outcome).Inc()
	}
	if c.ElevationFetchDuration != nil {
		c.ElevationFetchDuration.Observe(elapsed.Seconds())
	}
}

// ObserveFallback は標高0の代替値を使ったことを記録する
func (c *Collector) ObserveFallback() {
	if c == nil || c.ElevationFallbacks == nil {
		return
	}
	c.ElevationFallbacks.Inc()
}

// ObservePlanRun は経路計算の実行結果を記録する
func (c *Collector) ObservePlanRun(outcome string) {
	if c == nil || c.PlanRuns == nil {
		return
	}
	c.PlanRuns.WithLabelValues(outcome).Inc()
}

// Handler は /metrics 用のハンドラーを返す
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}
