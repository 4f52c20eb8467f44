package elevation

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"Sapper-App/internal/domain/model"
	"Sapper-App/internal/domain/repository"
)

// DefaultMaxConcurrentFetches は外部APIへの同時リクエスト数の既定値
const DefaultMaxConcurrentFetches = 8

// CachedElevationService は1回の経路計算の間だけ有効な標高キャッシュ
// 丸め座標キーごとに取得は高々1回、同一キーの同時取得は1本にまとめる
// 取得失敗もその実行の間はキャッシュし、キャンセルされた取得は何も残さない
type CachedElevationService struct {
	source  repository.ElevationService
	metrics Metrics

	mu      sync.RWMutex
	samples map[model.CoordKey]model.ElevationSample

	group   singleflight.Group
	sem     *semaphore.Weighted
	fetches atomic.Int64
}

// NewCachedElevationService は新しいキャッシュを作成する
func NewCachedElevationService(source repository.ElevationService, maxConcurrent int, metrics Metrics) *CachedElevationService {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentFetches
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &CachedElevationService{
		source:  source,
		metrics: metrics,
		samples: make(map[model.CoordKey]model.ElevationSample),
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

// Elevation は ElevationService を満たす。キャッシュ済みの失敗は LookupFailure として返す
func (s *CachedElevationService) Elevation(ctx context.Context, c model.Coordinate) (float64, error) {
	sample, err := s.Lookup(ctx, c)
	if err != nil {
		return 0, err
	}
	if sample.Fallback {
		return 0, sample.Err
	}
	return sample.Elevation, nil
}

// Lookup はキャッシュを参照し、なければ取得してサンプルを返す
// エラーが返るのはキャンセル時のみで、取得失敗は Fallback=true のサンプルになる
func (s *CachedElevationService) Lookup(ctx context.Context, c model.Coordinate) (model.ElevationSample, error) {
	key := c.Key()
	if sample, ok := s.get(key); ok {
		s.metrics.ObserveCacheLookup(true)
		return sample, nil
	}
	s.metrics.ObserveCacheLookup(false)

	for {
		ch := s.group.DoChan(key.String(), func() (interface{}, error) {
			return s.fetch(ctx, key)
		})
		select {
		case <-ctx.Done():
			return model.ElevationSample{}, ctx.Err()
		case res := <-ch:
			if res.Err != nil {
				// 他の呼び出し元のキャンセルで共有取得が中断された場合は自分のコンテキストでやり直す
				if ctx.Err() == nil && isCancellation(res.Err) {
					continue
				}
				return model.ElevationSample{}, res.Err
			}
			return res.Val.(model.ElevationSample), nil
		}
	}
}

// Prefetch は複数地点の標高を並行して先読みする
func (s *CachedElevationService) Prefetch(ctx context.Context, coords []model.Coordinate) error {
	g, ctx := errgroup.WithContext(ctx)
	seen := make(map[model.CoordKey]struct{}, len(coords))
	for _, c := range coords {
		key := c.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		g.Go(func() error {
			_, err := s.Lookup(ctx, c)
			return err
		})
	}
	return g.Wait()
}

// Fetches は外部への取得回数を返す
func (s *CachedElevationService) Fetches() int64 {
	return s.fetches.Load()
}

// Len はキャッシュされているキーの数を返す
func (s *CachedElevationService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.samples)
}

func (s *CachedElevationService) get(key model.CoordKey) (model.ElevationSample, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sample, ok := s.samples[key]
	return sample, ok
}

func (s *CachedElevationService) put(sample model.ElevationSample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples[sample.Key] = sample
}

func (s *CachedElevationService) fetch(ctx context.Context, key model.CoordKey) (model.ElevationSample, error) {
	// 待機中に別の取得が完了している場合がある
	if sample, ok := s.get(key); ok {
		return sample, nil
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return model.ElevationSample{}, err
	}
	defer s.sem.Release(1)

	s.fetches.Add(1)
	elevation, err := s.source.Elevation(ctx, key.Coordinate())
	if err != nil {
		if !errors.Is(err, model.ErrLookupFailure) {
			if isCancellation(err) {
				return model.ElevationSample{}, err
			}
			err = &model.LookupFailure{Coordinate: key.Coordinate(), Reason: "標高の取得に失敗", Err: err}
		}
		sample := model.ElevationSample{Key: key, Fallback: true, Err: err}
		s.put(sample)
		return sample, nil
	}

	sample := model.ElevationSample{Key: key, Elevation: elevation}
	s.put(sample)
	return sample, nil
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
