package elevation

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Sapper-App/internal/domain/model"
	"Sapper-App/internal/observability"
)

type recordingMetrics struct {
	mu       sync.Mutex
	hits     int
	misses   int
	outcomes []string
}

func (m *recordingMetrics) ObserveCacheLookup(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

func (m *recordingMetrics) ObserveFetch(outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func newStubServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewOpenElevationProvider_URL(t *testing.T) {
	p, err := NewOpenElevationProvider("")
	require.NoError(t, err)
	assert.Equal(t, DefaultOpenElevationURL+"/api/v1/lookup?locations=35.6812,139.7671", p.buildURL(model.NewCoordinate(35.6812, 139.7671)))

	p, err = NewOpenElevationProvider("http://localhost:8080/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api/v1/lookup?locations=-0.5,-120.25", p.buildURL(model.NewCoordinate(-0.5, -120.25)))

	_, err = NewOpenElevationProvider("not a url")
	assert.Error(t, err)
}

func TestOpenElevationProvider_Elevation(t *testing.T) {
	ctx := context.Background()
	c := model.NewCoordinate(27.9881, 86.925)

	t.Run("正常なレスポンス", func(t *testing.T) {
		var gotPath, gotQuery string
		srv := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotQuery = r.URL.Query().Get("locations")
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"results":[{"latitude":27.9881,"longitude":86.925,"elevation":8848.5}]}`))
		})
		metrics := &recordingMetrics{}
		p, err := NewOpenElevationProvider(srv.URL, WithMetrics(metrics))
		require.NoError(t, err)

		e, err := p.Elevation(ctx, c)
		require.NoError(t, err)
		assert.Equal(t, 8848.5, e)
		assert.Equal(t, "/api/v1/lookup", gotPath)
		assert.Equal(t, "27.9881,86.925", gotQuery)
		assert.Equal(t, []string{observability.FetchOutcomeSuccess}, metrics.outcomes)
	})

	t.Run("標高0は正常値として返す", func(t *testing.T) {
		srv := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"results":[{"latitude":0,"longitude":0,"elevation":0}]}`))
		})
		p, err := NewOpenElevationProvider(srv.URL)
		require.NoError(t, err)

		e, err := p.Elevation(ctx, model.NewCoordinate(0, 0))
		require.NoError(t, err)
		assert.Equal(t, 0.0, e)
	})

	failures := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{name: "HTTP 500", status: http.StatusInternalServerError, body: `{"error":"boom"}`, wantStatus: 500},
		{name: "不正なJSON", status: http.StatusOK, body: `{"results":[`, wantStatus: 200},
		{name: "resultsが空", status: http.StatusOK, body: `{"results":[]}`, wantStatus: 200},
		{name: "elevationがない", status: http.StatusOK, body: `{"results":[{"latitude":1,"longitude":2}]}`, wantStatus: 200},
	}
	for _, tc := range failures {
		t.Run(tc.name, func(t *testing.T) {
			srv := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			metrics := &recordingMetrics{}
			p, err := NewOpenElevationProvider(srv.URL, WithMetrics(metrics))
			require.NoError(t, err)

			e, err := p.Elevation(ctx, c)
			require.Error(t, err)
			assert.Equal(t, 0.0, e)
			assert.True(t, errors.Is(err, model.ErrLookupFailure))

			var lf *model.LookupFailure
			require.True(t, errors.As(err, &lf))
			assert.Equal(t, tc.wantStatus, lf.StatusCode)
			assert.Equal(t, c, lf.Coordinate)
			assert.Equal(t, []string{observability.FetchOutcomeFailure}, metrics.outcomes)
		})
	}

	t.Run("接続できない", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		p, err := NewOpenElevationProvider(url, WithTimeout(time.Second))
		require.NoError(t, err)
		_, err = p.Elevation(ctx, c)
		assert.True(t, errors.Is(err, model.ErrLookupFailure))
	})

	t.Run("キャンセルは取得失敗として扱わない", func(t *testing.T) {
		release := make(chan struct{})
		srv := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		})
		defer close(release)

		metrics := &recordingMetrics{}
		p, err := NewOpenElevationProvider(srv.URL, WithMetrics(metrics))
		require.NoError(t, err)

		cctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
		_, err = p.Elevation(cctx, c)
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
		assert.False(t, errors.Is(err, model.ErrLookupFailure))
		assert.Equal(t, []string{observability.FetchOutcomeCancelled}, metrics.outcomes)
	})
}
