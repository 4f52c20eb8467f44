package elevation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"Sapper-App/internal/domain/model"
	"Sapper-App/internal/logging"
	"Sapper-App/internal/observability"
)

// DefaultOpenElevationURL は Open-Elevation API のベースURL
const DefaultOpenElevationURL = "https://api.open-elevation.com"

const maxResponseBytes = 1 << 20

// Metrics は標高取得のメトリクス記録先（*observability.Collector が満たす）
type Metrics interface {
	ObserveCacheLookup(hit bool)
	ObserveFetch(outcome string, elapsed time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) ObserveCacheLookup(bool)            {}
func (noopMetrics) ObserveFetch(string, time.Duration) {}

// OpenElevationProvider は Open-Elevation API を使った標高取得の実装
// httpClient のコネクションプールはプロバイダと同じ寿命を持つ
type OpenElevationProvider struct {
	baseURL    string
	httpClient *http.Client
	metrics    Metrics
	logger     *slog.Logger
}

// ProviderOption はプロバイダのオプション
type ProviderOption func(*OpenElevationProvider)

// WithHTTPClient は使用する http.Client を差し替える
func WithHTTPClient(c *http.Client) ProviderOption {
	return func(p *OpenElevationProvider) {
		if c != nil {
			p.httpClient = c
		}
	}
}

// WithTimeout はリクエストのタイムアウトを設定する
func WithTimeout(d time.Duration) ProviderOption {
	return func(p *OpenElevationProvider) {
		if d > 0 {
			p.httpClient.Timeout = d
		}
	}
}

// WithMetrics はメトリクスの記録先を設定する
func WithMetrics(m Metrics) ProviderOption {
	return func(p *OpenElevationProvider) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithLogger はロガーを設定する
func WithLogger(l *slog.Logger) ProviderOption {
	return func(p *OpenElevationProvider) {
		p.logger = logging.OrDiscard(l)
	}
}

// NewOpenElevationProvider は新しいプロバイダを生成する
func NewOpenElevationProvider(baseURL string, opts ...ProviderOption) (*OpenElevationProvider, error) {
	if baseURL == "" {
		baseURL = DefaultOpenElevationURL
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("標高APIのURLが不正です: %q", baseURL)
	}
	p := &OpenElevationProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		metrics:    noopMetrics{},
		logger:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Elevation は Open-Elevation API を呼び出して標高（m）を取得する
func (p *OpenElevationProvider) Elevation(ctx context.Context, c model.Coordinate) (float64, error) {
	ctx, span := observability.StartSpan(ctx, "elevation.fetch",
		attribute.Float64("lat", c.Latitude),
		attribute.Float64("lon", c.Longitude),
	)
	defer span.End()

	start := time.Now()
	elevation, err := p.fetch(ctx, c)
	elapsed := time.Since(start)

	switch {
	case err == nil:
		p.metrics.ObserveFetch(observability.FetchOutcomeSuccess, elapsed)
		span.SetAttributes(attribute.Float64("elevation", elevation))
	case ctx.Err() != nil:
		p.metrics.ObserveFetch(observability.FetchOutcomeCancelled, elapsed)
		span.SetStatus(codes.Error, "cancelled")
	default:
		p.metrics.ObserveFetch(observability.FetchOutcomeFailure, elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return elevation, err
}

func (p *OpenElevationProvider) fetch(ctx context.Context, c model.Coordinate) (float64, error) {
	// 1. APIリクエストURLを構築
	reqURL := p.buildURL(c)

	// 2. HTTPリクエストを作成・実行
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, &model.LookupFailure{Coordinate: c, Reason: "リクエストの作成に失敗", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, fmt.Errorf("標高取得が中断されました: %w", ctxErr)
		}
		return 0, &model.LookupFailure{Coordinate: c, Reason: "APIリクエストに失敗", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		p.logger.Warn("⚠️ 標高APIからエラーステータスが返されました",
			slog.String("status", resp.Status),
			slog.Float64("lat", c.Latitude),
			slog.Float64("lon", c.Longitude),
		)
		return 0, &model.LookupFailure{
			Coordinate: c,
			StatusCode: resp.StatusCode,
			Reason:     "APIからエラーステータスが返されました: " + resp.Status,
		}
	}

	// 3. JSONレスポンスをパース
	var apiResp openElevationResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&apiResp); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, fmt.Errorf("標高取得が中断されました: %w", ctxErr)
		}
		return 0, &model.LookupFailure{Coordinate: c, StatusCode: resp.StatusCode, Reason: "JSONのパースに失敗", Err: err}
	}

	if len(apiResp.Results) == 0 || apiResp.Results[0].Elevation == nil {
		return 0, &model.LookupFailure{Coordinate: c, StatusCode: resp.StatusCode, Reason: "APIから有効な標高が返されませんでした"}
	}

	return *apiResp.Results[0].Elevation, nil
}

// buildURL はロケールに依存しない小数表記でURLを構築する
func (p *OpenElevationProvider) buildURL(c model.Coordinate) string {
	lat := strconv.FormatFloat(c.Latitude, 'f', -1, 64)
	lng := strconv.FormatFloat(c.Longitude, 'f', -1, 64)
	return fmt.Sprintf("%s/api/v1/lookup?locations=%s,%s", p.baseURL, lat, lng)
}

// --- Open-Elevation APIのレスポンスをパースするための構造体 ---

type openElevationResponse struct {
	Results []elevationResult `json:"results"`
}
type elevationResult struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Elevation *float64 `json:"elevation"`
}
