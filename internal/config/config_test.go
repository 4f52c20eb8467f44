package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Sapper-App/internal/domain/model"
)

func envOf(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envOf(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 0.1, cfg.ElevationWeightFactor)
	assert.Equal(t, 5, cfg.PathEvalMaxGoroutines)
	assert.Equal(t, model.StrategySequential, cfg.PathStrategy)
	assert.False(t, cfg.TracingEnabled)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{
		"PORT":                      "9090",
		"OPEN_ELEVATION_URL":        "http://localhost:8081",
		"ELEVATION_TIMEOUT":         "3s",
		"ELEVATION_MAX_CONCURRENCY": "16",
		"ELEVATION_WEIGHT_FACTOR":   "0.25",
		"PATH_EVAL_MAX_GOROUTINES":  "3",
		"PATH_STRATEGY":             "two_opt",
		"RUN_TIMEOUT":               "2m",
		"LOG_LEVEL":                 "debug",
		"LOG_FORMAT":                "json",
		"TRACING_ENABLED":           "TRUE",
	}))
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "http://localhost:8081", cfg.ElevationURL)
	assert.Equal(t, 3*time.Second, cfg.ElevationTimeout)
	assert.Equal(t, 16, cfg.ElevationMaxConcurrency)
	assert.Equal(t, 0.25, cfg.ElevationWeightFactor)
	assert.Equal(t, 3, cfg.PathEvalMaxGoroutines)
	assert.Equal(t, model.StrategyTwoOpt, cfg.PathStrategy)
	assert.Equal(t, 2*time.Minute, cfg.RunTimeout)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.TracingEnabled)
}

func TestFromEnv_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"重み係数が負":      {"ELEVATION_WEIGHT_FACTOR": "-1"},
		"重み係数が数値でない":  {"ELEVATION_WEIGHT_FACTOR": "heavy"},
		"並行数が0":       {"PATH_EVAL_MAX_GOROUTINES": "0"},
		"同時取得数が数値でない": {"ELEVATION_MAX_CONCURRENCY": "many"},
		"タイムアウトの形式":   {"ELEVATION_TIMEOUT": "10"},
		"未知の戦略":       {"PATH_STRATEGY": "genetic"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(envOf(env))
			assert.Error(t, err)
		})
	}
}
