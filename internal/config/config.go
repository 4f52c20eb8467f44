package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"Sapper-App/internal/domain/model"
	"Sapper-App/internal/domain/service"
	"Sapper-App/internal/domain/strategy"
	"Sapper-App/internal/infrastructure/elevation"
)

// Config はアプリケーション設定
type Config struct {
	Port string

	ElevationURL            string
	ElevationTimeout        time.Duration
	ElevationMaxConcurrency int
	ElevationWeightFactor   float64

	PathEvalMaxGoroutines int
	PathStrategy          string
	RunTimeout            time.Duration

	LogLevel  string
	LogFormat string

	TracingEnabled     bool
	TracingServiceName string
}

// Default は既定値の設定を返す
func Default() Config {
	return Config{
		Port:                    "8080",
		ElevationURL:            elevation.DefaultOpenElevationURL,
		ElevationTimeout:        10 * time.Second,
		ElevationMaxConcurrency: elevation.DefaultMaxConcurrentFetches,
		ElevationWeightFactor:   model.DefaultElevationWeightFactor,
		PathEvalMaxGoroutines:   service.DefaultMaxGoroutines,
		PathStrategy:            model.StrategySequential,
		RunTimeout:              60 * time.Second,
		LogLevel:                "info",
		LogFormat:               "text",
		TracingServiceName:      "sapper-app",
	}
}

// Load は .env（存在すれば）と環境変数から設定を読み込む
func Load(envFiles ...string) (Config, error) {
	// .envがない環境（CI・本番）では環境変数のみを使う
	_ = godotenv.Load(envFiles...)
	return FromEnv(os.Getenv)
}

// FromEnv は getenv から設定を組み立てる
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()
	var errs []error

	setString := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	setInt := func(key string, dst *int) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	setString("PORT", &cfg.Port)
	setString("OPEN_ELEVATION_URL", &cfg.ElevationURL)
	setDuration("ELEVATION_TIMEOUT", &cfg.ElevationTimeout)
	setInt("ELEVATION_MAX_CONCURRENCY", &cfg.ElevationMaxConcurrency)
	if v := strings.TrimSpace(getenv("ELEVATION_WEIGHT_FACTOR")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("ELEVATION_WEIGHT_FACTOR: %w", err))
		} else {
			cfg.ElevationWeightFactor = f
		}
	}
	setInt("PATH_EVAL_MAX_GOROUTINES", &cfg.PathEvalMaxGoroutines)
	setString("PATH_STRATEGY", &cfg.PathStrategy)
	setDuration("RUN_TIMEOUT", &cfg.RunTimeout)
	setString("LOG_LEVEL", &cfg.LogLevel)
	setString("LOG_FORMAT", &cfg.LogFormat)
	cfg.TracingEnabled = strings.EqualFold(getenv("TRACING_ENABLED"), "true")
	setString("TRACING_SERVICE_NAME", &cfg.TracingServiceName)

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate は設定値の妥当性をチェックする
func (c Config) Validate() error {
	var errs []error
	if math.IsNaN(c.ElevationWeightFactor) || math.IsInf(c.ElevationWeightFactor, 0) || c.ElevationWeightFactor < 0 {
		errs = append(errs, fmt.Errorf("ELEVATION_WEIGHT_FACTOR は0以上である必要があります: %v", c.ElevationWeightFactor))
	}
	if c.ElevationMaxConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("ELEVATION_MAX_CONCURRENCY は正の整数である必要があります: %d", c.ElevationMaxConcurrency))
	}
	if c.PathEvalMaxGoroutines <= 0 {
		errs = append(errs, fmt.Errorf("PATH_EVAL_MAX_GOROUTINES は正の整数である必要があります: %d", c.PathEvalMaxGoroutines))
	}
	if c.ElevationTimeout <= 0 {
		errs = append(errs, fmt.Errorf("ELEVATION_TIMEOUT は正の値である必要があります: %s", c.ElevationTimeout))
	}
	if c.RunTimeout <= 0 {
		errs = append(errs, fmt.Errorf("RUN_TIMEOUT は正の値である必要があります: %s", c.RunTimeout))
	}
	if _, err := strategy.NewRegistry().Get(c.PathStrategy); err != nil {
		errs = append(errs, fmt.Errorf("PATH_STRATEGY: %w", err))
	}
	return errors.Join(errs...)
}
