package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput は入力（座標・ゾーン・戦略名など）が不正な場合の分類
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidCoordinate は緯度経度が範囲外の場合に返される
	ErrInvalidCoordinate = fmt.Errorf("%w: coordinate out of range", ErrInvalidInput)

	// ErrInvalidZone はゾーンの指定が不正な場合に返される
	ErrInvalidZone = fmt.Errorf("%w: invalid zone", ErrInvalidInput)

	// ErrConfiguration は割り当てが成立しない設定エラーの分類
	ErrConfiguration = errors.New("configuration error")

	// ErrLookupFailure は標高取得失敗の分類
	ErrLookupFailure = errors.New("elevation lookup failure")

	// ErrNoAgentsAvailable はゾーンがあるのに工兵が一人もいない場合に返される
	ErrNoAgentsAvailable = &ConfigurationError{Reason: "no agents available"}

	// ErrEmptyPolygon は頂点のないポリゴンから重心を求めようとした場合に返される
	ErrEmptyPolygon = fmt.Errorf("%w: polygon has no vertices", ErrInvalidZone)
)

// ConfigurationError は呼び出し元に返すべき致命的な設定エラー（リトライしない）
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// Is は errors.Is(err, ErrConfiguration) を成立させる
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// LookupFailure は標高APIの失敗（通信エラー・非2xx・不正なペイロード）を表す
type LookupFailure struct {
	Coordinate Coordinate
	StatusCode int // HTTPステータス（通信エラーの場合は0）
	Reason     string
	Err        error
}

func (e *LookupFailure) Error() string {
	msg := fmt.Sprintf("elevation lookup failed for %s: %s", e.Coordinate, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LookupFailure) Unwrap() error {
	return e.Err
}

// Is は errors.Is(err, ErrLookupFailure) を成立させる
func (e *LookupFailure) Is(target error) bool {
	return target == ErrLookupFailure
}
