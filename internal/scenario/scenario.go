package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"Sapper-App/internal/domain/model"
)

// Load はシナリオファイル（YAMLまたはJSON）を経路計算リクエストとして読み込む
func Load(path string) (*model.PlanRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("シナリオファイルの読み込みに失敗: %w", err)
	}
	req, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return req, nil
}

// Decode はYAML（JSONを含む）からリクエストをデコードする
// 未知のキーはタイプミスとみなしてエラーにする
func Decode(r io.Reader) (*model.PlanRequest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var req model.PlanRequest
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: シナリオが空です", model.ErrInvalidInput)
		}
		return nil, fmt.Errorf("%w: シナリオのパースに失敗: %v", model.ErrInvalidInput, err)
	}
	return &req, nil
}
