package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Sapper-App/internal/domain/model"
)

const testScenario = `
agents:
  - id: A
    latitude: 0
    longitude: 0
  - id: B
    latitude: 0
    longitude: 1
zones:
  - id: z1
    centroid: {latitude: 0, longitude: 0.1}
  - id: z2
    centroid: {latitude: 0, longitude: 0.9}
  - id: z3
    centroid: {latitude: 0, longitude: 0.2}
`

func writeScenario(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testScenario), 0o600))
	return path
}

func TestRunPlan_FlatText(t *testing.T) {
	var out bytes.Buffer
	err := runPlan(context.Background(), &out, writeScenario(t), planOptions{flat: true, weight: -1, format: "text"})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "工兵 A の経路")
	assert.Contains(t, text, "経路コスト:")
	assert.Contains(t, text, "総コスト:")
	assert.NotContains(t, text, "概算")
}

func TestRunPlan_FlatJSONWithStrategy(t *testing.T) {
	var out bytes.Buffer
	err := runPlan(context.Background(), &out, writeScenario(t), planOptions{
		flat:     true,
		weight:   0.5,
		strategy: model.StrategyNearestNeighbor,
		format:   "json",
	})
	require.NoError(t, err)

	var resp model.PlanResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, model.StrategyNearestNeighbor, resp.Strategy)
	require.Len(t, resp.Paths, 2)
	assert.Equal(t, "A", resp.Paths[0].AgentID)
	// A: (0,0) → z1 → z3
	require.Len(t, resp.Paths[0].Waypoints, 3)
	assert.Equal(t, model.NewCoordinate(0, 0.2), resp.Paths[0].Waypoints[2])
	assert.False(t, resp.Degraded)
}

func TestRunPlan_InvalidStrategy(t *testing.T) {
	var out bytes.Buffer
	err := runPlan(context.Background(), &out, writeScenario(t), planOptions{flat: true, weight: -1, strategy: "zigzag"})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestRunAssign(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runAssign(context.Background(), &out, writeScenario(t), "json"))

	var resp model.AssignmentResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, 3, resp.TotalZones)
	require.Len(t, resp.Assignment, 2)
	assert.Len(t, resp.Assignment[0].Zones, 2)
	assert.Equal(t, "z2", resp.Assignment[1].Zones[0].ID)

	out.Reset()
	require.NoError(t, runAssign(context.Background(), &out, writeScenario(t), "text"))
	assert.Contains(t, out.String(), "合計ゾーン数: 3")
}

func TestCommands_RequireScenarioArg(t *testing.T) {
	cmd := planCmd()
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}
