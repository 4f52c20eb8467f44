package model

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanRequest_ToAgentsAndZones(t *testing.T) {
	centroid := NewCoordinate(35.1, 139.1)
	req := &PlanRequest{
		Agents: []AgentInput{
			{ID: "alpha", Latitude: 35.0, Longitude: 139.0},
			{Latitude: 36.0, Longitude: 140.0},
		},
		Zones: []ZoneInput{
			{ID: "c", Centroid: &centroid},
			{Vertices: []Coordinate{NewCoordinate(0, 0), NewCoordinate(2, 2)}},
			{Corners: []Coordinate{NewCoordinate(1, 1), NewCoordinate(2, 2)}},
		},
	}

	agents := req.ToAgents()
	require.Len(t, agents, 2)
	assert.Equal(t, "alpha", agents[0].ID)
	assert.Equal(t, "agent-2", agents[1].ID)
	assert.Equal(t, NewCoordinate(36.0, 140.0), agents[1].Location)

	zones, err := req.ToZones()
	require.NoError(t, err)
	require.Len(t, zones, 3)
	assert.Equal(t, "c", zones[0].ID)
	assert.Equal(t, centroid, zones[0].Centroid)
	assert.Equal(t, "zone-2", zones[1].ID)
	assert.InDelta(t, 1.0, zones[1].Centroid.Latitude, 1e-12)
	assert.Equal(t, "zone-3", zones[2].ID)
	assert.Len(t, zones[2].Vertices, 5)
}

func TestPlanRequest_ToZones_Errors(t *testing.T) {
	t.Run("cornersが2点でない", func(t *testing.T) {
		req := &PlanRequest{Zones: []ZoneInput{{Corners: []Coordinate{NewCoordinate(1, 1)}}}}
		_, err := req.ToZones()
		assert.True(t, errors.Is(err, ErrInvalidZone))
	})

	t.Run("形状の指定がない", func(t *testing.T) {
		req := &PlanRequest{Zones: []ZoneInput{{ID: "empty"}}}
		_, err := req.ToZones()
		assert.True(t, errors.Is(err, ErrEmptyPolygon))
	})
}

func TestAssignment_Helpers(t *testing.T) {
	agents := []Agent{NewAgent("a", NewCoordinate(0, 0)), NewAgent("b", NewCoordinate(1, 1))}
	a := NewAssignment(agents)
	assert.True(t, a.IsEmpty())
	assert.Equal(t, 0, a.TotalZones())

	a.Agents[1].Zones = append(a.Agents[1].Zones, NewHazardZoneAt("z1", NewCoordinate(1, 1)))
	assert.False(t, a.IsEmpty())
	assert.Equal(t, 1, a.TotalZones())

	zones, ok := a.ZonesFor("b")
	require.True(t, ok)
	assert.Len(t, zones, 1)
	zones, ok = a.ZonesFor("a")
	require.True(t, ok)
	assert.NotNil(t, zones)
	assert.Empty(t, zones)
	_, ok = a.ZonesFor("missing")
	assert.False(t, ok)

	var nilAssignment *Assignment
	assert.Equal(t, 0, nilAssignment.TotalZones())
	assert.Empty(t, NewAssignmentViews(nil))
}

func TestPath_Aggregates(t *testing.T) {
	p := &Path{Segments: []PathSegment{
		{DistanceMeters: 100, FromElevationFallback: true},
		{DistanceMeters: 50},
		{DistanceMeters: 25, ToElevationFallback: true},
	}}
	assert.Equal(t, 175.0, p.DistanceMeters())
	assert.Equal(t, 2, p.FallbackCount())

	var nilPath *Path
	assert.Equal(t, 0.0, nilPath.DistanceMeters())
	assert.Equal(t, 0, nilPath.FallbackCount())
}

func TestBuildFeatureCollection(t *testing.T) {
	agent := NewAgent("a", NewCoordinate(35.0, 139.0))
	idle := NewAgent("idle", NewCoordinate(40.0, 140.0))
	assignment := NewAssignment([]Agent{agent, idle})
	zone := NewHazardZoneAt("z", NewCoordinate(35.1, 139.1))
	assignment.Agents[0].Zones = []HazardZone{zone}

	paths := []*Path{
		{AgentID: "a", Waypoints: []Coordinate{agent.Location, zone.Centroid}, TotalCost: 12345.678, Degraded: true},
		{AgentID: "short", Waypoints: []Coordinate{agent.Location}},
		nil,
	}

	fc := BuildFeatureCollection(assignment, paths)
	require.Len(t, fc.Features, 4) // 工兵2 + ゾーン1 + 経路1

	kinds := map[string]int{}
	for _, f := range fc.Features {
		kinds[f.Properties["kind"].(string)]++
	}
	assert.Equal(t, map[string]int{"agent": 2, "zone": 1, "route": 1}, kinds)

	route := fc.Features[3]
	line, ok := route.Geometry.(orb.LineString)
	require.True(t, ok)
	assert.Len(t, line, 2)
	assert.Equal(t, orb.Point{139.0, 35.0}, line[0])
	assert.Equal(t, "経路コスト: 12345.68", route.Properties["label"])
	assert.Equal(t, true, route.Properties["degraded"])
	assert.NotNil(t, route.BBox)
}
