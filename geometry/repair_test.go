package geometry_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bsaid97/go-buffer-overlap/geometry"
)

const (
	unitSquare = `{"type":"Polygon","coordinates":[[[0,0],[0,1],[1,1],[1,0],[0,0]]]}`
	// Self-intersecting "bowtie" ring.
	bowtie = `{"type":"Polygon","coordinates":[[[0,0],[2,2],[2,0],[0,2],[0,0]]]}`
)

func TestRepairValidPolygon(t *testing.T) {
	t.Parallel()

	c := geometry.NewContext()
	g, err := c.Repair([]byte(unitSquare))
	require.NoError(t, err)
	assert.True(t, g.IsValid())
	assert.False(t, g.IsEmpty())
	assert.InDelta(t, 1.0, g.Area(), 1e-12)
}

func TestRepairBowtie(t *testing.T) {
	t.Parallel()

	c := geometry.NewContext()
	g, err := c.Repair([]byte(bowtie))
	require.NoError(t, err)
	assert.True(t, g.IsValid())
	assert.False(t, g.IsEmpty())
	assert.Greater(t, g.Area(), 0.0)
}

func TestRepairMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `not a geometry`},
		{"null", `null`},
		{"empty bytes", ``},
		{"wrong shape", `{"type":"Polygon","coordinates":"nope"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := geometry.NewContext()
			g, err := c.Repair([]byte(tc.raw))
			require.Error(t, err)
			assert.Nil(t, g)
		})
	}
}

func TestRepairEmptyIsNotAnError(t *testing.T) {
	t.Parallel()

	c := geometry.NewContext()
	g, err := c.Repair([]byte(`{"type":"GeometryCollection","geometries":[]}`))
	require.NoError(t, err)
	assert.True(t, g.IsEmpty())
}

func TestRepairDropsElevation(t *testing.T) {
	t.Parallel()

	c := geometry.NewContext()
	g, err := c.Repair([]byte(`{"type":"Polygon","coordinates":[[[0,0,5],[0,1,5],[1,1,5],[1,0,5],[0,0,5]]]}`))
	require.NoError(t, err)

	var out struct {
		Coordinates [][][]float64 `json:"coordinates"`
	}
	require.NoError(t, json.Unmarshal([]byte(g.ToGeoJSON(-1)), &out))
	require.NotEmpty(t, out.Coordinates)
	for _, pos := range out.Coordinates[0] {
		assert.Len(t, pos, 2)
	}
}
