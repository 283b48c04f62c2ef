package geometry_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/twpayne/go-geos"

	"github.com/bsaid97/go-buffer-overlap/geojson"
	"github.com/bsaid97/go-buffer-overlap/geometry"
)

func square(x0, y0, x1, y1 float64) string {
	return fmt.Sprintf(`{"type":"Polygon","coordinates":[[[%[1]v,%[2]v],[%[1]v,%[4]v],[%[3]v,%[4]v],[%[3]v,%[2]v],[%[1]v,%[2]v]]]}`,
		x0, y0, x1, y1)
}

func collect(geoms ...string) geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, g := range geoms {
		fc.Features = append(fc.Features, geojson.NewFeature(json.RawMessage(g), nil))
	}
	return fc
}

func TestDissolveNoFeatures(t *testing.T) {
	t.Parallel()

	c := geometry.NewContext()
	g, stats := c.Dissolve(geojson.NewFeatureCollection())
	assert.True(t, g.IsEmpty())
	assert.Equal(t, geometry.Stats{}, stats)
}

func TestDissolveOnlyMalformedFeatures(t *testing.T) {
	t.Parallel()

	c := geometry.NewContext()
	g, stats := c.Dissolve(collect(`garbage`, `null`))
	assert.True(t, g.IsEmpty())
	assert.Equal(t, 2, stats.Invalid)
	assert.Equal(t, 0, stats.Kept)
}

func TestDissolveSkipsMalformed(t *testing.T) {
	t.Parallel()

	c := geometry.NewContext()
	g, stats := c.Dissolve(collect(
		square(0, 0, 1, 1),
		`not a geometry`,
		square(1, 0, 2, 1),
		`null`,
	))
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Kept)
	assert.Equal(t, 2, stats.Invalid)
	assert.False(t, g.IsEmpty())
	assert.InDelta(t, 2.0, g.Area(), 1e-9)
}

func TestDissolveDisjoint(t *testing.T) {
	t.Parallel()

	c := geometry.NewContext()
	g, stats := c.Dissolve(collect(square(0, 0, 1, 1), square(10, 10, 11, 11)))
	assert.Equal(t, 2, stats.Kept)
	assert.Equal(t, geos.TypeIDMultiPolygon, g.TypeID())
	assert.InDelta(t, 2.0, g.Area(), 1e-9)
}

func TestDissolveOverlapping(t *testing.T) {
	t.Parallel()

	c := geometry.NewContext()
	g, _ := c.Dissolve(collect(square(0, 0, 2, 2), square(1, 1, 3, 3)))
	assert.Equal(t, geos.TypeIDPolygon, g.TypeID())
	assert.InDelta(t, 7.0, g.Area(), 1e-9)
}

func TestDissolveCountsEmpty(t *testing.T) {
	t.Parallel()

	c := geometry.NewContext()
	g, stats := c.Dissolve(collect(
		`{"type":"GeometryCollection","geometries":[]}`,
		square(0, 0, 1, 1),
	))
	assert.Equal(t, 1, stats.Empty)
	assert.Equal(t, 1, stats.Kept)
	assert.False(t, g.IsEmpty())
}

func TestDissolveRepairsBowtie(t *testing.T) {
	t.Parallel()

	c := geometry.NewContext()
	g, stats := c.Dissolve(collect(bowtie, square(10, 10, 11, 11)))
	assert.Equal(t, 2, stats.Kept)
	assert.Equal(t, 0, stats.Invalid)
	assert.True(t, g.IsValid())
	assert.Greater(t, g.Area(), 1.0)
}
