package batch_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bsaid97/go-buffer-overlap/batch"
	"github.com/bsaid97/go-buffer-overlap/geojson"
)

func artifactRecord() *batch.Record {
	overlapFC := geojson.NewFeatureCollection()
	overlapFC.Features = append(overlapFC.Features, geojson.NewFeature(
		json.RawMessage(`{"type":"Polygon","coordinates":[[[0,0],[0,1],[1,1],[1,0],[0,0]]]}`),
		map[string]interface{}{"coop": "farm", "protected": "reserve", "buffer_km": 10},
	))
	bufferFC := geojson.NewFeatureCollection()
	bufferFC.Features = append(bufferFC.Features, geojson.NewFeature(
		json.RawMessage(`{"type":"Polygon","coordinates":[[[-1,-1],[-1,2],[2,2],[2,-1],[-1,-1]]]}`),
		map[string]interface{}{"coop": "farm", "buffer_km": 10},
	))
	return &batch.Record{
		OverlapFile:         "farm__x__reserve__overlap_10km.geojson",
		BufferFile:          "farm__buffer_10km.geojson",
		OverlapGeoJSON:      overlapFC,
		BufferGeoJSON:       bufferFC,
		Coop:                "farm",
		Protected:           "reserve",
		BufferKm:            10,
		OverlapFeatureCount: 1,
		OverlapAreaKm2:      0.5,
	}
}

func TestWriteArtifacts(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "out")
	rec := artifactRecord()
	require.NoError(t, batch.WriteArtifacts(dir, rec, false))

	overlapData, err := os.ReadFile(filepath.Join(dir, rec.OverlapFile))
	require.NoError(t, err)
	var fc geojson.FeatureCollection
	require.NoError(t, json.Unmarshal(overlapData, &fc))
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "reserve", fc.Features[0].Properties["protected"])

	bufferData, err := os.ReadFile(filepath.Join(dir, rec.BufferFile))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(bufferData, &fc))
	require.Len(t, fc.Features, 1)

	_, err = os.Stat(filepath.Join(dir, "farm__x__reserve__overlap_10km.shp"))
	assert.True(t, os.IsNotExist(err), "no shapefile unless requested")
}

func TestWriteArtifactsWithShapefile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := artifactRecord()
	require.NoError(t, batch.WriteArtifacts(dir, rec, true))

	for _, ext := range []string{".shp", ".shx", ".dbf"} {
		_, err := os.Stat(filepath.Join(dir, "farm__x__reserve__overlap_10km"+ext))
		assert.NoError(t, err, "expected %s sidecar", ext)
	}
}

func TestWriteArtifactsEmptyOverlap(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := artifactRecord()
	rec.OverlapGeoJSON = geojson.NewFeatureCollection()
	rec.OverlapFeatureCount = 0
	require.NoError(t, batch.WriteArtifacts(dir, rec, true))

	data, err := os.ReadFile(filepath.Join(dir, rec.OverlapFile))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(data))

	_, err = os.Stat(filepath.Join(dir, "farm__x__reserve__overlap_10km.shp"))
	assert.True(t, os.IsNotExist(err), "empty collections produce no shapefile")
}
