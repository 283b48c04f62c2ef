// Package batch runs the overlap engine across many independent items,
// isolating each item's failure into its own output record so the batch
// always completes.
package batch

import (
	"encoding/json"
	"fmt"

	"github.com/bsaid97/go-buffer-overlap/geojson"
	"github.com/bsaid97/go-buffer-overlap/overlap"
)

// Record is the per-item result envelope consumed downstream. Field order
// matches the upstream contract.
type Record struct {
	OverlapFile         string                    `json:"overlapFile"`
	BufferFile          string                    `json:"bufferFile"`
	OverlapGeoJSON      geojson.FeatureCollection `json:"overlap_geojson"`
	BufferGeoJSON       geojson.FeatureCollection `json:"buffer_geojson"`
	Coop                string                    `json:"coop"`
	Protected           string                    `json:"protected"`
	BufferKm            int                       `json:"buffer_km"`
	OverlapFeatureCount int                       `json:"overlap_feature_count"`
	OverlapAreaKm2      float64                   `json:"overlap_area_km2"`
}

// NewRecord wraps an engine result, deriving the artifact file names from
// the dataset names and the buffer label.
func NewRecord(res *overlap.Result) *Record {
	return &Record{
		OverlapFile:         fmt.Sprintf("%s__x__%s__overlap_%dkm.geojson", res.Source, res.Target, res.BufferKm),
		BufferFile:          fmt.Sprintf("%s__buffer_%dkm.geojson", res.Source, res.BufferKm),
		OverlapGeoJSON:      res.Overlap,
		BufferGeoJSON:       res.Buffer,
		Coop:                res.Source,
		Protected:           res.Target,
		BufferKm:            res.BufferKm,
		OverlapFeatureCount: res.PieceCount,
		OverlapAreaKm2:      res.AreaKm2,
	}
}

// Outcome is one item's result: a Record on success, an error otherwise.
type Outcome struct {
	Record *Record
	Err    error
}

// MarshalJSON emits the record itself, or {"error": "..."} for a failed
// item, so one bad pair never breaks the batch output.
func (o Outcome) MarshalJSON() ([]byte, error) {
	if o.Err != nil {
		return json.Marshal(map[string]string{"error": o.Err.Error()})
	}
	return json.Marshal(o.Record)
}
