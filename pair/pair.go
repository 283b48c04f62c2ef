// Package pair interprets the loosely-structured batch items produced
// upstream and extracts the source ("coop") and target ("protected")
// datasets. The resolution heuristics mirror the upstream contract
// exactly, including the positional tie-break.
package pair

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bsaid97/go-buffer-overlap/geojson"
	"github.com/bsaid97/go-buffer-overlap/overlap"
)

// item accepts both supported input shapes at once; Resolve decides which
// one the item actually uses.
type item struct {
	Coop      *slot                      `json:"coop"`
	Protected *slot                      `json:"protected"`
	Kind1     string                     `json:"kind_1"`
	Name1     string                     `json:"name_1"`
	GeoJSON1  *geojson.FeatureCollection `json:"geojson_1"`
	Kind2     string                     `json:"kind_2"`
	Name2     string                     `json:"name_2"`
	GeoJSON2  *geojson.FeatureCollection `json:"geojson_2"`
	BufferM   *float64                   `json:"buffer_m"`
}

type slot struct {
	Name    string                     `json:"name"`
	GeoJSON *geojson.FeatureCollection `json:"geojson"`
}

// Resolve extracts the two named datasets from one batch item and an
// optional per-item buffer override.
//
// Explicit shape: both "coop" and "protected" keys present. Positional
// shape: numbered kind_/name_/geojson_ fields; with no kind labels slot 1
// is the source, otherwise slot 1 is the source exactly when its kind
// starts with a case-insensitive "coop", and slot 2 otherwise.
func Resolve(raw json.RawMessage) (source, target overlap.Dataset, bufferM *float64, err error) {
	var it item
	if err := json.Unmarshal(raw, &it); err != nil {
		return source, target, nil, fmt.Errorf("decode item: %w", err)
	}
	if it.BufferM != nil && *it.BufferM < 0 {
		return source, target, nil, fmt.Errorf("negative buffer distance %v", *it.BufferM)
	}

	if it.Coop != nil && it.Protected != nil {
		source = newDataset(it.Coop.Name, it.Coop.GeoJSON, "coop")
		target = newDataset(it.Protected.Name, it.Protected.GeoJSON, "protected")
		return source, target, it.BufferM, nil
	}

	one := slot{Name: it.Name1, GeoJSON: it.GeoJSON1}
	two := slot{Name: it.Name2, GeoJSON: it.GeoJSON2}
	src, tgt := one, two
	if it.Kind1 != "" || it.Kind2 != "" {
		if !strings.HasPrefix(strings.ToLower(it.Kind1), "coop") {
			src, tgt = two, one
		}
	}
	source = newDataset(src.Name, src.GeoJSON, "coop")
	target = newDataset(tgt.Name, tgt.GeoJSON, "protected")
	return source, target, it.BufferM, nil
}

// newDataset applies the name default before stripping any ".geojson"
// suffix, matching the upstream order of operations. A missing collection
// resolves to an empty one; an empty dataset is a legal input, not an
// error.
func newDataset(name string, fc *geojson.FeatureCollection, fallback string) overlap.Dataset {
	if name == "" {
		name = fallback
	}
	name = strings.ReplaceAll(name, ".geojson", "")
	out := geojson.NewFeatureCollection()
	if fc != nil && fc.Features != nil {
		out = *fc
	}
	return overlap.Dataset{Name: name, FC: out}
}
