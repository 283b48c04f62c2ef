package geojson

import (
	"bytes"
	"encoding/json"
)

// Feature holds one geometry with its attributes. The geometry stays raw
// so the geometry engine can parse it directly; properties are opaque
// passthrough data.
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   json.RawMessage        `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// FeatureCollection holds an ordered sequence of features.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewFeatureCollection returns an empty collection that marshals with
// "features": [] instead of null.
func NewFeatureCollection() FeatureCollection {
	return FeatureCollection{
		Features: make([]Feature, 0),
		Type:     "FeatureCollection",
	}
}

// NewFeature wraps a raw geometry and its properties.
func NewFeature(geometry json.RawMessage, properties map[string]interface{}) Feature {
	return Feature{
		Type:       "Feature",
		Geometry:   geometry,
		Properties: properties,
	}
}

// DropElevation rewrites a raw geometry whose positions carry a third
// coordinate down to plain 2D, keeping the X/Y lexical values intact.
// The input bytes are returned untouched when every position is already
// 2D or the payload is not a geometry object.
func DropElevation(raw json.RawMessage) (json.RawMessage, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var geom map[string]interface{}
	if err := dec.Decode(&geom); err != nil {
		return raw, false
	}
	if !flattenGeometry(geom) {
		return raw, false
	}
	flat, err := json.Marshal(geom)
	if err != nil {
		return raw, false
	}
	return flat, true
}

func flattenGeometry(geom map[string]interface{}) bool {
	dropped := false
	if coords, ok := geom["coordinates"]; ok {
		flat, d := flattenCoords(coords)
		geom["coordinates"] = flat
		dropped = d
	}
	if children, ok := geom["geometries"].([]interface{}); ok {
		for _, el := range children {
			if child, ok := el.(map[string]interface{}); ok && flattenGeometry(child) {
				dropped = true
			}
		}
	}
	return dropped
}

// flattenCoords walks nested coordinate arrays. A position is an array
// whose first element is a number; anything deeper recurses.
func flattenCoords(v interface{}) (interface{}, bool) {
	arr, ok := v.([]interface{})
	if !ok || len(arr) == 0 {
		return v, false
	}
	if _, isNum := arr[0].(json.Number); isNum {
		if len(arr) > 2 {
			return arr[:2], true
		}
		return arr, false
	}
	dropped := false
	for i, el := range arr {
		flat, d := flattenCoords(el)
		arr[i] = flat
		if d {
			dropped = true
		}
	}
	return arr, dropped
}
