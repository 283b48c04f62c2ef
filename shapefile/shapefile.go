// Package shapefile exports overlap pieces as ESRI shapefiles.
package shapefile

import (
	"encoding/json"
	"fmt"

	"github.com/jonas-p/go-shp"
	"github.com/rs/zerolog/log"

	"github.com/bsaid97/go-buffer-overlap/geojson"
	"github.com/bsaid97/go-buffer-overlap/geometry"
)

// WritePieces writes the Polygon and MultiPolygon features of fc into a
// POLYGON shapefile at path (go-shp creates the .shx and .dbf sidecars).
// Non-polygonal pieces are skipped. DBF attributes carry each piece's
// coop, protected and buffer_km properties plus its planar area in km².
// An empty or fully non-polygonal collection writes no file at all.
// Returns the number of shapes written.
func WritePieces(path string, fc geojson.FeatureCollection) (int, error) {
	polygonal := make([]geojson.Feature, 0, len(fc.Features))
	for _, f := range fc.Features {
		switch t := geometryType(f.Geometry); t {
		case "Polygon", "MultiPolygon":
			polygonal = append(polygonal, f)
		default:
			log.Debug().Str("type", t).Msg("shapefile: non-polygonal piece skipped")
		}
	}
	if len(polygonal) == 0 {
		return 0, nil
	}

	w, err := shp.Create(path, shp.POLYGON)
	if err != nil {
		return 0, fmt.Errorf("create shapefile: %w", err)
	}
	defer w.Close()

	w.SetFields([]shp.Field{
		shp.StringField("coop", 100),
		shp.StringField("protected", 100),
		shp.NumberField("buffer_km", 10),
		shp.FloatField("area_km2", 19, 6),
	})

	ctx := geometry.NewContext()
	written := 0
	for _, f := range polygonal {
		poly, err := toShape(f.Geometry)
		if err != nil {
			return written, err
		}
		row := int(w.Write(poly))
		attrs := []interface{}{
			stringProp(f.Properties, "coop"),
			stringProp(f.Properties, "protected"),
			intProp(f.Properties, "buffer_km"),
			pieceAreaKm2(ctx, f.Geometry),
		}
		for col, v := range attrs {
			if err := w.WriteAttribute(row, col, v); err != nil {
				return written, fmt.Errorf("write attribute: %w", err)
			}
		}
		written++
	}
	return written, nil
}

// toShape flattens a Polygon or MultiPolygon into one shapefile polygon,
// one part per ring.
func toShape(raw json.RawMessage) (*shp.Polygon, error) {
	var g struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	}
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("decode geometry: %w", err)
	}

	var rings [][][]float64
	switch g.Type {
	case "Polygon":
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil {
			return nil, fmt.Errorf("decode polygon: %w", err)
		}
	case "MultiPolygon":
		var polys [][][][]float64
		if err := json.Unmarshal(g.Coordinates, &polys); err != nil {
			return nil, fmt.Errorf("decode multipolygon: %w", err)
		}
		for _, p := range polys {
			rings = append(rings, p...)
		}
	default:
		return nil, fmt.Errorf("unsupported geometry type %q", g.Type)
	}

	poly := &shp.Polygon{}
	for _, ring := range rings {
		poly.Parts = append(poly.Parts, int32(len(poly.Points)))
		for _, pos := range ring {
			if len(pos) >= 2 {
				poly.Points = append(poly.Points, shp.Point{X: pos[0], Y: pos[1]})
			}
		}
	}
	poly.Box = shp.BBoxFromPoints(poly.Points)
	poly.NumParts = int32(len(poly.Parts))
	poly.NumPoints = int32(len(poly.Points))
	return poly, nil
}

// pieceAreaKm2 measures a piece the way the engine does: in planar meters,
// never in degrees².
func pieceAreaKm2(ctx *geometry.Context, raw json.RawMessage) float64 {
	g, err := ctx.Repair(raw)
	if err != nil {
		return 0
	}
	planar, err := ctx.ToPlanar(g)
	if err != nil {
		return 0
	}
	return planar.Area() / 1e6
}

func geometryType(raw json.RawMessage) string {
	var g struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &g); err != nil {
		return ""
	}
	return g.Type
}

func stringProp(props map[string]interface{}, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}

// intProp accepts both in-process ints and float64 values from a JSON
// round trip.
func intProp(props map[string]interface{}, key string) int {
	switch v := props[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
