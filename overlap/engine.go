package overlap

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"github.com/twpayne/go-geos"

	"github.com/bsaid97/go-buffer-overlap/geojson"
	"github.com/bsaid97/go-buffer-overlap/geometry"
)

// DefaultBufferM is the system buffer distance in meters.
const DefaultBufferM = 10000.0

// DefaultQuadSegs is the arc approximation used for buffering.
const DefaultQuadSegs = 8

// areaPrecision is the number of decimals kept on the reported km² total.
const areaPrecision = 6

// Dataset names one side of an overlap computation.
type Dataset struct {
	Name string
	FC   geojson.FeatureCollection
}

// Result is the output of one overlap computation. Constructed fresh per
// invocation and immutable once returned.
type Result struct {
	Source     string
	Target     string
	BufferKm   int
	PieceCount int
	AreaKm2    float64
	Overlap    geojson.FeatureCollection
	Buffer     geojson.FeatureCollection
}

// Engine buffers a source footprint and intersects it with a target
// footprint. BufferM is taken literally (zero is a legal distance);
// QuadSegs <= 0 selects the default.
type Engine struct {
	BufferM  float64
	QuadSegs int
}

// Overlap dissolves both datasets, buffers the source by BufferM meters in
// planar space, and intersects the buffered footprint with the target in
// geographic space. Area accumulates per piece in planar m². A
// geometry-engine failure during buffering or intersection surfaces as an
// error for this pair only.
func (e *Engine) Overlap(source, target Dataset) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("overlap %s x %s: %v", source.Name, target.Name, r)
		}
	}()
	if e.BufferM < 0 {
		return nil, fmt.Errorf("negative buffer distance %v", e.BufferM)
	}

	ctx := geometry.NewContext()
	srcUnion, srcStats := ctx.Dissolve(source.FC)
	tgtUnion, tgtStats := ctx.Dissolve(target.FC)
	log.Debug().
		Str("coop", source.Name).Str("protected", target.Name).
		Int("coop_kept", srcStats.Kept).Int("coop_invalid", srcStats.Invalid).
		Int("protected_kept", tgtStats.Kept).Int("protected_invalid", tgtStats.Invalid).
		Msg("datasets dissolved")

	// Buffering an empty footprint is defined as empty, not an error.
	buffered := srcUnion
	if !srcUnion.IsEmpty() {
		planar, perr := ctx.ToPlanar(srcUnion)
		if perr != nil {
			return nil, perr
		}
		bufferedPlanar := planar.Buffer(e.BufferM, e.quadSegs())
		buffered, perr = ctx.ToGeographic(bufferedPlanar)
		if perr != nil {
			return nil, perr
		}
	}

	bufferKm := int(math.Round(e.BufferM / 1000))
	res = &Result{
		Source:   source.Name,
		Target:   target.Name,
		BufferKm: bufferKm,
		Overlap:  geojson.NewFeatureCollection(),
		Buffer:   geojson.NewFeatureCollection(),
	}
	if !buffered.IsEmpty() {
		res.Buffer.Features = append(res.Buffer.Features, geojson.NewFeature(
			json.RawMessage(buffered.ToGeoJSON(-1)),
			map[string]interface{}{"coop": source.Name, "buffer_km": bufferKm},
		))
	}
	if buffered.IsEmpty() || tgtUnion.IsEmpty() {
		return res, nil
	}
	if !geometry.BoundsOverlap(buffered, tgtUnion) {
		return res, nil
	}

	inter := buffered.Intersection(tgtUnion)
	var areaM2 float64
	for _, piece := range pieces(inter) {
		if piece.IsEmpty() {
			continue
		}
		planar, perr := ctx.ToPlanar(piece)
		if perr != nil {
			return nil, perr
		}
		areaM2 += planar.Area()
		res.Overlap.Features = append(res.Overlap.Features, geojson.NewFeature(
			json.RawMessage(piece.ToGeoJSON(-1)),
			map[string]interface{}{
				"coop":      source.Name,
				"protected": target.Name,
				"buffer_km": bufferKm,
			},
		))
	}
	res.PieceCount = len(res.Overlap.Features)
	res.AreaKm2 = roundFloat(areaM2/1e6, areaPrecision)
	return res, nil
}

func (e *Engine) quadSegs() int {
	if e.QuadSegs <= 0 {
		return DefaultQuadSegs
	}
	return e.QuadSegs
}

// pieces decomposes a multi-part geometry into its parts; a simple
// geometry stands alone.
func pieces(g *geos.Geom) []*geos.Geom {
	switch g.TypeID() {
	case geos.TypeIDMultiPoint, geos.TypeIDMultiLineString, geos.TypeIDMultiPolygon, geos.TypeIDGeometryCollection:
		parts := make([]*geos.Geom, g.NumGeometries())
		for i := range parts {
			parts[i] = g.Geometry(i)
		}
		return parts
	default:
		return []*geos.Geom{g}
	}
}

func roundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}
