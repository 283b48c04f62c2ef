package geometry

import (
	"fmt"
	"math"

	"github.com/twpayne/go-geos"
)

// Sphere radius shared by the EPSG:4326 <-> EPSG:3857 pair.
const earthRadiusM = 6378137.0

// ToPlanarXY projects a geographic coordinate to planar meters.
// Always-XY: longitude first, latitude second.
func ToPlanarXY(lon, lat float64) (float64, float64) {
	x := earthRadiusM * lon * math.Pi / 180
	y := earthRadiusM * math.Log(math.Tan(math.Pi/4+lat*math.Pi/360))
	return x, y
}

// ToGeographicXY is the registered inverse of ToPlanarXY.
func ToGeographicXY(x, y float64) (float64, float64) {
	lon := x / earthRadiusM * 180 / math.Pi
	lat := (2*math.Atan(math.Exp(y/earthRadiusM)) - math.Pi/2) * 180 / math.Pi
	return lon, lat
}

// ToPlanar rebuilds g with every vertex projected to planar meters.
func (c *Context) ToPlanar(g *geos.Geom) (*geos.Geom, error) {
	return c.transform(g, ToPlanarXY)
}

// ToGeographic rebuilds g with every vertex projected back to lon/lat.
func (c *Context) ToGeographic(g *geos.Geom) (*geos.Geom, error) {
	return c.transform(g, ToGeographicXY)
}

func (c *Context) transform(g *geos.Geom, xy func(float64, float64) (float64, float64)) (out *geos.Geom, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("reproject: %v", r)
		}
	}()
	return c.rebuild(g, xy)
}

func (c *Context) rebuild(g *geos.Geom, xy func(float64, float64) (float64, float64)) (*geos.Geom, error) {
	if g.IsEmpty() {
		return c.Empty(), nil
	}
	switch g.TypeID() {
	case geos.TypeIDPoint:
		seq := g.CoordSeq()
		x, y := xy(seq.X(0), seq.Y(0))
		return c.geos.NewPoint([]float64{x, y}), nil
	case geos.TypeIDLineString, geos.TypeIDLinearRing:
		return c.geos.NewLineString(transformSeq(g.CoordSeq(), xy)), nil
	case geos.TypeIDPolygon:
		return c.geos.NewPolygon(polygonRings(g, xy)), nil
	case geos.TypeIDMultiPoint, geos.TypeIDMultiLineString, geos.TypeIDMultiPolygon, geos.TypeIDGeometryCollection:
		parts := make([]*geos.Geom, 0, g.NumGeometries())
		for i := 0; i < g.NumGeometries(); i++ {
			part, err := c.rebuild(g.Geometry(i), xy)
			if err != nil {
				return nil, err
			}
			if part.IsEmpty() {
				continue
			}
			parts = append(parts, part)
		}
		return c.geos.NewCollection(g.TypeID(), parts), nil
	default:
		return nil, fmt.Errorf("reproject: unsupported geometry type %d", g.TypeID())
	}
}

func transformSeq(seq *geos.CoordSeq, xy func(float64, float64) (float64, float64)) [][]float64 {
	coords := make([][]float64, seq.Size())
	for i := 0; i < seq.Size(); i++ {
		x, y := xy(seq.X(i), seq.Y(i))
		coords[i] = []float64{x, y}
	}
	return coords
}

func polygonRings(g *geos.Geom, xy func(float64, float64) (float64, float64)) [][][]float64 {
	rings := make([][][]float64, 0, g.NumInteriorRings()+1)
	rings = append(rings, transformSeq(g.ExteriorRing().CoordSeq(), xy))
	for i := 0; i < g.NumInteriorRings(); i++ {
		rings = append(rings, transformSeq(g.InteriorRing(i).CoordSeq(), xy))
	}
	return rings
}
