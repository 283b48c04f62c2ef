package geometry

import (
	"errors"
	"fmt"

	"github.com/twpayne/go-geos"

	"github.com/bsaid97/go-buffer-overlap/geojson"
)

// ErrInvalidGeometry marks a geometry that parsed but could not be coerced
// to validity. It is distinct from an empty geometry, which is a legal
// area-zero value, never an error.
var ErrInvalidGeometry = errors.New("invalid geometry")

// Repair normalizes one raw GeoJSON geometry: drops any elevation
// coordinate, parses, and coerces validity first with MakeValid and then
// with a zero-width buffer. The result may be empty.
func (c *Context) Repair(raw []byte) (g *geos.Geom, err error) {
	defer func() {
		if r := recover(); r != nil {
			g, err = nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, r)
		}
	}()

	flat, _ := geojson.DropElevation(raw)
	g, err = c.geos.NewGeomFromGeoJSON(string(flat))
	if err != nil {
		return nil, fmt.Errorf("parse geometry: %w", err)
	}
	if g.IsValid() {
		return g, nil
	}

	fixed, err := guard("make valid", func() *geos.Geom {
		return g.MakeValidWithParams(geos.MakeValidLinework, geos.MakeValidDiscardCollapsed)
	})
	if err == nil && fixed.IsValid() {
		return fixed, nil
	}

	zero, err := guard("zero buffer", func() *geos.Geom {
		return g.Buffer(0, 0)
	})
	if err == nil && zero.IsValid() {
		return zero, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrInvalidGeometry, g.IsValidReason())
}
