package geometry

import (
	"fmt"

	"github.com/twpayne/go-geos"
)

// Context owns the GEOS handle behind every geometry it creates. Each
// engine invocation gets its own context, so concurrent batch items never
// share geometry state.
type Context struct {
	geos *geos.Context
}

// NewContext returns a fresh, independent geometry context.
func NewContext() *Context {
	return &Context{geos: geos.NewContext()}
}

// Empty returns the canonical empty geometry.
func (c *Context) Empty() *geos.Geom {
	g, err := c.geos.NewGeomFromWKT("GEOMETRYCOLLECTION EMPTY")
	if err != nil {
		panic(err)
	}
	return g
}

// guard converts a GEOS panic into an error so an engine-level failure
// stays contained to the operation that raised it.
func guard(op string, f func() *geos.Geom) (g *geos.Geom, err error) {
	defer func() {
		if r := recover(); r != nil {
			g, err = nil, fmt.Errorf("%s: %v", op, r)
		}
	}()
	return f(), nil
}
