package geometry

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/twpayne/go-geos"

	"github.com/bsaid97/go-buffer-overlap/geojson"
)

// Stats reports what a dissolve kept and what it had to drop.
type Stats struct {
	Total   int // features seen
	Kept    int // geometries that entered the union
	Empty   int // empty after repair, skipped
	Invalid int // unparseable or unrepairable, skipped
	Dropped int // lost to union failures in the stepwise fallback
}

// Dissolve merges every usable feature geometry into one unioned geometry.
// It never fails: malformed or unrepairable features are counted and
// skipped, and a bulk-union failure degrades to a stepwise fold that drops
// at most the offending geometries. Worst case it returns the empty
// geometry.
func (c *Context) Dissolve(fc geojson.FeatureCollection) (*geos.Geom, Stats) {
	stats := Stats{Total: len(fc.Features)}
	geoms := make([]*geos.Geom, 0, len(fc.Features))
	for _, f := range fc.Features {
		g, err := c.Repair(f.Geometry)
		if err != nil {
			stats.Invalid++
			log.Debug().Err(err).Msg("dissolve: feature dropped")
			continue
		}
		if g.IsEmpty() {
			stats.Empty++
			continue
		}
		geoms = append(geoms, g)
		stats.Kept++
	}
	if len(geoms) == 0 {
		return c.Empty(), stats
	}

	union, err := bulkUnion(geoms)
	if err == nil {
		return union, stats
	}
	log.Debug().Err(err).Msg("dissolve: bulk union failed, folding stepwise")
	return c.stepwiseUnion(geoms, &stats), stats
}

// bulkUnion is the fast path: one divide-and-conquer union over all
// geometries. It destroys only the intermediates it creates, so the
// inputs stay usable by the fallback if it fails.
func bulkUnion(geoms []*geos.Geom) (g *geos.Geom, err error) {
	defer func() {
		if r := recover(); r != nil {
			g, err = nil, fmt.Errorf("bulk union: %v", r)
		}
	}()
	return cascadedUnion(geoms), nil
}

func cascadedUnion(geoms []*geos.Geom) *geos.Geom {
	if len(geoms) == 1 {
		return geoms[0]
	}
	mid := len(geoms) / 2
	left := cascadedUnion(geoms[:mid])
	right := cascadedUnion(geoms[mid:])
	result := left.Union(right)
	if mid > 1 {
		left.Destroy()
	}
	if len(geoms)-mid > 1 {
		right.Destroy()
	}
	return result
}

// stepwiseUnion folds left to right. A failing pair gets one re-repair of
// the right-hand geometry; if the union still fails that geometry is
// dropped and the fold continues.
func (c *Context) stepwiseUnion(geoms []*geos.Geom, stats *Stats) *geos.Geom {
	acc := geoms[0]
	for _, g := range geoms[1:] {
		u, err := pairUnion(acc, g)
		if err != nil {
			fixed, rerr := guard("re-repair", g.MakeValid)
			if rerr == nil {
				u, err = pairUnion(acc, fixed)
			}
			if err != nil {
				stats.Dropped++
				log.Debug().Err(err).Msg("dissolve: geometry dropped from union")
				continue
			}
		}
		acc = u
	}
	return acc
}

func pairUnion(a, b *geos.Geom) (g *geos.Geom, err error) {
	defer func() {
		if r := recover(); r != nil {
			g, err = nil, fmt.Errorf("union: %v", r)
		}
	}()
	return a.Union(b), nil
}
