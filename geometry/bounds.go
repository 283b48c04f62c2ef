package geometry

import "github.com/twpayne/go-geos"

// BoundsOverlap reports whether the envelopes of a and b intersect.
// Disjoint envelopes guarantee an empty intersection, so callers can skip
// the full overlay.
func BoundsOverlap(a, b *geos.Geom) bool {
	ab, bb := a.Bounds(), b.Bounds()
	if ab == nil || bb == nil {
		return false
	}
	return ab.MinX <= bb.MaxX && bb.MinX <= ab.MaxX &&
		ab.MinY <= bb.MaxY && bb.MinY <= ab.MaxY
}
