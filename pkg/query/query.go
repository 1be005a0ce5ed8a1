// Package query answers point/region/ray/overlap questions against a
// flat list of bodies, independent of the engine's broadphase grid —
// the outer collaborator walking a World tree calls these directly.
package query

import (
	"math"

	"github.com/opd-ai/rigid2d/pkg/body"
	"github.com/opd-ai/rigid2d/pkg/geometry"
	"github.com/opd-ai/rigid2d/pkg/narrowphase"
	"github.com/opd-ai/rigid2d/pkg/vector"
)

// Collides reports whether target overlaps any of candidates, testing
// part-by-part with a bounds quick-reject, and returns the colliding
// subset.
func Collides(target *body.Body, candidates []*body.Body) []*body.Body {
	var hits []*body.Body
	for _, other := range candidates {
		if other.ID == target.ID {
			continue
		}
		if !target.Bounds().Overlaps(other.Bounds()) {
			continue
		}
		if bodiesOverlap(target, other) {
			hits = append(hits, other)
		}
	}
	return hits
}

func bodiesOverlap(a, b *body.Body) bool {
	for pa := range a.Parts {
		for pb := range b.Parts {
			if !a.Parts[pa].Bounds.Overlaps(b.Parts[pb].Bounds) {
				continue
			}
			if narrowphase.Test(a, b, pa, pb, nil).Collided {
				return true
			}
		}
	}
	return false
}

// Ray returns every body whose bounds the segment a-b intersects,
// using a slab (AABB) test widened by width.
func Ray(bodies []*body.Body, a, b vector.Vector2D, width float64) []*body.Body {
	if width <= 0 {
		width = 1e-100
	}
	var hits []*body.Body
	dir := b.Sub(a)
	length := dir.Length()
	if length == 0 {
		return hits
	}
	for _, candidate := range bodies {
		if raySegmentIntersectsBounds(a, dir, length, width, candidate.Bounds()) {
			hits = append(hits, candidate)
		}
	}
	return hits
}

func raySegmentIntersectsBounds(origin, dir vector.Vector2D, length, width float64, bounds geometry.Bounds) bool {
	bounds = geometry.Bounds{
		Min: vector.Vector2D{X: bounds.Min.X - width, Y: bounds.Min.Y - width},
		Max: vector.Vector2D{X: bounds.Max.X + width, Y: bounds.Max.Y + width},
	}

	tmin, tmax := 0.0, length
	for _, axis := range []struct {
		origin, dir, min, max float64
	}{
		{origin.X, dir.X, bounds.Min.X, bounds.Max.X},
		{origin.Y, dir.Y, bounds.Min.Y, bounds.Max.Y},
	} {
		if axis.dir == 0 {
			if axis.origin < axis.min || axis.origin > axis.max {
				return false
			}
			continue
		}
		t1 := (axis.min - axis.origin) / axis.dir
		t2 := (axis.max - axis.origin) / axis.dir
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return false
		}
	}
	return true
}

// Region returns bodies whose bounds fall inside (or, if outside is
// true, entirely outside) the given bounds.
func Region(bodies []*body.Body, bounds geometry.Bounds, outside bool) []*body.Body {
	var hits []*body.Body
	for _, b := range bodies {
		overlaps := bounds.Overlaps(b.Bounds())
		if overlaps != outside {
			hits = append(hits, b)
		}
	}
	return hits
}

// Point returns every body whose any part contains the world point.
func Point(bodies []*body.Body, point vector.Vector2D) []*body.Body {
	var hits []*body.Body
	for _, b := range bodies {
		if !b.Bounds().Contains(point) {
			continue
		}
		for _, p := range b.Parts {
			if p.Vertices.Contains(point) {
				hits = append(hits, b)
				break
			}
		}
	}
	return hits
}
