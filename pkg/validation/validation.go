// Package validation performs construction-time checks on body
// geometry: non-empty vertex lists, finite coordinates, and convexity.
// A body built from invalid input is rejected here rather than left to
// misbehave mid-step, per the engine's policy that bad input is caught
// at the boundary and never raised once a step is underway.
package validation

import (
	"fmt"
	"math"

	"github.com/opd-ai/rigid2d/pkg/vector"
)

// ValidateVertices checks that points form a valid convex polygon: at
// least three points, every coordinate finite, and no interior
// reflex vertex (cross product of consecutive edges does not change
// sign around the ring).
func ValidateVertices(points []vector.Vector2D) error {
	if len(points) < 3 {
		return fmt.Errorf("invalid input: vertex list has %d points, need at least 3", len(points))
	}

	for i, p := range points {
		if !isFinite(p.X) || !isFinite(p.Y) {
			return fmt.Errorf("invalid input: vertex %d has non-finite coordinate (%v, %v)", i, p.X, p.Y)
		}
	}

	if !isConvex(points) {
		return fmt.Errorf("invalid input: vertex list is not convex")
	}

	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// isConvex reports whether the polygon described by points (in either
// winding order) is convex: the sign of the cross product of
// consecutive edge vectors must not change around the ring.
func isConvex(points []vector.Vector2D) bool {
	n := len(points)
	sign := 0
	for i := 0; i < n; i++ {
		a := points[i]
		b := points[(i+1)%n]
		c := points[(i+2)%n]
		cross := b.Sub(a).Cross(c.Sub(b))
		if cross == 0 {
			continue
		}
		current := 1
		if cross < 0 {
			current = -1
		}
		if sign == 0 {
			sign = current
		} else if sign != current {
			return false
		}
	}
	return true
}

// ValidateConstraintAnchor flags a degenerate (zero-length, same-point)
// constraint anchor pair as Degenerate rather than InvalidInput: it is
// clamped silently by the solver's minLength floor, not rejected.
func ValidateConstraintAnchor(pointA, pointB vector.Vector2D) bool {
	return pointA.Distance(pointB) < 1e-9
}
