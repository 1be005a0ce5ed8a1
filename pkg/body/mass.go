package body

import (
	"github.com/opd-ai/rigid2d/pkg/geometry"
	"github.com/opd-ai/rigid2d/pkg/vector"
)

// polygonMassProperties computes the area, centroid, and moment of
// inertia (about the centroid, for unit density) of a convex polygon
// using the standard triangle-fan decomposition. Area and centroid come
// from geometry.Area; a second pass then sums, per edge, the cross
// product of the centroid-relative vertex pair weighted by their
// squared extents to get the second moment.
func polygonMassProperties(points []vector.Vector2D) (area float64, centroid vector.Vector2D, inertia float64) {
	area, centroid = geometry.Area(points)
	if area == 0 {
		return 0, vector.Zero, 0
	}
	n := len(points)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		p1 := points[i].Sub(centroid)
		p2 := points[j].Sub(centroid)
		cross := p1.Cross(p2)
		intx2 := p1.X*p1.X + p2.X*p1.X + p2.X*p2.X
		inty2 := p1.Y*p1.Y + p2.Y*p1.Y + p2.Y*p2.Y
		inertia += (cross * 0.25 / 3) * (intx2 + inty2)
	}
	if inertia < 0 {
		inertia = -inertia
	}
	return area, centroid, inertia
}
