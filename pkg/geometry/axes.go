package geometry

import (
	"math"

	"github.com/opd-ai/rigid2d/pkg/vector"
)

// gradientEpsilon controls how close two edge gradients must be before an
// axis is considered a duplicate (e.g. both edges of a degenerate sliver,
// or opposite edges of a rectangle sharing a separating direction).
const gradientEpsilon = 1e-6

// AxesFromVertices computes the unit outward-ish edge normals of a
// clockwise polygon, deduplicated by gradient so that parallel edges
// (most notably a rectangle's two pairs of opposite sides) contribute a
// single SAT axis each.
func AxesFromVertices(vs Vertices) []vector.Vector2D {
	seen := make(map[float64]struct{}, len(vs))
	axes := make([]vector.Vector2D, 0, len(vs))
	for i := range vs {
		edge := vs.Next(i).Position.Sub(vs[i].Position)
		normal := vector.Vector2D{X: edge.Y, Y: -edge.X}.Normalize()
		gradient := gradientKey(normal)
		if _, dup := seen[gradient]; dup {
			continue
		}
		seen[gradient] = struct{}{}
		axes = append(axes, normal)
	}
	return axes
}

// gradientKey buckets a normal's slope so that a normal and its negation
// (parallel edges facing opposite ways) collapse to the same axis.
func gradientKey(n vector.Vector2D) float64 {
	if math.Abs(n.X) < gradientEpsilon {
		return math.Inf(1)
	}
	g := n.Y / n.X
	return math.Round(g/gradientEpsilon) * gradientEpsilon
}
