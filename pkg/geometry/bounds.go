// Package geometry provides the convex-polygon primitives (vertices,
// deduplicated edge axes, and axis-aligned bounds) that bodies are built
// from.
package geometry

import (
	"math"

	"github.com/opd-ai/rigid2d/pkg/vector"
)

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min vector.Vector2D
	Max vector.Vector2D
}

// FromVertices computes the tight AABB of a vertex set.
func FromVertices(vertices []vector.Vector2D) Bounds {
	if len(vertices) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: vertices[0], Max: vertices[0]}
	for _, v := range vertices[1:] {
		b.Min.X = math.Min(b.Min.X, v.X)
		b.Min.Y = math.Min(b.Min.Y, v.Y)
		b.Max.X = math.Max(b.Max.X, v.X)
		b.Max.Y = math.Max(b.Max.Y, v.Y)
	}
	return b
}

// ExpandByVelocity extends the box in the direction of travel, so a fast
// body's bounds still contain its position on the next step.
func (b Bounds) ExpandByVelocity(velocity vector.Vector2D) Bounds {
	out := b
	if velocity.X > 0 {
		out.Max.X += velocity.X
	} else {
		out.Min.X += velocity.X
	}
	if velocity.Y > 0 {
		out.Max.Y += velocity.Y
	} else {
		out.Min.Y += velocity.Y
	}
	return out
}

// Overlaps reports whether two bounds intersect.
func (b Bounds) Overlaps(other Bounds) bool {
	return b.Min.X <= other.Max.X && b.Max.X >= other.Min.X &&
		b.Min.Y <= other.Max.Y && b.Max.Y >= other.Min.Y
}

// Contains reports whether a point lies within the bounds.
func (b Bounds) Contains(point vector.Vector2D) bool {
	return point.X >= b.Min.X && point.X <= b.Max.X &&
		point.Y >= b.Min.Y && point.Y <= b.Max.Y
}

// Union returns the smallest bounds containing both inputs.
func (b Bounds) Union(other Bounds) Bounds {
	return Bounds{
		Min: vector.Vector2D{X: math.Min(b.Min.X, other.Min.X), Y: math.Min(b.Min.Y, other.Min.Y)},
		Max: vector.Vector2D{X: math.Max(b.Max.X, other.Max.X), Y: math.Max(b.Max.Y, other.Max.Y)},
	}
}

// Translate shifts the bounds by an offset.
func (b Bounds) Translate(offset vector.Vector2D) Bounds {
	return Bounds{Min: b.Min.Add(offset), Max: b.Max.Add(offset)}
}
