package geometry

import (
	"math"

	"github.com/opd-ai/rigid2d/pkg/vector"
)

// Vertex is a single point of a convex polygon. It carries its own index
// and the id of the body that owns it, rather than an owning pointer —
// bodies and vertices live in an arena (see pkg/body) and the pair from
// (BodyID, Index) is what gives a contact its stable identity.
type Vertex struct {
	Position vector.Vector2D
	Index    int
	BodyID   uint64
}

// Vertices is an ordered, clockwise ring of points belonging to one part
// of one body.
type Vertices []Vertex

// NewVertices builds a clockwise vertex ring for bodyID from a set of
// points, used as given (callers in pkg/body pass world-space points).
// Counter-clockwise input is reversed.
func NewVertices(bodyID uint64, points []vector.Vector2D) Vertices {
	pts := make([]vector.Vector2D, len(points))
	copy(pts, points)
	if signedArea(pts) > 0 {
		reverse(pts)
	}
	out := make(Vertices, len(pts))
	for i, p := range pts {
		out[i] = Vertex{Position: p, Index: i, BodyID: bodyID}
	}
	return out
}

func signedArea(points []vector.Vector2D) float64 {
	area := 0.0
	n := len(points)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += points[i].X*points[j].Y - points[j].X*points[i].Y
	}
	return area / 2
}

func reverse(points []vector.Vector2D) {
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
}

// Positions extracts the plain vector positions of the ring.
func (vs Vertices) Positions() []vector.Vector2D {
	out := make([]vector.Vector2D, len(vs))
	for i, v := range vs {
		out[i] = v.Position
	}
	return out
}

// Bounds computes the AABB of the ring.
func (vs Vertices) Bounds() Bounds {
	return FromVertices(vs.Positions())
}

// Translate returns a copy of the ring shifted by an offset.
func (vs Vertices) Translate(offset vector.Vector2D) Vertices {
	out := make(Vertices, len(vs))
	for i, v := range vs {
		v.Position = v.Position.Add(offset)
		out[i] = v
	}
	return out
}

// Rotate returns a copy of the ring rotated about point by angle.
func (vs Vertices) Rotate(point vector.Vector2D, angle float64) Vertices {
	out := make(Vertices, len(vs))
	for i, v := range vs {
		v.Position = v.Position.RotateAbout(point, angle)
		out[i] = v
	}
	return out
}

// Next returns the ring-neighbor vertex after i, wrapping around.
func (vs Vertices) Next(i int) Vertex {
	return vs[(i+1)%len(vs)]
}

// Prev returns the ring-neighbor vertex before i, wrapping around.
func (vs Vertices) Prev(i int) Vertex {
	return vs[(i-1+len(vs))%len(vs)]
}

// Contains reports whether point lies inside the convex polygon using a
// cross-product half-plane test against every clockwise edge.
func (vs Vertices) Contains(point vector.Vector2D) bool {
	for i := range vs {
		a := vs[i].Position
		b := vs.Next(i).Position
		edge := b.Sub(a)
		toPoint := point.Sub(a)
		// Clockwise winding: interior is to the right of each edge.
		if edge.Cross(toPoint) > 0 {
			return false
		}
	}
	return true
}

// Area returns the (always non-negative) area enclosed by the ring, and
// the centroid computed via the standard polygon-centroid formula.
func Area(points []vector.Vector2D) (area float64, centroid vector.Vector2D) {
	n := len(points)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		cross := points[i].Cross(points[j])
		area += cross
		centroid.X += (points[i].X + points[j].X) * cross
		centroid.Y += (points[i].Y + points[j].Y) * cross
	}
	area /= 2
	if math.Abs(area) < 1e-12 {
		return area, vector.Zero
	}
	centroid = centroid.Scale(1.0 / (6 * area))
	return math.Abs(area), centroid
}
