// Package narrowphase implements exact convex-polygon overlap testing
// (Separating Axis Theorem) and contact-manifold synthesis for
// broadphase candidate pairs. It is grounded on the teacher's
// CheckCollision (pkg/physics/collision.go), generalized from circle
// pairs to arbitrary convex polygon parts.
package narrowphase

import (
	"math"

	"github.com/opd-ai/rigid2d/pkg/body"
	"github.com/opd-ai/rigid2d/pkg/geometry"
	"github.com/opd-ai/rigid2d/pkg/vector"
)

// motionThreshold below which axis-coherence reuse (testing only the
// previous separating axis) is attempted before falling back to a
// full SAT sweep.
const motionThreshold = 0.2

// Collision is the transient per-step result of testing two bodies'
// parts against each other.
type Collision struct {
	BodyA, BodyB   *body.Body
	PartA, PartB   int
	Collided       bool
	Normal         vector.Vector2D
	Tangent        vector.Vector2D
	Depth          float64
	Penetration    vector.Vector2D
	Supports       []geometry.Vertex
	AxisBody       int // 0 = A, 1 = B
	AxisNumber     int
}

// Test runs SAT between partA (of bodyA) and partB (of bodyB),
// optionally reusing the separating axis recorded in previous (may be
// nil) when combined motion is low. Body ordering in the returned
// Collision matches the canonical bodyA.ID < bodyB.ID convention;
// callers are expected to have already ordered bodyA/bodyB that way.
func Test(bodyA, bodyB *body.Body, partA, partB int, previous *Collision) Collision {
	a := bodyA.Parts[partA]
	b := bodyB.Parts[partB]

	motion := bodyA.Speed*bodyA.Speed + bodyA.AngularSpeed*bodyA.AngularSpeed +
		bodyB.Speed*bodyB.Speed + bodyB.AngularSpeed*bodyB.AngularSpeed

	if previous != nil && previous.Collided && motion < motionThreshold {
		overlap, normal := testAxis(a, b, previous.AxisBody, previous.AxisNumber)
		if overlap <= 0 {
			return Collision{BodyA: bodyA, BodyB: bodyB, PartA: partA, PartB: partB, Collided: false}
		}
		return finishCollision(bodyA, bodyB, partA, partB, overlap, normal, previous.AxisBody, previous.AxisNumber)
	}

	return fullSAT(bodyA, bodyB, partA, partB)
}

func testAxis(a, b body.Part, axisBody, axisNumber int) (float64, vector.Vector2D) {
	axes := a.Axes
	if axisBody == 1 {
		axes = b.Axes
	}
	if axisNumber < 0 || axisNumber >= len(axes) {
		return -1, vector.Zero
	}
	axis := axes[axisNumber]
	minA, maxA := project(a.Vertices.Positions(), axis)
	minB, maxB := project(b.Vertices.Positions(), axis)
	overlap := math.Min(maxA, maxB) - math.Max(minA, minB)
	return overlap, axis
}

func fullSAT(bodyA, bodyB *body.Body, partA, partB int) Collision {
	a := bodyA.Parts[partA]
	b := bodyB.Parts[partB]

	minOverlap := math.Inf(1)
	var minAxis vector.Vector2D
	minAxisBody, minAxisNumber := 0, 0

	for i, axis := range a.Axes {
		minA, maxA := project(a.Vertices.Positions(), axis)
		minB, maxB := project(b.Vertices.Positions(), axis)
		overlap := math.Min(maxA, maxB) - math.Max(minA, minB)
		if overlap <= 0 {
			return Collision{BodyA: bodyA, BodyB: bodyB, PartA: partA, PartB: partB, Collided: false}
		}
		if overlap < minOverlap {
			minOverlap, minAxis, minAxisBody, minAxisNumber = overlap, axis, 0, i
		}
	}
	for i, axis := range b.Axes {
		minA, maxA := project(a.Vertices.Positions(), axis)
		minB, maxB := project(b.Vertices.Positions(), axis)
		overlap := math.Min(maxA, maxB) - math.Max(minA, minB)
		if overlap <= 0 {
			return Collision{BodyA: bodyA, BodyB: bodyB, PartA: partA, PartB: partB, Collided: false}
		}
		if overlap < minOverlap {
			minOverlap, minAxis, minAxisBody, minAxisNumber = overlap, axis, 1, i
		}
	}

	return finishCollision(bodyA, bodyB, partA, partB, minOverlap, minAxis, minAxisBody, minAxisNumber)
}

func project(points []vector.Vector2D, axis vector.Vector2D) (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, p := range points {
		d := p.Dot(axis)
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	return
}

func finishCollision(bodyA, bodyB *body.Body, partA, partB int, overlap float64, axis vector.Vector2D, axisBody, axisNumber int) Collision {
	normal := axis.Normalize()
	centerDelta := bodyB.Position.Sub(bodyA.Position)
	if normal.Dot(centerDelta) < 0 {
		normal = normal.Neg()
	}

	supports := findSupports(bodyA.Parts[partA], bodyB.Parts[partB], normal)

	return Collision{
		BodyA:       bodyA,
		BodyB:       bodyB,
		PartA:       partA,
		PartB:       partB,
		Collided:    true,
		Normal:      normal,
		Tangent:     normal.Perp(),
		Depth:       overlap,
		Penetration: normal.Scale(overlap),
		Supports:    supports,
		AxisBody:    axisBody,
		AxisNumber:  axisNumber,
	}
}

// findSupports locates the 1-2 vertices nearest the contact surface
// via hill-climb along B's ring toward A (smallest projection on
// normal), keeping whichever of those vertices lie inside A; if that
// yields fewer than two contacts, the same hill-climb is repeated on A
// toward B (smallest projection on -normal), keeping those inside B. If
// still empty, B's single vertex nearest A is returned.
func findSupports(partA, partB body.Part, normal vector.Vector2D) []geometry.Vertex {
	contacts := hillClimbInside(partB.Vertices, normal, partA.Vertices)
	if len(contacts) >= 2 {
		return contacts
	}
	more := hillClimbInside(partA.Vertices, normal.Neg(), partB.Vertices)
	contacts = append(contacts, more...)
	if len(contacts) > 0 {
		return dedupe(contacts)
	}
	return []geometry.Vertex{nearestVertex(partB.Vertices, normal)}
}

// hillClimbInside finds the vertex of ring with the smallest
// projection along direction, then checks it and its two ring
// neighbors, keeping any that lie inside other.
func hillClimbInside(ring geometry.Vertices, direction vector.Vector2D, other geometry.Vertices) []geometry.Vertex {
	nearest := nearestVertex(ring, direction)
	candidates := []geometry.Vertex{
		ring.Prev(nearest.Index),
		nearest,
		ring.Next(nearest.Index),
	}
	var out []geometry.Vertex
	for _, c := range candidates {
		if other.Contains(c.Position) {
			out = append(out, c)
		}
	}
	return dedupe(out)
}

func nearestVertex(ring geometry.Vertices, direction vector.Vector2D) geometry.Vertex {
	best := ring[0]
	bestProj := best.Position.Dot(direction)
	for _, v := range ring[1:] {
		p := v.Position.Dot(direction)
		if p < bestProj {
			bestProj = p
			best = v
		}
	}
	return best
}

type vertexKey struct {
	bodyID uint64
	index  int
}

func dedupe(vs []geometry.Vertex) []geometry.Vertex {
	if len(vs) <= 1 {
		return vs
	}
	out := vs[:0:0]
	seen := make(map[vertexKey]bool, len(vs))
	for _, v := range vs {
		key := vertexKey{bodyID: v.BodyID, index: v.Index}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
		if len(out) == 2 {
			break
		}
	}
	return out
}
