// Package body defines the rigid body and its convex parts: kinematic
// state, mass properties, material, and the solver caches (forces,
// accumulated impulses) that the constraint and contact solvers share
// across a step.
package body

import (
	"github.com/opd-ai/rigid2d/pkg/geometry"
	"github.com/opd-ai/rigid2d/pkg/vector"
)

// Part is one convex piece of a (possibly compound) body. Part 0 is the
// parent/identity part; additional parts (index >= 1) make the body
// compound.
type Part struct {
	Vertices geometry.Vertices
	Axes     []vector.Vector2D
	Bounds   geometry.Bounds
}

// CollisionFilter controls which body pairs the narrowphase is allowed
// to test.
type CollisionFilter struct {
	Category uint32
	Mask     uint32
	Group    int32
}

// DefaultFilter collides with everything.
var DefaultFilter = CollisionFilter{Category: 1, Mask: 0xFFFFFFFF, Group: 0}

// CanCollide reports whether two filters permit a test between their
// owners. A shared non-zero group overrides category/mask: a positive
// group always collides, a negative group never does.
func (f CollisionFilter) CanCollide(other CollisionFilter) bool {
	if f.Group != 0 && f.Group == other.Group {
		return f.Group > 0
	}
	return f.Category&other.Mask != 0 && other.Category&f.Mask != 0
}

// Impulse is a positional or angular accumulator carried across steps
// for warm-starting. It is kept here, co-located with the body, even for
// the constraint solver's angular component, per the invariant that
// warm-start state lives with its owning body.
type Impulse struct {
	vector.Vector2D
	Angle float64
}

// Region identifies the span of broadphase grid cells a body currently
// overlaps. It is recomputed by the broadphase and cached so a body is
// only re-bucketed when it actually changes cell.
type Region struct {
	MinCol, MaxCol, MinRow, MaxRow int
	Valid                          bool
}

// Equal reports whether two regions cover the same cells.
func (r Region) Equal(other Region) bool {
	return r.Valid == other.Valid &&
		r.MinCol == other.MinCol && r.MaxCol == other.MaxCol &&
		r.MinRow == other.MinRow && r.MaxRow == other.MaxRow
}

// Body is a convex (or compound-convex) rigid shape.
type Body struct {
	ID uint64

	Position, PositionPrev vector.Vector2D
	Angle, AnglePrev       float64
	Velocity               vector.Vector2D
	AngularVelocity        float64
	Speed, AngularSpeed    float64

	Mass, InverseMass       float64
	Inertia, InverseInertia float64

	Friction       float64
	FrictionStatic float64
	Restitution    float64
	Slop           float64
	FrictionAir    float64

	Parts []Part

	Force             vector.Vector2D
	Torque            float64
	PositionImpulse   vector.Vector2D
	ConstraintImpulse Impulse
	TotalContacts     int

	IsStatic   bool
	IsSleeping bool
	IsSensor   bool

	SleepCounter   int
	SleepThreshold int
	Motion         float64

	Filter CollisionFilter

	Region Region
}

// Bounds returns the union of all parts' bounds (the whole-body AABB).
func (b *Body) Bounds() geometry.Bounds {
	all := b.Parts[0].Bounds
	for _, p := range b.Parts[1:] {
		all = all.Union(p.Bounds)
	}
	return all
}

// SetStatic toggles whether the body participates in dynamics. A static
// body always has InverseMass == 0 and InverseInertia == 0, and ignores
// forces/impulses, per the invariant `inverseMass == 0 <=> isStatic`.
func (b *Body) SetStatic(static bool) {
	b.IsStatic = static
	if static {
		b.InverseMass = 0
		b.InverseInertia = 0
		b.Velocity = vector.Zero
		b.AngularVelocity = 0
		b.Motion = 0
	} else if b.Mass != 0 {
		b.InverseMass = 1 / b.Mass
		if b.Inertia != 0 {
			b.InverseInertia = 1 / b.Inertia
		}
	}
}

// SetMass overrides the body's mass, rescaling inertia to keep the
// current mass/inertia ratio.
func (b *Body) SetMass(mass float64) {
	if b.IsStatic {
		return
	}
	ratio := 0.0
	if b.Mass != 0 {
		ratio = mass / b.Mass
	}
	b.Mass = mass
	if mass != 0 {
		b.InverseMass = 1 / mass
	} else {
		b.InverseMass = 0
	}
	b.Inertia *= ratio
	if b.Inertia != 0 {
		b.InverseInertia = 1 / b.Inertia
	} else {
		b.InverseInertia = 0
	}
}

// SetInertia overrides the body's moment of inertia directly.
func (b *Body) SetInertia(inertia float64) {
	if b.IsStatic {
		return
	}
	b.Inertia = inertia
	if inertia != 0 {
		b.InverseInertia = 1 / inertia
	} else {
		b.InverseInertia = 0
	}
}

// SetPosition moves the body to an absolute position, translating its
// vertices and bounds to match.
func (b *Body) SetPosition(position vector.Vector2D) {
	b.Translate(position.Sub(b.Position))
}

// SetAngle rotates the body to an absolute angle about its position.
func (b *Body) SetAngle(angle float64) {
	b.Rotate(angle - b.Angle)
}

// SetVelocity overrides the body's linear velocity directly, also
// nudging positionPrev so the Verlet integrator picks it up next step.
func (b *Body) SetVelocity(velocity vector.Vector2D) {
	b.PositionPrev = b.Position.Sub(velocity)
	b.Velocity = velocity
	b.Speed = velocity.Length()
}

// SetAngularVelocity overrides the body's angular velocity directly.
func (b *Body) SetAngularVelocity(angularVelocity float64) {
	b.AnglePrev = b.Angle - angularVelocity
	b.AngularVelocity = angularVelocity
	b.AngularSpeed = mathAbs(angularVelocity)
}

// ApplyForce accumulates a force on the body for the next integration.
func (b *Body) ApplyForce(force vector.Vector2D) {
	b.Force = b.Force.Add(force)
}

// ApplyForceAt accumulates a force applied at a world-space point,
// contributing both linear force and torque.
func (b *Body) ApplyForceAt(force vector.Vector2D, point vector.Vector2D) {
	b.Force = b.Force.Add(force)
	offset := point.Sub(b.Position)
	b.Torque += offset.Cross(force)
}

// Translate shifts the body (all parts) by an offset, updating bounds.
func (b *Body) Translate(offset vector.Vector2D) {
	b.Position = b.Position.Add(offset)
	for i := range b.Parts {
		b.Parts[i].Vertices = b.Parts[i].Vertices.Translate(offset)
		b.Parts[i].Bounds = b.Parts[i].Vertices.Bounds()
	}
}

// Rotate rotates the body (all parts) about its position by angle,
// rotating axes along with vertices and updating bounds.
func (b *Body) Rotate(angle float64) {
	b.Angle += angle
	for i := range b.Parts {
		b.Parts[i].Vertices = b.Parts[i].Vertices.Rotate(b.Position, angle)
		for j, a := range b.Parts[i].Axes {
			b.Parts[i].Axes[j] = a.Rotate(angle)
		}
		b.Parts[i].Bounds = b.Parts[i].Vertices.Bounds()
	}
}

// Scale multiplies all part vertices about the body's position by the
// given per-axis factors and recomputes mass/inertia proportionally.
func (b *Body) Scale(scaleX, scaleY float64) {
	for i := range b.Parts {
		pts := b.Parts[i].Vertices.Positions()
		for j, p := range pts {
			rel := p.Sub(b.Position)
			pts[j] = b.Position.Add(vector.Vector2D{X: rel.X * scaleX, Y: rel.Y * scaleY})
		}
		b.Parts[i].Vertices = geometry.NewVertices(b.ID, pts)
		b.Parts[i].Axes = geometry.AxesFromVertices(b.Parts[i].Vertices)
		b.Parts[i].Bounds = b.Parts[i].Vertices.Bounds()
	}
	area := 1.0
	if scaleX != 0 && scaleY != 0 {
		area = scaleX * scaleY
	}
	b.SetMass(b.Mass * area)
}

func mathAbs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
