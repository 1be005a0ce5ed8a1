// Package constraint implements a Gauss-Seidel distance/spring solver
// between two body anchors (or a body anchor and a fixed world point).
// It mirrors the teacher's two-pass (pre-solve warm start, iterate,
// post-solve propagate) shape used by the physics integrator, adapted
// from per-tick ship state to a persistent constraint list.
package constraint

import (
	"math"

	"github.com/opd-ai/rigid2d/pkg/body"
	"github.com/opd-ai/rigid2d/pkg/vector"
)

const (
	minLength    = 1e-6
	warming      = 0.4
	torqueDampen = 1.0
)

// Constraint ties an anchor on BodyA (or a fixed world point, when
// BodyA is nil) to an anchor on BodyB, holding them at Length apart
// with the given Stiffness (0..1) and Damping.
type Constraint struct {
	BodyA, BodyB *body.Body

	// PointA, PointB are local offsets from the owning body's position,
	// or absolute world points when the corresponding body is nil.
	PointA, PointB vector.Vector2D

	Length           float64
	Stiffness        float64
	Damping          float64
	AngularStiffness float64

	angleA, angleB float64
}

// New builds a constraint, capturing each body's current angle as the
// reference angle so PointA/PointB rotate along with their owners.
func New(bodyA, bodyB *body.Body, pointA, pointB vector.Vector2D, length, stiffness float64) *Constraint {
	c := &Constraint{
		BodyA:     bodyA,
		BodyB:     bodyB,
		PointA:    pointA,
		PointB:    pointB,
		Length:    length,
		Stiffness: stiffness,
	}
	if bodyA != nil {
		c.angleA = bodyA.Angle
	}
	if bodyB != nil {
		c.angleB = bodyB.Angle
	}
	return c
}

func (c *Constraint) worldA() vector.Vector2D {
	if c.BodyA == nil {
		return c.PointA
	}
	rotated := c.PointA.Rotate(c.BodyA.Angle - c.angleA)
	return c.BodyA.Position.Add(rotated)
}

func (c *Constraint) worldB() vector.Vector2D {
	if c.BodyB == nil {
		return c.PointB
	}
	rotated := c.PointB.Rotate(c.BodyB.Angle - c.angleB)
	return c.BodyB.Position.Add(rotated)
}

func (c *Constraint) localA() vector.Vector2D {
	if c.BodyA == nil {
		return c.PointA
	}
	return c.PointA.Rotate(c.BodyA.Angle - c.angleA)
}

func (c *Constraint) localB() vector.Vector2D {
	if c.BodyB == nil {
		return c.PointB
	}
	return c.PointB.Rotate(c.BodyB.Angle - c.angleB)
}

func (c *Constraint) bothStaticOrAbsent() bool {
	aFixed := c.BodyA == nil || c.BodyA.IsStatic
	bFixed := c.BodyB == nil || c.BodyB.IsStatic
	return aFixed && bFixed
}

// hasFreeEndpoint reports whether both endpoints are fully dynamic
// (neither static nor absent); used for ordering (anchored-first).
func (c *Constraint) hasFreeEndpoint() bool {
	aFree := c.BodyA != nil && !c.BodyA.IsStatic
	bFree := c.BodyB != nil && !c.BodyB.IsStatic
	return aFree && bFree
}

// Solve solves every constraint once, with constraints that have a
// static or missing endpoint solved before fully free constraints,
// matching the anchored-first convergence ordering.
func Solve(constraints []*Constraint, timeScale float64) {
	for _, c := range constraints {
		if !c.hasFreeEndpoint() {
			c.solveOne(timeScale)
		}
	}
	for _, c := range constraints {
		if c.hasFreeEndpoint() {
			c.solveOne(timeScale)
		}
	}
}

func (c *Constraint) solveOne(timeScale float64) {
	if c.bothStaticOrAbsent() {
		return
	}

	pointAWorld := c.worldA()
	pointBWorld := c.worldB()
	delta := pointAWorld.Sub(pointBWorld)
	length := math.Max(delta.Length(), minLength)

	k := c.Stiffness
	if k < 1 {
		k *= timeScale
	}

	invMassA, invInertiaA := 0.0, 0.0
	if c.BodyA != nil {
		invMassA, invInertiaA = c.BodyA.InverseMass, c.BodyA.InverseInertia
	}
	invMassB, invInertiaB := 0.0, 0.0
	if c.BodyB != nil {
		invMassB, invInertiaB = c.BodyB.InverseMass, c.BodyB.InverseInertia
	}

	massTotal := invMassA + invMassB
	inertiaTotal := invInertiaA + invInertiaB
	resistTotal := massTotal + inertiaTotal
	if massTotal == 0 {
		return
	}

	difference := (length - c.Length) / length
	normal := delta.Scale(1 / length)
	force := delta.Scale(difference * k)

	shareA := 0.0
	if massTotal != 0 {
		shareA = invMassA / massTotal
	}
	shareB := 0.0
	if massTotal != 0 {
		shareB = invMassB / massTotal
	}

	if c.BodyA != nil && !c.BodyA.IsStatic {
		c.applyBody(c.BodyA, force.Scale(-shareA), normal, difference, resistTotal, c.localA(), k)
	}
	if c.BodyB != nil && !c.BodyB.IsStatic {
		c.applyBody(c.BodyB, force.Scale(shareB), normal, difference, resistTotal, c.localB(), k)
	}
}

func (c *Constraint) applyBody(b *body.Body, f vector.Vector2D, normal vector.Vector2D, difference float64, resistTotal float64, localPoint vector.Vector2D, k float64) {
	b.Position = b.Position.Add(f)
	b.ConstraintImpulse.Vector2D = b.ConstraintImpulse.Vector2D.Add(f)

	if c.Damping > 0 {
		relVelocity := b.Position.Sub(b.PositionPrev)
		normalVelocity := normal.Dot(relVelocity)
		b.PositionPrev = b.PositionPrev.Add(normal.Scale(c.Damping * normalVelocity))
	}

	if resistTotal > 0 && b.InverseInertia != 0 {
		torque := localPoint.Cross(f) / resistTotal * torqueDampen * b.InverseInertia * (1 - c.AngularStiffness)
		b.Angle += torque
		b.ConstraintImpulse.Angle += torque
	}
}

// PreSolveAll applies each body's accumulated (warm-started)
// constraintImpulse to its position/angle before the iteration pass.
func PreSolveAll(bodies []*body.Body) {
	for _, b := range bodies {
		if b.ConstraintImpulse.Vector2D == vector.Zero && b.ConstraintImpulse.Angle == 0 {
			continue
		}
		b.Position = b.Position.Add(b.ConstraintImpulse.Vector2D)
		b.Angle += b.ConstraintImpulse.Angle
	}
}

// PostSolveAll wakes and re-translates/rotates bodies by their
// accumulated impulse, then decays the impulse by warming so a reduced
// value carries into the next step.
func PostSolveAll(bodies []*body.Body) {
	for _, b := range bodies {
		if b.ConstraintImpulse.Vector2D == vector.Zero && b.ConstraintImpulse.Angle == 0 {
			continue
		}
		b.IsSleeping = false

		impulse := b.ConstraintImpulse.Vector2D
		angleImpulse := b.ConstraintImpulse.Angle
		for i := range b.Parts {
			b.Parts[i].Vertices = b.Parts[i].Vertices.Translate(impulse)
			if angleImpulse != 0 {
				b.Parts[i].Vertices = b.Parts[i].Vertices.Rotate(b.Position, angleImpulse)
				for j, a := range b.Parts[i].Axes {
					b.Parts[i].Axes[j] = a.Rotate(angleImpulse)
				}
			}
			b.Parts[i].Bounds = b.Parts[i].Vertices.Bounds()
		}

		b.ConstraintImpulse.Vector2D = b.ConstraintImpulse.Vector2D.Scale(warming)
		b.ConstraintImpulse.Angle *= warming
	}
}
