package body

import "github.com/opd-ai/rigid2d/pkg/vector"

// DefaultGravityScale is applied to the world gravity vector before it
// is accumulated into a body's force, matching the teacher's low-gravity
// feel for a 60Hz integrator operating in world (not SI) units.
const DefaultGravityScale = 0.001

// ApplyGravity accumulates `mass * gravity * gravityScale` into the
// body's force accumulator. Static and sleeping bodies are unaffected.
func (b *Body) ApplyGravity(gravity vector.Vector2D, gravityScale float64) {
	if b.IsStatic || b.IsSleeping {
		return
	}
	b.Force = b.Force.Add(gravity.Scale(b.Mass * gravityScale))
}

// Integrate advances the body one step by Time-Corrected Verlet
// integration: position is updated from the previous displacement
// (scaled by the air-friction complement and the correction factor c)
// plus the force-driven acceleration term, then velocity/angularVelocity
// are re-derived as the position/angle delta. Afterward, part vertices
// and axes are translated/rotated by that delta and bounds are rebuilt,
// extended by the new velocity.
//
// dt is the wall-clock step, timeScale the engine's time scale, and
// correction the step's Time-Corrected Verlet factor c (dt / previous
// dt, or 1 when dt is constant).
func (b *Body) Integrate(dt, timeScale, correction float64) {
	if b.IsStatic || b.IsSleeping {
		b.updateStaticBounds()
		return
	}

	deltaScaled := dt * timeScale
	drag := 1 - b.FrictionAir

	positionBefore := b.Position
	angleBefore := b.Angle

	accel := b.Force.Scale(1 / b.Mass)
	b.Position = b.Position.Add(
		b.Position.Sub(b.PositionPrev).Scale(drag * correction),
	).Add(accel.Scale(deltaScaled * deltaScaled))

	angularAccel := 0.0
	if b.Inertia != 0 {
		angularAccel = b.Torque / b.Inertia
	}
	b.Angle = b.Angle +
		(b.Angle-b.AnglePrev)*drag*correction +
		angularAccel*deltaScaled*deltaScaled

	b.PositionPrev = positionBefore
	b.AnglePrev = angleBefore

	b.Velocity = b.Position.Sub(b.PositionPrev)
	b.Speed = b.Velocity.Length()
	b.AngularVelocity = b.Angle - b.AnglePrev
	b.AngularSpeed = mathAbs(b.AngularVelocity)

	delta := b.Velocity
	angleDelta := b.AngularVelocity
	for i := range b.Parts {
		b.Parts[i].Vertices = b.Parts[i].Vertices.Translate(delta)
		if angleDelta != 0 {
			b.Parts[i].Vertices = b.Parts[i].Vertices.Rotate(b.Position, angleDelta)
			for j, a := range b.Parts[i].Axes {
				b.Parts[i].Axes[j] = a.Rotate(angleDelta)
			}
		}
		b.Parts[i].Bounds = b.Parts[i].Vertices.Bounds().ExpandByVelocity(b.Velocity)
	}
}

// updateStaticBounds recomputes bounds for a static or sleeping body
// without otherwise touching its kinematic state. Integrate calls it
// every step for static and sleeping bodies.
func (b *Body) updateStaticBounds() {
	for i := range b.Parts {
		b.Parts[i].Bounds = b.Parts[i].Vertices.Bounds()
	}
}

// ForceUpdateBounds recomputes every part's bounds unconditionally, used
// when the world signals a structural change that may have moved static
// geometry without going through Integrate.
func (b *Body) ForceUpdateBounds() {
	b.updateStaticBounds()
}

// ClearForces zeroes the force and torque accumulators. Called once per
// step, after the velocity solver has run.
func (b *Body) ClearForces() {
	b.Force = vector.Zero
	b.Torque = 0
}
