package solver

import (
	"math"

	"github.com/opd-ai/rigid2d/pkg/body"
	"github.com/opd-ai/rigid2d/pkg/paircache"
	"github.com/opd-ai/rigid2d/pkg/vector"
)

const (
	frictionNormalMultiplier = 5.0
	restingThreshold         = 4.0
	restingThresholdTangent  = 6.0
)

// Pool is the fixed per-engine scratch allocation the velocity solver
// needs, sized per the reentrancy requirement that no solver state
// live at package scope. Six named vectors cover the inner loop's
// relative-velocity and impulse terms, reused across every contact
// instead of declaring fresh locals each iteration.
type Pool struct {
	offA, offB vector.Vector2D
	vpA, vpB   vector.Vector2D
	rel        vector.Vector2D
	impulse    vector.Vector2D
}

// NewPool builds an empty scratch pool for one Engine.
func NewPool() *Pool {
	return &Pool{}
}

// VelocityPreSolve applies every active, non-sensor pair's cached
// (warm-started) impulses as an impulsive shift of positionPrev, so
// the resulting velocity change is felt without moving position.
func VelocityPreSolve(pairs []*paircache.Pair) {
	for _, p := range pairs {
		if !p.IsActive || p.IsSensor {
			continue
		}
		for _, contact := range p.ActiveContacts {
			if contact.NormalImpulse == 0 && contact.TangentImpulse == 0 {
				continue
			}
			impulse := p.Collision.Normal.Scale(contact.NormalImpulse).Add(p.Collision.Tangent.Scale(contact.TangentImpulse))
			applyImpulsiveShift(p.BodyA, contact.Vertex.Position, impulse.Neg())
			applyImpulsiveShift(p.BodyB, contact.Vertex.Position, impulse)
		}
	}
}

func applyImpulsiveShift(b *body.Body, point vector.Vector2D, impulse vector.Vector2D) {
	if b.IsStatic {
		return
	}
	b.PositionPrev = b.PositionPrev.Add(impulse.Scale(b.InverseMass))
	if b.InverseInertia != 0 {
		offset := point.Sub(b.Position)
		b.AnglePrev += offset.Cross(impulse) * b.InverseInertia
	}
}

// VelocitySolve runs one sequential-impulse iteration over every
// active, non-sensor pair, resolving each contact's normal and
// friction impulses with Catto's resting/active split.
func VelocitySolve(pairs []*paircache.Pair, pool *Pool, timeScale float64) {
	for _, p := range pairs {
		if !p.IsActive || p.IsSensor {
			continue
		}
		solvePairVelocity(p, pool, timeScale)
	}
}

func solvePairVelocity(p *paircache.Pair, pool *Pool, timeScale float64) {
	a, b := p.BodyA, p.BodyB
	n := len(p.ActiveContacts)
	if n == 0 {
		return
	}
	contactShare := 1.0 / float64(n)

	a.Velocity = a.Position.Sub(a.PositionPrev)
	a.AngularVelocity = a.Angle - a.AnglePrev
	b.Velocity = b.Position.Sub(b.PositionPrev)
	b.AngularVelocity = b.Angle - b.AnglePrev

	normal := p.Collision.Normal
	tangent := p.Collision.Tangent
	ts2 := timeScale * timeScale

	for _, contact := range p.ActiveContacts {
		v := contact.Vertex.Position

		pool.offA = v.Sub(a.Position)
		pool.offB = v.Sub(b.Position)

		pool.vpA = a.Velocity.Add(vector.CrossScalar(a.AngularVelocity, pool.offA))
		pool.vpB = b.Velocity.Add(vector.CrossScalar(b.AngularVelocity, pool.offB))
		pool.rel = pool.vpB.Sub(pool.vpA)

		vN := normal.Dot(pool.rel)
		vT := tangent.Dot(pool.rel)

		jN := (1 + p.Restitution) * vN

		fn := vector.Clamp(p.Separation+vN, 0, 1) * frictionNormalMultiplier

		var jT, maxF float64
		if math.Abs(vT) > p.Friction*p.FrictionStatic*fn*ts2 {
			maxF = math.Abs(vT)
			jT = vector.Clamp(p.Friction*sign(vT)*ts2, -maxF, maxF)
		} else {
			maxF = math.Inf(1)
			jT = vT
		}

		crossA := pool.offA.Cross(normal)
		crossB := pool.offB.Cross(normal)
		denom := a.InverseMass + b.InverseMass + a.InverseInertia*crossA*crossA + b.InverseInertia*crossB*crossB
		share := 0.0
		if denom != 0 {
			share = contactShare / denom
		}
		jN *= share
		jT *= share

		if vN < 0 && vN*vN > restingThreshold*ts2 {
			contact.NormalImpulse = 0
		} else {
			old := contact.NormalImpulse
			newImpulse := math.Min(old+jN, 0)
			jN = newImpulse - old
			contact.NormalImpulse = newImpulse
		}

		if vT*vT > restingThresholdTangent*ts2 {
			contact.TangentImpulse = 0
		} else {
			old := contact.TangentImpulse
			newImpulse := vector.Clamp(old+jT, -maxF, maxF)
			jT = newImpulse - old
			contact.TangentImpulse = newImpulse
		}

		pool.impulse = normal.Scale(jN).Add(tangent.Scale(jT))
		if !a.IsStatic && !a.IsSleeping {
			applyImpulsiveShift(a, v, pool.impulse.Neg())
		}
		if !b.IsStatic && !b.IsSleeping {
			applyImpulsiveShift(b, v, pool.impulse)
		}
	}
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	if v > 0 {
		return 1
	}
	return 0
}
