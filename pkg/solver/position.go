// Package solver implements the two sequential-impulse passes that
// resolve contacts each step: the position solver (removes residual
// penetration) and the velocity solver (Catto-style normal + friction
// impulses). Both operate directly on the paircache's persisted pairs
// so cached impulses warm-start the next step.
package solver

import (
	"github.com/opd-ai/rigid2d/pkg/body"
	"github.com/opd-ai/rigid2d/pkg/paircache"
	"github.com/opd-ai/rigid2d/pkg/vector"
)

const (
	positionDampen = 0.9
	positionWarming = 0.8
)

// PositionPre zeroes every body's contact counter, then tallies the
// number of active contacts each active, non-sensor pair contributes
// to its two parent bodies.
func PositionPre(bodies []*body.Body, pairs []*paircache.Pair) {
	for _, b := range bodies {
		b.TotalContacts = 0
	}
	for _, p := range pairs {
		if !p.IsActive || p.IsSensor {
			continue
		}
		n := len(p.ActiveContacts)
		p.BodyA.TotalContacts += n
		p.BodyB.TotalContacts += n
	}
}

// PositionSolve runs one iteration of the position solver over every
// active, non-sensor pair.
func PositionSolve(pairs []*paircache.Pair, timeScale float64) {
	for _, p := range pairs {
		if !p.IsActive || p.IsSensor {
			continue
		}
		solvePairPosition(p, timeScale)
	}
}

func solvePairPosition(p *paircache.Pair, timeScale float64) {
	a, b := p.BodyA, p.BodyB
	normal := p.Collision.Normal

	separation := p.Collision.Depth + normal.Dot(a.PositionImpulse.Sub(b.PositionImpulse))

	raw := (separation - p.Slop) * timeScale
	if a.IsStatic || b.IsStatic {
		raw *= 2
	}

	if !a.IsStatic && !a.IsSleeping && a.TotalContacts > 0 {
		share := positionDampen / float64(a.TotalContacts)
		a.PositionImpulse = a.PositionImpulse.Sub(normal.Scale(raw * share))
	}
	if !b.IsStatic && !b.IsSleeping && b.TotalContacts > 0 {
		share := positionDampen / float64(b.TotalContacts)
		b.PositionImpulse = b.PositionImpulse.Add(normal.Scale(raw * share))
	}
}

// PositionPost applies each body's accumulated positional impulse to
// its vertices/position/positionPrev, snapping to rest (dropping the
// impulse) when it opposes velocity, else warming it into next step.
func PositionPost(bodies []*body.Body) {
	for _, b := range bodies {
		if b.PositionImpulse == vector.Zero {
			b.TotalContacts = 0
			continue
		}
		impulse := b.PositionImpulse
		for i := range b.Parts {
			b.Parts[i].Vertices = b.Parts[i].Vertices.Translate(impulse)
			b.Parts[i].Bounds = b.Parts[i].Vertices.Bounds()
		}
		b.Position = b.Position.Add(impulse)
		b.PositionPrev = b.PositionPrev.Add(impulse)

		if impulse.Dot(b.Velocity) < 0 {
			b.PositionImpulse = vector.Zero
		} else {
			b.PositionImpulse = impulse.Scale(positionWarming)
		}
		b.TotalContacts = 0
	}
}
