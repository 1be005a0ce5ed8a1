package constraint

import (
	"math"
	"testing"

	"github.com/opd-ai/rigid2d/pkg/body"
	"github.com/opd-ai/rigid2d/pkg/vector"
)

func box(id uint64, pos vector.Vector2D, half float64, static bool) *body.Body {
	opts := body.DefaultOptions()
	opts.IsStatic = static
	pts := []vector.Vector2D{
		{X: half, Y: -half},
		{X: half, Y: half},
		{X: -half, Y: half},
		{X: -half, Y: -half},
	}
	return body.New(id, pos, pts, opts)
}

func TestSolve_PullsBodiesTogether(t *testing.T) {
	anchor := box(1, vector.Vector2D{X: 0, Y: 0}, 10, true)
	free := box(2, vector.Vector2D{X: 300, Y: 0}, 10, false)

	c := New(anchor, free, vector.Zero, vector.Zero, 100, 0.9)
	before := free.Position.Distance(anchor.Position)
	for i := 0; i < 50; i++ {
		Solve([]*Constraint{c}, 1)
	}
	after := free.Position.Distance(anchor.Position)

	if after >= before {
		t.Fatalf("expected constraint to pull bodies closer: before=%v after=%v", before, after)
	}
	if math.Abs(after-100) > 5 {
		t.Errorf("expected distance to converge near rest length 100, got %v", after)
	}
}

func TestSolve_BothStaticSkipped(t *testing.T) {
	a := box(1, vector.Vector2D{X: 0, Y: 0}, 10, true)
	b := box(2, vector.Vector2D{X: 300, Y: 0}, 10, true)
	c := New(a, b, vector.Zero, vector.Zero, 100, 0.9)

	beforeA, beforeB := a.Position, b.Position
	Solve([]*Constraint{c}, 1)
	if a.Position != beforeA || b.Position != beforeB {
		t.Errorf("expected both-static constraint to be a no-op")
	}
}

func TestPreSolvePostSolve_Warming(t *testing.T) {
	b := box(1, vector.Vector2D{X: 0, Y: 0}, 10, false)
	b.ConstraintImpulse.Vector2D = vector.Vector2D{X: 10, Y: 0}
	b.ConstraintImpulse.Angle = 0.1

	PreSolveAll([]*body.Body{b})
	if b.Position.X != 10 {
		t.Errorf("expected PreSolveAll to apply impulse to position, got %v", b.Position)
	}

	PostSolveAll([]*body.Body{b})
	if math.Abs(b.ConstraintImpulse.Vector2D.X-10*warming) > 1e-9 {
		t.Errorf("expected impulse to decay by warming factor, got %v", b.ConstraintImpulse.Vector2D.X)
	}
	if b.IsSleeping {
		t.Errorf("expected PostSolveAll to wake the body")
	}
}

func TestOrdering_AnchoredConstraintsSolveFirst(t *testing.T) {
	anchor := box(1, vector.Vector2D{X: 0, Y: 0}, 10, true)
	freeA := box(2, vector.Vector2D{X: 300, Y: 0}, 10, false)
	freeB := box(3, vector.Vector2D{X: 600, Y: 0}, 10, false)

	anchored := New(anchor, freeA, vector.Zero, vector.Zero, 100, 0.9)
	chained := New(freeA, freeB, vector.Zero, vector.Zero, 100, 0.9)

	// The chained constraint is listed first, but Solve runs the anchored
	// one first: it pulls freeA from 300 to 120, then the chained one
	// moves freeB by half of (480-100)*0.9, to 429. Chained-first would
	// leave freeB at 510.
	beforeA, beforeB := freeA.Position, freeB.Position
	Solve([]*Constraint{chained, anchored}, 1)
	if freeA.Position == beforeA && freeB.Position == beforeB {
		t.Errorf("expected at least one free body to move")
	}
	if math.Abs(freeB.Position.X-429) > 1e-6 {
		t.Errorf("expected anchored constraint to be solved first (freeB.x=429), got %v", freeB.Position.X)
	}
}
