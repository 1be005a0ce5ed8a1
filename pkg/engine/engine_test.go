package engine

import (
	"context"
	"math"
	"testing"

	"github.com/opd-ai/rigid2d/pkg/body"
	"github.com/opd-ai/rigid2d/pkg/constraint"
	"github.com/opd-ai/rigid2d/pkg/geometry"
	"github.com/opd-ai/rigid2d/pkg/vector"
	"github.com/opd-ai/rigid2d/pkg/world"
)

func box(id uint64, pos vector.Vector2D, half float64, static bool) *body.Body {
	pts := []vector.Vector2D{
		{X: half, Y: -half},
		{X: half, Y: half},
		{X: -half, Y: half},
		{X: -half, Y: -half},
	}
	opts := body.DefaultOptions()
	opts.Density = 0.001
	opts.IsStatic = static
	return body.New(id, pos, pts, opts)
}

func bigBounds() geometry.Bounds {
	return geometry.Bounds{
		Min: vector.Vector2D{X: -10000, Y: -10000},
		Max: vector.Vector2D{X: 10000, Y: 10000},
	}
}

func TestUpdate_FallingBoxComesToRestOnGround(t *testing.T) {
	w := world.New(bigBounds())
	ground := box(w.NextBodyID(), vector.Vector2D{X: 400, Y: 40}, 400, true)
	ground.SetStatic(true)
	w.AddBody(ground)

	falling := box(w.NextBodyID(), vector.Vector2D{X: 400, Y: 200}, 20, false)
	w.AddBody(falling)

	e := New(w, DefaultOptions())
	ctx := context.Background()
	for i := 0; i < 600; i++ {
		e.Update(ctx, 16.6667, 1)
	}

	if math.Abs(falling.Velocity.Y) > 1e-1 {
		t.Errorf("expected the box to settle, got velocity.y=%v", falling.Velocity.Y)
	}
	if falling.Position.Y > 60 {
		t.Errorf("expected the box to rest near the ground, got position.y=%v", falling.Position.Y)
	}
}

func TestUpdate_ZeroGravityAndTimeScaleFreezesMotion(t *testing.T) {
	w := world.New(bigBounds())
	b := box(w.NextBodyID(), vector.Vector2D{X: 0, Y: 0}, 10, false)
	w.AddBody(b)

	opts := DefaultOptions()
	opts.Gravity = vector.Zero
	opts.TimeScale = 0
	e := New(w, opts)

	before := b.Position
	e.Update(context.Background(), 16.6667, 1)
	if b.Position != before {
		t.Errorf("expected timeScale=0 to freeze position, got %v -> %v", before, b.Position)
	}
}

func TestUpdate_PairLifecycleStartsAndEnds(t *testing.T) {
	w := world.New(bigBounds())
	a := box(w.NextBodyID(), vector.Vector2D{X: 0, Y: 0}, 10, false)
	b := box(w.NextBodyID(), vector.Vector2D{X: 19, Y: 0}, 10, false)
	w.AddBody(a)
	w.AddBody(b)

	opts := DefaultOptions()
	opts.Gravity = vector.Zero
	e := New(w, opts)
	ctx := context.Background()

	e.Update(ctx, 16.6667, 1)
	if len(e.StartedPairs()) == 0 {
		t.Fatalf("expected overlapping boxes to start a pair")
	}

	b.SetPosition(vector.Vector2D{X: 1000, Y: 1000})
	found := false
	for i := 0; i < 5 && !found; i++ {
		e.Update(ctx, 16.6667, 1)
		found = len(e.EndedPairs()) > 0
	}
	if !found {
		t.Errorf("expected the separated pair to eventually end")
	}
}

func TestUpdate_IdlePairEvictedAfterMaxIdleLife(t *testing.T) {
	w := world.New(bigBounds())
	a := box(w.NextBodyID(), vector.Vector2D{X: 0, Y: 0}, 10, false)
	b := box(w.NextBodyID(), vector.Vector2D{X: 19, Y: 0}, 10, false)
	w.AddBody(a)
	w.AddBody(b)

	opts := DefaultOptions()
	opts.Gravity = vector.Zero
	e := New(w, opts)
	ctx := context.Background()

	e.Update(ctx, 16.6667, 1)
	if len(e.TrackedPairs()) == 0 {
		t.Fatalf("expected overlapping boxes to be tracked")
	}

	b.SetPosition(vector.Vector2D{X: 1000, Y: 1000})
	for e.Clock() < 1500 {
		e.Update(ctx, 16.6667, 1)
	}

	if len(e.TrackedPairs()) != 0 {
		t.Errorf("expected the idle pair to be evicted once the clock passed MaxIdleLife, got %d tracked", len(e.TrackedPairs()))
	}
}

func TestEngine_TwoInstancesAreIndependent(t *testing.T) {
	w1 := world.New(bigBounds())
	w1.AddBody(box(w1.NextBodyID(), vector.Vector2D{X: 0, Y: 0}, 10, false))
	e1 := New(w1, DefaultOptions())

	w2 := world.New(bigBounds())
	w2.AddBody(box(w2.NextBodyID(), vector.Vector2D{X: 0, Y: 0}, 10, false))
	e2 := New(w2, DefaultOptions())

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		e1.Update(ctx, 16.6667, 1)
	}
	if e1.Clock() == e2.Clock() {
		t.Fatalf("expected only e1's clock to advance")
	}
	if e2.Clock() != 0 {
		t.Errorf("expected e2's clock to stay at 0, got %v", e2.Clock())
	}
}

func TestUpdate_DeterministicReplay(t *testing.T) {
	build := func() (*Engine, *body.Body) {
		w := world.New(bigBounds())
		ground := box(w.NextBodyID(), vector.Vector2D{X: 400, Y: 40}, 400, true)
		w.AddBody(ground)
		falling := box(w.NextBodyID(), vector.Vector2D{X: 400, Y: 200}, 20, false)
		w.AddBody(falling)
		return New(w, DefaultOptions()), falling
	}

	e1, b1 := build()
	e2, b2 := build()
	ctx := context.Background()
	for i := 0; i < 120; i++ {
		e1.Update(ctx, 16.6667, 1)
		e2.Update(ctx, 16.6667, 1)
	}

	if b1.Position.Distance(b2.Position) > 1e-9 {
		t.Errorf("expected identical replays to match exactly, got %v vs %v", b1.Position, b2.Position)
	}
}

func TestUpdate_StackOfBoxesStaysUpright(t *testing.T) {
	w := world.New(bigBounds())
	ground := box(w.NextBodyID(), vector.Vector2D{X: 400, Y: 520}, 400, true)
	w.AddBody(ground)

	boxes := make([]*body.Body, 0, 10)
	for i := 0; i < 10; i++ {
		b := box(w.NextBodyID(), vector.Vector2D{X: 400, Y: float64(500 - i*40)}, 20, false)
		w.AddBody(b)
		boxes = append(boxes, b)
	}

	e := New(w, DefaultOptions())
	ctx := context.Background()
	for i := 0; i < 1200; i++ {
		e.Update(ctx, 16.6667, 1)
	}

	for i, b := range boxes {
		if math.Abs(b.Position.X-400) > 2 {
			t.Errorf("box %d drifted horizontally: x=%v", i, b.Position.X)
		}
	}
}

func TestUpdate_PendulumStaysWithinAnchorRadius(t *testing.T) {
	w := world.New(bigBounds())
	anchor := box(w.NextBodyID(), vector.Vector2D{X: 200, Y: 100}, 5, true)
	w.AddBody(anchor)

	bob := box(w.NextBodyID(), vector.Vector2D{X: 200, Y: 300}, 10, false)
	w.AddBody(bob)

	w.AddConstraint(constraint.New(anchor, bob, vector.Zero, vector.Zero, 200, 0.9))

	opts := DefaultOptions()
	e := New(w, opts)
	ctx := context.Background()

	maxExcursion := 0.0
	for i := 0; i < 400; i++ {
		e.Update(ctx, 16.6667, 1)
		excursion := math.Abs(bob.Position.X - anchor.Position.X)
		if excursion > maxExcursion {
			maxExcursion = excursion
		}
	}

	if maxExcursion > 200 {
		t.Errorf("expected pendulum bob to stay within 200 of anchor, max excursion was %v", maxExcursion)
	}
}
