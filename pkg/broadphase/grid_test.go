package broadphase

import (
	"testing"

	"github.com/opd-ai/rigid2d/pkg/body"
	"github.com/opd-ai/rigid2d/pkg/geometry"
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

func worldBounds() geometry.Bounds {
	return geometry.Bounds{
		Min: vector.Vector2D{X: -10000, Y: -10000},
		Max: vector.Vector2D{X: 10000, Y: 10000},
	}
}

func TestGrid_OverlappingBodiesProduceCandidate(t *testing.T) {
	g := New(48, 48)
	a := box(1, vector.Vector2D{X: 0, Y: 0}, 20, false)
	b := box(2, vector.Vector2D{X: 10, Y: 0}, 20, false)

	g.Update([]*body.Body{a, b}, worldBounds(), false)
	if len(g.PairsList()) != 1 {
		t.Fatalf("expected 1 candidate pair, got %d", len(g.PairsList()))
	}
}

func TestGrid_StaticStaticNeverPaired(t *testing.T) {
	g := New(48, 48)
	a := box(1, vector.Vector2D{X: 0, Y: 0}, 20, true)
	b := box(2, vector.Vector2D{X: 10, Y: 0}, 20, true)

	g.Update([]*body.Body{a, b}, worldBounds(), true)
	if len(g.PairsList()) != 0 {
		t.Errorf("expected 0 candidate pairs for static-static, got %d", len(g.PairsList()))
	}
}

func TestGrid_DistantBodiesNoPair(t *testing.T) {
	g := New(48, 48)
	a := box(1, vector.Vector2D{X: 0, Y: 0}, 10, false)
	b := box(2, vector.Vector2D{X: 5000, Y: 5000}, 10, false)

	g.Update([]*body.Body{a, b}, worldBounds(), false)
	if len(g.PairsList()) != 0 {
		t.Errorf("expected 0 candidate pairs for distant bodies, got %d", len(g.PairsList()))
	}
}

func TestGrid_MovingApartDropsPair(t *testing.T) {
	g := New(48, 48)
	a := box(1, vector.Vector2D{X: 0, Y: 0}, 20, false)
	b := box(2, vector.Vector2D{X: 10, Y: 0}, 20, false)
	g.Update([]*body.Body{a, b}, worldBounds(), false)
	if len(g.PairsList()) != 1 {
		t.Fatalf("expected candidate before separation")
	}

	b.Translate(vector.Vector2D{X: 5000, Y: 5000})
	g.Update([]*body.Body{a, b}, worldBounds(), false)
	if len(g.PairsList()) != 0 {
		t.Errorf("expected candidate to be dropped after separation, got %d", len(g.PairsList()))
	}
}

func TestGrid_ForcedRebuildClearsRegions(t *testing.T) {
	g := New(48, 48)
	a := box(1, vector.Vector2D{X: 0, Y: 0}, 20, false)
	b := box(2, vector.Vector2D{X: 10, Y: 0}, 20, false)
	g.Update([]*body.Body{a, b}, worldBounds(), false)

	g.Clear([]*body.Body{a, b})
	if a.Region.Valid || b.Region.Valid {
		t.Errorf("expected regions invalidated after Clear")
	}
	g.Update([]*body.Body{a, b}, worldBounds(), true)
	if len(g.PairsList()) != 1 {
		t.Errorf("expected candidate pair to be recreated after forced rebuild")
	}
}
