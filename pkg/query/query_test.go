package query

import (
	"testing"

	"github.com/opd-ai/rigid2d/pkg/body"
	"github.com/opd-ai/rigid2d/pkg/geometry"
	"github.com/opd-ai/rigid2d/pkg/vector"
)

func box(id uint64, pos vector.Vector2D, half float64) *body.Body {
	pts := []vector.Vector2D{
		{X: half, Y: -half},
		{X: half, Y: half},
		{X: -half, Y: half},
		{X: -half, Y: -half},
	}
	return body.New(id, pos, pts, body.DefaultOptions())
}

func TestCollides_FindsOverlapping(t *testing.T) {
	target := box(1, vector.Vector2D{}, 20)
	overlapping := box(2, vector.Vector2D{X: 30}, 20)
	distant := box(3, vector.Vector2D{X: 5000}, 20)

	hits := Collides(target, []*body.Body{overlapping, distant})
	if len(hits) != 1 || hits[0].ID != overlapping.ID {
		t.Fatalf("expected exactly the overlapping body, got %v", hits)
	}
}

func TestRay_HitsBodyOnPath(t *testing.T) {
	target := box(1, vector.Vector2D{X: 50, Y: 0}, 10)
	off := box(2, vector.Vector2D{X: 50, Y: 5000}, 10)

	hits := Ray([]*body.Body{target, off}, vector.Vector2D{X: 0, Y: 0}, vector.Vector2D{X: 100, Y: 0}, 1)
	found := false
	for _, h := range hits {
		if h.ID == target.ID {
			found = true
		}
		if h.ID == off.ID {
			t.Errorf("expected ray to miss the off-path body")
		}
	}
	if !found {
		t.Errorf("expected ray to hit the on-path body")
	}
}

func TestRegion_InsideVsOutside(t *testing.T) {
	inside := box(1, vector.Vector2D{}, 10)
	outside := box(2, vector.Vector2D{X: 5000}, 10)
	bounds := geometry.Bounds{Min: vector.Vector2D{X: -100, Y: -100}, Max: vector.Vector2D{X: 100, Y: 100}}

	insideHits := Region([]*body.Body{inside, outside}, bounds, false)
	if len(insideHits) != 1 || insideHits[0].ID != inside.ID {
		t.Errorf("expected only the inside body, got %v", insideHits)
	}

	outsideHits := Region([]*body.Body{inside, outside}, bounds, true)
	if len(outsideHits) != 1 || outsideHits[0].ID != outside.ID {
		t.Errorf("expected only the outside body, got %v", outsideHits)
	}
}

func TestPoint_InsideConvexPolygon(t *testing.T) {
	b := box(1, vector.Vector2D{}, 10)
	hits := Point([]*body.Body{b}, vector.Vector2D{})
	if len(hits) != 1 {
		t.Fatalf("expected center point to hit the body")
	}

	miss := Point([]*body.Body{b}, vector.Vector2D{X: 1000, Y: 1000})
	if len(miss) != 0 {
		t.Errorf("expected far point to hit nothing, got %v", miss)
	}
}
