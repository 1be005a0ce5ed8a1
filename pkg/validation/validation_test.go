package validation

import (
	"math"
	"testing"

	"github.com/opd-ai/rigid2d/pkg/vector"
)

func square(half float64) []vector.Vector2D {
	return []vector.Vector2D{
		{X: half, Y: -half},
		{X: half, Y: half},
		{X: -half, Y: half},
		{X: -half, Y: -half},
	}
}

func TestValidateVertices_ValidSquare(t *testing.T) {
	if err := ValidateVertices(square(10)); err != nil {
		t.Errorf("expected valid square to pass, got %v", err)
	}
}

func TestValidateVertices_TooFewPoints(t *testing.T) {
	err := ValidateVertices([]vector.Vector2D{{X: 0, Y: 0}, {X: 1, Y: 1}})
	if err == nil {
		t.Fatalf("expected error for fewer than 3 points")
	}
}

func TestValidateVertices_NonFiniteCoordinate(t *testing.T) {
	pts := square(10)
	pts[0].X = math.NaN()
	if err := ValidateVertices(pts); err == nil {
		t.Errorf("expected error for NaN coordinate")
	}

	pts2 := square(10)
	pts2[1].Y = math.Inf(1)
	if err := ValidateVertices(pts2); err == nil {
		t.Errorf("expected error for infinite coordinate")
	}
}

func TestValidateVertices_NonConvexRejected(t *testing.T) {
	// A concave "arrow" polygon: one vertex dented inward.
	pts := []vector.Vector2D{
		{X: 0, Y: 0},
		{X: 10, Y: 10},
		{X: 20, Y: 0},
		{X: 10, Y: 5},
	}
	if err := ValidateVertices(pts); err == nil {
		t.Errorf("expected error for non-convex polygon")
	}
}

func TestValidateConstraintAnchor_DetectsDegenerate(t *testing.T) {
	if !ValidateConstraintAnchor(vector.Vector2D{X: 1, Y: 1}, vector.Vector2D{X: 1, Y: 1}) {
		t.Errorf("expected identical points to be flagged degenerate")
	}
	if ValidateConstraintAnchor(vector.Vector2D{X: 0, Y: 0}, vector.Vector2D{X: 10, Y: 0}) {
		t.Errorf("expected distant points to not be flagged degenerate")
	}
}
