package body

import (
	"math"
	"testing"

	"github.com/opd-ai/rigid2d/pkg/vector"
)

func box(half float64) []vector.Vector2D {
	return []vector.Vector2D{
		{X: half, Y: -half},
		{X: half, Y: half},
		{X: -half, Y: half},
		{X: -half, Y: -half},
	}
}

func TestNew_MassAndInverseMass(t *testing.T) {
	b := New(1, vector.Vector2D{X: 100, Y: 100}, box(20), DefaultOptions())
	if b.Mass <= 0 {
		t.Fatalf("expected positive mass, got %v", b.Mass)
	}
	if math.Abs(b.InverseMass-1/b.Mass) > 1e-12 {
		t.Errorf("InverseMass = %v, expected %v", b.InverseMass, 1/b.Mass)
	}
}

func TestSetStatic_ZeroesInverseMass(t *testing.T) {
	b := New(1, vector.Vector2D{}, box(10), DefaultOptions())
	b.SetStatic(true)
	if b.InverseMass != 0 || b.InverseInertia != 0 {
		t.Errorf("expected zero inverse mass/inertia on static body")
	}
	if !b.IsStatic {
		t.Errorf("expected IsStatic true")
	}

	b.SetStatic(false)
	if b.InverseMass == 0 {
		t.Errorf("expected non-zero inverse mass after un-static")
	}
}

func TestTranslate_RoundTrip(t *testing.T) {
	b := New(1, vector.Vector2D{X: 10, Y: 10}, box(5), DefaultOptions())
	before := b.Parts[0].Vertices.Positions()[0]
	b.Translate(vector.Vector2D{X: 7, Y: -3})
	b.Translate(vector.Vector2D{X: -7, Y: 3})
	after := b.Parts[0].Vertices.Positions()[0]
	if before.Distance(after) > 1e-9 {
		t.Errorf("translate round trip: %v != %v", before, after)
	}
}

func TestRotate_RoundTrip(t *testing.T) {
	b := New(1, vector.Vector2D{X: 0, Y: 0}, box(10), DefaultOptions())
	before := b.Parts[0].Vertices.Positions()
	b.Rotate(math.Pi / 5)
	b.Rotate(-math.Pi / 5)
	after := b.Parts[0].Vertices.Positions()
	for i := range before {
		if before[i].Distance(after[i]) > 1e-6 {
			t.Errorf("rotate round trip mismatch at %d: %v != %v", i, before[i], after[i])
		}
	}
}

func TestIntegrate_RestAtZeroForceStaysAtRest(t *testing.T) {
	b := New(1, vector.Vector2D{X: 0, Y: 0}, box(10), DefaultOptions())
	b.Integrate(16.6667, 1, 1)
	if b.Velocity.Length() > 1e-10 {
		t.Errorf("expected zero velocity at rest with zero force, got %v", b.Velocity)
	}
}

func TestIntegrate_GravityAccelerates(t *testing.T) {
	b := New(1, vector.Vector2D{X: 0, Y: 0}, box(10), DefaultOptions())
	for i := 0; i < 10; i++ {
		b.ApplyGravity(vector.Vector2D{X: 0, Y: 1}, DefaultGravityScale)
		b.Integrate(16.6667, 1, 1)
		b.ClearForces()
	}
	if b.Velocity.Y <= 0 {
		t.Errorf("expected downward velocity after repeated gravity application, got %v", b.Velocity)
	}
}

func TestStaticBody_NeverIntegrates(t *testing.T) {
	b := New(1, vector.Vector2D{X: 5, Y: 5}, box(10), DefaultOptions())
	b.SetStatic(true)
	before := b.Position
	b.ApplyGravity(vector.Vector2D{X: 0, Y: 1}, DefaultGravityScale)
	b.Integrate(16.6667, 1, 1)
	if before != b.Position {
		t.Errorf("expected static body to stay at %v, got %v", before, b.Position)
	}
}

func TestNewChecked_RejectsNonConvex(t *testing.T) {
	pts := []vector.Vector2D{
		{X: 0, Y: 0},
		{X: 10, Y: 10},
		{X: 20, Y: 0},
		{X: 10, Y: 5},
	}
	b, err := NewChecked(1, vector.Vector2D{}, pts, DefaultOptions())
	if err == nil {
		t.Fatalf("expected error for non-convex vertex list")
	}
	if b != nil {
		t.Errorf("expected nil body on validation failure")
	}
}

func TestNewChecked_AcceptsValidBox(t *testing.T) {
	b, err := NewChecked(1, vector.Vector2D{X: 5, Y: 5}, box(10), DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b == nil || b.Mass <= 0 {
		t.Errorf("expected a valid body with positive mass")
	}
}

func TestAddPartChecked_RejectsTooFewPoints(t *testing.T) {
	b := New(1, vector.Vector2D{}, box(10), DefaultOptions())
	err := b.AddPartChecked([]vector.Vector2D{{X: 0, Y: 0}, {X: 1, Y: 1}}, 0.001)
	if err == nil {
		t.Fatalf("expected error for degenerate part")
	}
}

func TestCollisionFilter_GroupOverridesMask(t *testing.T) {
	a := CollisionFilter{Category: 1, Mask: 0, Group: 5}
	c := CollisionFilter{Category: 2, Mask: 0, Group: 5}
	if !a.CanCollide(c) {
		t.Errorf("expected shared positive group to force collision")
	}
	a.Group, c.Group = -5, -5
	if a.CanCollide(c) {
		t.Errorf("expected shared negative group to force no collision")
	}
}
