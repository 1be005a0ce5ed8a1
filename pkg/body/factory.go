package body

import (
	"fmt"

	"github.com/opd-ai/rigid2d/pkg/geometry"
	"github.com/opd-ai/rigid2d/pkg/validation"
	"github.com/opd-ai/rigid2d/pkg/vector"
)

// Options configures a newly created body. Density, not mass, is the
// input: mass and inertia are derived from the part geometry, matching
// how the teacher's polygon bodies are built.
type Options struct {
	Density        float64
	Friction       float64
	FrictionStatic float64
	Restitution    float64
	Slop           float64
	FrictionAir    float64
	IsStatic       bool
	IsSensor       bool
	SleepThreshold int
	Filter         CollisionFilter
}

// DefaultOptions mirrors Matter-style material defaults.
func DefaultOptions() Options {
	return Options{
		Density:        0.001,
		Friction:       0.1,
		FrictionStatic: 0.5,
		Restitution:    0,
		Slop:           0.05,
		FrictionAir:    0,
		SleepThreshold: 60,
		Filter:         DefaultFilter,
	}
}

// New builds a single-part body from a convex vertex ring in local
// space, positioned at position. id must be assigned by the caller's
// arena (see pkg/world) so that back-references stay stable across the
// body's lifetime.
func New(id uint64, position vector.Vector2D, points []vector.Vector2D, opts Options) *Body {
	b := &Body{
		ID:             id,
		Position:       position,
		PositionPrev:   position,
		Friction:       opts.Friction,
		FrictionStatic: opts.FrictionStatic,
		Restitution:    opts.Restitution,
		Slop:           opts.Slop,
		FrictionAir:    opts.FrictionAir,
		IsSensor:       opts.IsSensor,
		SleepThreshold: opts.SleepThreshold,
		Filter:         opts.Filter,
	}
	b.addPart(position, points)
	b.finalizeMass(opts.Density)
	b.SetStatic(opts.IsStatic)
	return b
}

// NewChecked is the validating entry point for body construction from
// external data (scene files, config, world loading): it runs
// pkg/validation against points before building the body, wrapping any
// failure with %w rather than handing an unusable body to the caller.
// Internal callers that already trust their geometry (tests, factories
// building known-good shapes) use New directly.
func NewChecked(id uint64, position vector.Vector2D, points []vector.Vector2D, opts Options) (*Body, error) {
	if err := validation.ValidateVertices(points); err != nil {
		return nil, fmt.Errorf("body %d: %w", id, err)
	}
	return New(id, position, points, opts), nil
}

// AddPartChecked is the validating counterpart to AddPart, used when
// appending geometry supplied by external data rather than internal code.
func (b *Body) AddPartChecked(points []vector.Vector2D, density float64) error {
	if err := validation.ValidateVertices(points); err != nil {
		return fmt.Errorf("body %d: %w", b.ID, err)
	}
	b.AddPart(points, density)
	return nil
}

// AddPart extends the body into a compound shape by appending another
// convex vertex ring, given in local space relative to the body's
// current Position, and recomputing aggregate mass/inertia across all
// parts.
func (b *Body) AddPart(points []vector.Vector2D, density float64) {
	b.addPart(b.Position, points)
	b.finalizeMass(density)
}

func (b *Body) addPart(position vector.Vector2D, points []vector.Vector2D) {
	worldPoints := make([]vector.Vector2D, len(points))
	for i, p := range points {
		worldPoints[i] = p.Add(position)
	}
	verts := geometry.NewVertices(b.ID, worldPoints)
	part := Part{
		Vertices: verts,
		Axes:     geometry.AxesFromVertices(verts),
		Bounds:   verts.Bounds(),
	}
	b.Parts = append(b.Parts, part)
}

// finalizeMass recomputes aggregate mass, centroid, and inertia from the
// current (world-space) part vertex sets. Position is snapped to the
// true centroid rather than the caller's nominal placement, so a
// compound body built from off-center parts still reports a Position
// that matches its actual geometry; vertices themselves are left
// untouched, since they already carry the real world-space shape.
func (b *Body) finalizeMass(density float64) {
	type partMass struct {
		area     float64
		centroid vector.Vector2D
		inertia  float64
	}
	parts := make([]partMass, len(b.Parts))
	totalArea := 0.0
	weightedCentroid := vector.Zero
	for i, p := range b.Parts {
		area, centroid, inertia := polygonMassProperties(p.Vertices.Positions())
		parts[i] = partMass{area: area, centroid: centroid, inertia: inertia}
		totalArea += area
		weightedCentroid = weightedCentroid.Add(centroid.Scale(area))
	}
	if totalArea == 0 {
		return
	}
	centroid := weightedCentroid.Scale(1 / totalArea)
	totalInertia := 0.0
	for _, p := range parts {
		totalInertia += p.inertia + p.area*p.centroid.DistanceSquared(centroid)
	}
	if centroid != b.Position {
		b.Position = centroid
		b.PositionPrev = b.Position
	}
	b.Mass = density * totalArea
	b.Inertia = density * totalInertia
	if b.Mass != 0 {
		b.InverseMass = 1 / b.Mass
	}
	if b.Inertia != 0 {
		b.InverseInertia = 1 / b.Inertia
	}
}
