// Package world implements the composite body/constraint tree: a
// World can hold bodies, constraints, and nested sub-composites, with
// structural mutation setting an isModified flag that propagates up to
// the root so the engine knows to force a broadphase rebuild.
package world

import (
	"fmt"

	"github.com/opd-ai/rigid2d/pkg/body"
	"github.com/opd-ai/rigid2d/pkg/config"
	"github.com/opd-ai/rigid2d/pkg/constraint"
	"github.com/opd-ai/rigid2d/pkg/geometry"
	"github.com/opd-ai/rigid2d/pkg/vector"
)

// World is a composite node: bodies and constraints owned directly,
// plus child composites for grouping (e.g. a compound vehicle built
// from several bodies and their linking constraints).
type World struct {
	bodies      []*body.Body
	constraints []*constraint.Constraint
	children    []*World
	parent      *World

	Bounds geometry.Bounds

	isModified bool
	nextBodyID uint64
}

// New creates an empty root world with the given outer bounds; bodies
// whose AABB falls entirely outside Bounds are ignored by the
// broadphase.
func New(bounds geometry.Bounds) *World {
	return &World{Bounds: bounds, nextBodyID: 1}
}

// NewChild creates a sub-composite under w, sharing w's body-id arena
// so ids stay unique across the whole tree.
func (w *World) NewChild() *World {
	root := w.root()
	child := &World{parent: w, Bounds: w.Bounds}
	w.children = append(w.children, child)
	_ = root
	w.setModified()
	return child
}

func (w *World) root() *World {
	node := w
	for node.parent != nil {
		node = node.parent
	}
	return node
}

// NextBodyID allocates a fresh, process-unique (within this tree) body
// id from the root's arena counter.
func (w *World) NextBodyID() uint64 {
	root := w.root()
	id := root.nextBodyID
	root.nextBodyID++
	return id
}

// AddBody attaches a body to this composite and marks the tree
// modified.
func (w *World) AddBody(b *body.Body) {
	w.bodies = append(w.bodies, b)
	w.setModified()
}

// RemoveBody detaches a body by id from this composite, if present.
func (w *World) RemoveBody(id uint64) bool {
	for i, b := range w.bodies {
		if b.ID == id {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			w.setModified()
			return true
		}
	}
	return false
}

// AddConstraint attaches a constraint to this composite.
func (w *World) AddConstraint(c *constraint.Constraint) {
	w.constraints = append(w.constraints, c)
	w.setModified()
}

// RemoveConstraint detaches a constraint by pointer identity.
func (w *World) RemoveConstraint(c *constraint.Constraint) bool {
	for i, existing := range w.constraints {
		if existing == c {
			w.constraints = append(w.constraints[:i], w.constraints[i+1:]...)
			w.setModified()
			return true
		}
	}
	return false
}

// AddChild attaches an already-built sub-composite.
func (w *World) AddChild(child *World) {
	child.parent = w
	w.children = append(w.children, child)
	w.setModified()
}

// setModified marks this node and every ancestor up to the root.
func (w *World) setModified() {
	for node := w; node != nil; node = node.parent {
		node.isModified = true
	}
}

// IsModified reports whether this node or a descendant has been
// structurally changed since the last ClearModified.
func (w *World) IsModified() bool {
	return w.isModified
}

// ClearModified resets the dirty flag on this node and its subtree,
// called by the engine after it has forced a broadphase rebuild.
func (w *World) ClearModified() {
	w.isModified = false
	for _, c := range w.children {
		c.ClearModified()
	}
}

// AllBodies performs a depth-first enumeration of every body in this
// composite and its descendants, in stable insertion order.
func (w *World) AllBodies() []*body.Body {
	out := append([]*body.Body(nil), w.bodies...)
	for _, c := range w.children {
		out = append(out, c.AllBodies()...)
	}
	return out
}

// AllConstraints performs a depth-first enumeration of every
// constraint in this composite and its descendants.
func (w *World) AllConstraints() []*constraint.Constraint {
	out := append([]*constraint.Constraint(nil), w.constraints...)
	for _, c := range w.children {
		out = append(out, c.AllConstraints()...)
	}
	return out
}

// FromConfig builds a root world from an EngineConfig's bounds and
// seed body list. Each body's geometry runs through the construction-
// time convexity check in pkg/validation (via body.NewChecked); the
// first invalid body aborts the load and returns a wrapped error
// rather than handing the caller a partially built world.
func FromConfig(cfg *config.EngineConfig) (*World, error) {
	bounds := geometry.Bounds{
		Min: vector.Vector2D{X: cfg.WorldBounds.MinX, Y: cfg.WorldBounds.MinY},
		Max: vector.Vector2D{X: cfg.WorldBounds.MaxX, Y: cfg.WorldBounds.MaxY},
	}
	w := New(bounds)
	for i, bc := range cfg.Bodies {
		opts := body.DefaultOptions()
		opts.Density = bc.Density
		opts.Friction = bc.Friction
		opts.Restitution = bc.Restitution
		opts.IsStatic = bc.IsStatic
		b, err := body.NewChecked(w.NextBodyID(), bc.Position, bc.Vertices, opts)
		if err != nil {
			return nil, fmt.Errorf("loading body %d from config: %w", i, err)
		}
		w.AddBody(b)
	}
	return w, nil
}

// Translate shifts every body directly owned by this composite (and
// its descendants) by offset.
func (w *World) Translate(offset vector.Vector2D) {
	for _, b := range w.AllBodies() {
		b.Translate(offset)
	}
	w.setModified()
}

// Rotate rotates every body in this composite and its descendants by
// angle about point.
func (w *World) Rotate(point vector.Vector2D, angle float64) {
	for _, b := range w.AllBodies() {
		offset := b.Position.Sub(point)
		rotated := offset.Rotate(angle)
		b.Translate(rotated.Sub(offset))
		b.Rotate(angle)
	}
	w.setModified()
}

// Scale scales every body in this composite and its descendants about
// point by the given per-axis factors.
func (w *World) Scale(point vector.Vector2D, scaleX, scaleY float64) {
	for _, b := range w.AllBodies() {
		offset := b.Position.Sub(point)
		scaled := vector.Vector2D{X: offset.X * scaleX, Y: offset.Y * scaleY}
		b.Translate(scaled.Sub(offset))
		b.Scale(scaleX, scaleY)
	}
	w.setModified()
}
