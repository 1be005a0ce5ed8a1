// Package engine orchestrates one simulation step: timing, sleeping,
// gravity, integration, constraints, broadphase, narrowphase, the pair
// cache, and the two sequential-impulse solvers, in the fixed order the
// physics requires. It is grounded on the teacher's Game.Update
// (pkg/engine/game.go): a lock-free-per-caller orchestrator that
// computes a delta, then runs a fixed sequence of staged sub-updates
// and advances a tick counter, adapted here from game-entity staging to
// the physics pipeline's thirteen stages.
package engine

import (
	"context"
	"fmt"

	"github.com/opd-ai/rigid2d/pkg/body"
	"github.com/opd-ai/rigid2d/pkg/broadphase"
	"github.com/opd-ai/rigid2d/pkg/config"
	"github.com/opd-ai/rigid2d/pkg/constraint"
	"github.com/opd-ai/rigid2d/pkg/event"
	"github.com/opd-ai/rigid2d/pkg/logging"
	"github.com/opd-ai/rigid2d/pkg/narrowphase"
	"github.com/opd-ai/rigid2d/pkg/paircache"
	"github.com/opd-ai/rigid2d/pkg/sleeping"
	"github.com/opd-ai/rigid2d/pkg/solver"
	"github.com/opd-ai/rigid2d/pkg/vector"
	"github.com/opd-ai/rigid2d/pkg/world"
)

// Options configures a newly created Engine. Defaults match spec §6's
// Engine.create: 6/4/2 iterations, sleeping disabled, a 48x48
// broadphase grid.
type Options struct {
	PositionIterations   int
	VelocityIterations   int
	ConstraintIterations int
	EnableSleeping       bool
	TimeScale            float64
	Gravity              vector.Vector2D
	GravityScale         float64
	BucketWidth          float64
	BucketHeight         float64
}

// DefaultOptions matches the Engine.create defaults named in spec §6.
func DefaultOptions() Options {
	return Options{
		PositionIterations:   6,
		VelocityIterations:   4,
		ConstraintIterations: 2,
		EnableSleeping:       false,
		TimeScale:            1,
		Gravity:              vector.Vector2D{X: 0, Y: 1},
		GravityScale:         0.001,
		BucketWidth:          broadphase.DefaultBucketWidth,
		BucketHeight:         broadphase.DefaultBucketHeight,
	}
}

// Engine holds every piece of per-simulation state the step pipeline
// touches: the composite body/constraint tree, the broadphase grid, the
// persistent pair cache, and the velocity solver's scratch pool. None
// of this lives at package scope, so two Engines never share state
// (tested by TestEngine_TwoInstancesAreIndependent).
type Engine struct {
	World   *world.World
	Options Options

	grid  *broadphase.Grid
	cache *paircache.Cache
	pool  *solver.Pool
	bus   *event.Bus
	log   *logging.Logger

	clock     float64
	axisCache map[string]narrowphase.Collision
}

// New builds an Engine around an existing World.
func New(w *world.World, opts Options) *Engine {
	return &Engine{
		World:     w,
		Options:   opts,
		grid:      broadphase.New(opts.BucketWidth, opts.BucketHeight),
		cache:     paircache.New(),
		pool:      solver.NewPool(),
		bus:       event.NewBus(),
		log:       logging.NewLogger(),
		axisCache: make(map[string]narrowphase.Collision),
	}
}

// FromConfig builds an Engine and its World from an EngineConfig,
// propagating any body-construction validation failure (see
// world.FromConfig) rather than starting with a partially loaded scene.
func FromConfig(cfg *config.EngineConfig) (*Engine, error) {
	w, err := world.FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("building engine from config: %w", err)
	}
	opts := Options{
		PositionIterations:   cfg.PositionIterations,
		VelocityIterations:   cfg.VelocityIterations,
		ConstraintIterations: cfg.ConstraintIterations,
		EnableSleeping:       cfg.EnableSleeping,
		TimeScale:            cfg.Timing.TimeScale,
		Gravity:              cfg.Gravity,
		GravityScale:         cfg.GravityScale,
		BucketWidth:          cfg.Broadphase.BucketWidth,
		BucketHeight:         cfg.Broadphase.BucketHeight,
	}
	return New(w, opts), nil
}

// Bus returns the engine's internal diagnostic event bus (sleep/wake,
// pair lifecycle notifications). The authoritative pair-lifecycle data
// is the pair cache's Start/Active/End sets (see StartedPairs etc
// below); this bus is for observers that only want a notification.
func (e *Engine) Bus() *event.Bus {
	return e.bus
}

// Clock returns the accumulated simulation time, in the same units as
// the dt passed to Update.
func (e *Engine) Clock() float64 {
	return e.clock
}

// StartedPairs, ActivePairs, and EndedPairs expose the pair cache's
// per-step lifecycle sets, per spec §6's diagnostic observation
// contract: "the pair cache exposes collisionStart, collisionActive,
// collisionEnd arrays for the external event collaborator to consume."
func (e *Engine) StartedPairs() []*paircache.Pair { return e.cache.Start }
func (e *Engine) ActivePairs() []*paircache.Pair  { return e.cache.Active }
func (e *Engine) EndedPairs() []*paircache.Pair   { return e.cache.End }

// TrackedPairs returns every pair still held in the pair cache,
// including inactive ones that have not yet aged past MaxIdleLife.
func (e *Engine) TrackedPairs() []*paircache.Pair { return e.cache.List() }

// Update runs the full thirteen-stage step pipeline (spec §2) once,
// advancing the simulation by dt (milliseconds) scaled by the engine's
// TimeScale and the caller-supplied correction factor c (Time-Corrected
// Verlet).
func (e *Engine) Update(ctx context.Context, dt, correction float64) {
	bodies := e.World.AllBodies()
	constraints := e.World.AllConstraints()

	e.clock += dt * e.Options.TimeScale
	e.log.Debug(ctx, "step", "clock", e.clock, "bodies", len(bodies), "constraints", len(constraints))

	if e.Options.EnableSleeping {
		sleeping.Update(bodies, e.Options.TimeScale, e.bus)
	}

	for _, b := range bodies {
		b.ApplyGravity(e.Options.Gravity, e.Options.GravityScale)
	}
	for _, b := range bodies {
		b.Integrate(dt, e.Options.TimeScale, correction)
	}

	e.solveConstraints(constraints)

	forced := e.World.IsModified()
	if forced {
		e.grid.Clear(bodies)
	}
	e.grid.Update(bodies, e.World.Bounds, forced)
	e.World.ClearModified()

	collisions := e.narrowphasePass(bodies)
	e.cache.Update(collisions, e.clock)
	e.cache.RemoveOld(e.clock)

	e.wakeFromCollisions()

	pairs := e.cache.List()
	solver.PositionPre(bodies, pairs)
	for i := 0; i < e.Options.PositionIterations; i++ {
		solver.PositionSolve(pairs, e.Options.TimeScale)
	}
	solver.PositionPost(bodies)

	e.solveConstraints(constraints)

	solver.VelocityPreSolve(pairs)
	for i := 0; i < e.Options.VelocityIterations; i++ {
		solver.VelocitySolve(pairs, e.pool, e.Options.TimeScale)
	}

	for _, b := range bodies {
		b.ClearForces()
	}

	e.logLifecycle(ctx)
}

func (e *Engine) solveConstraints(constraints []*constraint.Constraint) {
	if len(constraints) == 0 {
		return
	}
	bodies := constraintBodies(constraints)
	constraint.PreSolveAll(bodies)
	for i := 0; i < e.Options.ConstraintIterations; i++ {
		constraint.Solve(constraints, e.Options.TimeScale)
	}
	constraint.PostSolveAll(bodies)
}

// constraintBodies collects the distinct bodies referenced by
// constraints, in first-seen order, so PreSolveAll/PostSolveAll touch
// each body's impulse cache exactly once regardless of how many
// constraints it participates in.
func constraintBodies(constraints []*constraint.Constraint) []*body.Body {
	seen := make(map[uint64]bool)
	var out []*body.Body
	for _, c := range constraints {
		for _, b := range [2]*body.Body{c.BodyA, c.BodyB} {
			if b == nil || seen[b.ID] {
				continue
			}
			seen[b.ID] = true
			out = append(out, b)
		}
	}
	return out
}

// narrowphasePass runs SAT across every broadphase candidate pair and
// every part combination, honoring collision filters and skipping
// pairs where both bodies are asleep.
func (e *Engine) narrowphasePass(bodies []*body.Body) []narrowphase.Collision {
	var out []narrowphase.Collision
	for _, candidate := range e.grid.PairsList() {
		a, b := candidate.BodyA, candidate.BodyB
		if a.IsSleeping && b.IsSleeping {
			continue
		}
		if !a.Filter.CanCollide(b.Filter) {
			continue
		}
		lo, hi := a, b
		if lo.ID > hi.ID {
			lo, hi = hi, lo
		}
		for partA := range lo.Parts {
			for partB := range hi.Parts {
				key := fmt.Sprintf("%s:%d:%d", paircache.ID(lo, hi), partA, partB)
				prev, hasPrev := e.axisCache[key]
				var prevPtr *narrowphase.Collision
				if hasPrev {
					prevPtr = &prev
				}
				collision := narrowphase.Test(lo, hi, partA, partB, prevPtr)
				e.axisCache[key] = collision
				if collision.Collided {
					out = append(out, collision)
				}
			}
		}
	}
	return out
}

// wakeFromCollisions wakes a sleeping body when the pair it just became
// active or started in has a counterpart with enough motion, per spec
// §2 stage 9.
func (e *Engine) wakeFromCollisions() {
	pairs := make([]*paircache.Pair, 0, len(e.cache.Start)+len(e.cache.Active))
	pairs = append(pairs, e.cache.Start...)
	pairs = append(pairs, e.cache.Active...)
	sleeping.AfterCollisions(pairs, e.Options.TimeScale, e.bus)
}

func (e *Engine) logLifecycle(ctx context.Context) {
	for _, p := range e.cache.Start {
		e.bus.Publish(event.NewPairEvent(event.PairStarted, e, p.BodyA.ID, p.BodyB.ID))
	}
	for _, p := range e.cache.End {
		e.bus.Publish(event.NewPairEvent(event.PairEnded, e, p.BodyA.ID, p.BodyB.ID))
	}
	if len(e.cache.Start) > 0 || len(e.cache.End) > 0 {
		e.log.Info(ctx, "pair lifecycle", "started", len(e.cache.Start), "ended", len(e.cache.End))
	}
}

// RemoveIdlePairs evicts pairs that have gone unupdated past the pair
// cache's MaxIdleLife, exempting pairs with a sleeping endpoint. Update
// already calls this every step; calling it directly runs one more
// eviction pass against the engine's current clock.
func (e *Engine) RemoveIdlePairs() {
	e.cache.RemoveOld(e.clock)
}
