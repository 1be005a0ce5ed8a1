// Package sleeping implements the motion-filtered sleep/wake
// controller: bodies below a motion threshold for long enough are put
// to sleep (skipped by integration and the velocity solver), and woken
// either by an applied force or by a collision with a sufficiently
// energetic counterpart.
package sleeping

import (
	"math"

	"github.com/opd-ai/rigid2d/pkg/body"
	"github.com/opd-ai/rigid2d/pkg/event"
	"github.com/opd-ai/rigid2d/pkg/paircache"
	"github.com/opd-ai/rigid2d/pkg/vector"
)

const (
	minBias              = 0.9
	motionSleepThreshold = 0.08
	motionWakeThreshold  = 0.18
)

// Update evaluates every non-static body's motion and advances its
// sleep counter, putting it to sleep once the counter reaches its
// SleepThreshold. bus may be nil, in which case sleep/wake transitions
// are applied silently.
func Update(bodies []*body.Body, timeScale float64, bus *event.Bus) {
	ts3 := timeScale * timeScale * timeScale
	for _, b := range bodies {
		if b.IsStatic {
			continue
		}
		if b.Force != vector.Zero {
			Wake(b, bus)
			continue
		}

		instant := b.Speed*b.Speed + b.AngularSpeed*b.AngularSpeed
		b.Motion = minBias*math.Min(b.Motion, instant) + (1-minBias)*math.Max(b.Motion, instant)

		if b.SleepThreshold > 0 && b.Motion < motionSleepThreshold*ts3 {
			b.SleepCounter++
			if b.SleepCounter >= b.SleepThreshold {
				sleep(b, bus)
			}
		} else if b.SleepCounter > 0 {
			b.SleepCounter--
		}
	}
}

func sleep(b *body.Body, bus *event.Bus) {
	b.IsSleeping = true
	b.Velocity = vector.Zero
	b.AngularVelocity = 0
	b.Speed = 0
	b.AngularSpeed = 0
	b.PositionPrev = b.Position
	b.AnglePrev = b.Angle
	b.PositionImpulse = vector.Zero
	if bus != nil {
		bus.Publish(event.NewBodyEvent(event.BodySlept, b, b.ID))
	}
}

// Wake clears a body's sleeping state and resets its sleep counter,
// publishing BodyWoke only when the body was actually asleep (a body
// already awake that takes a force every step would otherwise spam
// the bus).
func Wake(b *body.Body, bus *event.Bus) {
	wasSleeping := b.IsSleeping
	b.IsSleeping = false
	b.SleepCounter = 0
	if wasSleeping && bus != nil {
		bus.Publish(event.NewBodyEvent(event.BodyWoke, b, b.ID))
	}
}

// AfterCollisions wakes a sleeping body when its active-pair
// counterpart's filtered motion is high enough, for every pair where
// exactly one body is sleeping and neither is static.
func AfterCollisions(pairs []*paircache.Pair, timeScale float64, bus *event.Bus) {
	ts3 := timeScale * timeScale * timeScale
	for _, p := range pairs {
		if !p.IsActive {
			continue
		}
		a, b := p.BodyA, p.BodyB
		if a.IsStatic || b.IsStatic {
			continue
		}
		if a.IsSleeping == b.IsSleeping {
			continue
		}
		sleeper, other := a, b
		if b.IsSleeping {
			sleeper, other = b, a
		}
		if other.Motion > motionWakeThreshold*ts3 {
			Wake(sleeper, bus)
		}
	}
}
