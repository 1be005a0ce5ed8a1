// Package paircache holds the persistent pair table: cached impulses,
// contact identity, and pair lifecycle across steps. It is the layer
// that turns a per-step narrowphase result into the warm-started state
// the velocity solver depends on.
package paircache

import (
	"fmt"

	"github.com/opd-ai/rigid2d/pkg/body"
	"github.com/opd-ai/rigid2d/pkg/geometry"
	"github.com/opd-ai/rigid2d/pkg/narrowphase"
)

// DefaultMaxIdleLife is the default time (ms) a pair may go unupdated
// before eviction, unless one of its bodies is sleeping.
const DefaultMaxIdleLife = 1000.0

// Contact is a single persistent contact point, identified by the
// owning vertex's (bodyID, index), carrying warm-started impulses.
type Contact struct {
	VertexBodyID uint64
	VertexIndex  int
	Vertex       geometry.Vertex

	NormalImpulse  float64
	TangentImpulse float64
}

func contactID(v geometry.Vertex) string {
	return fmt.Sprintf("%d:%d", v.BodyID, v.Index)
}

// Pair is a persisted potential-or-actual contact between two bodies.
type Pair struct {
	BodyA, BodyB *body.Body

	Collision narrowphase.Collision

	Contacts       map[string]*Contact
	ActiveContacts []*Contact

	Separation float64

	Friction       float64
	FrictionStatic float64
	Restitution    float64
	Slop           float64
	InverseMass    float64

	IsActive         bool
	confirmedActive  bool
	IsSensor         bool

	TimeCreated float64
	TimeUpdated float64
}

// ID returns the order-independent pair identity for two bodies.
func ID(a, b *body.Body) string {
	lo, hi := a.ID, b.ID
	if lo > hi {
		lo, hi = hi, lo
	}
	return fmt.Sprintf("A%dB%d", lo, hi)
}

func newPair(a, b *body.Body, now float64) *Pair {
	return &Pair{
		BodyA:          a,
		BodyB:          b,
		Contacts:       make(map[string]*Contact),
		Friction:       (a.Friction + b.Friction) / 2,
		FrictionStatic: (a.FrictionStatic + b.FrictionStatic) / 2,
		Restitution:    max(a.Restitution, b.Restitution),
		Slop:           max(a.Slop, b.Slop),
		InverseMass:    a.InverseMass + b.InverseMass,
		IsSensor:       a.IsSensor || b.IsSensor,
		TimeCreated:    now,
		TimeUpdated:    now,
	}
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Cache holds every pair currently known, keyed by pair id, plus the
// insertion-ordered list that iteration walks deterministically.
type Cache struct {
	MaxIdleLife float64

	table map[string]*Pair
	list  []*Pair

	Start, Active, End []*Pair
}

// New builds an empty pair cache.
func New() *Cache {
	return &Cache{
		MaxIdleLife: DefaultMaxIdleLife,
		table:       make(map[string]*Pair),
	}
}

// Lookup returns the pair for two bodies, if one exists.
func (c *Cache) Lookup(a, b *body.Body) (*Pair, bool) {
	p, ok := c.table[ID(a, b)]
	return p, ok
}

// List returns every pair currently tracked, in stable insertion order.
func (c *Cache) List() []*Pair {
	return c.list
}

// Update ingests this step's narrowphase collisions, creating,
// refreshing, or reactivating pairs, and stores the three lifecycle
// sets (start/active/end) on the Cache's Start, Active and End fields.
func (c *Cache) Update(collisions []narrowphase.Collision, now float64) {
	c.Start = nil
	c.Active = nil
	c.End = nil

	for _, p := range c.list {
		p.confirmedActive = false
	}

	for _, collision := range collisions {
		if !collision.Collided {
			continue
		}
		key := ID(collision.BodyA, collision.BodyB)
		pair, exists := c.table[key]
		if !exists {
			pair = newPair(collision.BodyA, collision.BodyB, now)
			c.table[key] = pair
			c.list = append(c.list, pair)
			c.Start = append(c.Start, pair)
		} else if !pair.IsActive {
			c.Start = append(c.Start, pair)
		} else {
			c.Active = append(c.Active, pair)
		}

		c.refresh(pair, collision, now)
	}

	for _, pair := range c.list {
		if pair.IsActive && !pair.confirmedActive {
			pair.IsActive = false
			pair.ActiveContacts = nil
			c.End = append(c.End, pair)
		}
	}
}

func (c *Cache) refresh(pair *Pair, collision narrowphase.Collision, now float64) {
	pair.Collision = collision
	pair.Separation = collision.Depth
	pair.Friction = (collision.BodyA.Friction + collision.BodyB.Friction) / 2
	pair.FrictionStatic = (collision.BodyA.FrictionStatic + collision.BodyB.FrictionStatic) / 2
	pair.Restitution = max(collision.BodyA.Restitution, collision.BodyB.Restitution)
	pair.Slop = max(collision.BodyA.Slop, collision.BodyB.Slop)
	pair.InverseMass = collision.BodyA.InverseMass + collision.BodyB.InverseMass
	pair.IsActive = true
	pair.confirmedActive = true
	pair.TimeUpdated = now

	pair.ActiveContacts = pair.ActiveContacts[:0]
	for _, v := range collision.Supports {
		id := contactID(v)
		contact, ok := pair.Contacts[id]
		if !ok {
			contact = &Contact{VertexBodyID: v.BodyID, VertexIndex: v.Index}
			pair.Contacts[id] = contact
		}
		contact.Vertex = v
		pair.ActiveContacts = append(pair.ActiveContacts, contact)
	}
}

// RemoveOld evicts pairs that have gone unupdated longer than
// MaxIdleLife, refreshing the timestamp instead when either endpoint
// is sleeping.
func (c *Cache) RemoveOld(now float64) {
	kept := c.list[:0]
	for _, pair := range c.list {
		if pair.BodyA.IsSleeping || pair.BodyB.IsSleeping {
			pair.TimeUpdated = now
			kept = append(kept, pair)
			continue
		}
		if now-pair.TimeUpdated > c.MaxIdleLife {
			delete(c.table, ID(pair.BodyA, pair.BodyB))
			continue
		}
		kept = append(kept, pair)
	}
	c.list = kept
}
