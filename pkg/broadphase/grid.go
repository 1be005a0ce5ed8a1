// Package broadphase implements the uniform spatial hash grid that
// narrows the all-pairs body count down to a candidate list before the
// narrowphase runs. It replaces the teacher's QuadTree (pkg/physics
// collision.go) with a flat bucket map, which is the structure the
// region/overlap-count invariant actually needs: a quadtree would
// require re-deriving cell identity on every rebalance, where a hash
// grid keys cells directly off body bounds.
package broadphase

import (
	"fmt"
	"sort"

	"github.com/opd-ai/rigid2d/pkg/body"
	"github.com/opd-ai/rigid2d/pkg/geometry"
)

const (
	// DefaultBucketWidth and DefaultBucketHeight match the engine's
	// default cell size.
	DefaultBucketWidth  = 48.0
	DefaultBucketHeight = 48.0
)

type cellKey struct {
	col, row int
}

// pairEntry tracks how many grid cells two bodies currently share. A
// pair stays in pairsList only while overlapCount > 0.
type pairEntry struct {
	bodyA, bodyB *body.Body
	overlapCount int
}

// Grid is the uniform spatial hash used for broadphase candidate pair
// generation.
type Grid struct {
	BucketWidth, BucketHeight float64

	buckets map[cellKey][]*body.Body
	pairs   map[string]*pairEntry

	pairsList []PairCandidate
}

// PairCandidate is a broadphase-produced candidate for narrowphase
// testing.
type PairCandidate struct {
	BodyA, BodyB *body.Body
}

// New builds a grid with the given cell size.
func New(bucketWidth, bucketHeight float64) *Grid {
	if bucketWidth <= 0 {
		bucketWidth = DefaultBucketWidth
	}
	if bucketHeight <= 0 {
		bucketHeight = DefaultBucketHeight
	}
	return &Grid{
		BucketWidth:  bucketWidth,
		BucketHeight: bucketHeight,
		buckets:      make(map[cellKey][]*body.Body),
		pairs:        make(map[string]*pairEntry),
	}
}

func pairKey(a, b *body.Body) string {
	if a.ID < b.ID {
		return fmt.Sprintf("%d:%d", a.ID, b.ID)
	}
	return fmt.Sprintf("%d:%d", b.ID, a.ID)
}

func regionFor(bounds geometry.Bounds, bucketWidth, bucketHeight float64) body.Region {
	return body.Region{
		MinCol: int(floorDiv(bounds.Min.X, bucketWidth)),
		MaxCol: int(floorDiv(bounds.Max.X, bucketWidth)),
		MinRow: int(floorDiv(bounds.Min.Y, bucketHeight)),
		MaxRow: int(floorDiv(bounds.Max.Y, bucketHeight)),
		Valid:  true,
	}
}

func floorDiv(value, divisor float64) int {
	q := value / divisor
	i := int(q)
	if q < 0 && float64(i) != q {
		i--
	}
	return i
}

// Update recomputes regions for the given bodies (skipping sleeping,
// non-forced bodies whose region is unchanged) and rebuilds pairsList
// whenever any region changed.
func (g *Grid) Update(bodies []*body.Body, worldBounds geometry.Bounds, forced bool) {
	changed := forced
	for _, b := range bodies {
		if b.IsSleeping && !forced {
			continue
		}
		if !worldBounds.Overlaps(b.Bounds()) {
			continue
		}
		newRegion := regionFor(b.Bounds(), g.BucketWidth, g.BucketHeight)
		if !forced && b.Region.Valid && b.Region.Equal(newRegion) {
			continue
		}
		g.setRegion(b, newRegion)
		changed = true
	}
	if changed {
		g.rebuildPairsList()
	}
}

// setRegion moves a body from its old region's cells to its new
// region's cells, adjusting pair overlap counts along the way.
func (g *Grid) setRegion(b *body.Body, newRegion body.Region) {
	old := b.Region
	if old.Valid {
		for col := old.MinCol; col <= old.MaxCol; col++ {
			for row := old.MinRow; row <= old.MaxRow; row++ {
				if newRegion.Valid && col >= newRegion.MinCol && col <= newRegion.MaxCol &&
					row >= newRegion.MinRow && row <= newRegion.MaxRow {
					continue
				}
				g.removeFromCell(cellKey{col, row}, b)
			}
		}
	}
	for col := newRegion.MinCol; col <= newRegion.MaxCol; col++ {
		for row := newRegion.MinRow; row <= newRegion.MaxRow; row++ {
			if old.Valid && col >= old.MinCol && col <= old.MaxCol &&
				row >= old.MinRow && row <= old.MaxRow {
				continue
			}
			g.addToCell(cellKey{col, row}, b)
		}
	}
	b.Region = newRegion
}

func (g *Grid) addToCell(key cellKey, b *body.Body) {
	bucket := g.buckets[key]
	for _, other := range bucket {
		if other.ID == b.ID {
			continue
		}
		if b.IsStatic && other.IsStatic {
			continue
		}
		g.bumpPair(b, other, 1)
	}
	g.buckets[key] = append(bucket, b)
}

func (g *Grid) removeFromCell(key cellKey, b *body.Body) {
	bucket := g.buckets[key]
	for i, other := range bucket {
		if other.ID == b.ID {
			bucket = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	if len(bucket) == 0 {
		delete(g.buckets, key)
	} else {
		g.buckets[key] = bucket
	}
	for _, other := range bucket {
		if b.IsStatic && other.IsStatic {
			continue
		}
		g.bumpPair(b, other, -1)
	}
}

func (g *Grid) bumpPair(a, other *body.Body, delta int) {
	key := pairKey(a, other)
	entry, ok := g.pairs[key]
	if !ok {
		entry = &pairEntry{bodyA: a, bodyB: other}
		g.pairs[key] = entry
	}
	entry.overlapCount += delta
}

// rebuildPairsList drops zero-overlap entries and rebuilds the ordered
// candidate list deterministically (sorted by pair key).
func (g *Grid) rebuildPairsList() {
	keys := make([]string, 0, len(g.pairs))
	for k, entry := range g.pairs {
		if entry.overlapCount <= 0 {
			delete(g.pairs, k)
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	list := make([]PairCandidate, 0, len(keys))
	for _, k := range keys {
		entry := g.pairs[k]
		list = append(list, PairCandidate{BodyA: entry.bodyA, BodyB: entry.bodyB})
	}
	g.pairsList = list
}

// PairsList returns the current broadphase candidate pairs.
func (g *Grid) PairsList() []PairCandidate {
	return g.pairsList
}

// Clear empties the grid entirely, used when the world signals a
// structural modification that invalidates all cached regions.
func (g *Grid) Clear(bodies []*body.Body) {
	g.buckets = make(map[cellKey][]*body.Body)
	g.pairs = make(map[string]*pairEntry)
	g.pairsList = nil
	for _, b := range bodies {
		b.Region = body.Region{}
	}
}
