// Package cost estimates how much work remains to clean up a pattern.
//
// The estimate splits the pattern into clusters, where two cells belong to
// the same cluster if they lie within a 5x5 square with its corners removed
// of each other, and measures a minimum spanning tree between the cluster
// centres. Far-apart debris is penalised more than linearly, so one compact
// cluster always beats the same cells spread out.
package cost

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/simeksgol/GoL-destroy/internal/grid"
)

// Defaults for Params.
const (
	DefaultExponent      = 1.25
	DefaultMultiplier    = 2.5
	DefaultCeiling       = 16384
	DefaultMaxComponents = 512
)

// Params tunes the estimator.
type Params struct {
	// Exponent is applied to the distance between cluster centres.
	Exponent float64

	// Multiplier scales the spanning tree weight before rounding.
	Multiplier float64

	// Ceiling is one past the largest cost ever returned.
	Ceiling int

	// MaxComponents bounds the number of clusters a census may find.
	MaxComponents int
}

// DefaultParams returns the standard tuning.
func DefaultParams() Params {
	return Params{
		Exponent:      DefaultExponent,
		Multiplier:    DefaultMultiplier,
		Ceiling:       DefaultCeiling,
		MaxComponents: DefaultMaxComponents,
	}
}

// CapacityError is returned when a census finds more clusters than allowed.
type CapacityError struct {
	Limit int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("pattern has more than %d clusters", e.Limit)
}

// Component is one census cluster.
type Component struct {
	Bounds grid.Rect
	MidX   float64
	MidY   float64
	Cells  int
}

type edge struct {
	a, b   int
	weight float64
}

// Estimator computes costs. It owns scratch grids and is not safe for
// concurrent use.
type Estimator struct {
	params Params

	remaining *grid.Grid
	cur       *grid.Grid
	bleed     *grid.Grid
	objBleed  *grid.Grid
	next      *grid.Grid

	components []Component
	edges      []edge
	parent     []int
}

// NewEstimator returns an estimator with the given tuning.
func NewEstimator(p Params) *Estimator {
	return &Estimator{
		params:    p,
		remaining: grid.New(),
		cur:       grid.New(),
		bleed:     grid.New(),
		objBleed:  grid.New(),
		next:      grid.New(),
	}
}

// Params returns the estimator's tuning.
func (e *Estimator) Params() Params {
	return e.params
}

// Census splits pattern into clusters, scanning from the topmost, then
// leftmost, remaining cell. The returned slice is reused by the next call.
func (e *Estimator) Census(pattern *grid.Grid) ([]Component, error) {
	e.components = e.components[:0]
	e.remaining.CopyFrom(pattern)
	for {
		seed, ok := e.remaining.FirstCell()
		if !ok {
			break
		}
		if len(e.components) >= e.params.MaxComponents {
			return nil, &CapacityError{Limit: e.params.MaxComponents}
		}

		e.cur.Clear()
		e.cur.Set(seed.X, seed.Y)
		for {
			e.cur.Bleed4(e.bleed)
			e.bleed.Bleed8(e.objBleed)
			e.next.And(e.objBleed, e.remaining)
			if e.next.Equal(e.cur) {
				break
			}
			e.cur, e.next = e.next, e.cur
		}

		bb := e.cur.BoundingBox()
		e.components = append(e.components, Component{
			Bounds: bb,
			MidX:   float64(bb.LeftX) + float64(bb.Width)/2,
			MidY:   float64(bb.TopY) + float64(bb.Height)/2,
			Cells:  e.cur.Population(),
		})
		e.remaining.Subtract(e.cur)
	}
	return e.components, nil
}

// EdgeWeight returns the distance between two cluster centres raised to
// p.Exponent.
func (p Params) EdgeWeight(a, b Component) float64 {
	dx := b.MidX - a.MidX
	dy := b.MidY - a.MidY
	dist := math.Sqrt(float64(dx*dx) + float64(dy*dy))
	if p.Exponent == DefaultExponent {
		return dist * math.Sqrt(math.Sqrt(dist))
	}
	return math.Pow(dist, p.Exponent)
}

// TreeWeight returns the weight of a minimum spanning tree over components.
func (e *Estimator) TreeWeight(components []Component) float64 {
	n := len(components)
	e.edges = e.edges[:0]
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			e.edges = append(e.edges, edge{a: i, b: j, weight: e.params.EdgeWeight(components[i], components[j])})
		}
	}
	slices.SortStableFunc(e.edges, func(x, y edge) int {
		return cmp.Compare(x.weight, y.weight)
	})

	e.parent = e.parent[:0]
	for i := 0; i < n; i++ {
		e.parent = append(e.parent, i)
	}
	total := 0.0
	trees := n
	for _, ed := range e.edges {
		if trees <= 1 {
			break
		}
		ra, rb := e.find(ed.a), e.find(ed.b)
		if ra == rb {
			continue
		}
		e.parent[rb] = ra
		total += ed.weight
		trees--
	}
	return total
}

func (e *Estimator) find(i int) int {
	for e.parent[i] != i {
		e.parent[i] = e.parent[e.parent[i]]
		i = e.parent[i]
	}
	return i
}

// FromWeight converts a spanning tree weight to an integer cost in
// [1, Ceiling-1].
func (p Params) FromWeight(w float64) int {
	c := 1 + int(math.Round(p.Multiplier*w))
	return min(c, p.Ceiling-1)
}

// Cost returns the estimated cleanup cost of pattern. A pattern of one
// cluster costs 1.
func (e *Estimator) Cost(pattern *grid.Grid) (int, error) {
	components, err := e.Census(pattern)
	if err != nil {
		return 0, err
	}
	return e.params.FromWeight(e.TreeWeight(components)), nil
}
