package ir

import "fmt"

// ObjectType indexes the catalyst catalog. Values are dense, starting at 0.
type ObjectType uint8

// Placement is one catalyst object at a board position. X and Y give the
// top-left corner of the object's bounding box in its first phase.
type Placement struct {
	Type ObjectType `json:"type"`
	X    int8       `json:"x"`
	Y    int8       `json:"y"`
}

// NewPlacement builds a placement, panicking if x or y do not fit in a
// signed byte.
func NewPlacement(t ObjectType, x, y int) Placement {
	if x < -128 || x > 127 || y < -128 || y > 127 {
		panic(fmt.Sprintf("ir: placement coordinate (%d, %d) out of range", x, y))
	}
	return Placement{Type: t, X: int8(x), Y: int8(y)}
}

func (p Placement) String() string {
	return fmt.Sprintf("%d@(%d,%d)", p.Type, p.X, p.Y)
}

// Candidate is a partial solution: an ordered list of placements together
// with the estimated cost of the pattern they leave behind.
type Candidate struct {
	Placements []Placement `json:"placements"`
	Cost       int         `json:"cost"`
}

// Extend returns a new candidate with p appended. c is not modified.
func (c Candidate) Extend(p Placement, cost int) Candidate {
	next := make([]Placement, len(c.Placements), len(c.Placements)+1)
	copy(next, c.Placements)
	return Candidate{Placements: append(next, p), Cost: cost}
}

// Len returns the number of placed objects.
func (c Candidate) Len() int {
	return len(c.Placements)
}
