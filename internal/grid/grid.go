package grid

import "math/bits"

// Board geometry.
const (
	Size   = 256
	Words  = Size / 64
	Origin = -Size / 2
)

// Cell is a single board coordinate.
type Cell struct {
	X, Y int
}

// Rect is an axis-aligned rectangle of cells.
type Rect struct {
	LeftX, TopY   int
	Width, Height int
}

// IsEmpty reports whether the rectangle covers no cells.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Union returns the smallest rectangle covering both r and o.
// Empty rectangles are ignored.
func (r Rect) Union(o Rect) Rect {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	left := min(r.LeftX, o.LeftX)
	top := min(r.TopY, o.TopY)
	right := max(r.LeftX+r.Width, o.LeftX+o.Width)
	bottom := max(r.TopY+r.Height, o.TopY+o.Height)
	return Rect{LeftX: left, TopY: top, Width: right - left, Height: bottom - top}
}

// Grow returns r extended by n cells on every side.
func (r Rect) Grow(n int) Rect {
	return Rect{LeftX: r.LeftX - n, TopY: r.TopY - n, Width: r.Width + 2*n, Height: r.Height + 2*n}
}

// BoardRect is the rectangle covered by every Grid.
var BoardRect = Rect{LeftX: Origin, TopY: Origin, Width: Size, Height: Size}

type row [Words]uint64

// Grid is a Size x Size boolean cell matrix. The zero value is an empty grid.
type Grid struct {
	rows [Size]row
}

// New returns an empty grid.
func New() *Grid {
	return &Grid{}
}

// Clone returns a copy of g.
func (g *Grid) Clone() *Grid {
	c := *g
	return &c
}

// Clear turns every cell off.
func (g *Grid) Clear() {
	g.rows = [Size]row{}
}

// CopyFrom overwrites g with the contents of src.
func (g *Grid) CopyFrom(src *Grid) {
	g.rows = src.rows
}

func locate(x, y int) (r, w int, mask uint64, ok bool) {
	cx := x - Origin
	cy := y - Origin
	if cx < 0 || cx >= Size || cy < 0 || cy >= Size {
		return 0, 0, 0, false
	}
	return cy, cx >> 6, uint64(1) << uint(cx&63), true
}

// Set turns the cell at (x, y) on. It returns false if the cell lies outside
// the board, in which case nothing changes.
func (g *Grid) Set(x, y int) bool {
	r, w, mask, ok := locate(x, y)
	if !ok {
		return false
	}
	g.rows[r][w] |= mask
	return true
}

// Get reports whether the cell at (x, y) is on. Cells outside the board are off.
func (g *Grid) Get(x, y int) bool {
	r, w, mask, ok := locate(x, y)
	if !ok {
		return false
	}
	return g.rows[r][w]&mask != 0
}

// OrCells turns on every cell of cells shifted by (dx, dy).
// It returns false if any cell was clipped.
func (g *Grid) OrCells(cells []Cell, dx, dy int) bool {
	notClipped := true
	for _, c := range cells {
		if !g.Set(c.X+dx, c.Y+dy) {
			notClipped = false
		}
	}
	return notClipped
}

// Or sets g to the union of g and src.
func (g *Grid) Or(src *Grid) {
	for y := range g.rows {
		for w := range g.rows[y] {
			g.rows[y][w] |= src.rows[y][w]
		}
	}
}

// Subtract removes every cell of src from g.
func (g *Grid) Subtract(src *Grid) {
	for y := range g.rows {
		for w := range g.rows[y] {
			g.rows[y][w] &^= src.rows[y][w]
		}
	}
}

// And sets g to the intersection of a and b. g may alias either operand.
func (g *Grid) And(a, b *Grid) {
	for y := range g.rows {
		for w := range g.rows[y] {
			g.rows[y][w] = a.rows[y][w] & b.rows[y][w]
		}
	}
}

// IsEmpty reports whether no cell is on.
func (g *Grid) IsEmpty() bool {
	for y := range g.rows {
		for w := range g.rows[y] {
			if g.rows[y][w] != 0 {
				return false
			}
		}
	}
	return true
}

// Equal reports whether g and o hold the same cells.
func (g *Grid) Equal(o *Grid) bool {
	return g.rows == o.rows
}

// IsSubsetOf reports whether every on cell of g is also on in o.
func (g *Grid) IsSubsetOf(o *Grid) bool {
	for y := range g.rows {
		for w := range g.rows[y] {
			if g.rows[y][w]&^o.rows[y][w] != 0 {
				return false
			}
		}
	}
	return true
}

// Disjoint reports whether g and o share no on cell.
func (g *Grid) Disjoint(o *Grid) bool {
	for y := range g.rows {
		for w := range g.rows[y] {
			if g.rows[y][w]&o.rows[y][w] != 0 {
				return false
			}
		}
	}
	return true
}

// Population returns the number of on cells.
func (g *Grid) Population() int {
	n := 0
	for y := range g.rows {
		for w := range g.rows[y] {
			n += bits.OnesCount64(g.rows[y][w])
		}
	}
	return n
}

// rowSpan returns the first and last non-empty row indices.
func (g *Grid) rowSpan() (lo, hi int, ok bool) {
	lo = -1
	for y := range g.rows {
		if g.rows[y] != (row{}) {
			if lo < 0 {
				lo = y
			}
			hi = y
		}
	}
	return lo, hi, lo >= 0
}

// BoundingBox returns the smallest rectangle containing every on cell.
// The rectangle is empty when the grid is empty.
func (g *Grid) BoundingBox() Rect {
	lo, hi, ok := g.rowSpan()
	if !ok {
		return Rect{}
	}
	var acc row
	for y := lo; y <= hi; y++ {
		for w := range acc {
			acc[w] |= g.rows[y][w]
		}
	}
	left, right := -1, 0
	for w := range acc {
		if acc[w] == 0 {
			continue
		}
		first := 64*w + bits.TrailingZeros64(acc[w])
		last := 64*w + 63 - bits.LeadingZeros64(acc[w])
		if left < 0 {
			left = first
		}
		right = last
	}
	return Rect{
		LeftX:  Origin + left,
		TopY:   Origin + lo,
		Width:  right - left + 1,
		Height: hi - lo + 1,
	}
}

// FirstCell returns the topmost, then leftmost, on cell.
func (g *Grid) FirstCell() (Cell, bool) {
	for y := range g.rows {
		for w := range g.rows[y] {
			if v := g.rows[y][w]; v != 0 {
				return Cell{X: Origin + 64*w + bits.TrailingZeros64(v), Y: Origin + y}, true
			}
		}
	}
	return Cell{}, false
}

// Cells returns every on cell in row-major order.
func (g *Grid) Cells() []Cell {
	var out []Cell
	for y := range g.rows {
		for w := range g.rows[y] {
			v := g.rows[y][w]
			for v != 0 {
				b := bits.TrailingZeros64(v)
				v &= v - 1
				out = append(out, Cell{X: Origin + 64*w + b, Y: Origin + y})
			}
		}
	}
	return out
}

// west returns word w of r shifted so that each bit holds its western neighbour.
func west(r *row, w int) uint64 {
	v := r[w] << 1
	if w > 0 {
		v |= r[w-1] >> 63
	}
	return v
}

// east returns word w of r shifted so that each bit holds its eastern neighbour.
func east(r *row, w int) uint64 {
	v := r[w] >> 1
	if w < Words-1 {
		v |= r[w+1] << 63
	}
	return v
}

// addBit adds one bit plane to a three-bit per-cell counter. Counts wrap
// modulo 8, which never turns a dead count into a live one.
func addBit(s0, s1, s2, v uint64) (uint64, uint64, uint64) {
	c0 := s0 & v
	s0 ^= v
	c1 := s1 & c0
	s1 ^= c0
	s2 ^= c1
	return s0, s1, s2
}

var emptyRow row

// Evolve writes the next generation of g into out.
func (g *Grid) Evolve(out *Grid) {
	if out == g {
		src := *g
		src.Evolve(out)
		return
	}
	lo, hi, ok := g.rowSpan()
	if !ok {
		out.Clear()
		return
	}
	lo = max(lo-1, 0)
	hi = min(hi+1, Size-1)
	for y := 0; y < lo; y++ {
		out.rows[y] = row{}
	}
	for y := hi + 1; y < Size; y++ {
		out.rows[y] = row{}
	}
	for y := lo; y <= hi; y++ {
		up, dn := &emptyRow, &emptyRow
		if y > 0 {
			up = &g.rows[y-1]
		}
		if y < Size-1 {
			dn = &g.rows[y+1]
		}
		mid := &g.rows[y]
		for w := 0; w < Words; w++ {
			var s0, s1, s2 uint64
			s0, s1, s2 = addBit(s0, s1, s2, west(up, w))
			s0, s1, s2 = addBit(s0, s1, s2, up[w])
			s0, s1, s2 = addBit(s0, s1, s2, east(up, w))
			s0, s1, s2 = addBit(s0, s1, s2, west(mid, w))
			s0, s1, s2 = addBit(s0, s1, s2, east(mid, w))
			s0, s1, s2 = addBit(s0, s1, s2, west(dn, w))
			s0, s1, s2 = addBit(s0, s1, s2, dn[w])
			s0, s1, s2 = addBit(s0, s1, s2, east(dn, w))
			out.rows[y][w] = s1 &^ s2 & (s0 | mid[w])
		}
	}
}

// Bleed4 writes into out the dilation of g by the 4-neighbourhood.
func (g *Grid) Bleed4(out *Grid) {
	if out == g {
		src := *g
		src.Bleed4(out)
		return
	}
	for y := 0; y < Size; y++ {
		up, dn := &emptyRow, &emptyRow
		if y > 0 {
			up = &g.rows[y-1]
		}
		if y < Size-1 {
			dn = &g.rows[y+1]
		}
		mid := &g.rows[y]
		for w := 0; w < Words; w++ {
			out.rows[y][w] = mid[w] | west(mid, w) | east(mid, w) | up[w] | dn[w]
		}
	}
}

// Bleed8 writes into out the dilation of g by the 8-neighbourhood.
func (g *Grid) Bleed8(out *Grid) {
	var horiz [Size]row
	for y := 0; y < Size; y++ {
		mid := &g.rows[y]
		for w := 0; w < Words; w++ {
			horiz[y][w] = mid[w] | west(mid, w) | east(mid, w)
		}
	}
	for y := 0; y < Size; y++ {
		for w := 0; w < Words; w++ {
			v := horiz[y][w]
			if y > 0 {
				v |= horiz[y-1][w]
			}
			if y < Size-1 {
				v |= horiz[y+1][w]
			}
			out.rows[y][w] = v
		}
	}
}
