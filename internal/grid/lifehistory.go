package grid

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// Layers groups the grids that make up a LifeHistory pattern. Any field may
// be nil, in which case the corresponding states are ignored.
//
// LifeHistory states map onto layers as follows:
//
//	state 1 (A)  on
//	state 2 (B)  envelope
//	state 3 (C)  on, marked
//	state 4 (D)  marked
//	state 5 (E)  on, marked, special
//	state 6 (F)  special
type Layers struct {
	On       *Grid
	Marked   *Grid
	Envelope *Grid
	Special  *Grid
}

// ParseError reports a malformed LifeHistory body.
type ParseError struct {
	Offset int
	Char   byte
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("illegal character %q at offset %d", e.Char, e.Offset)
}

const maxRunCount = 1 << 20

// ParseLifeHistory decodes a LifeHistory run-length body into l, placing the
// first cell at (leftX, topY). Parsing stops at '!' or end of input. The
// returned flag reports whether any on-board state was clipped.
func ParseLifeHistory(body string, leftX, topY int, l Layers) (clipped bool, err error) {
	x, y := leftX, topY
	count := 0
	haveCount := false
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			continue
		case c >= '0' && c <= '9':
			count = count*10 + int(c-'0')
			if count > maxRunCount {
				return clipped, &ParseError{Offset: i, Char: c}
			}
			haveCount = true
			continue
		case c == '!':
			return clipped, nil
		}

		n := 1
		if haveCount {
			n = count
		}
		count, haveCount = 0, false

		if c == '$' {
			x = leftX
			y += n
			continue
		}

		state := -1
		switch {
		case c == '.' || c == 'b':
			state = 0
		case c == 'o':
			state = 1
		case c >= 'A' && c <= 'F':
			state = int(c-'A') + 1
		}
		if state < 0 {
			return clipped, &ParseError{Offset: i, Char: c}
		}
		for k := 0; k < n; k++ {
			if state != 0 && !l.set(x, y, state) {
				clipped = true
			}
			x++
		}
	}
	return clipped, nil
}

func (l Layers) set(x, y, state int) bool {
	ok := true
	put := func(g *Grid) {
		if g != nil && !g.Set(x, y) {
			ok = false
		}
	}
	if state == 1 || state == 3 || state == 5 {
		put(l.On)
	}
	if state == 3 || state == 4 || state == 5 {
		put(l.Marked)
	}
	if state == 2 {
		put(l.Envelope)
	}
	if state == 5 || state == 6 {
		put(l.Special)
	}
	return ok && inBoard(x, y)
}

func inBoard(x, y int) bool {
	_, _, _, ok := locate(x, y)
	return ok
}

func (l Layers) state(x, y int) int {
	get := func(g *Grid) bool { return g != nil && g.Get(x, y) }
	s := 0
	if get(l.On) {
		s = 1
	}
	if get(l.Marked) {
		if s == 1 {
			s = 3
		} else {
			s = 4
		}
	}
	if get(l.Special) {
		if s == 1 || s == 3 {
			s = 5
		} else {
			s = 6
		}
	}
	if get(l.Envelope) && s == 0 {
		s = 2
	}
	return s
}

// Bounds returns the bounding box of every non-nil layer.
func (l Layers) Bounds() Rect {
	var r Rect
	for _, g := range []*Grid{l.On, l.Marked, l.Envelope, l.Special} {
		if g != nil {
			r = r.Union(g.BoundingBox())
		}
	}
	return r
}

const maxLineLength = 68

type rleWriter struct {
	w       *bufio.Writer
	lineLen int
}

func (rw *rleWriter) emit(count int, sym byte) {
	if count <= 0 {
		return
	}
	if count > 1 {
		s := strconv.Itoa(count)
		rw.w.WriteString(s)
		rw.lineLen += len(s)
	}
	rw.w.WriteByte(sym)
	rw.lineLen++
	if rw.lineLen > maxLineLength {
		rw.w.WriteByte('\n')
		rw.lineLen = 0
	}
}

func stateSymbol(s int) byte {
	if s == 0 {
		return '.'
	}
	return 'A' + byte(s-1)
}

// FormatLifeHistory writes the cells of l inside r as a LifeHistory pattern,
// including the "x = W, y = H, rule = LifeHistory" header.
func FormatLifeHistory(w io.Writer, r Rect, l Layers) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "x = %d, y = %d, rule = LifeHistory\n", max(r.Width, 0), max(r.Height, 0))

	rw := &rleWriter{w: bw}
	pendingRows := 0
	for y := r.TopY; y < r.TopY+r.Height; y++ {
		runState, runLen := 0, 0
		for x := r.LeftX; x < r.LeftX+r.Width; x++ {
			s := l.state(x, y)
			if s != 0 && pendingRows > 0 {
				rw.emit(pendingRows, '$')
				pendingRows = 0
			}
			if s != runState && runLen > 0 {
				rw.emit(runLen, stateSymbol(runState))
				runLen = 0
			}
			runState = s
			runLen++
		}
		if runState != 0 {
			rw.emit(runLen, stateSymbol(runState))
		}
		pendingRows++
	}
	bw.WriteString("!\n")
	return bw.Flush()
}
