package grid

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fromCells(cells ...Cell) *Grid {
	g := New()
	g.OrCells(cells, 0, 0)
	return g
}

func TestSetGetClipping(t *testing.T) {
	g := New()
	assert.True(t, g.Set(-128, -128))
	assert.True(t, g.Set(127, 127))
	assert.False(t, g.Set(128, 0))
	assert.False(t, g.Set(0, -129))
	assert.True(t, g.Get(-128, -128))
	assert.True(t, g.Get(127, 127))
	assert.False(t, g.Get(128, 0))
	assert.Equal(t, 2, g.Population())
}

func TestEvolveStillLife(t *testing.T) {
	block := fromCells(Cell{0, 0}, Cell{1, 0}, Cell{0, 1}, Cell{1, 1})
	next := New()
	block.Evolve(next)
	assert.True(t, next.Equal(block))
}

func TestEvolveBlinker(t *testing.T) {
	vertical := fromCells(Cell{0, -1}, Cell{0, 0}, Cell{0, 1})
	horizontal := fromCells(Cell{-1, 0}, Cell{0, 0}, Cell{1, 0})

	next := New()
	vertical.Evolve(next)
	assert.True(t, next.Equal(horizontal))

	next.Evolve(next)
	assert.True(t, next.Equal(vertical), "in-place evolution must match")
}

func TestEvolveGliderAcrossWordBoundary(t *testing.T) {
	// Column 64 relative to the left edge starts the second word.
	x0 := Origin + 62
	glider := fromCells(
		Cell{x0 + 1, 0},
		Cell{x0 + 2, 1},
		Cell{x0, 2}, Cell{x0 + 1, 2}, Cell{x0 + 2, 2},
	)
	g := glider.Clone()
	next := New()
	for i := 0; i < 4; i++ {
		g.Evolve(next)
		g, next = next, g
	}
	want := New()
	want.OrCells(glider.Cells(), 1, 1)
	assert.True(t, g.Equal(want))
}

func TestEvolveEdgeCellsDie(t *testing.T) {
	g := fromCells(Cell{127, 127})
	next := New()
	g.Evolve(next)
	assert.True(t, next.IsEmpty())

	empty := New()
	empty.Evolve(next)
	assert.True(t, next.IsEmpty())
}

func TestBleed(t *testing.T) {
	g := fromCells(Cell{0, 0})
	b4 := New()
	g.Bleed4(b4)
	assert.Equal(t, 5, b4.Population())
	assert.True(t, b4.Get(0, -1))
	assert.False(t, b4.Get(1, 1))

	b8 := New()
	g.Bleed8(b8)
	assert.Equal(t, 9, b8.Population())
	assert.True(t, b8.Get(1, 1))

	// bleed4 after bleed8 covers the 5x5 square minus its corners
	both := New()
	b8.Bleed4(both)
	assert.Equal(t, 21, both.Population())
	assert.False(t, both.Get(2, 2))
	assert.True(t, both.Get(2, 1))

	word := fromCells(Cell{Origin + 63, 5})
	word.Bleed4(word)
	assert.True(t, word.Get(Origin+64, 5))
	assert.True(t, word.Get(Origin+62, 5))
}

func TestSetAlgebra(t *testing.T) {
	a := fromCells(Cell{0, 0}, Cell{1, 0})
	b := fromCells(Cell{1, 0}, Cell{2, 0})

	u := a.Clone()
	u.Or(b)
	assert.Equal(t, 3, u.Population())
	assert.True(t, a.IsSubsetOf(u))
	assert.False(t, u.IsSubsetOf(a))

	d := a.Clone()
	d.Subtract(b)
	assert.True(t, d.Equal(fromCells(Cell{0, 0})))

	i := New()
	i.And(a, b)
	assert.True(t, i.Equal(fromCells(Cell{1, 0})))

	assert.False(t, a.Disjoint(b))
	assert.True(t, d.Disjoint(b))
}

func TestBoundingBoxAndFirstCell(t *testing.T) {
	g := New()
	assert.True(t, g.BoundingBox().IsEmpty())
	_, ok := g.FirstCell()
	assert.False(t, ok)

	g.Set(-3, 4)
	g.Set(70, -2)
	g.Set(5, 9)
	assert.Equal(t, Rect{LeftX: -3, TopY: -2, Width: 74, Height: 12}, g.BoundingBox())

	c, ok := g.FirstCell()
	require.True(t, ok)
	assert.Equal(t, Cell{70, -2}, c)
	assert.Equal(t, []Cell{{70, -2}, {-3, 4}, {5, 9}}, g.Cells())
}

func TestHasher(t *testing.T) {
	h := NewHasher(rand.New(rand.NewPCG(1, 2)))
	a := fromCells(Cell{0, 0}, Cell{5, 5})
	b := fromCells(Cell{5, 5}, Cell{0, 0})
	c := fromCells(Cell{0, 0}, Cell{5, 6})

	assert.Equal(t, h.Hash(a), h.Hash(b))
	assert.NotEqual(t, h.Hash(a), h.Hash(c))
	assert.NotZero(t, h.Hash(New()))
}

func TestParseLifeHistory(t *testing.T) {
	l := Layers{On: New(), Marked: New(), Envelope: New(), Special: New()}
	clipped, err := ParseLifeHistory("2o$\nbA C$D2B!", 0, 0, l)
	require.NoError(t, err)
	assert.False(t, clipped)

	assert.Equal(t, []Cell{{0, 0}, {1, 0}, {1, 1}, {2, 1}}, l.On.Cells())
	assert.Equal(t, []Cell{{2, 1}, {0, 2}}, l.Marked.Cells())
	assert.Equal(t, []Cell{{1, 2}, {2, 2}}, l.Envelope.Cells())
	assert.True(t, l.Special.IsEmpty())
}

func TestParseLifeHistoryErrors(t *testing.T) {
	l := Layers{On: New()}
	_, err := ParseLifeHistory("2oz$", 0, 0, l)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, byte('z'), pe.Char)

	clipped, err := ParseLifeHistory("3o!", 126, 0, l)
	require.NoError(t, err)
	assert.True(t, clipped)
}

func TestFormatLifeHistory(t *testing.T) {
	l := Layers{On: New(), Marked: New(), Envelope: New()}
	l.On.Set(0, 0)
	l.Marked.Set(2, 0)
	l.Envelope.Set(0, 2)

	var sb strings.Builder
	require.NoError(t, FormatLifeHistory(&sb, l.Bounds(), l))
	assert.Equal(t, "x = 3, y = 3, rule = LifeHistory\nA.D2$B!\n", sb.String())
}

func TestFormatLifeHistory_Golden(t *testing.T) {
	l := Layers{
		On:       fromCells(Cell{1, 0}, Cell{2, 1}, Cell{0, 2}, Cell{1, 2}, Cell{2, 2}),
		Marked:   fromCells(Cell{5, 5}, Cell{6, 5}, Cell{5, 6}, Cell{6, 6}),
		Envelope: New(),
		Special:  fromCells(Cell{8, 0}),
	}
	for i := -2; i < 10; i++ {
		l.Envelope.Set(i, -2)
		l.Envelope.Set(i, 9)
		l.Envelope.Set(-2, i)
		l.Envelope.Set(9, i)
	}

	var sb strings.Builder
	require.NoError(t, FormatLifeHistory(&sb, l.Bounds(), l))

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "glider_and_block", []byte(sb.String()))
}

func TestFormatParseRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	l := Layers{On: New(), Marked: New(), Envelope: New()}
	for i := 0; i < 400; i++ {
		x, y := rng.IntN(90)-45, rng.IntN(30)-15
		switch rng.IntN(3) {
		case 0:
			l.On.Set(x, y)
		case 1:
			l.Marked.Set(x, y)
		default:
			l.Envelope.Set(x, y)
		}
	}
	// Envelope cells hidden under other states are not representable.
	l.Envelope.Subtract(l.On)
	l.Envelope.Subtract(l.Marked)

	r := l.Bounds()
	var sb strings.Builder
	require.NoError(t, FormatLifeHistory(&sb, r, l))

	text := sb.String()
	for _, line := range strings.Split(text, "\n") {
		assert.LessOrEqual(t, len(line), maxLineLength+8)
	}
	body := text[strings.IndexByte(text, '\n')+1:]

	back := Layers{On: New(), Marked: New(), Envelope: New()}
	_, err := ParseLifeHistory(body, r.LeftX, r.TopY, back)
	require.NoError(t, err)
	assert.True(t, back.On.Equal(l.On))
	assert.True(t, back.Marked.Equal(l.Marked))
	assert.True(t, back.Envelope.Equal(l.Envelope))
}
