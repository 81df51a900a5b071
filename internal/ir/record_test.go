package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendRecord_Layout(t *testing.T) {
	c := Candidate{
		Placements: []Placement{
			{Type: 0, X: -3, Y: -1},
			{Type: 9, X: 12, Y: 100},
		},
		Cost: 300,
	}
	rec, err := AppendRecord(nil, c)
	require.NoError(t, err)

	assert.Equal(t, []byte{2, 0, 0xFD, 0xFF, 9, 12, 100, 0x01, 0x2C}, rec)
	assert.Len(t, rec, RecordSize(2))
}

func TestDecodeRecord_ReusesStorage(t *testing.T) {
	in := Candidate{Placements: []Placement{{Type: 3, X: 1, Y: 2}}, Cost: 7}
	rec, err := AppendRecord(nil, in)
	require.NoError(t, err)

	out := Candidate{Placements: make([]Placement, 0, 4)}
	require.NoError(t, DecodeRecord(rec, &out))
	assert.Equal(t, in, out)

	cost, err := RecordCost(rec)
	require.NoError(t, err)
	assert.Equal(t, 7, cost)
}

func TestDecodeRecord_EmptyCandidate(t *testing.T) {
	rec, err := AppendRecord(nil, Candidate{Cost: 1})
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 1}, rec)

	var out Candidate
	require.NoError(t, DecodeRecord(rec, &out))
	assert.Empty(t, out.Placements)
	assert.Equal(t, 1, out.Cost)
}

func TestDecodeRecord_Malformed(t *testing.T) {
	var out Candidate
	assert.ErrorIs(t, DecodeRecord([]byte{1, 0}, &out), ErrShortRecord)
	assert.ErrorIs(t, DecodeRecord([]byte{2, 0, 0, 0, 0, 1}, &out), ErrShortRecord)

	_, err := RecordCost([]byte{5})
	assert.ErrorIs(t, err, ErrShortRecord)
}

func TestAppendRecord_RejectsOutOfRange(t *testing.T) {
	_, err := AppendRecord(nil, Candidate{Cost: MaxRecordCost + 1})
	assert.Error(t, err)

	_, err = AppendRecord(nil, Candidate{Placements: make([]Placement, 256)})
	assert.Error(t, err)
}

func TestCandidate_ExtendDoesNotAlias(t *testing.T) {
	base := Candidate{Placements: make([]Placement, 1, 8)}
	a := base.Extend(Placement{Type: 1}, 10)
	b := base.Extend(Placement{Type: 2}, 20)

	assert.Equal(t, ObjectType(1), a.Placements[1].Type)
	assert.Equal(t, ObjectType(2), b.Placements[1].Type)
	assert.Equal(t, 1, base.Len())
	assert.Equal(t, 20, b.Cost)
}

func TestNewPlacement_PanicsOutOfRange(t *testing.T) {
	assert.Panics(t, func() { NewPlacement(0, 128, 0) })
	assert.NotPanics(t, func() { NewPlacement(0, -128, 127) })
}

func TestSolutionDigest_Stable(t *testing.T) {
	p := []Placement{{Type: 0, X: -3, Y: -1}}
	assert.Equal(t, SolutionDigest(p), SolutionDigest([]Placement{{Type: 0, X: -3, Y: -1}}))
	assert.NotEqual(t, SolutionDigest(p), SolutionDigest([]Placement{{Type: 0, X: -3, Y: 0}}))
	assert.Len(t, SolutionDigest(nil), 64)
}

func TestCombineFingerprints_NeverZero(t *testing.T) {
	assert.NotZero(t, CombineFingerprints(0, 0))
	assert.NotEqual(t, CombineFingerprints(1, 2), CombineFingerprints(2, 1))
}
