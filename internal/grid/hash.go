package grid

import (
	"encoding/binary"
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"
)

// Hasher computes salted content hashes of grids. Two grids with the same
// cells always hash identically under the same Hasher.
type Hasher struct {
	salt [Size * Words]uint64
	buf  [10]byte
}

// NewHasher returns a Hasher whose salt table is drawn from rng.
func NewHasher(rng *rand.Rand) *Hasher {
	h := &Hasher{}
	for i := range h.salt {
		h.salt[i] = rng.Uint64()
	}
	return h
}

// Hash returns the content hash of g. The result is never zero.
func (h *Hasher) Hash(g *Grid) uint64 {
	d := xxhash.New()
	for y := range g.rows {
		if g.rows[y] == (row{}) {
			continue
		}
		for w, v := range g.rows[y] {
			if v == 0 {
				continue
			}
			i := y*Words + w
			binary.LittleEndian.PutUint16(h.buf[0:2], uint16(i))
			binary.LittleEndian.PutUint64(h.buf[2:10], v^h.salt[i])
			_, _ = d.Write(h.buf[:])
		}
	}
	sum := d.Sum64()
	if sum == 0 {
		return 1
	}
	return sum
}
