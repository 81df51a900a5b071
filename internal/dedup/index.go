// Package dedup implements the fingerprint index the search uses to skip
// work it has already done: an open-addressing hash table from non-zero
// 64-bit keys to 64-bit payloads.
//
// The table doubles when its load passes a grow threshold. If doubling
// fails, the table stops trying and keeps working at its current size until
// the stricter fail threshold is reached, after which new keys are refused
// but lookups of stored keys still succeed.
package dedup

import (
	"errors"
	"fmt"
	"math/bits"
	"unsafe"
)

var (
	// ErrZeroKey is returned for the reserved key 0.
	ErrZeroKey = errors.New("dedup: zero key")

	// ErrUninitialized is returned by an Index not built with New.
	ErrUninitialized = errors.New("dedup: index not initialized")

	// ErrGrowFailed is returned by an Allocator that cannot provide a table.
	ErrGrowFailed = errors.New("dedup: cannot allocate table")

	// ErrIndexFull is returned when a new key cannot be stored because the
	// table is past its fail threshold and cannot grow.
	ErrIndexFull = errors.New("dedup: index full")
)

// Entry is one table slot. A zero key marks an empty slot.
type Entry struct {
	Key  uint64
	Data uint64
}

// Allocator returns a zeroed slot array of the given capacity.
type Allocator func(capacity uint64) ([]Entry, error)

// DefaultMaxCapacity caps growth when no allocator is supplied.
const DefaultMaxCapacity = 1 << 32

func limitedAllocator(maxCapacity uint64) Allocator {
	return func(capacity uint64) ([]Entry, error) {
		if capacity > maxCapacity {
			return nil, fmt.Errorf("%w: capacity %d exceeds limit %d", ErrGrowFailed, capacity, maxCapacity)
		}
		return make([]Entry, capacity), nil
	}
}

// Option configures an Index.
type Option func(*Index)

// WithAllocator replaces the slot allocator.
func WithAllocator(a Allocator) Option {
	return func(ix *Index) {
		ix.alloc = a
	}
}

// WithMaxCapacity caps the capacity the table may grow to.
func WithMaxCapacity(n uint64) Option {
	return func(ix *Index) {
		ix.alloc = limitedAllocator(n)
	}
}

// Index is a fingerprint-to-payload hash table. It is not safe for
// concurrent use.
type Index struct {
	growFraction float64
	failFraction float64

	slots      []Entry
	used       uint64
	growAt     uint64
	failAt     uint64
	growFailed bool

	alloc Allocator
}

// New creates an index with the given initial capacity, which must be a
// power of two. growFraction and failFraction are load factors in
// [0.25, 1] with failFraction >= growFraction.
func New(initialCapacity uint64, growFraction, failFraction float64, opts ...Option) (*Index, error) {
	if initialCapacity == 0 || bits.OnesCount64(initialCapacity) != 1 {
		return nil, fmt.Errorf("dedup.New: capacity %d is not a power of two", initialCapacity)
	}
	if growFraction < 0.25 || growFraction > 1 || failFraction < 0.25 || failFraction > 1 {
		return nil, fmt.Errorf("dedup.New: load fractions %.2f/%.2f outside [0.25, 1]", growFraction, failFraction)
	}
	if failFraction < growFraction {
		return nil, fmt.Errorf("dedup.New: fail fraction %.2f below grow fraction %.2f", failFraction, growFraction)
	}

	ix := &Index{
		growFraction: growFraction,
		failFraction: failFraction,
		alloc:        limitedAllocator(DefaultMaxCapacity),
	}
	for _, opt := range opts {
		opt(ix)
	}

	slots, err := ix.alloc(initialCapacity)
	if err != nil {
		return nil, fmt.Errorf("dedup.New: %w", err)
	}
	ix.install(slots)
	return ix, nil
}

func (ix *Index) install(slots []Entry) {
	capacity := uint64(len(slots))
	ix.slots = slots
	ix.used = 0
	ix.growAt = uint64(ix.growFraction * float64(capacity))
	ix.failAt = uint64(ix.failFraction * float64(capacity))
}

// Clear empties the index and re-enables growth. Capacity is kept.
func (ix *Index) Clear() {
	clear(ix.slots)
	ix.used = 0
	ix.growFailed = false
}

// Len returns the number of stored keys.
func (ix *Index) Len() uint64 {
	return ix.used
}

// Capacity returns the number of slots.
func (ix *Index) Capacity() uint64 {
	return uint64(len(ix.slots))
}

// MemoryBytes returns the size of the slot array.
func (ix *Index) MemoryBytes() uint64 {
	return uint64(len(ix.slots)) * uint64(unsafe.Sizeof(Entry{}))
}

// GrowthStopped reports whether a grow attempt has failed since the last Clear.
func (ix *Index) GrowthStopped() bool {
	return ix.growFailed
}

func (ix *Index) grow() bool {
	slots, err := ix.alloc(2 * uint64(len(ix.slots)))
	if err != nil {
		ix.growFailed = true
		return false
	}
	old := ix.slots
	ix.install(slots)
	for _, e := range old {
		if e.Key != 0 {
			ix.insert(e.Key, e.Data, true)
		}
	}
	return true
}

// probe returns the slot holding key, or the empty slot where it belongs.
// It returns nil only when every slot is taken by another key.
func (ix *Index) probe(key uint64) *Entry {
	mask := uint64(len(ix.slots)) - 1
	i := key & mask
	for n := 0; n < len(ix.slots); n++ {
		e := &ix.slots[i]
		if e.Key == key || e.Key == 0 {
			return e
		}
		i = (i + 1) & mask
	}
	return nil
}

func (ix *Index) insert(key, data uint64, replace bool) bool {
	e := ix.probe(key)
	if e.Key == key {
		if replace {
			e.Data = data
		}
		return true
	}
	e.Key = key
	e.Data = data
	ix.used++
	return false
}

// Store inserts key with payload data and reports whether key was already
// present. An existing payload is overwritten only when replace is set.
func (ix *Index) Store(key, data uint64, replace bool) (wasPresent bool, err error) {
	if len(ix.slots) == 0 {
		return false, ErrUninitialized
	}
	if key == 0 {
		return false, ErrZeroKey
	}
	if ix.used >= ix.growAt && !ix.growFailed {
		ix.grow()
	}
	if ix.used >= ix.failAt && (ix.growFailed || !ix.grow()) {
		e := ix.probe(key)
		if e == nil || e.Key != key {
			return false, ErrIndexFull
		}
		if replace {
			e.Data = data
		}
		return true, nil
	}
	return ix.insert(key, data, replace), nil
}

// Get returns the payload stored under key.
func (ix *Index) Get(key uint64) (data uint64, found bool, err error) {
	if len(ix.slots) == 0 {
		return 0, false, ErrUninitialized
	}
	if key == 0 {
		return 0, false, ErrZeroKey
	}
	e := ix.probe(key)
	if e == nil || e.Key != key {
		return 0, false, nil
	}
	return e.Data, true, nil
}
