// Package pool stores the candidates of one search round as length-prefixed
// records packed into a chain of fixed-size buffers. Records are appended and
// read back in insertion order; there is no random access and no per-record
// deletion.
package pool

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const lengthPrefix = 2

// MaxRecordSize is the largest record the two-byte length prefix can describe.
const MaxRecordSize = 0xFFFF

var (
	// ErrRecordTooLarge is returned when a record cannot fit in one buffer.
	ErrRecordTooLarge = errors.New("pool: record too large")

	// ErrAllocFailed is returned when a new buffer cannot be obtained.
	ErrAllocFailed = errors.New("pool: buffer allocation failed")
)

// Allocator returns an empty buffer with the given capacity.
type Allocator func(size int) ([]byte, error)

func defaultAllocator(size int) ([]byte, error) {
	return make([]byte, 0, size), nil
}

// Option configures a Pool.
type Option func(*Pool)

// WithAllocator replaces the buffer allocator.
func WithAllocator(a Allocator) Option {
	return func(p *Pool) {
		p.alloc = a
	}
}

// Pool is an append-only record arena. It is not safe for concurrent use.
type Pool struct {
	bufSize int
	bufs    [][]byte
	count   int64
	alloc   Allocator
}

// New returns a pool whose buffers hold bufferSize bytes each.
func New(bufferSize int, opts ...Option) (*Pool, error) {
	if bufferSize <= lengthPrefix {
		return nil, fmt.Errorf("pool.New: buffer size %d too small", bufferSize)
	}
	p := &Pool{bufSize: bufferSize, alloc: defaultAllocator}
	for _, opt := range opts {
		opt(p)
	}
	first, err := p.alloc(bufferSize)
	if err != nil {
		return nil, fmt.Errorf("pool.New: %w: %v", ErrAllocFailed, err)
	}
	p.bufs = [][]byte{first}
	return p, nil
}

// MaxRecord returns the largest payload a single record may carry.
func (p *Pool) MaxRecord() int {
	return min(p.bufSize-lengthPrefix, MaxRecordSize)
}

// Store appends rec. The pool is unchanged on error.
func (p *Pool) Store(rec []byte) error {
	if len(rec) > p.MaxRecord() {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrRecordTooLarge, len(rec), p.MaxRecord())
	}
	need := lengthPrefix + len(rec)
	tail := len(p.bufs) - 1
	if p.bufSize-len(p.bufs[tail]) < need {
		buf, err := p.alloc(p.bufSize)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrAllocFailed, err)
		}
		p.bufs = append(p.bufs, buf)
		tail++
	}
	b := binary.BigEndian.AppendUint16(p.bufs[tail], uint16(len(rec)))
	p.bufs[tail] = append(b, rec...)
	p.count++
	return nil
}

// Clear drops every record and releases every buffer but the first.
func (p *Pool) Clear() {
	for i := 1; i < len(p.bufs); i++ {
		p.bufs[i] = nil
	}
	p.bufs = p.bufs[:1]
	p.bufs[0] = p.bufs[0][:0]
	p.count = 0
}

// Len returns the number of stored records.
func (p *Pool) Len() int64 {
	return p.count
}

// MemoryBytes returns the capacity of every buffer held.
func (p *Pool) MemoryBytes() int64 {
	return int64(len(p.bufs)) * int64(p.bufSize)
}

// Iter returns a cursor positioned before the first record.
func (p *Pool) Iter() *Cursor {
	return &Cursor{p: p}
}

// Cursor reads records in insertion order. Records returned by Next alias
// pool memory and remain valid until the pool is cleared.
type Cursor struct {
	p   *Pool
	buf int
	off int
}

// Next returns the next record, or false when the pool is exhausted.
func (c *Cursor) Next() ([]byte, bool) {
	for c.buf < len(c.p.bufs) && c.off >= len(c.p.bufs[c.buf]) {
		c.buf++
		c.off = 0
	}
	if c.buf >= len(c.p.bufs) {
		return nil, false
	}
	b := c.p.bufs[c.buf]
	n := int(binary.BigEndian.Uint16(b[c.off:]))
	start := c.off + lengthPrefix
	c.off = start + n
	return b[start:c.off:c.off], true
}
