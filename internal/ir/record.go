package ir

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Record layout limits.
const (
	// MaxRecordObjects is the largest object count a record header can hold.
	MaxRecordObjects = 255

	// MaxRecordCost is the largest cost a record can carry.
	MaxRecordCost = 0xFFFF

	placementBytes = 3
	recordOverhead = 1 + 2
)

// ErrShortRecord is returned when a record is truncated or its length does
// not match its object count.
var ErrShortRecord = errors.New("ir: malformed candidate record")

// RecordSize returns the encoded size of a candidate with n placements.
func RecordSize(n int) int {
	return recordOverhead + placementBytes*n
}

// AppendRecord appends the binary form of c to dst:
//
//	count:u8 | count x (type:u8, x:s8, y:s8) | cost:u16 big-endian
func AppendRecord(dst []byte, c Candidate) ([]byte, error) {
	n := len(c.Placements)
	if n > MaxRecordObjects {
		return dst, fmt.Errorf("AppendRecord: %d objects exceeds %d", n, MaxRecordObjects)
	}
	if c.Cost < 0 || c.Cost > MaxRecordCost {
		return dst, fmt.Errorf("AppendRecord: cost %d out of range", c.Cost)
	}
	dst = append(dst, byte(n))
	for _, p := range c.Placements {
		dst = append(dst, byte(p.Type), byte(p.X), byte(p.Y))
	}
	return binary.BigEndian.AppendUint16(dst, uint16(c.Cost)), nil
}

// DecodeRecord decodes rec into c, reusing c.Placements' storage.
func DecodeRecord(rec []byte, c *Candidate) error {
	if len(rec) < recordOverhead {
		return ErrShortRecord
	}
	n := int(rec[0])
	if len(rec) != RecordSize(n) {
		return fmt.Errorf("%w: %d bytes for %d objects", ErrShortRecord, len(rec), n)
	}
	c.Placements = c.Placements[:0]
	for i := 0; i < n; i++ {
		b := rec[1+placementBytes*i:]
		c.Placements = append(c.Placements, Placement{
			Type: ObjectType(b[0]),
			X:    int8(b[1]),
			Y:    int8(b[2]),
		})
	}
	c.Cost = int(binary.BigEndian.Uint16(rec[len(rec)-2:]))
	return nil
}

// RecordCost reads only the cost field of rec.
func RecordCost(rec []byte) (int, error) {
	if len(rec) < recordOverhead || len(rec) != RecordSize(int(rec[0])) {
		return 0, ErrShortRecord
	}
	return int(binary.BigEndian.Uint16(rec[len(rec)-2:])), nil
}
