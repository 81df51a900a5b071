// Package grid provides the fixed-size bitboard used by the destroy search.
//
// A Grid is a 256x256 boolean cell matrix whose top-left cell has coordinate
// (-128, -128). Cells outside the board are permanently off: writes to them
// are reported as clipped, and evolution treats them as dead.
//
// # Layout
//
// Each row is stored as four 64-bit words. Bit i of word w holds the cell at
// column 64*w + i, counted from the left edge, so shifting a word left moves
// cells east.
//
// # Operations
//
//   - Evolution: Evolve computes one Game of Life generation (B3/S23).
//   - Boolean algebra: Or, Subtract, And, Equal, IsSubsetOf, Disjoint, IsEmpty.
//   - Morphology: Bleed4 and Bleed8 dilate by the 4- and 8-neighbourhood.
//   - Queries: BoundingBox, Population, FirstCell, Cells.
//   - Hashing: Hasher computes a salted 64-bit content hash that is never zero.
//   - Text: ParseLifeHistory and FormatLifeHistory read and write the
//     multi-state LifeHistory run-length format.
package grid
