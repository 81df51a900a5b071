// Package ir provides the value types shared by every stage of the destroy
// search: object placements, partial solutions (candidates), their compact
// binary record form, and content digests.
//
// This package contains type definitions and codecs only. All other internal
// packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Placement coordinates are signed bytes; anything wider is a caller bug
//   - A candidate record is self-delimiting given its leading object count
//   - Costs are carried as unsigned 16-bit integers on the wire
package ir
