package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"math/bits"
)

// DomainSolution prefixes solution digests. The version suffix allows the
// record layout to change without colliding with older digests.
const DomainSolution = "destroy/solution/v1"

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SolutionDigest returns a stable identifier for a solution's placements.
// The cost does not contribute.
func SolutionDigest(placements []Placement) string {
	data := make([]byte, 0, placementBytes*len(placements))
	for _, p := range placements {
		data = append(data, byte(p.Type), byte(p.X), byte(p.Y))
	}
	return hashWithDomain(DomainSolution, data)
}

// CombineFingerprints mixes two grid hashes into one deduplication key.
// The result is never zero, including when a == b.
func CombineFingerprints(a, b uint64) uint64 {
	k := a ^ bits.RotateLeft64(b, 29)
	if k == 0 {
		return 1
	}
	return k
}
