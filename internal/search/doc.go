// Package search runs the round-based catalyst placement search.
//
// A run starts from a single empty candidate. Each round extends every
// candidate in the filtered pool by one catalog object, simulates the result
// until it settles, and records the settled survivors with their estimated
// cleanup cost in the unfiltered pool. The cheapest survivors, up to the pool
// size limit, become the next round's filtered pool. The run ends as soon as
// one placement leaves nothing behind, when a round produces no survivors, or
// after the configured number of objects has been placed.
//
// Two fingerprint indexes prune the work:
//   - a round-scoped index of (starting pattern, usable catalyst area) pairs,
//     so equivalent candidates are expanded once per round
//   - a run-scoped index of object combinations, so no combination of
//     objects is ever simulated twice
//
// The only nondeterminism is the random choice among candidates that tie at
// the cutoff cost. The random source is injected with WithRand.
//
// The Driver owns all of its grids, pools and indexes and is not safe for
// concurrent use.
package search
