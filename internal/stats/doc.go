// Package stats derives read-side aggregates from the metadata document:
// per-contributor counts, global partitions, and the leaderboard with its
// approved-count ranking tiers. Everything here is a pure function over a
// loaded document and is safe to run concurrently with any other reader.
package stats
