// Package storage persists check runs as two JSON documents under a data
// directory: latest-results.json, overwritten with the most recent run's
// results, and history.json, an append-only log pruned to the last 30 days
// on every append.
//
// Writes are whole-file overwrites, at most once per run. Reads are tolerant
// by design: a missing, unreadable or corrupt file is treated as "no prior
// data" and yields an empty result rather than an error. The store assumes a
// single process and a single orchestrator; there is no cross-process locking
// around the read-modify-write sequence.
package storage
