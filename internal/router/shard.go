package router

import (
	"encoding/binary"
	"hash/fnv"
	"sync"
)

// Assignment maps instrument ids to shard ids. The mapping is derived
// from a stable hash and memoized: an instrument never migrates shards
// for the life of the process, which is what lets each engine shard own
// its instrument state without locks. Changing the shard count requires
// a restart.
type Assignment struct {
	mu       sync.RWMutex
	shards   int
	assigned map[int64]int
}

// NewAssignment creates an assignment table for the given shard count.
func NewAssignment(shards int) *Assignment {
	if shards < 1 {
		shards = 1
	}
	return &Assignment{
		shards:   shards,
		assigned: make(map[int64]int),
	}
}

// Shards returns the configured shard count.
func (a *Assignment) Shards() int {
	return a.shards
}

// Resolve returns the owning shard for an instrument, recording the
// assignment on first resolution.
func (a *Assignment) Resolve(instrumentID int64) int {
	a.mu.RLock()
	shard, ok := a.assigned[instrumentID]
	a.mu.RUnlock()
	if ok {
		return shard
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if shard, ok := a.assigned[instrumentID]; ok {
		return shard
	}

	shard = a.hash(instrumentID)
	a.assigned[instrumentID] = shard
	return shard
}

// Snapshot returns a copy of all recorded assignments.
func (a *Assignment) Snapshot() map[int64]int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make(map[int64]int, len(a.assigned))
	for id, shard := range a.assigned {
		out[id] = shard
	}
	return out
}

func (a *Assignment) hash(instrumentID int64) int {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(instrumentID))
	h.Write(buf[:])
	return int(h.Sum64() % uint64(a.shards))
}
