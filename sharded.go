package threadpool

import (
	"hash/maphash"
	"sync"
)

// shardedTable splits the key space across independently locked shards, so
// spawn/stop on distinct ids rarely contend. Duplicate-insert semantics per
// key are identical to lockedTable; only the contention profile differs.
type shardedTable[ID comparable, W any] struct {
	seed   maphash.Seed
	shards []tableShard[ID, W] // length is a power of two
	mask   uint64
}

type tableShard[ID comparable, W any] struct {
	mu      sync.RWMutex
	entries map[ID]W
}

func newShardedTable[ID comparable, W any](shards uint) *shardedTable[ID, W] {
	n := nextPowerOfTwo(shards)
	t := &shardedTable[ID, W]{
		seed:   maphash.MakeSeed(),
		shards: make([]tableShard[ID, W], n),
		mask:   uint64(n - 1),
	}
	for i := range t.shards {
		t.shards[i].entries = make(map[ID]W)
	}
	return t
}

func (t *shardedTable[ID, W]) shard(id ID) *tableShard[ID, W] {
	return &t.shards[maphash.Comparable(t.seed, id)&t.mask]
}

func (t *shardedTable[ID, W]) insert(id ID, create func() W) (W, bool) {
	s := t.shard(id)
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[id]; ok {
		return existing, false
	}
	w := create()
	s.entries[id] = w
	return w, true
}

func (t *shardedTable[ID, W]) remove(id ID) (W, bool) {
	s := t.shard(id)
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.entries[id]
	if ok {
		delete(s.entries, id)
	}
	return w, ok
}

// ids locks one shard at a time, so the snapshot may interleave with
// concurrent mutations of other shards. Callers get a point-in-time view
// per shard, never a torn entry.
func (t *shardedTable[ID, W]) ids() []ID {
	var out []ID
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.RLock()
		for id := range s.entries {
			out = append(out, id)
		}
		s.mu.RUnlock()
	}
	return out
}

func (t *shardedTable[ID, W]) size() int {
	n := 0
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.RLock()
		n += len(s.entries)
		s.mu.RUnlock()
	}
	return n
}

func nextPowerOfTwo(n uint) uint {
	if n == 0 {
		return 1
	}
	v := uint(1)
	for v < n {
		v <<= 1
	}
	return v
}
