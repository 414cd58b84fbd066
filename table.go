package threadpool

import "sync"

// table abstracts the concurrent keyed collection backing a Pool.
// Implementations must make insert's check-then-act atomic per key: create
// runs while the key is held exclusively and is not called when id is
// already present.
type table[ID comparable, W any] interface {
	// insert stores the value built by create under id if absent and
	// reports true. If id is occupied, the existing value and false are
	// returned and create is never called.
	insert(id ID, create func() W) (W, bool)

	// remove deletes and returns the value under id, if any.
	remove(id ID) (W, bool)

	// ids returns an unordered snapshot of the present keys.
	ids() []ID

	// size returns the number of present keys.
	size() int
}

// lockedTable guards a plain map with a single RWMutex: mutations are
// totally ordered, reads take shared access. The simplest discipline, at
// the cost of serializing spawn/stop across unrelated keys.
type lockedTable[ID comparable, W any] struct {
	mu      sync.RWMutex
	entries map[ID]W
}

func newLockedTable[ID comparable, W any]() *lockedTable[ID, W] {
	return &lockedTable[ID, W]{entries: make(map[ID]W)}
}

func (t *lockedTable[ID, W]) insert(id ID, create func() W) (W, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.entries[id]; ok {
		return existing, false
	}
	w := create()
	t.entries[id] = w
	return w, true
}

func (t *lockedTable[ID, W]) remove(id ID) (W, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	w, ok := t.entries[id]
	if ok {
		delete(t.entries, id)
	}
	return w, ok
}

func (t *lockedTable[ID, W]) ids() []ID {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]ID, 0, len(t.entries))
	for id := range t.entries {
		out = append(out, id)
	}
	return out
}

func (t *lockedTable[ID, W]) size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
