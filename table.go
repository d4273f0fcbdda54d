package dieselrt

import "sync"

type resourceKind int

const (
	kindTexture resourceKind = iota
	kindBuffer

	kindCount
)

func (k resourceKind) String() string {
	if k == kindTexture {
		return "texture"
	}
	return "buffer"
}

type resourceState uint8

const (
	// statePending: handle reserved, create command not yet handled.
	statePending resourceState = iota + 1
	stateReady
	stateFailed
	stateDestroying
)

// resourceTable tracks handle liveness per resource kind. Producers reserve
// and retire handles, the executor records creation outcomes and returns
// handles to the pool once the backend object is gone.
type resourceTable struct {
	mu     sync.Mutex
	pools  [kindCount]*HandleAllocator
	states [kindCount]map[Handle]resourceState
}

func newResourceTable(maxTextures, maxBuffers uint32) *resourceTable {
	t := &resourceTable{}
	t.pools[kindTexture] = NewHandleAllocator(maxTextures)
	t.pools[kindBuffer] = NewHandleAllocator(maxBuffers)
	for k := range t.states {
		t.states[k] = make(map[Handle]resourceState)
	}
	return t
}

func (t *resourceTable) reserve(kind resourceKind) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	h := t.pools[kind].AllocOne()
	if h.IsValid() {
		t.states[kind][h] = statePending
	}
	return h
}

// settle records the outcome of a create. Only pending handles move: a
// handle retired before its create was handled stays destroying so that
// release still returns it to the pool.
func (t *resourceTable) settle(kind resourceKind, h Handle, s resourceState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.states[kind][h] == statePending {
		t.states[kind][h] = s
	}
}

func (t *resourceTable) markReady(kind resourceKind, h Handle)  { t.settle(kind, h, stateReady) }
func (t *resourceTable) markFailed(kind resourceKind, h Handle) { t.settle(kind, h, stateFailed) }

// retire moves h to destroying. It reports false when h is not live or is
// already being destroyed, so a handle can only be released once.
func (t *resourceTable) retire(kind resourceKind, h Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.states[kind][h]
	if !ok || s == stateDestroying {
		return false
	}
	t.states[kind][h] = stateDestroying
	return true
}

// release returns a retired handle to its pool.
func (t *resourceTable) release(kind resourceKind, h Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.states[kind][h] != stateDestroying {
		return
	}
	delete(t.states[kind], h)
	t.pools[kind].Release(h)
}

// usable reports whether commands may still target h.
func (t *resourceTable) usable(kind resourceKind, h Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.states[kind][h]
	return s == statePending || s == stateReady
}

func (t *resourceTable) valid(kind resourceKind, h Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.states[kind][h] == stateReady
}

func (t *resourceTable) live(kind resourceKind) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.states[kind])
}

// purge forgets every handle. Only used when the context shuts down.
func (t *resourceTable) purge() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k := range t.states {
		t.pools[k].Purge()
		clear(t.states[k])
	}
}
