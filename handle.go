package dieselrt

// Handle identifies a resource for as long as it is live. Released handles
// are recycled without a generation counter.
type Handle uint32

// InvalidHandle is returned when no handle could be produced.
const InvalidHandle Handle = 0xFFFFFFFF

// IsValid reports whether h is not the invalid sentinel. It says nothing about liveness.
func (h Handle) IsValid() bool {
	return h != InvalidHandle
}

// HandleAllocator hands out small integer ids from a fixed-size pool.
// Released ids are reused most-recent-first. The allocator is not safe for
// concurrent use; callers serialize access.
type HandleAllocator struct {
	capacity  uint32
	highWater uint32
	free      []Handle
	live      uint32
}

func NewHandleAllocator(capacity uint32) *HandleAllocator {
	return &HandleAllocator{
		capacity: capacity,
		free:     make([]Handle, 0, 64),
	}
}

// Alloc reserves one id. Only size 1 with default alignment (0 or 1) is
// supported, anything else returns InvalidHandle and leaves the pool untouched.
func (a *HandleAllocator) Alloc(size, align uint32) Handle {
	if size != 1 || align > 1 {
		return InvalidHandle
	}
	if n := len(a.free); n > 0 {
		h := a.free[n-1]
		a.free = a.free[:n-1]
		a.live++
		return h
	}
	if a.highWater >= a.capacity {
		return InvalidHandle
	}
	h := Handle(a.highWater)
	a.highWater++
	a.live++
	return h
}

// AllocOne is Alloc(1, 0).
func (a *HandleAllocator) AllocOne() Handle {
	return a.Alloc(1, 0)
}

// Release returns h to the pool. Liveness is not checked: releasing a handle
// twice puts it on the free list twice. The resource table guards against that.
func (a *HandleAllocator) Release(h Handle) {
	a.free = append(a.free, h)
	if a.live > 0 {
		a.live--
	}
}

// Purge forgets every issued id. Holders are not notified.
func (a *HandleAllocator) Purge() {
	a.highWater = 0
	a.live = 0
	a.free = a.free[:0]
}

func (a *HandleAllocator) Live() uint32 {
	return a.live
}

func (a *HandleAllocator) Capacity() uint32 {
	return a.capacity
}
