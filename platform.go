package dieselrt

// QueueType names the three hardware queues work is batched on.
type QueueType int

const (
	QueueCopy QueueType = iota
	QueueCompute
	QueueGraphics

	queueTypeCount
)

func (t QueueType) String() string {
	switch t {
	case QueueCopy:
		return "copy"
	case QueueCompute:
		return "compute"
	case QueueGraphics:
		return "graphics"
	default:
		return "unknown"
	}
}

// Platform is the device bring-up side of a backend: it enumerates physical
// devices and opens the selected one. All methods are called from the
// execution goroutine.
type Platform interface {
	// PhysicalDevices probes every candidate GPU.
	PhysicalDevices() ([]PhysicalDeviceInfo, error)
	// CreateBackend opens device index with the given queue families.
	CreateBackend(index int, families QueueFamilyAssignment) (Backend, error)
	// Destroy tears down the instance. Any backend must be destroyed first.
	Destroy()
}

// PlatformFactory creates a platform on the execution goroutine.
type PlatformFactory func(cfg Config) (Platform, error)

// Backend is the device abstraction the executor drives. It is only ever
// touched by the execution goroutine, so implementations need no locking.
type Backend interface {
	// CreateCommandList allocates a list for queue t in the closed state.
	CreateCommandList(t QueueType) (CommandList, error)
	// ExecuteCommandList submits a closed list and returns its submission
	// id, or 0 when nothing was submitted.
	ExecuteCommandList(list CommandList, t QueueType) uint64
	// QueueWaitForCommandList makes the next submission on consumer wait
	// for submission on producer.
	QueueWaitForCommandList(consumer, producer QueueType, submission uint64)

	CreateTexture(desc TextureDesc) (Texture, error)
	CreateBuffer(desc BufferDesc) (Buffer, error)

	// RunGarbageCollection releases objects whose submissions completed.
	RunGarbageCollection()
	// WaitForIdle blocks until the device has no outstanding work.
	WaitForIdle() error
	// Info describes the opened device.
	Info() string
	Destroy()
}

// CommandList records work for a single queue.
type CommandList interface {
	Open() error
	Close() error

	WriteBuffer(dst Buffer, offset uint64, data []byte)
	WriteTexture(dst Texture, mip, layer uint32, data []byte)
	FillBuffer(dst Buffer, value uint32)
	BlitTexture(dst, src Texture)
}

// Texture is a backend texture object. Release defers destruction until the
// GPU no longer uses it.
type Texture interface {
	Desc() TextureDesc
	Release()
}

// Buffer is a backend buffer object.
type Buffer interface {
	Desc() BufferDesc
	Release()
}
