package dieselrt

import "fmt"

// BufferUsage selects how a buffer may be bound.
type BufferUsage uint32

const (
	BufferVertex BufferUsage = 1 << iota
	BufferIndex
	BufferUniform
	BufferStorage
	// BufferComputeWrite allows clears on the compute queue.
	BufferComputeWrite
)

// BufferDesc describes a device buffer.
type BufferDesc struct {
	Size  uint64
	Usage BufferUsage
	Name  string
}

const maxBufferSize = 1 << 31

func (d BufferDesc) Validate() error {
	if d.Size == 0 || d.Size > maxBufferSize {
		return fmt.Errorf("%w: size %d", ErrInvalidBuffer, d.Size)
	}
	if d.Usage == 0 {
		return fmt.Errorf("%w: no usage", ErrInvalidBuffer)
	}
	return nil
}
