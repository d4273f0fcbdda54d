package dieselrt

import (
	"fmt"
	"math/bits"
)

// QueueFlags mirrors the Vulkan queue family capability bits.
type QueueFlags uint32

const (
	QueueGraphicsBit QueueFlags = 1 << iota
	QueueComputeBit
	QueueTransferBit
	QueueSparseBindingBit
	QueueProtectedBit
)

// InvalidQueueFamily is returned when no family qualifies.
const InvalidQueueFamily uint32 = 0xFFFFFFFF

func (f QueueFlags) Has(bits QueueFlags) bool {
	return f&bits == bits
}

func (f QueueFlags) String() string {
	s := ""
	for _, n := range []struct {
		bit  QueueFlags
		name string
	}{
		{QueueGraphicsBit, "graphics"},
		{QueueComputeBit, "compute"},
		{QueueTransferBit, "transfer"},
		{QueueSparseBindingBit, "sparse"},
		{QueueProtectedBit, "protected"},
	} {
		if f&n.bit != 0 {
			if s != "" {
				s += "|"
			}
			s += n.name
		}
	}
	if s == "" {
		return "none"
	}
	return s
}

// FindDedicatedQueue scans families in index order and returns the one that
// has every required bit, none of the avoid bits, and the fewest bits beyond
// required. Ties keep the lowest index.
func FindDedicatedQueue(families []QueueFlags, required, avoid QueueFlags) uint32 {
	best := InvalidQueueFamily
	bestExtra := 33
	for index, flags := range families {
		if !flags.Has(required) || flags&avoid != 0 {
			continue
		}
		extra := bits.OnesCount32(uint32(flags &^ required))
		if extra < bestExtra {
			best = uint32(index)
			bestExtra = extra
		}
	}
	return best
}

// QueueFamilyAssignment holds the family index used for each queue type.
// Compute and Transfer alias Graphics when the device has no dedicated family.
type QueueFamilyAssignment struct {
	Graphics uint32
	Compute  uint32
	Transfer uint32
}

// AssignQueueFamilies picks graphics, compute and transfer families. Only a
// missing graphics+compute family is an error, the others fall back.
func AssignQueueFamilies(families []QueueFlags) (QueueFamilyAssignment, error) {
	var q QueueFamilyAssignment

	q.Graphics = FindDedicatedQueue(families, QueueGraphicsBit|QueueComputeBit, 0)
	if q.Graphics == InvalidQueueFamily {
		return q, fmt.Errorf("%w (%d families)", ErrNoGraphicsQueue, len(families))
	}

	q.Compute = FindDedicatedQueue(families, QueueComputeBit, QueueGraphicsBit)
	if q.Compute == InvalidQueueFamily {
		q.Compute = q.Graphics
	}

	q.Transfer = FindDedicatedQueue(families, QueueTransferBit, QueueGraphicsBit|QueueComputeBit)
	if q.Transfer == InvalidQueueFamily {
		q.Transfer = q.Compute
	}
	return q, nil
}

// Family returns the family index serving queue type t.
func (q QueueFamilyAssignment) Family(t QueueType) uint32 {
	switch t {
	case QueueCopy:
		return q.Transfer
	case QueueCompute:
		return q.Compute
	default:
		return q.Graphics
	}
}

// Unique lists the distinct family indices, graphics first.
func (q QueueFamilyAssignment) Unique() []uint32 {
	out := []uint32{q.Graphics}
	for _, f := range []uint32{q.Compute, q.Transfer} {
		seen := false
		for _, u := range out {
			if u == f {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, f)
		}
	}
	return out
}
