package vkbackend

import (
	"fmt"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// findMemoryType returns the first type allowed by typeBits that has all of want.
func findMemoryType(props vk.PhysicalDeviceMemoryProperties, typeBits uint32, want vk.MemoryPropertyFlagBits) (uint32, bool) {
	for i := uint32(0); i < props.MemoryTypeCount && i < vk.MaxMemoryTypes; i++ {
		if typeBits&(1<<i) == 0 {
			continue
		}
		props.MemoryTypes[i].Deref()
		flags := props.MemoryTypes[i].PropertyFlags
		if flags&vk.MemoryPropertyFlags(want) == vk.MemoryPropertyFlags(want) {
			return i, true
		}
	}
	return 0, false
}

// findMemoryTypeFallback relaxes want to any allowed type when nothing matches.
func findMemoryTypeFallback(props vk.PhysicalDeviceMemoryProperties, typeBits uint32, want vk.MemoryPropertyFlagBits) (uint32, bool) {
	if i, ok := findMemoryType(props, typeBits, want); ok {
		return i, true
	}
	if want != 0 {
		return findMemoryType(props, typeBits, 0)
	}
	return 0, false
}

// memoryTypeFor picks the type for an allocation. Requests that will be
// mapped never fall back: mapping memory that is not host visible is invalid.
func memoryTypeFor(props vk.PhysicalDeviceMemoryProperties, typeBits uint32, want vk.MemoryPropertyFlagBits) (uint32, bool) {
	if want&vk.MemoryPropertyHostVisibleBit != 0 {
		return findMemoryType(props, typeBits, want)
	}
	return findMemoryTypeFallback(props, typeBits, want)
}

// deviceLocalMB sums the device-local heaps.
func deviceLocalMB(props vk.PhysicalDeviceMemoryProperties) uint64 {
	var total uint64
	for i := uint32(0); i < props.MemoryHeapCount && i < vk.MaxMemoryHeaps; i++ {
		heap := props.MemoryHeaps[i]
		heap.Deref()
		if heap.Flags&vk.MemoryHeapFlags(vk.MemoryHeapDeviceLocalBit) != 0 {
			total += uint64(heap.Size)
		}
	}
	return total >> 20
}

func (b *Backend) allocate(reqs vk.MemoryRequirements, want vk.MemoryPropertyFlagBits) (memory vk.DeviceMemory, err error) {
	typeIndex, ok := memoryTypeFor(b.memProps, reqs.MemoryTypeBits, want)
	if !ok {
		return memory, fmt.Errorf("no memory type with flags %#x for bits %#x", want, reqs.MemoryTypeBits)
	}
	ret := vk.AllocateMemory(b.device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: typeIndex,
	}, nil, &memory)
	return memory, NewError(ret)
}

// upload copies data into host-visible memory.
func (b *Backend) upload(memory vk.DeviceMemory, data []byte) error {
	var pData unsafe.Pointer
	ret := vk.MapMemory(b.device, memory, 0, vk.DeviceSize(len(data)), 0, &pData)
	if isError(ret) {
		return NewError(ret)
	}
	n := vk.Memcopy(pData, data)
	vk.UnmapMemory(b.device, memory)
	if n != len(data) {
		return fmt.Errorf("copied %d of %d bytes", n, len(data))
	}
	return nil
}
