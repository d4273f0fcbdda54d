package vkbackend

import vk "github.com/vulkan-go/vulkan"

// fencePool recycles fences of completed submissions.
type fencePool struct {
	device vk.Device
	free   []vk.Fence
	all    []vk.Fence
}

func (f *fencePool) get() (vk.Fence, error) {
	if n := len(f.free); n > 0 {
		fence := f.free[n-1]
		f.free = f.free[:n-1]
		return fence, NewError(vk.ResetFences(f.device, 1, []vk.Fence{fence}))
	}
	var fence vk.Fence
	ret := vk.CreateFence(f.device, &vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}, nil, &fence)
	if isError(ret) {
		return fence, NewError(ret)
	}
	f.all = append(f.all, fence)
	return fence, nil
}

func (f *fencePool) put(fence vk.Fence) {
	f.free = append(f.free, fence)
}

func (f *fencePool) destroy() {
	for _, fence := range f.all {
		vk.DestroyFence(f.device, fence, nil)
	}
	f.all, f.free = nil, nil
}

// commandBufferManager allocates primary command buffers from one pool and
// recycles them once their submission has completed.
type commandBufferManager struct {
	device vk.Device
	pool   vk.CommandPool
	free   []vk.CommandBuffer
	all    []vk.CommandBuffer
}

func newCommandBufferManager(device vk.Device, family uint32) (*commandBufferManager, error) {
	var pool vk.CommandPool
	ret := vk.CreateCommandPool(device, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: family,
		// ResetCommandBufferBit allows command buffers to be reset individually.
		Flags: vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}, nil, &pool)
	if isError(ret) {
		return nil, NewError(ret)
	}
	return &commandBufferManager{device: device, pool: pool}, nil
}

// get returns a command buffer in the initial state.
func (c *commandBufferManager) get() (vk.CommandBuffer, error) {
	if n := len(c.free); n > 0 {
		buf := c.free[n-1]
		c.free = c.free[:n-1]
		ret := vk.ResetCommandBuffer(buf, vk.CommandBufferResetFlags(vk.CommandBufferResetReleaseResourcesBit))
		return buf, NewError(ret)
	}
	bufs := make([]vk.CommandBuffer, 1)
	ret := vk.AllocateCommandBuffers(c.device, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        c.pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}, bufs)
	if isError(ret) {
		return nil, NewError(ret)
	}
	c.all = append(c.all, bufs[0])
	return bufs[0], nil
}

func (c *commandBufferManager) put(buf vk.CommandBuffer) {
	c.free = append(c.free, buf)
}

func (c *commandBufferManager) destroy() {
	if len(c.all) > 0 {
		vk.FreeCommandBuffers(c.device, c.pool, uint32(len(c.all)), c.all)
	}
	vk.DestroyCommandPool(c.device, c.pool, nil)
	c.all, c.free = nil, nil
}
