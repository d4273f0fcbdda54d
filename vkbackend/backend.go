package vkbackend

import (
	"fmt"

	"github.com/andewx/dieselrt"
	vk "github.com/vulkan-go/vulkan"
)

const queueTypes = int(dieselrt.QueueGraphics) + 1

// submission is one executed command list. Its fence tells when the
// command buffer, staging memory and semaphores can be reclaimed.
type submission struct {
	id    uint64
	queue dieselrt.QueueType
	fence vk.Fence
	list  *commandList
	// signals[q] is signalled for queue q to wait on. Claimed semaphores
	// are handed to the waiting submission and cleared here.
	signals [queueTypes]vk.Semaphore
	waited  []vk.Semaphore
}

// Backend drives one logical device. Every method is called from the
// execution goroutine.
type Backend struct {
	platform *Platform
	gpu      vk.PhysicalDevice
	device   vk.Device
	memProps vk.PhysicalDeviceMemoryProperties
	families dieselrt.QueueFamilyAssignment
	info     dieselrt.PhysicalDeviceInfo

	queues   [queueTypes]vk.Queue
	commands [queueTypes]*commandBufferManager
	fences   fencePool

	nextID   uint64
	inFlight []*submission
	waits    [queueTypes][]vk.Semaphore
	releases releaseTracker
}

func newBackend(p *Platform, gpu vk.PhysicalDevice, info dieselrt.PhysicalDeviceInfo,
	families dieselrt.QueueFamilyAssignment, extensions []string) (b *Backend, err error) {
	defer checkErr(&err)

	unique := families.Unique()
	queueInfos := make([]vk.DeviceQueueCreateInfo, 0, len(unique))
	for _, family := range unique {
		queueInfos = append(queueInfos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		})
	}

	var device vk.Device
	ret := vk.CreateDevice(gpu, &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		EnabledLayerCount:       uint32(len(p.layers)),
		PpEnabledLayerNames:     p.layers,
	}, nil, &device)
	orPanic(NewError(ret))

	b = &Backend{
		platform: p,
		gpu:      gpu,
		device:   device,
		families: families,
		info:     info,
		fences:   fencePool{device: device},
	}
	vk.GetPhysicalDeviceMemoryProperties(gpu, &b.memProps)
	b.memProps.Deref()

	for t := dieselrt.QueueCopy; int(t) < queueTypes; t++ {
		family := families.Family(t)
		var queue vk.Queue
		vk.GetDeviceQueue(device, family, 0, &queue)
		b.queues[t] = queue
		m, err := newCommandBufferManager(device, family)
		orPanic(err, b.Destroy)
		b.commands[t] = m
	}
	return b, nil
}

func (b *Backend) logf(isError bool, format string, args ...any) {
	b.platform.logf(isError, format, args...)
}

func (b *Backend) CreateCommandList(t dieselrt.QueueType) (dieselrt.CommandList, error) {
	cmd, err := b.commands[t].get()
	if err != nil {
		return nil, err
	}
	l := &commandList{b: b, queue: t, cmd: cmd}
	b.releases.begin(l)
	return l, nil
}

// ExecuteCommandList submits list on queue t. The submission signals one
// semaphore per other queue so that QueueWaitForCommandList can chain it.
func (b *Backend) ExecuteCommandList(list dieselrt.CommandList, t dieselrt.QueueType) uint64 {
	l := list.(*commandList)
	id := b.submit(l, t)
	b.releases.end(l, id)
	return id
}

// abandon returns a list that will never be executed.
func (b *Backend) abandon(l *commandList) {
	b.releases.end(l, 0)
	b.recycle(&submission{queue: l.queue, list: l})
}

func (b *Backend) submit(l *commandList, t dieselrt.QueueType) uint64 {
	if l.ops == 0 {
		b.recycle(&submission{queue: t, list: l})
		return 0
	}

	s := &submission{queue: t, list: l}
	fence, err := b.fences.get()
	if err != nil {
		b.logf(true, "submit %s: %v", t, err)
		b.recycle(s)
		return 0
	}
	s.fence = fence

	var signals []vk.Semaphore
	for q := range s.signals {
		if q == int(t) {
			continue
		}
		var sem vk.Semaphore
		ret := vk.CreateSemaphore(b.device, &vk.SemaphoreCreateInfo{
			SType: vk.StructureTypeSemaphoreCreateInfo,
		}, nil, &sem)
		if isError(ret) {
			b.logf(true, "submit %s: %v", t, NewError(ret))
			continue
		}
		s.signals[q] = sem
		signals = append(signals, sem)
	}

	s.waited = b.waits[t]
	b.waits[t] = nil
	stages := make([]vk.PipelineStageFlags, len(s.waited))
	for i := range stages {
		stages[i] = vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit)
	}

	ret := vk.QueueSubmit(b.queues[t], 1, []vk.SubmitInfo{{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   uint32(len(s.waited)),
		PWaitSemaphores:      s.waited,
		PWaitDstStageMask:    stages,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{l.cmd},
		SignalSemaphoreCount: uint32(len(signals)),
		PSignalSemaphores:    signals,
	}}, fence)
	if isError(ret) {
		b.logf(true, "submit %s: %v", t, NewError(ret))
		// Nothing was queued: the device must be idle before reclaiming.
		vk.DeviceWaitIdle(b.device)
		b.recycle(s)
		return 0
	}

	b.nextID++
	s.id = b.nextID
	b.inFlight = append(b.inFlight, s)
	return s.id
}

// QueueWaitForCommandList makes the next submission on consumer wait for
// submission id. Completed submissions need no wait.
func (b *Backend) QueueWaitForCommandList(consumer, producer dieselrt.QueueType, id uint64) {
	for _, s := range b.inFlight {
		if s.id != id || s.queue != producer {
			continue
		}
		if sem := s.signals[consumer]; sem != vk.NullSemaphore {
			b.waits[consumer] = append(b.waits[consumer], sem)
			s.signals[consumer] = vk.NullSemaphore
		}
		return
	}
}

func (b *Backend) deferRelease(fn func()) {
	b.releases.add(b.nextID, fn)
}

// RunGarbageCollection reclaims completed submissions and releases objects
// no earlier submission can still reference.
func (b *Backend) RunGarbageCollection() {
	pending := b.inFlight[:0]
	for _, s := range b.inFlight {
		if vk.GetFenceStatus(b.device, s.fence) == vk.Success {
			b.recycle(s)
			continue
		}
		pending = append(pending, s)
	}
	clear(b.inFlight[len(pending):])
	b.inFlight = pending

	completed := b.nextID
	if len(b.inFlight) > 0 {
		completed = b.inFlight[0].id - 1
	}
	b.releases.collect(completed)
}

func (b *Backend) recycle(s *submission) {
	for _, st := range s.list.staging {
		st.destroy()
	}
	s.list.staging = nil
	b.commands[s.queue].put(s.list.cmd)
	if s.fence != vk.NullFence {
		b.fences.put(s.fence)
	}
	for _, sem := range s.signals {
		if sem != vk.NullSemaphore {
			vk.DestroySemaphore(b.device, sem, nil)
		}
	}
	for _, sem := range s.waited {
		vk.DestroySemaphore(b.device, sem, nil)
	}
}

func (b *Backend) WaitForIdle() error {
	return NewError(vk.DeviceWaitIdle(b.device))
}

// immediate records fn into a one-off graphics command buffer and waits for it.
func (b *Backend) immediate(fn func(cmd vk.CommandBuffer)) error {
	cmds := b.commands[dieselrt.QueueGraphics]
	cmd, err := cmds.get()
	if err != nil {
		return err
	}
	defer cmds.put(cmd)

	ret := vk.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	})
	if isError(ret) {
		return NewError(ret)
	}
	fn(cmd)
	if ret := vk.EndCommandBuffer(cmd); isError(ret) {
		return NewError(ret)
	}

	fence, err := b.fences.get()
	if err != nil {
		return err
	}
	defer b.fences.put(fence)
	ret = vk.QueueSubmit(b.queues[dieselrt.QueueGraphics], 1, []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{cmd},
	}}, fence)
	if isError(ret) {
		return NewError(ret)
	}
	return NewError(vk.WaitForFences(b.device, 1, []vk.Fence{fence}, vk.True, vk.MaxUint64))
}

func (b *Backend) Info() string {
	return fmt.Sprintf("%s (%s, Vulkan %s, driver %#x, vendor %#04x device %#04x, %d MB) queues graphics=%d compute=%d transfer=%d",
		b.info.Name, b.info.Type, b.info.APIVersion, b.info.DriverVersion,
		b.info.VendorID, b.info.DeviceID, b.info.VRAMMB,
		b.families.Graphics, b.families.Compute, b.families.Transfer)
}

// Destroy waits for the device, releases everything still deferred and
// destroys the logical device.
func (b *Backend) Destroy() {
	if b.device == nil {
		return
	}
	vk.DeviceWaitIdle(b.device)
	for _, s := range b.inFlight {
		b.recycle(s)
	}
	b.inFlight = nil
	b.releases.releaseAll()
	for q := range b.waits {
		for _, sem := range b.waits[q] {
			vk.DestroySemaphore(b.device, sem, nil)
		}
		b.waits[q] = nil
	}
	for _, m := range b.commands {
		if m != nil {
			m.destroy()
		}
	}
	b.fences.destroy()
	vk.DestroyDevice(b.device, nil)
	b.device = nil
}
