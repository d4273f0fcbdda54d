package vkbackend

import (
	"fmt"

	"github.com/andewx/dieselrt"
	vk "github.com/vulkan-go/vulkan"
)

// buffer is a device buffer with its own allocation.
type buffer struct {
	b      *Backend
	desc   dieselrt.BufferDesc
	buffer vk.Buffer
	memory vk.DeviceMemory
}

func (b *buffer) Desc() dieselrt.BufferDesc { return b.desc }

// Release destroys the buffer once every submission recorded so far is done.
func (b *buffer) Release() {
	b.b.deferRelease(b.destroy)
}

func (b *buffer) destroy() {
	vk.DestroyBuffer(b.b.device, b.buffer, nil)
	vk.FreeMemory(b.b.device, b.memory, nil)
}

func (b *Backend) newBuffer(size uint64, usage vk.BufferUsageFlags, memFlags vk.MemoryPropertyFlagBits) (buf *buffer, err error) {
	defer checkErr(&err)

	families := b.families.Unique()
	info := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}
	if len(families) > 1 {
		info.SharingMode = vk.SharingModeConcurrent
		info.QueueFamilyIndexCount = uint32(len(families))
		info.PQueueFamilyIndices = families
	}

	var handle vk.Buffer
	orPanic(NewError(vk.CreateBuffer(b.device, &info, nil, &handle)))

	var reqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(b.device, handle, &reqs)
	reqs.Deref()
	memory, err := b.allocate(reqs, memFlags)
	orPanic(err, func() { vk.DestroyBuffer(b.device, handle, nil) })
	orPanic(NewError(vk.BindBufferMemory(b.device, handle, memory, 0)), func() {
		vk.DestroyBuffer(b.device, handle, nil)
		vk.FreeMemory(b.device, memory, nil)
	})
	return &buffer{b: b, buffer: handle, memory: memory}, nil
}

// newStaging creates a host-visible transfer source holding data.
func (b *Backend) newStaging(data []byte) (*buffer, error) {
	buf, err := b.newBuffer(uint64(len(data)), vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if err != nil {
		return nil, fmt.Errorf("staging buffer: %w", err)
	}
	if err := b.upload(buf.memory, data); err != nil {
		buf.destroy()
		return nil, fmt.Errorf("staging buffer: %w", err)
	}
	buf.desc = dieselrt.BufferDesc{Size: uint64(len(data)), Name: "staging"}
	return buf, nil
}

func (b *Backend) CreateBuffer(desc dieselrt.BufferDesc) (dieselrt.Buffer, error) {
	buf, err := b.newBuffer(desc.Size, bufferUsage(desc.Usage), vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		return nil, err
	}
	buf.desc = desc
	return buf, nil
}

// texture lives in the general layout from creation on, so any queue can
// use it without ownership or layout transitions.
type texture struct {
	b      *Backend
	desc   dieselrt.TextureDesc
	image  vk.Image
	memory vk.DeviceMemory
	aspect vk.ImageAspectFlags
}

func (t *texture) Desc() dieselrt.TextureDesc { return t.desc }

func (t *texture) Release() {
	t.b.deferRelease(t.destroy)
}

func (t *texture) destroy() {
	vk.DestroyImage(t.b.device, t.image, nil)
	vk.FreeMemory(t.b.device, t.memory, nil)
}

func (t *texture) subresourceRange() vk.ImageSubresourceRange {
	return vk.ImageSubresourceRange{
		AspectMask:     t.aspect,
		BaseMipLevel:   0,
		LevelCount:     uint32(t.desc.MipLevels),
		BaseArrayLayer: 0,
		LayerCount:     uint32(t.desc.Layers),
	}
}

func (b *Backend) CreateTexture(desc dieselrt.TextureDesc) (tex dieselrt.Texture, err error) {
	defer checkErr(&err)

	format, ok := vkFormat(desc.Format, desc.Flags)
	if !ok {
		return nil, fmt.Errorf("%w: no vulkan format for %d", dieselrt.ErrInvalidTexture, desc.Format)
	}

	families := b.families.Unique()
	info := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    format,
		Extent: vk.Extent3D{
			Width:  uint32(desc.Width),
			Height: uint32(desc.Height),
			Depth:  1,
		},
		MipLevels:     uint32(desc.MipLevels),
		ArrayLayers:   uint32(desc.Layers),
		Samples:       sampleCount(desc),
		Tiling:        vk.ImageTilingOptimal,
		Usage:         imageUsage(desc),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}
	if len(families) > 1 {
		info.SharingMode = vk.SharingModeConcurrent
		info.QueueFamilyIndexCount = uint32(len(families))
		info.PQueueFamilyIndices = families
	}

	var image vk.Image
	orPanic(NewError(vk.CreateImage(b.device, &info, nil, &image)))

	var reqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(b.device, image, &reqs)
	reqs.Deref()
	memory, err := b.allocate(reqs, vk.MemoryPropertyDeviceLocalBit)
	orPanic(err, func() { vk.DestroyImage(b.device, image, nil) })
	t := &texture{b: b, desc: desc, image: image, memory: memory, aspect: aspectMask(desc.Format)}
	orPanic(NewError(vk.BindImageMemory(b.device, image, memory, 0)), t.destroy)

	orPanic(b.immediate(func(cmd vk.CommandBuffer) {
		vk.CmdPipelineBarrier(cmd,
			vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
			vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit),
			0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{{
				SType:               vk.StructureTypeImageMemoryBarrier,
				DstAccessMask:       vk.AccessFlags(vk.AccessMemoryReadBit | vk.AccessMemoryWriteBit),
				OldLayout:           vk.ImageLayoutUndefined,
				NewLayout:           vk.ImageLayoutGeneral,
				SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
				DstQueueFamilyIndex: vk.QueueFamilyIgnored,
				Image:               image,
				SubresourceRange:    t.subresourceRange(),
			}})
	}), t.destroy)
	return t, nil
}
