package vkbackend

import (
	"errors"

	"github.com/andewx/dieselrt"
	vk "github.com/vulkan-go/vulkan"
)

var errListState = errors.New("vkbackend: command list in wrong state")

// commandList wraps one primary command buffer. Upload staging buffers are
// owned by the list until its submission completes.
type commandList struct {
	b       *Backend
	queue   dieselrt.QueueType
	cmd     vk.CommandBuffer
	open    bool
	ops     int
	staging []*buffer
}

func (l *commandList) Open() error {
	if l.open {
		return errListState
	}
	ret := vk.BeginCommandBuffer(l.cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	})
	if isError(ret) {
		l.b.abandon(l)
		return NewError(ret)
	}
	l.open = true
	return nil
}

func (l *commandList) Close() error {
	if !l.open {
		return errListState
	}
	l.open = false
	return NewError(vk.EndCommandBuffer(l.cmd))
}

// barrier orders the next transfer after everything recorded before it.
func (l *commandList) barrier() {
	vk.CmdPipelineBarrier(l.cmd,
		vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit),
		vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		0, 1, []vk.MemoryBarrier{{
			SType:         vk.StructureTypeMemoryBarrier,
			SrcAccessMask: vk.AccessFlags(vk.AccessMemoryWriteBit),
			DstAccessMask: vk.AccessFlags(vk.AccessTransferReadBit | vk.AccessTransferWriteBit),
		}}, 0, nil, 0, nil)
}

func (l *commandList) stage(data []byte) *buffer {
	staging, err := l.b.newStaging(data)
	if err != nil {
		l.b.logf(true, "%s list: %v", l.queue, err)
		return nil
	}
	l.staging = append(l.staging, staging)
	return staging
}

func (l *commandList) WriteBuffer(dst dieselrt.Buffer, offset uint64, data []byte) {
	buf := dst.(*buffer)
	staging := l.stage(data)
	if staging == nil {
		return
	}
	l.barrier()
	vk.CmdCopyBuffer(l.cmd, staging.buffer, buf.buffer, 1, []vk.BufferCopy{{
		SrcOffset: 0,
		DstOffset: vk.DeviceSize(offset),
		Size:      vk.DeviceSize(len(data)),
	}})
	l.ops++
}

func (l *commandList) WriteTexture(dst dieselrt.Texture, mip, layer uint32, data []byte) {
	tex := dst.(*texture)
	if tex.desc.Format == dieselrt.FormatD24S8 || tex.desc.Flags.MSAASamples() > 1 {
		l.b.logf(true, "texture %q: uploads to packed depth-stencil or multisampled images are not supported", tex.desc.Name)
		return
	}
	staging := l.stage(data)
	if staging == nil {
		return
	}
	l.barrier()
	vk.CmdCopyBufferToImage(l.cmd, staging.buffer, tex.image, vk.ImageLayoutGeneral, 1, []vk.BufferImageCopy{{
		BufferOffset: 0,
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask:     tex.aspect,
			MipLevel:       mip,
			BaseArrayLayer: layer,
			LayerCount:     1,
		},
		ImageExtent: vk.Extent3D{
			Width:  max(uint32(tex.desc.Width)>>mip, 1),
			Height: max(uint32(tex.desc.Height)>>mip, 1),
			Depth:  1,
		},
	}})
	l.ops++
}

func (l *commandList) FillBuffer(dst dieselrt.Buffer, value uint32) {
	buf := dst.(*buffer)
	l.barrier()
	vk.CmdFillBuffer(l.cmd, buf.buffer, 0, vk.DeviceSize(vk.WholeSize), value)
	l.ops++
}

// BlitTexture scales every mip 0 layer of src onto dst.
func (l *commandList) BlitTexture(dst, src dieselrt.Texture) {
	d, s := dst.(*texture), src.(*texture)
	layers := uint32(min(d.desc.Layers, s.desc.Layers))
	filter := vk.FilterLinear
	if d.desc.Format.IsDepth() {
		filter = vk.FilterNearest
	}
	l.barrier()
	vk.CmdBlitImage(l.cmd, s.image, vk.ImageLayoutGeneral, d.image, vk.ImageLayoutGeneral, 1, []vk.ImageBlit{{
		SrcSubresource: vk.ImageSubresourceLayers{AspectMask: s.aspect, LayerCount: layers},
		SrcOffsets:     [2]vk.Offset3D{{}, {X: s.desc.Width, Y: s.desc.Height, Z: 1}},
		DstSubresource: vk.ImageSubresourceLayers{AspectMask: d.aspect, LayerCount: layers},
		DstOffsets:     [2]vk.Offset3D{{}, {X: d.desc.Width, Y: d.desc.Height, Z: 1}},
	}}, filter)
	l.ops++
}
