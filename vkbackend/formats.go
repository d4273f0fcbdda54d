package vkbackend

import (
	"github.com/andewx/dieselrt"
	vk "github.com/vulkan-go/vulkan"
)

var textureFormats = map[dieselrt.TextureFormat]vk.Format{
	dieselrt.FormatR8:      vk.FormatR8Unorm,
	dieselrt.FormatRG8:     vk.FormatR8g8Unorm,
	dieselrt.FormatRGBA8:   vk.FormatR8g8b8a8Unorm,
	dieselrt.FormatBGRA8:   vk.FormatB8g8r8a8Unorm,
	dieselrt.FormatR16F:    vk.FormatR16Sfloat,
	dieselrt.FormatRGBA16F: vk.FormatR16g16b16a16Sfloat,
	dieselrt.FormatR32F:    vk.FormatR32Sfloat,
	dieselrt.FormatRGBA32F: vk.FormatR32g32b32a32Sfloat,
	dieselrt.FormatD24S8:   vk.FormatD24UnormS8Uint,
	dieselrt.FormatD32F:    vk.FormatD32Sfloat,
}

// vkFormat maps a texture format, honouring the sRGB flag for 8-bit color.
func vkFormat(f dieselrt.TextureFormat, flags dieselrt.TextureFlags) (vk.Format, bool) {
	format, ok := textureFormats[f]
	if !ok {
		return vk.FormatUndefined, false
	}
	if flags.Has(dieselrt.TextureSRGB) {
		switch f {
		case dieselrt.FormatRGBA8:
			format = vk.FormatR8g8b8a8Srgb
		case dieselrt.FormatBGRA8:
			format = vk.FormatB8g8r8a8Srgb
		}
	}
	return format, true
}

func aspectMask(f dieselrt.TextureFormat) vk.ImageAspectFlags {
	switch f {
	case dieselrt.FormatD24S8:
		return vk.ImageAspectFlags(vk.ImageAspectDepthBit | vk.ImageAspectStencilBit)
	case dieselrt.FormatD32F:
		return vk.ImageAspectFlags(vk.ImageAspectDepthBit)
	default:
		return vk.ImageAspectFlags(vk.ImageAspectColorBit)
	}
}

func imageUsage(desc dieselrt.TextureDesc) vk.ImageUsageFlags {
	usage := vk.ImageUsageTransferSrcBit | vk.ImageUsageTransferDstBit | vk.ImageUsageSampledBit
	if desc.Flags.IsRenderTarget() {
		if desc.Format.IsDepth() {
			usage |= vk.ImageUsageDepthStencilAttachmentBit
		} else {
			usage |= vk.ImageUsageColorAttachmentBit
		}
	}
	if desc.Flags.Has(dieselrt.TextureComputeWrite) {
		usage |= vk.ImageUsageStorageBit
	}
	return vk.ImageUsageFlags(usage)
}

func sampleCount(desc dieselrt.TextureDesc) vk.SampleCountFlagBits {
	switch desc.Flags.MSAASamples() {
	case 2:
		return vk.SampleCount2Bit
	case 4:
		return vk.SampleCount4Bit
	case 8:
		return vk.SampleCount8Bit
	case 16:
		return vk.SampleCount16Bit
	default:
		return vk.SampleCount1Bit
	}
}

func bufferUsage(u dieselrt.BufferUsage) vk.BufferUsageFlags {
	usage := vk.BufferUsageTransferSrcBit | vk.BufferUsageTransferDstBit
	if u&dieselrt.BufferVertex != 0 {
		usage |= vk.BufferUsageVertexBufferBit
	}
	if u&dieselrt.BufferIndex != 0 {
		usage |= vk.BufferUsageIndexBufferBit
	}
	if u&dieselrt.BufferUniform != 0 {
		usage |= vk.BufferUsageUniformBufferBit
	}
	if u&(dieselrt.BufferStorage|dieselrt.BufferComputeWrite) != 0 {
		usage |= vk.BufferUsageStorageBufferBit
	}
	return vk.BufferUsageFlags(usage)
}

var deviceTypes = map[vk.PhysicalDeviceType]dieselrt.DeviceType{
	vk.PhysicalDeviceTypeIntegratedGpu: dieselrt.DeviceTypeIntegratedGPU,
	vk.PhysicalDeviceTypeDiscreteGpu:   dieselrt.DeviceTypeDiscreteGPU,
	vk.PhysicalDeviceTypeVirtualGpu:    dieselrt.DeviceTypeVirtualGPU,
	vk.PhysicalDeviceTypeCpu:           dieselrt.DeviceTypeCPU,
}

func deviceType(t vk.PhysicalDeviceType) dieselrt.DeviceType {
	if dt, ok := deviceTypes[t]; ok {
		return dt
	}
	return dieselrt.DeviceTypeOther
}

// queueFlags keeps the capability bits dieselrt knows about. They share
// their values with VkQueueFlagBits.
func queueFlags(f vk.QueueFlags) dieselrt.QueueFlags {
	const known = dieselrt.QueueGraphicsBit | dieselrt.QueueComputeBit | dieselrt.QueueTransferBit |
		dieselrt.QueueSparseBindingBit | dieselrt.QueueProtectedBit
	return dieselrt.QueueFlags(f) & known
}
