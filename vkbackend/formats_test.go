package vkbackend

import (
	"testing"

	"github.com/andewx/dieselrt"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestVkFormat(t *testing.T) {
	tests := []struct {
		format dieselrt.TextureFormat
		flags  dieselrt.TextureFlags
		want   vk.Format
	}{
		{dieselrt.FormatRGBA8, 0, vk.FormatR8g8b8a8Unorm},
		{dieselrt.FormatRGBA8, dieselrt.TextureSRGB, vk.FormatR8g8b8a8Srgb},
		{dieselrt.FormatBGRA8, dieselrt.TextureSRGB, vk.FormatB8g8r8a8Srgb},
		{dieselrt.FormatR32F, dieselrt.TextureSRGB, vk.FormatR32Sfloat},
		{dieselrt.FormatD32F, 0, vk.FormatD32Sfloat},
	}
	for _, tt := range tests {
		got, ok := vkFormat(tt.format, tt.flags)
		require.True(t, ok)
		require.Equal(t, tt.want, got)
	}

	_, ok := vkFormat(dieselrt.FormatUnknown, 0)
	require.False(t, ok)
}

func TestImageUsage(t *testing.T) {
	color := imageUsage(dieselrt.TextureDesc{Format: dieselrt.FormatRGBA8, Flags: dieselrt.TextureRT | dieselrt.TextureComputeWrite})
	require.NotZero(t, color&vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit))
	require.NotZero(t, color&vk.ImageUsageFlags(vk.ImageUsageStorageBit))
	require.Zero(t, color&vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit))

	depth := imageUsage(dieselrt.TextureDesc{Format: dieselrt.FormatD32F, Flags: dieselrt.TextureRT})
	require.NotZero(t, depth&vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit))

	plain := imageUsage(dieselrt.TextureDesc{Format: dieselrt.FormatR8})
	require.NotZero(t, plain&vk.ImageUsageFlags(vk.ImageUsageTransferDstBit))
	require.NotZero(t, plain&vk.ImageUsageFlags(vk.ImageUsageSampledBit))
}

func TestSampleCount(t *testing.T) {
	require.Equal(t, vk.SampleCount1Bit, sampleCount(dieselrt.TextureDesc{}))
	require.Equal(t, vk.SampleCount4Bit, sampleCount(dieselrt.TextureDesc{Flags: dieselrt.TextureRTMSAAX4}))
	require.Equal(t, vk.SampleCount16Bit, sampleCount(dieselrt.TextureDesc{Flags: dieselrt.TextureRTMSAAX16}))
}

func TestBufferUsage(t *testing.T) {
	u := bufferUsage(dieselrt.BufferVertex | dieselrt.BufferComputeWrite)
	require.NotZero(t, u&vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit))
	require.NotZero(t, u&vk.BufferUsageFlags(vk.BufferUsageStorageBufferBit))
	require.NotZero(t, u&vk.BufferUsageFlags(vk.BufferUsageTransferDstBit))
	require.Zero(t, u&vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit))
}

func TestQueueFlagsShareBitValues(t *testing.T) {
	f := queueFlags(vk.QueueFlags(vk.QueueGraphicsBit | vk.QueueComputeBit | vk.QueueTransferBit))
	require.Equal(t, dieselrt.QueueGraphicsBit|dieselrt.QueueComputeBit|dieselrt.QueueTransferBit, f)
	require.Equal(t, dieselrt.QueueSparseBindingBit, queueFlags(vk.QueueFlags(vk.QueueSparseBindingBit)))
	require.Zero(t, queueFlags(vk.QueueFlags(1<<8)))
}

func TestDeviceType(t *testing.T) {
	require.Equal(t, dieselrt.DeviceTypeDiscreteGPU, deviceType(vk.PhysicalDeviceTypeDiscreteGpu))
	require.Equal(t, dieselrt.DeviceTypeCPU, deviceType(vk.PhysicalDeviceTypeCpu))
	require.Equal(t, dieselrt.DeviceTypeOther, deviceType(vk.PhysicalDeviceTypeOther))
}

func TestCheckExisting(t *testing.T) {
	got, missing := checkExisting(
		[]string{"VK_KHR_surface", "VK_KHR_xcb_surface", "VK_EXT_debug_report"},
		[]string{"VK_KHR_surface\x00", "VK_EXT_debug_report", "VK_KHR_win32_surface"},
	)
	require.Equal(t, []string{"VK_KHR_surface\x00", "VK_EXT_debug_report\x00"}, got)
	require.Equal(t, 1, missing)
	require.Equal(t, []string{"a\x00", "b\x00"}, safeStrings([]string{"a", "b\x00"}))
}

func TestFindMemoryType(t *testing.T) {
	var props vk.PhysicalDeviceMemoryProperties
	props.MemoryTypeCount = 3
	props.MemoryTypes[0].PropertyFlags = vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
	props.MemoryTypes[1].PropertyFlags = vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)
	props.MemoryTypes[2].PropertyFlags = vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)

	i, ok := findMemoryType(props, 0b111, vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	require.True(t, ok)
	require.Equal(t, uint32(2), i)

	_, ok = findMemoryType(props, 0b011, vk.MemoryPropertyHostCoherentBit)
	require.False(t, ok)

	i, ok = findMemoryTypeFallback(props, 0b010, vk.MemoryPropertyDeviceLocalBit)
	require.True(t, ok)
	require.Equal(t, uint32(1), i)
}

func TestMemoryTypeForStaging(t *testing.T) {
	var props vk.PhysicalDeviceMemoryProperties
	props.MemoryTypeCount = 2
	props.MemoryTypes[0].PropertyFlags = vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
	props.MemoryTypes[1].PropertyFlags = vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)

	staging := vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit
	_, ok := memoryTypeFor(props, 0b01, staging)
	require.False(t, ok, "mapped allocations never land in device-only memory")

	i, ok := memoryTypeFor(props, 0b11, staging)
	require.True(t, ok)
	require.Equal(t, uint32(1), i)

	i, ok = memoryTypeFor(props, 0b10, vk.MemoryPropertyDeviceLocalBit)
	require.True(t, ok, "device-local requests may fall back")
	require.Equal(t, uint32(1), i)
}

func TestEnumerate(t *testing.T) {
	avail := []string{"VK_KHR_surface", "VK_KHR_xcb_surface", "VK_EXT_debug_report"}
	calls := 0
	query := func(count *uint32, out []string) vk.Result {
		calls++
		if out == nil {
			*count = uint32(len(avail))
			return vk.Success
		}
		*count = uint32(copy(out, avail))
		return vk.Success
	}
	names, err := enumerate(query, func(s *string) string { return *s })
	require.NoError(t, err)
	require.Equal(t, avail, names)
	require.Equal(t, 2, calls)

	_, err = enumerate(func(*uint32, []string) vk.Result { return vk.ErrorInitializationFailed },
		func(s *string) string { return *s })
	require.Error(t, err)
}
