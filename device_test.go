package dieselrt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func suitableDevice(name string, typ DeviceType) PhysicalDeviceInfo {
	return PhysicalDeviceInfo{
		Name:          name,
		Type:          typ,
		APIVersion:    MakeVersion(1, 3, 250),
		Extensions:    []string{SwapchainExtension},
		VRAMMB:        4096,
		QueueFamilies: []QueueFlags{gct},
	}
}

func TestVersionPacking(t *testing.T) {
	v := MakeVersion(1, 3, 250)
	require.Equal(t, uint32(1), v.Major())
	require.Equal(t, uint32(3), v.Minor())
	require.Equal(t, uint32(250), v.Patch())
	require.Equal(t, "1.3.250", v.String())
}

func TestResolveFeatures(t *testing.T) {
	f := ResolveFeatures(MakeVersion(1, 1, 0), []string{"VK_KHR_timeline_semaphore", "VK_EXT_memory_budget"})
	require.Equal(t, FeatureTimelineSemaphore|FeatureMemoryBudget, f)

	f = ResolveFeatures(MakeVersion(1, 2, 0), nil)
	require.NotZero(t, f&FeatureBufferDeviceAddress)
	require.NotZero(t, f&FeatureTimelineSemaphore)
	require.Zero(t, f&FeatureSynchronization2)
	require.Zero(t, f&FeatureMemoryBudget)
}

func TestRateDeviceSuitability(t *testing.T) {
	t.Run("modern device", func(t *testing.T) {
		require.True(t, RateDevice(suitableDevice("gpu", DeviceTypeDiscreteGPU)).Suitable)
	})

	t.Run("api 1.1 with extensions", func(t *testing.T) {
		d := suitableDevice("gpu", DeviceTypeDiscreteGPU)
		d.APIVersion = MakeVersion(1, 1, 0)
		d.Extensions = append(d.Extensions, "VK_KHR_timeline_semaphore", "VK_KHR_buffer_device_address")
		require.True(t, RateDevice(d).Suitable)
	})

	t.Run("api 1.1 missing buffer device address", func(t *testing.T) {
		d := suitableDevice("gpu", DeviceTypeDiscreteGPU)
		d.APIVersion = MakeVersion(1, 1, 0)
		d.Extensions = append(d.Extensions, "VK_KHR_timeline_semaphore")
		require.False(t, RateDevice(d).Suitable)
	})

	t.Run("no swapchain", func(t *testing.T) {
		d := suitableDevice("gpu", DeviceTypeDiscreteGPU)
		d.Extensions = nil
		require.False(t, RateDevice(d).Suitable)
	})

	t.Run("api 1.0", func(t *testing.T) {
		d := suitableDevice("gpu", DeviceTypeDiscreteGPU)
		d.APIVersion = MakeVersion(1, 0, 0)
		d.Features = FeatureTimelineSemaphore | FeatureBufferDeviceAddress
		require.False(t, RateDevice(d).Suitable)
	})
}

func TestRateDeviceMicroScore(t *testing.T) {
	d := PhysicalDeviceInfo{
		APIVersion: MakeVersion(1, 2, 3),
		VRAMMB:     65536,
		Limits: DeviceLimits{
			MaxImageDimension2D:            16384,
			MaxPerStageDescriptorSamplers:  1 << 20,
			MaxComputeWorkGroupInvocations: 1024,
		},
	}
	// 1.2 core: timeline, bda, descriptor indexing, float16.
	want := uint64(1_000_000+2*10_000+3*100) + 4*50_000 + 32768 + 16384/16 + 4096/4 + 1024/8
	require.Equal(t, want, RateDevice(d).MicroScore)
}

func TestRankDevicesByClass(t *testing.T) {
	devices := []PhysicalDeviceInfo{
		suitableDevice("other", DeviceTypeOther),
		suitableDevice("virtual", DeviceTypeVirtualGPU),
		suitableDevice("integrated", DeviceTypeIntegratedGPU),
		suitableDevice("discrete", DeviceTypeDiscreteGPU),
		suitableDevice("cpu", DeviceTypeCPU),
	}

	ranked := RankDevices(devices)
	require.Len(t, ranked, len(devices))
	require.Equal(t, "discrete", ranked[0].Name)
	require.Equal(t, "integrated", ranked[1].Name)
	require.Equal(t, "virtual", ranked[2].Name)
	// other and cpu share class 0 and tie down to the name.
	require.Equal(t, "cpu", ranked[3].Name)
	require.Equal(t, "other", ranked[4].Name)
}

func TestRankDevicesOldAPIIsLast(t *testing.T) {
	old := suitableDevice("old discrete", DeviceTypeDiscreteGPU)
	old.APIVersion = MakeVersion(1, 0, 61)
	old.VRAMMB = 32768

	ranked := RankDevices([]PhysicalDeviceInfo{old, suitableDevice("virtual", DeviceTypeVirtualGPU)})
	require.Equal(t, "virtual", ranked[0].Name)
	require.False(t, ranked[1].Suitable)
}

func TestRankDevicesTieBreaks(t *testing.T) {
	t.Run("higher score first", func(t *testing.T) {
		a := suitableDevice("a", DeviceTypeDiscreteGPU)
		b := suitableDevice("b", DeviceTypeDiscreteGPU)
		b.VRAMMB = 8192
		ranked := RankDevices([]PhysicalDeviceInfo{a, b})
		require.Equal(t, "b", ranked[0].Name)
	})

	t.Run("lower pci address first", func(t *testing.T) {
		a := suitableDevice("same", DeviceTypeDiscreteGPU)
		a.HasPCI, a.PCIBus = true, 3
		b := suitableDevice("same", DeviceTypeDiscreteGPU)
		b.HasPCI, b.PCIBus, b.PCIDevice = true, 1, 7
		ranked := RankDevices([]PhysicalDeviceInfo{a, b})
		require.Equal(t, 1, ranked[0].Index)
	})

	t.Run("uuid then name", func(t *testing.T) {
		a := suitableDevice("zeta", DeviceTypeDiscreteGPU)
		a.UUID[0] = 1
		b := suitableDevice("alpha", DeviceTypeDiscreteGPU)
		b.UUID[0] = 2
		c := suitableDevice("beta", DeviceTypeDiscreteGPU)
		c.UUID[0] = 2
		ranked := RankDevices([]PhysicalDeviceInfo{c, b, a})
		require.Equal(t, []string{"zeta", "alpha", "beta"}, []string{ranked[0].Name, ranked[1].Name, ranked[2].Name})
	})

	t.Run("deterministic across input order", func(t *testing.T) {
		devs := []PhysicalDeviceInfo{
			suitableDevice("b", DeviceTypeIntegratedGPU),
			suitableDevice("a", DeviceTypeIntegratedGPU),
			suitableDevice("c", DeviceTypeDiscreteGPU),
		}
		rev := []PhysicalDeviceInfo{devs[2], devs[1], devs[0]}
		names := func(s []DeviceScore) []string {
			out := make([]string, len(s))
			for i := range s {
				out[i] = s[i].Name
			}
			return out
		}
		require.Equal(t, names(RankDevices(devs)), names(RankDevices(rev)))
	})
}

func TestSelectDevice(t *testing.T) {
	devices := []PhysicalDeviceInfo{
		suitableDevice("integrated", DeviceTypeIntegratedGPU),
		suitableDevice("discrete", DeviceTypeDiscreteGPU),
	}

	idx, err := SelectDevice(devices, -1)
	require.NoError(t, err)
	require.Equal(t, 1, idx)

	idx, err = SelectDevice(devices, 0)
	require.NoError(t, err)
	require.Equal(t, 0, idx, "explicit index bypasses ranking")

	_, err = SelectDevice(devices, 5)
	require.ErrorIs(t, err, ErrDeviceIndexOutOfRange)

	unsuitable := suitableDevice("old", DeviceTypeDiscreteGPU)
	unsuitable.APIVersion = MakeVersion(1, 0, 0)
	_, err = SelectDevice([]PhysicalDeviceInfo{unsuitable}, -1)
	require.ErrorIs(t, err, ErrNoSuitableDevice)

	_, err = SelectDevice(nil, -1)
	require.ErrorIs(t, err, ErrNoSuitableDevice)
}
