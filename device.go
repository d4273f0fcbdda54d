package dieselrt

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
)

// Version is a packed Vulkan API version.
type Version uint32

func MakeVersion(major, minor, patch uint32) Version {
	return Version(major<<22 | minor<<12 | patch)
}

func (v Version) Major() uint32 { return uint32(v>>22) & 0x7f }
func (v Version) Minor() uint32 { return uint32(v>>12) & 0x3ff }
func (v Version) Patch() uint32 { return uint32(v) & 0xfff }

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch())
}

// DeviceType follows VkPhysicalDeviceType.
type DeviceType uint32

const (
	DeviceTypeOther DeviceType = iota
	DeviceTypeIntegratedGPU
	DeviceTypeDiscreteGPU
	DeviceTypeVirtualGPU
	DeviceTypeCPU
)

func (t DeviceType) String() string {
	switch t {
	case DeviceTypeIntegratedGPU:
		return "integrated"
	case DeviceTypeDiscreteGPU:
		return "discrete"
	case DeviceTypeVirtualGPU:
		return "virtual"
	case DeviceTypeCPU:
		return "cpu"
	default:
		return "other"
	}
}

// class orders device types for ranking: discrete 3, integrated 2, virtual 1, rest 0.
func (t DeviceType) class() int {
	switch t {
	case DeviceTypeDiscreteGPU:
		return 3
	case DeviceTypeIntegratedGPU:
		return 2
	case DeviceTypeVirtualGPU:
		return 1
	default:
		return 0
	}
}

// DeviceFeatures is the checklist of modern capabilities that feed the score.
type DeviceFeatures uint32

const (
	FeatureSynchronization2 DeviceFeatures = 1 << iota
	FeatureDynamicRendering
	FeatureTimelineSemaphore
	FeatureBufferDeviceAddress
	FeatureDescriptorIndexing
	FeatureMemoryBudget
	FeatureMaintenance4
	FeatureShaderFloat16

	featureCount = iota
)

const SwapchainExtension = "VK_KHR_swapchain"

// featurePromotion lists the extension providing each feature and the API
// version where it became core. A zero version means extension only.
var featurePromotion = []struct {
	feature   DeviceFeatures
	extension string
	core      Version
}{
	{FeatureSynchronization2, "VK_KHR_synchronization2", MakeVersion(1, 3, 0)},
	{FeatureDynamicRendering, "VK_KHR_dynamic_rendering", MakeVersion(1, 3, 0)},
	{FeatureTimelineSemaphore, "VK_KHR_timeline_semaphore", MakeVersion(1, 2, 0)},
	{FeatureBufferDeviceAddress, "VK_KHR_buffer_device_address", MakeVersion(1, 2, 0)},
	{FeatureDescriptorIndexing, "VK_EXT_descriptor_indexing", MakeVersion(1, 2, 0)},
	{FeatureMemoryBudget, "VK_EXT_memory_budget", 0},
	{FeatureShaderFloat16, "VK_KHR_shader_float16_int8", MakeVersion(1, 2, 0)},
	{FeatureMaintenance4, "VK_KHR_maintenance4", MakeVersion(1, 3, 0)},
}

// ResolveFeatures derives the feature set available either as core features of
// api or through one of the extensions.
func ResolveFeatures(api Version, extensions []string) DeviceFeatures {
	var f DeviceFeatures
	for _, p := range featurePromotion {
		if p.core != 0 && api >= p.core {
			f |= p.feature
			continue
		}
		if slices.Contains(extensions, p.extension) {
			f |= p.feature
		}
	}
	return f
}

// DeviceLimits carries the three limits that contribute to the score.
type DeviceLimits struct {
	MaxImageDimension2D            uint32
	MaxPerStageDescriptorSamplers  uint32
	MaxComputeWorkGroupInvocations uint32
}

// PhysicalDeviceInfo is everything probed from one candidate GPU.
type PhysicalDeviceInfo struct {
	Index         int
	Name          string
	Type          DeviceType
	APIVersion    Version
	DriverVersion uint32
	VendorID      uint32
	DeviceID      uint32
	Extensions    []string
	Features      DeviceFeatures
	VRAMMB        uint64
	Limits        DeviceLimits
	QueueFamilies []QueueFlags

	HasPCI      bool
	PCIBus      uint32
	PCIDevice   uint32
	PCIFunction uint32
	UUID        [16]byte
}

func (d PhysicalDeviceInfo) HasExtension(name string) bool {
	return slices.Contains(d.Extensions, name)
}

// AllFeatures merges explicitly probed features with those implied by the
// API version and extension list.
func (d PhysicalDeviceInfo) AllFeatures() DeviceFeatures {
	return d.Features | ResolveFeatures(d.APIVersion, d.Extensions)
}

// DeviceScore is the ranking record computed once per candidate.
type DeviceScore struct {
	Index      int
	Suitable   bool
	Class      int
	MicroScore uint64

	HasPCI      bool
	PCIBus      uint32
	PCIDevice   uint32
	PCIFunction uint32
	UUID        [16]byte
	Name        string
}

func (s DeviceScore) String() string {
	return fmt.Sprintf("#%d %q suitable=%t class=%d score=%d", s.Index, s.Name, s.Suitable, s.Class, s.MicroScore)
}

// RateDevice computes the score of one candidate.
func RateDevice(d PhysicalDeviceInfo) DeviceScore {
	features := d.AllFeatures()
	s := DeviceScore{
		Index:       d.Index,
		Class:       d.Type.class(),
		HasPCI:      d.HasPCI,
		PCIBus:      d.PCIBus,
		PCIDevice:   d.PCIDevice,
		PCIFunction: d.PCIFunction,
		UUID:        d.UUID,
		Name:        d.Name,
	}

	s.Suitable = d.APIVersion >= MakeVersion(1, 1, 0) &&
		d.HasExtension(SwapchainExtension) &&
		features&FeatureTimelineSemaphore != 0 &&
		features&FeatureBufferDeviceAddress != 0

	micro := uint64(d.APIVersion.Major())*1_000_000 +
		uint64(d.APIVersion.Minor())*10_000 +
		uint64(d.APIVersion.Patch())*100
	for i := 0; i < featureCount; i++ {
		if features&(1<<i) != 0 {
			micro += 50_000
		}
	}
	micro += min(d.VRAMMB, 32768)
	micro += uint64(min(d.Limits.MaxImageDimension2D, 32768) / 16)
	micro += uint64(min(d.Limits.MaxPerStageDescriptorSamplers, 4096) / 4)
	micro += uint64(min(d.Limits.MaxComputeWorkGroupInvocations, 2048) / 8)
	s.MicroScore = micro
	return s
}

// compareScores orders a before b when it is the better candidate.
func compareScores(a, b DeviceScore) int {
	if a.Suitable != b.Suitable {
		if a.Suitable {
			return -1
		}
		return 1
	}
	if a.Class != b.Class {
		return b.Class - a.Class
	}
	if a.MicroScore != b.MicroScore {
		if a.MicroScore > b.MicroScore {
			return -1
		}
		return 1
	}
	if a.HasPCI && b.HasPCI {
		for _, p := range [][2]uint32{
			{a.PCIBus, b.PCIBus},
			{a.PCIDevice, b.PCIDevice},
			{a.PCIFunction, b.PCIFunction},
		} {
			if p[0] != p[1] {
				if p[0] < p[1] {
					return -1
				}
				return 1
			}
		}
	}
	if c := bytes.Compare(a.UUID[:], b.UUID[:]); c != 0 {
		return c
	}
	return strings.Compare(a.Name, b.Name)
}

// RankDevices rates every candidate and returns the scores best first.
func RankDevices(devices []PhysicalDeviceInfo) []DeviceScore {
	scores := make([]DeviceScore, 0, len(devices))
	for i, d := range devices {
		d.Index = i
		scores = append(scores, RateDevice(d))
	}
	slices.SortStableFunc(scores, compareScores)
	return scores
}

// SelectDevice returns the index of the device to open. An explicit index
// (>= 0) bypasses ranking. Otherwise the best suitable candidate wins.
func SelectDevice(devices []PhysicalDeviceInfo, explicit int) (int, error) {
	if explicit >= 0 {
		if explicit >= len(devices) {
			return -1, fmt.Errorf("%w: %d of %d", ErrDeviceIndexOutOfRange, explicit, len(devices))
		}
		return explicit, nil
	}
	ranked := RankDevices(devices)
	if len(ranked) == 0 || !ranked[0].Suitable {
		return -1, fmt.Errorf("%w (%d candidates)", ErrNoSuitableDevice, len(devices))
	}
	return ranked[0].Index, nil
}
