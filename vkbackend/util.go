package vkbackend

import (
	"strings"

	vk "github.com/vulkan-go/vulkan"
)

func safeString(s string) string {
	if strings.HasSuffix(s, "\x00") {
		return s
	}
	return s + "\x00"
}

func safeStrings(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, safeString(s))
	}
	return out
}

// trimNull undoes safeString.
func trimNull(s string) string {
	return strings.TrimRight(s, "\x00")
}

// checkExisting returns the wanted names present in actual and how many are missing.
func checkExisting(actual, wanted []string) (existing []string, missing int) {
	have := make(map[string]struct{}, len(actual))
	for _, a := range actual {
		have[trimNull(a)] = struct{}{}
	}
	for _, w := range wanted {
		if _, ok := have[trimNull(w)]; ok {
			existing = append(existing, safeString(w))
		} else {
			missing++
		}
	}
	return existing, missing
}

// enumerate runs the count-then-fill Vulkan query and names each element.
func enumerate[T any](query func(count *uint32, out []T) vk.Result, name func(*T) string) ([]string, error) {
	var count uint32
	if ret := query(&count, nil); isError(ret) {
		return nil, NewError(ret)
	}
	list := make([]T, count)
	if ret := query(&count, list); isError(ret) {
		return nil, NewError(ret)
	}
	names := make([]string, 0, count)
	for i := range list[:min(count, uint32(len(list)))] {
		names = append(names, name(&list[i]))
	}
	return names, nil
}

func extensionName(ext *vk.ExtensionProperties) string {
	ext.Deref()
	return vk.ToString(ext.ExtensionName[:])
}

// InstanceExtensions lists the instance extensions available on the platform.
func InstanceExtensions() ([]string, error) {
	return enumerate(func(count *uint32, out []vk.ExtensionProperties) vk.Result {
		return vk.EnumerateInstanceExtensionProperties("", count, out)
	}, extensionName)
}

// DeviceExtensions lists the extensions of gpu.
func DeviceExtensions(gpu vk.PhysicalDevice) ([]string, error) {
	return enumerate(func(count *uint32, out []vk.ExtensionProperties) vk.Result {
		return vk.EnumerateDeviceExtensionProperties(gpu, "", count, out)
	}, extensionName)
}

// ValidationLayers lists the instance layers available on the platform.
func ValidationLayers() ([]string, error) {
	return enumerate(vk.EnumerateInstanceLayerProperties, func(layer *vk.LayerProperties) string {
		layer.Deref()
		return vk.ToString(layer.LayerName[:])
	})
}
