package vkbackend

import (
	"errors"
	"fmt"
	"os"
	"unsafe"

	"github.com/andewx/dieselrt"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"
)

const (
	debugReportExtension = "VK_EXT_debug_report"
	validationLayer      = "VK_LAYER_KHRONOS_validation"
)

// Platform owns the Vulkan instance and a hidden GLFW window whose surface
// gives the device present support.
type Platform struct {
	cfg      dieselrt.Config
	window   *glfw.Window
	instance vk.Instance
	surface  vk.Surface
	debug    vk.DebugReportCallback
	layers   []string

	gpus       []vk.PhysicalDevice
	devices    []dieselrt.PhysicalDeviceInfo
	extensions [][]string
	glfwReady  bool
}

// Factory is the dieselrt.PlatformFactory for Vulkan.
func Factory(cfg dieselrt.Config) (dieselrt.Platform, error) {
	p, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func New(cfg dieselrt.Config) (p *Platform, err error) {
	p = &Platform{cfg: cfg}
	defer func() {
		if err != nil {
			p.Destroy()
			p = nil
		}
	}()
	defer checkErr(&err)

	orPanic(glfw.Init())
	p.glfwReady = true
	if !glfw.VulkanSupported() {
		return p, errors.New("vulkan error: GLFW found no Vulkan loader")
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Visible, glfw.False)
	window, err := glfw.CreateWindow(int(cfg.Width), int(cfg.Height), cfg.AppName, nil, nil)
	orPanic(err)
	p.window = window

	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	orPanic(vk.Init())

	// Select instance extensions
	wanted := window.GetRequiredInstanceExtensions()
	if cfg.Debug {
		wanted = append(wanted, debugReportExtension)
	}
	actual, err := InstanceExtensions()
	orPanic(err)
	instanceExtensions, missing := checkExisting(actual, wanted)
	if missing > 0 {
		p.logf(false, "vulkan warning: missing %d wanted instance extensions", missing)
	}

	// Select instance layers
	if cfg.Debug {
		actualLayers, err := ValidationLayers()
		orPanic(err)
		p.layers, missing = checkExisting(actualLayers, []string{validationLayer})
		if missing > 0 {
			p.logf(false, "vulkan warning: validation layer %s not available", validationLayer)
		}
	}

	ret := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			ApiVersion:         vk.MakeVersion(1, 2, 0),
			ApplicationVersion: vk.MakeVersion(1, 0, 0),
			PApplicationName:   safeString(cfg.AppName),
			PEngineName:        safeString(cfg.EngineName),
		},
		EnabledExtensionCount:   uint32(len(instanceExtensions)),
		PpEnabledExtensionNames: instanceExtensions,
		EnabledLayerCount:       uint32(len(p.layers)),
		PpEnabledLayerNames:     p.layers,
	}, nil, &p.instance)
	orPanic(NewError(ret))
	orPanic(vk.InitInstance(p.instance))

	if cfg.Debug && len(p.layers) > 0 {
		ret := vk.CreateDebugReportCallback(p.instance, &vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
			PfnCallback: p.debugReport,
		}, nil, &p.debug)
		orPanic(NewError(ret))
	}

	surface, err := window.CreateWindowSurface(p.instance, nil)
	orPanic(err)
	p.surface = vk.SurfaceFromPointer(surface)

	var gpuCount uint32
	orPanic(NewError(vk.EnumeratePhysicalDevices(p.instance, &gpuCount, nil)))
	if gpuCount == 0 {
		return p, errors.New("vulkan error: no GPU devices found")
	}
	p.gpus = make([]vk.PhysicalDevice, gpuCount)
	orPanic(NewError(vk.EnumeratePhysicalDevices(p.instance, &gpuCount, p.gpus)))
	return p, nil
}

func (p *Platform) debugReport(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
	object uint64, location uint, messageCode int32, layerPrefix string, message string, userData unsafe.Pointer) vk.Bool32 {
	isError := flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0
	p.logf(isError, "vulkan [%s] code %d: %s", layerPrefix, messageCode, message)
	return vk.False
}

func (p *Platform) logf(isError bool, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if p.cfg.LogFunc != nil {
		p.cfg.LogFunc(isError, msg)
		return
	}
	if isError {
		fallbackLog.Error(msg)
	} else {
		fallbackLog.Info(msg)
	}
}

// fallbackLog serves platforms created without a LogFunc, such as a bare
// device probe. A Context always installs its own.
var fallbackLog = &logrus.Logger{
	Out:       os.Stdout,
	Formatter: &logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"},
	Hooks:     make(logrus.LevelHooks),
	Level:     logrus.InfoLevel,
}

// PhysicalDevices probes every GPU once and caches the result.
func (p *Platform) PhysicalDevices() ([]dieselrt.PhysicalDeviceInfo, error) {
	if p.devices != nil {
		return p.devices, nil
	}
	devices := make([]dieselrt.PhysicalDeviceInfo, 0, len(p.gpus))
	extensions := make([][]string, 0, len(p.gpus))
	for i, gpu := range p.gpus {
		info, exts, err := probeDevice(gpu)
		if err != nil {
			return nil, fmt.Errorf("probe device %d: %w", i, err)
		}
		info.Index = i
		devices = append(devices, info)
		extensions = append(extensions, exts)
	}
	p.devices, p.extensions = devices, extensions
	return devices, nil
}

func probeDevice(gpu vk.PhysicalDevice) (info dieselrt.PhysicalDeviceInfo, exts []string, err error) {
	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(gpu, &props)
	props.Deref()
	props.Limits.Deref()

	var memProps vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(gpu, &memProps)
	memProps.Deref()

	exts, err = DeviceExtensions(gpu)
	if err != nil {
		return info, nil, err
	}

	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, nil)
	families := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, families)
	flags := make([]dieselrt.QueueFlags, 0, count)
	for i := range families {
		families[i].Deref()
		flags = append(flags, queueFlags(families[i].QueueFlags))
	}

	info = dieselrt.PhysicalDeviceInfo{
		Name:          vk.ToString(props.DeviceName[:]),
		Type:          deviceType(props.DeviceType),
		APIVersion:    dieselrt.Version(props.ApiVersion),
		DriverVersion: props.DriverVersion,
		VendorID:      props.VendorID,
		DeviceID:      props.DeviceID,
		Extensions:    exts,
		VRAMMB:        deviceLocalMB(memProps),
		Limits: dieselrt.DeviceLimits{
			MaxImageDimension2D:            props.Limits.MaxImageDimension2D,
			MaxPerStageDescriptorSamplers:  props.Limits.MaxPerStageDescriptorSamplers,
			MaxComputeWorkGroupInvocations: props.Limits.MaxComputeWorkGroupInvocations,
		},
		QueueFamilies: flags,
	}
	return info, exts, nil
}

// CreateBackend opens device index with one queue per distinct family.
func (p *Platform) CreateBackend(index int, families dieselrt.QueueFamilyAssignment) (dieselrt.Backend, error) {
	if _, err := p.PhysicalDevices(); err != nil {
		return nil, err
	}
	if index < 0 || index >= len(p.gpus) {
		return nil, fmt.Errorf("%w: %d of %d", dieselrt.ErrDeviceIndexOutOfRange, index, len(p.gpus))
	}

	var supportsPresent vk.Bool32
	vk.GetPhysicalDeviceSurfaceSupport(p.gpus[index], families.Graphics, p.surface, &supportsPresent)
	if !supportsPresent.B() {
		p.logf(false, "vulkan warning: graphics family %d cannot present to the surface", families.Graphics)
	}

	extensions, missing := checkExisting(p.extensions[index], []string{dieselrt.SwapchainExtension})
	if missing > 0 {
		p.logf(false, "vulkan warning: %s not available, present disabled", dieselrt.SwapchainExtension)
	}
	return newBackend(p, p.gpus[index], p.devices[index], families, extensions)
}

// Destroy releases the instance, surface and window. Backends must be
// destroyed first.
func (p *Platform) Destroy() {
	if p.instance != nil {
		if p.debug != vk.NullDebugReportCallback {
			vk.DestroyDebugReportCallback(p.instance, p.debug, nil)
		}
		if p.surface != vk.NullSurface {
			vk.DestroySurface(p.instance, p.surface, nil)
		}
		vk.DestroyInstance(p.instance, nil)
		p.instance = nil
	}
	if p.window != nil {
		p.window.Destroy()
		p.window = nil
	}
	if p.glfwReady {
		glfw.Terminate()
		p.glfwReady = false
	}
}
