package commands

import (
	"github.com/andewx/dieselrt"
	"github.com/andewx/dieselrt/vkbackend"
)

// vkFactory is swapped by tests that have no Vulkan loader.
var vkFactory dieselrt.PlatformFactory = vkbackend.Factory
