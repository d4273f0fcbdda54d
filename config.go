package dieselrt

import (
	"errors"
	"fmt"
)

// LogFunc receives every message the context emits.
type LogFunc func(isError bool, msg string)

// Config is the initialization surface of a Context. The mapstructure tags
// let internal/config decode it straight from a config file.
type Config struct {
	AppName    string `mapstructure:"app_name"`
	EngineName string `mapstructure:"engine_name"`
	// Debug enables validation layers and routes their reports to the log.
	Debug bool `mapstructure:"debug"`
	// DeviceIndex forces a physical device, -1 selects automatically.
	DeviceIndex int    `mapstructure:"device_index"`
	Width       uint32 `mapstructure:"width"`
	Height      uint32 `mapstructure:"height"`

	ChannelCapacity int    `mapstructure:"channel_capacity"`
	MaxTextures     uint32 `mapstructure:"max_textures"`
	MaxBuffers      uint32 `mapstructure:"max_buffers"`

	// LogFunc overrides the default stdout logger.
	LogFunc LogFunc `mapstructure:"-"`
}

func DefaultConfig() Config {
	return Config{
		AppName:         "dieselrt",
		EngineName:      "dieselrt",
		DeviceIndex:     -1,
		Width:           1280,
		Height:          720,
		ChannelCapacity: 32768,
		MaxTextures:     4096,
		MaxBuffers:      4096,
	}
}

func (c Config) Validate() error {
	if c.DeviceIndex < -1 {
		return fmt.Errorf("device_index must be -1 or a device index, got %d", c.DeviceIndex)
	}
	if c.Width == 0 || c.Height == 0 {
		return errors.New("width and height must be non-zero")
	}
	if c.ChannelCapacity < 2 {
		return fmt.Errorf("channel_capacity must be at least 2, got %d", c.ChannelCapacity)
	}
	if c.MaxTextures == 0 || c.MaxBuffers == 0 {
		return errors.New("max_textures and max_buffers must be non-zero")
	}
	return nil
}
