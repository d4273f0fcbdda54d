package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/andewx/dieselrt"
	"github.com/spf13/viper"
)

// Config is the on-disk configuration of the dieselrt tool.
type Config struct {
	Runtime dieselrt.Config `mapstructure:"runtime"`
	Logging LoggingConfig   `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func DefaultConfig() *Config {
	return &Config{
		Runtime: dieselrt.DefaultConfig(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads cfgFile, or config.yaml from $HOME/.dieselrt and the working
// directory, then applies DIESELRT_* environment overrides.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	cfg := DefaultConfig()
	setDefaults(v, cfg)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".dieselrt"))
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("DIESELRT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := c.Runtime.Validate(); err != nil {
		return fmt.Errorf("runtime: %w", err)
	}
	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, c.Logging.Level) {
		return fmt.Errorf("logging.level must be one of: %v", validLevels)
	}
	validFormats := []string{"text", "json"}
	if !slices.Contains(validFormats, c.Logging.Format) {
		return fmt.Errorf("logging.format must be one of: %v", validFormats)
	}
	return nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("runtime.app_name", cfg.Runtime.AppName)
	v.SetDefault("runtime.engine_name", cfg.Runtime.EngineName)
	v.SetDefault("runtime.debug", cfg.Runtime.Debug)
	v.SetDefault("runtime.device_index", cfg.Runtime.DeviceIndex)
	v.SetDefault("runtime.width", cfg.Runtime.Width)
	v.SetDefault("runtime.height", cfg.Runtime.Height)
	v.SetDefault("runtime.channel_capacity", cfg.Runtime.ChannelCapacity)
	v.SetDefault("runtime.max_textures", cfg.Runtime.MaxTextures)
	v.SetDefault("runtime.max_buffers", cfg.Runtime.MaxBuffers)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
}
