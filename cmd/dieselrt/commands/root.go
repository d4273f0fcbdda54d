package commands

import (
	"os"

	"github.com/andewx/dieselrt"
	"github.com/andewx/dieselrt/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile     string
	verbose     bool
	deviceIndex int
)

var log = logrus.New()

var rootCmd = &cobra.Command{
	Use:   "dieselrt",
	Short: "GPU resource runtime diagnostics",
	Long: `dieselrt drives the asynchronous GPU resource runtime from the command line.

It lists and ranks the Vulkan devices on this machine, opens the selected
device and runs a smoke test through the full command pipeline.`,
	Version:      "0.1.0",
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.dieselrt/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().IntVar(&deviceIndex, "device", -2, "force a physical device index (-1 selects automatically)")
}

// loadConfig reads the configuration and applies logging and flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("device") {
		cfg.Runtime.DeviceIndex = deviceIndex
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	setupLogging(cfg.Logging)
	cfg.Runtime.LogFunc = func(isError bool, msg string) {
		if isError {
			log.WithField("source", "runtime").Error(msg)
			return
		}
		log.WithField("source", "runtime").Debug(msg)
	}
	return cfg, nil
}

func setupLogging(cfg config.LoggingConfig) {
	log.SetOutput(os.Stderr)
	lvl, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	if verbose {
		lvl = logrus.DebugLevel
	}
	log.SetLevel(lvl)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
}

// openContext brings up the runtime on the Vulkan backend.
func openContext(cmd *cobra.Command) (*dieselrt.Context, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return dieselrt.Open(cfg.Runtime, vkFactory)
}
