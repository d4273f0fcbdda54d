package commands

import (
	"fmt"
	"runtime"

	"github.com/andewx/dieselrt"
	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List and rank physical devices",
	Long: `Enumerate every Vulkan physical device, rate it and print the ranking
the runtime uses to pick a device when none is forced.`,
	RunE: runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Vulkan and GLFW want a single thread for the whole probe.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	platform, err := vkFactory(cfg.Runtime)
	if err != nil {
		return fmt.Errorf("opening platform: %w", err)
	}
	defer platform.Destroy()

	devices, err := platform.PhysicalDevices()
	if err != nil {
		return fmt.Errorf("probing devices: %w", err)
	}
	printRanking(cmd, devices, cfg.Runtime.DeviceIndex)
	return nil
}

func printRanking(cmd *cobra.Command, devices []dieselrt.PhysicalDeviceInfo, explicit int) {
	out := cmd.OutOrStdout()
	if len(devices) == 0 {
		fmt.Fprintln(out, "no physical devices found")
		return
	}

	selected, err := dieselrt.SelectDevice(devices, explicit)
	for rank, s := range dieselrt.RankDevices(devices) {
		d := devices[s.Index]
		marker := " "
		if err == nil && s.Index == selected {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %d. [%d] %s\n", marker, rank+1, s.Index, d.Name)
		fmt.Fprintf(out, "     type=%s api=%s vram=%dMB suitable=%t score=%d\n",
			d.Type, d.APIVersion, d.VRAMMB, s.Suitable, s.MicroScore)
	}
	if err != nil {
		fmt.Fprintf(out, "\nno device selected: %v\n", err)
	}
}
