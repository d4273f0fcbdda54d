package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Open the selected device and describe it",
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	ctx, err := openContext(cmd)
	if err != nil {
		return err
	}
	defer ctx.Shutdown()

	fmt.Fprintln(cmd.OutOrStdout(), ctx.DeviceInfo())
	return nil
}
