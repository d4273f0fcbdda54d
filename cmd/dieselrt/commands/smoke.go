package commands

import (
	"fmt"
	"io"

	"github.com/andewx/dieselrt"
	"github.com/spf13/cobra"
)

var smokeSize int32

var smokeCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Run resources through every queue and check the results",
	Long: `Open the selected device, push a rejected texture through the pipeline,
then create, upload, clear, blit and destroy resources on the copy, compute
and graphics queues. Exits non-zero when the runtime reports an unexpected
error count or leaks a resource.`,
	RunE: runSmoke,
}

func init() {
	smokeCmd.Flags().Int32Var(&smokeSize, "size", 256, "texture edge length in pixels")
	rootCmd.AddCommand(smokeCmd)
}

func runSmoke(cmd *cobra.Command, args []string) error {
	ctx, err := openContext(cmd)
	if err != nil {
		return err
	}
	defer ctx.Shutdown()

	log.Infof("device: %s", ctx.DeviceInfo())
	if err := smoke(ctx, smokeSize, cmd.OutOrStdout()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "smoke test passed")
	return nil
}

// smoke exercises ctx and checks its counters after each stage.
func smoke(ctx *dieselrt.Context, size int32, out io.Writer) error {
	base := ctx.ErrorCount()

	// Rejected on the executor, so only the error count reflects it.
	bad := ctx.CreateTexture(dieselrt.TextureDesc{Width: -1, Height: size, Format: dieselrt.FormatRGBA8}, nil)
	if err := ctx.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if got := ctx.ErrorCount() - base; got != 1 {
		return fmt.Errorf("invalid texture: got %d errors, want 1", got)
	}
	if ctx.IsTextureValid(bad) {
		return fmt.Errorf("invalid texture %v reported valid", bad)
	}
	ctx.DestroyTexture(bad)
	fmt.Fprintln(out, "rejected invalid texture")
	base = ctx.ErrorCount()

	desc := dieselrt.TextureDesc{
		Width:  size,
		Height: size,
		Format: dieselrt.FormatRGBA8,
		Flags:  dieselrt.TextureBlitDst,
		Name:   "smoke-dst",
	}
	pixels := make([]byte, desc.MipSize(0))
	for i := range pixels {
		pixels[i] = byte(i)
	}
	src := ctx.CreateTexture(dieselrt.TextureDesc{Width: size, Height: size, Format: dieselrt.FormatRGBA8, Name: "smoke-src"}, pixels)
	dst := ctx.CreateTexture(desc, nil)
	ctx.UpdateTexture(dst, 0, 0, pixels)
	ctx.BlitTexture(dst, src)

	buf := ctx.CreateBuffer(dieselrt.BufferDesc{
		Size:  uint64(len(pixels)),
		Usage: dieselrt.BufferStorage | dieselrt.BufferComputeWrite,
		Name:  "smoke-buffer",
	}, nil)
	ctx.UpdateBuffer(buf, 0, pixels[:64])
	ctx.ClearBuffer(buf, 0xdeadbeef)

	if err := ctx.Finish(); err != nil {
		return fmt.Errorf("finish: %w", err)
	}
	if n := ctx.ErrorCount() - base; n != 0 {
		return fmt.Errorf("resource pass logged %d errors", n)
	}
	for _, h := range []dieselrt.TextureHandle{src, dst} {
		if !ctx.IsTextureValid(h) {
			return fmt.Errorf("texture %v not ready after finish", h)
		}
	}
	if !ctx.IsBufferValid(buf) {
		return fmt.Errorf("buffer %v not ready after finish", buf)
	}
	stats := ctx.Stats()
	fmt.Fprintf(out, "uploaded, cleared and blitted in %d submissions\n", stats.Submissions)

	ctx.DestroyTexture(src)
	ctx.DestroyTexture(dst)
	ctx.DestroyBuffer(buf)
	if err := ctx.Finish(); err != nil {
		return fmt.Errorf("finish: %w", err)
	}
	stats = ctx.Stats()
	if stats.LiveTextures != 0 || stats.LiveBuffers != 0 {
		return fmt.Errorf("leaked %d textures and %d buffers", stats.LiveTextures, stats.LiveBuffers)
	}
	fmt.Fprintf(out, "processed %d commands, %d errors\n", stats.Processed, stats.Errors)
	return nil
}
