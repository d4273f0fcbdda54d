package dieselrt

import "fmt"

// TextureFormat enumerates the pixel formats the core knows how to size.
// Backends map them to native formats.
type TextureFormat uint32

const (
	FormatUnknown TextureFormat = iota
	FormatR8
	FormatRG8
	FormatRGBA8
	FormatBGRA8
	FormatR16F
	FormatRGBA16F
	FormatR32F
	FormatRGBA32F
	FormatD24S8
	FormatD32F
)

var formatBytes = map[TextureFormat]uint32{
	FormatR8:      1,
	FormatRG8:     2,
	FormatRGBA8:   4,
	FormatBGRA8:   4,
	FormatR16F:    2,
	FormatRGBA16F: 8,
	FormatR32F:    4,
	FormatRGBA32F: 16,
	FormatD24S8:   4,
	FormatD32F:    4,
}

// BytesPerPixel returns 0 for unknown formats.
func (f TextureFormat) BytesPerPixel() uint32 {
	return formatBytes[f]
}

func (f TextureFormat) IsDepth() bool {
	return f == FormatD24S8 || f == FormatD32F
}

// TextureDesc describes a 2D texture or texture array. Dimensions are signed
// so that bad input from callers is reported rather than wrapped.
type TextureDesc struct {
	Width     int32
	Height    int32
	MipLevels int32
	Layers    int32
	Format    TextureFormat
	Flags     TextureFlags
	Name      string
}

const maxTextureDimension = 16384

func (d *TextureDesc) normalize() {
	if d.MipLevels == 0 {
		d.MipLevels = 1
	}
	if d.Layers == 0 {
		d.Layers = 1
	}
}

// Validate checks the descriptor before it reaches the backend.
func (d TextureDesc) Validate() error {
	d.normalize()
	switch {
	case d.Width <= 0 || d.Height <= 0:
		return fmt.Errorf("%w: size %dx%d", ErrInvalidTexture, d.Width, d.Height)
	case d.Width > maxTextureDimension || d.Height > maxTextureDimension:
		return fmt.Errorf("%w: size %dx%d exceeds %d", ErrInvalidTexture, d.Width, d.Height, maxTextureDimension)
	case d.MipLevels < 0 || d.Layers < 0:
		return fmt.Errorf("%w: %d mips, %d layers", ErrInvalidTexture, d.MipLevels, d.Layers)
	case d.MipLevels > mipCount(d.Width, d.Height):
		return fmt.Errorf("%w: %d mips for %dx%d", ErrInvalidTexture, d.MipLevels, d.Width, d.Height)
	case d.Format.BytesPerPixel() == 0:
		return fmt.Errorf("%w: unknown format %d", ErrInvalidTexture, d.Format)
	case d.Format.IsDepth() && d.Flags.Has(TextureComputeWrite):
		return fmt.Errorf("%w: depth format cannot be compute-written", ErrInvalidTexture)
	}
	return nil
}

// MipSize returns the byte size of one layer of mip level.
func (d TextureDesc) MipSize(mip uint32) uint64 {
	w := max(uint64(d.Width)>>mip, 1)
	h := max(uint64(d.Height)>>mip, 1)
	return w * h * uint64(d.Format.BytesPerPixel())
}

func mipCount(w, h int32) int32 {
	n := int32(1)
	for s := max(w, h); s > 1; s >>= 1 {
		n++
	}
	return n
}
