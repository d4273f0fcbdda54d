package dieselrt

// SamplerFlags is the 32-bit sampler state word. Bit positions are a stable
// ABI shared with backends and must not move.
type SamplerFlags uint32

// TextureFlags is the 64-bit texture word. Its low 32 bits carry the
// sampler state, the high bits carry usage.
type TextureFlags uint64

const (
	SamplerUShift              = 0
	SamplerUMask  SamplerFlags = 0x00000003
	SamplerVShift              = 2
	SamplerVMask  SamplerFlags = 0x0000000c
	SamplerWShift              = 4
	SamplerWMask  SamplerFlags = 0x00000030

	SamplerMinShift              = 6
	SamplerMinMask  SamplerFlags = 0x000000c0
	SamplerMagShift              = 8
	SamplerMagMask  SamplerFlags = 0x00000300
	SamplerMipShift              = 10
	SamplerMipMask  SamplerFlags = 0x00000400

	SamplerCompareShift              = 16
	SamplerCompareMask  SamplerFlags = 0x000f0000

	SamplerBorderColorShift              = 24
	SamplerBorderColorMask  SamplerFlags = 0x0f000000

	SamplerNone SamplerFlags = 0
)

// Wrap modes, stored per axis.
type WrapMode uint32

const (
	WrapRepeat WrapMode = iota
	WrapMirror
	WrapClamp
	WrapBorder
)

// Filter values for the min and mag fields.
type Filter uint32

const (
	FilterLinear Filter = iota
	FilterPoint
	FilterAnisotropic
)

// CompareMode values for the 4-bit compare field.
type CompareMode uint32

const (
	CompareNone CompareMode = iota
	CompareLess
	CompareLessEqual
	CompareEqual
	CompareGreaterEqual
	CompareGreater
	CompareNotEqual
	CompareNever
	CompareAlways
)

func field(v uint32, shift uint, mask SamplerFlags) SamplerFlags {
	return SamplerFlags(v<<shift) & mask
}

// NewSamplerFlags packs sampler state into the ABI word.
func NewSamplerFlags(u, v, w WrapMode, minFilter, magFilter Filter, mipPoint bool, cmp CompareMode, border uint32) SamplerFlags {
	f := field(uint32(u), SamplerUShift, SamplerUMask) |
		field(uint32(v), SamplerVShift, SamplerVMask) |
		field(uint32(w), SamplerWShift, SamplerWMask) |
		field(uint32(minFilter), SamplerMinShift, SamplerMinMask) |
		field(uint32(magFilter), SamplerMagShift, SamplerMagMask) |
		field(uint32(cmp), SamplerCompareShift, SamplerCompareMask) |
		field(border, SamplerBorderColorShift, SamplerBorderColorMask)
	if mipPoint {
		f |= SamplerMipMask
	}
	return f
}

func (f SamplerFlags) WrapU() WrapMode { return WrapMode((f & SamplerUMask) >> SamplerUShift) }
func (f SamplerFlags) WrapV() WrapMode { return WrapMode((f & SamplerVMask) >> SamplerVShift) }
func (f SamplerFlags) WrapW() WrapMode { return WrapMode((f & SamplerWMask) >> SamplerWShift) }
func (f SamplerFlags) Min() Filter     { return Filter((f & SamplerMinMask) >> SamplerMinShift) }
func (f SamplerFlags) Mag() Filter     { return Filter((f & SamplerMagMask) >> SamplerMagShift) }
func (f SamplerFlags) MipPoint() bool  { return f&SamplerMipMask != 0 }

func (f SamplerFlags) Compare() CompareMode {
	return CompareMode((f & SamplerCompareMask) >> SamplerCompareShift)
}

func (f SamplerFlags) BorderColor() uint32 {
	return uint32((f & SamplerBorderColorMask) >> SamplerBorderColorShift)
}

const (
	TextureNone TextureFlags = 0

	TextureRTShift              = 36
	TextureRTMask  TextureFlags = 0x000000f000000000
	// TextureRT marks a render target without multisampling.
	TextureRT        TextureFlags = 0x0000001000000000
	TextureRTMSAAX2  TextureFlags = 0x0000002000000000
	TextureRTMSAAX4  TextureFlags = 0x0000003000000000
	TextureRTMSAAX8  TextureFlags = 0x0000004000000000
	TextureRTMSAAX16 TextureFlags = 0x0000005000000000

	TextureRTWriteOnly    TextureFlags = 0x0000080000000000
	TextureComputeWrite   TextureFlags = 0x0000100000000000
	TextureSRGB           TextureFlags = 0x0000200000000000
	TextureBlitDst        TextureFlags = 0x0000400000000000
	TextureReadBack       TextureFlags = 0x0000800000000000
	textureSamplerBitMask TextureFlags = 0x00000000ffffffff
)

// Sampler returns the sampler word embedded in the low bits.
func (f TextureFlags) Sampler() SamplerFlags {
	return SamplerFlags(f & textureSamplerBitMask)
}

// WithSampler replaces the embedded sampler word.
func (f TextureFlags) WithSampler(s SamplerFlags) TextureFlags {
	return f&^textureSamplerBitMask | TextureFlags(s)
}

func (f TextureFlags) Has(bits TextureFlags) bool {
	return f&bits == bits
}

// IsRenderTarget reports whether any render target mode is set.
func (f TextureFlags) IsRenderTarget() bool {
	return f&TextureRTMask != 0
}

// MSAASamples decodes the render target sample count, 1 when not multisampled.
func (f TextureFlags) MSAASamples() uint32 {
	rt := uint32((f & TextureRTMask) >> TextureRTShift)
	if rt <= 1 {
		return 1
	}
	return 1 << (rt - 1)
}
