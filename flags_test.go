package dieselrt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSamplerFlagLayout(t *testing.T) {
	// Bit positions are part of the backend ABI.
	require.Equal(t, SamplerFlags(0x00000002), NewSamplerFlags(WrapClamp, WrapRepeat, WrapRepeat, FilterLinear, FilterLinear, false, CompareNone, 0))
	require.Equal(t, SamplerFlags(0x0000000c), NewSamplerFlags(WrapRepeat, WrapBorder, WrapRepeat, FilterLinear, FilterLinear, false, CompareNone, 0))
	require.Equal(t, SamplerFlags(0x00000010), NewSamplerFlags(WrapRepeat, WrapRepeat, WrapMirror, FilterLinear, FilterLinear, false, CompareNone, 0))
	require.Equal(t, SamplerFlags(0x00000040), NewSamplerFlags(WrapRepeat, WrapRepeat, WrapRepeat, FilterPoint, FilterLinear, false, CompareNone, 0))
	require.Equal(t, SamplerFlags(0x00000200), NewSamplerFlags(WrapRepeat, WrapRepeat, WrapRepeat, FilterLinear, FilterAnisotropic, false, CompareNone, 0))
	require.Equal(t, SamplerFlags(0x00000400), NewSamplerFlags(WrapRepeat, WrapRepeat, WrapRepeat, FilterLinear, FilterLinear, true, CompareNone, 0))
	require.Equal(t, SamplerFlags(0x00010000), NewSamplerFlags(WrapRepeat, WrapRepeat, WrapRepeat, FilterLinear, FilterLinear, false, CompareLess, 0))
	require.Equal(t, SamplerFlags(0x0a000000), NewSamplerFlags(WrapRepeat, WrapRepeat, WrapRepeat, FilterLinear, FilterLinear, false, CompareNone, 10))
}

func TestSamplerFlagRoundTrip(t *testing.T) {
	f := NewSamplerFlags(WrapMirror, WrapClamp, WrapBorder, FilterAnisotropic, FilterPoint, true, CompareGreaterEqual, 7)
	require.Equal(t, WrapMirror, f.WrapU())
	require.Equal(t, WrapClamp, f.WrapV())
	require.Equal(t, WrapBorder, f.WrapW())
	require.Equal(t, FilterAnisotropic, f.Min())
	require.Equal(t, FilterPoint, f.Mag())
	require.True(t, f.MipPoint())
	require.Equal(t, CompareGreaterEqual, f.Compare())
	require.Equal(t, uint32(7), f.BorderColor())
}

func TestSamplerFieldsAreMasked(t *testing.T) {
	// Out of range border color must not spill into neighbouring bits.
	f := NewSamplerFlags(WrapRepeat, WrapRepeat, WrapRepeat, FilterLinear, FilterLinear, false, CompareNone, 0xff)
	require.Equal(t, SamplerBorderColorMask, f)
}

func TestTextureFlags(t *testing.T) {
	require.Equal(t, TextureFlags(1)<<36, TextureRT)
	require.Equal(t, TextureFlags(1)<<44, TextureComputeWrite)
	require.Equal(t, TextureFlags(1)<<45, TextureSRGB)
	require.Equal(t, TextureFlags(1)<<46, TextureBlitDst)

	s := NewSamplerFlags(WrapClamp, WrapClamp, WrapClamp, FilterPoint, FilterPoint, true, CompareNone, 0)
	f := (TextureRTMSAAX4 | TextureSRGB).WithSampler(s)
	require.Equal(t, s, f.Sampler())
	require.True(t, f.IsRenderTarget())
	require.True(t, f.Has(TextureSRGB))
	require.False(t, f.Has(TextureBlitDst))
	require.Equal(t, uint32(4), f.MSAASamples())

	require.Equal(t, uint32(1), TextureRT.MSAASamples())
	require.Equal(t, uint32(1), TextureNone.MSAASamples())
	require.Equal(t, uint32(16), TextureRTMSAAX16.MSAASamples())
	require.False(t, TextureComputeWrite.IsRenderTarget())
}
