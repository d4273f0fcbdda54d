package dieselrt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTextureDescValidate(t *testing.T) {
	tests := []struct {
		name string
		desc TextureDesc
		ok   bool
	}{
		{"valid", TextureDesc{Width: 256, Height: 128, Format: FormatRGBA8}, true},
		{"full mip chain", TextureDesc{Width: 256, Height: 128, MipLevels: 9, Format: FormatRGBA8}, true},
		{"negative width", TextureDesc{Width: -1, Height: 128, Format: FormatRGBA8}, false},
		{"zero height", TextureDesc{Width: 16, Format: FormatRGBA8}, false},
		{"too large", TextureDesc{Width: 32768, Height: 4, Format: FormatRGBA8}, false},
		{"too many mips", TextureDesc{Width: 256, Height: 128, MipLevels: 10, Format: FormatRGBA8}, false},
		{"negative layers", TextureDesc{Width: 4, Height: 4, Layers: -2, Format: FormatRGBA8}, false},
		{"unknown format", TextureDesc{Width: 4, Height: 4}, false},
		{"compute write depth", TextureDesc{Width: 4, Height: 4, Format: FormatD32F, Flags: TextureComputeWrite}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.desc.Validate()
			if tt.ok {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidTexture)
		})
	}
}

func TestTextureMipSize(t *testing.T) {
	d := TextureDesc{Width: 8, Height: 2, Format: FormatRGBA8}
	require.Equal(t, uint64(64), d.MipSize(0))
	require.Equal(t, uint64(16), d.MipSize(1))
	require.Equal(t, uint64(8), d.MipSize(2))
	require.Equal(t, uint64(4), d.MipSize(5))
}

func TestBufferDescValidate(t *testing.T) {
	require.NoError(t, BufferDesc{Size: 1024, Usage: BufferVertex}.Validate())
	require.ErrorIs(t, BufferDesc{Usage: BufferVertex}.Validate(), ErrInvalidBuffer)
	require.ErrorIs(t, BufferDesc{Size: 16}.Validate(), ErrInvalidBuffer)
	require.ErrorIs(t, BufferDesc{Size: 1 << 32, Usage: BufferStorage}.Validate(), ErrInvalidBuffer)
}
