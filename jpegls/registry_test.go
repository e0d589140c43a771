package jpegls_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolibri91/charls/codec"
	"github.com/kolibri91/charls/jpegls"
)

func TestCodecRegistry(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		wantUID  string
		wantName string
	}{
		{"lossless by UID", jpegls.UIDLossless, jpegls.UIDLossless, "jpeg-ls-lossless"},
		{"lossless by name", "jpeg-ls-lossless", jpegls.UIDLossless, "jpeg-ls-lossless"},
		{"near-lossless by UID", jpegls.UIDNearLossless, jpegls.UIDNearLossless, "jpeg-ls-near-lossless"},
		{"near-lossless by name", "jpeg-ls-near-lossless", jpegls.UIDNearLossless, "jpeg-ls-near-lossless"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := codec.Get(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.wantUID, c.UID())
			assert.Equal(t, tt.wantName, c.Name())
		})
	}

	_, err := codec.Get("non-existent")
	assert.ErrorIs(t, err, codec.ErrCodecNotFound)
}

func TestCodecRegistryList(t *testing.T) {
	codecs := codec.List()
	require.GreaterOrEqual(t, len(codecs), 2)

	var foundLossless, foundNearLossless bool
	for _, c := range codecs {
		switch c.UID() {
		case jpegls.UIDLossless:
			foundLossless = true
		case jpegls.UIDNearLossless:
			foundNearLossless = true
		}
	}
	assert.True(t, foundLossless)
	assert.True(t, foundNearLossless)
}

func TestLosslessCodecRoundTrip(t *testing.T) {
	c, err := codec.Get(jpegls.UIDLossless)
	require.NoError(t, err)

	width, height := 32, 32
	pixels := make([]byte, width*height)
	for i := range pixels {
		pixels[i] = byte((i * 7) % 256)
	}

	compressed, err := c.Encode(codec.EncodeParams{
		PixelData:  pixels,
		Width:      width,
		Height:     height,
		Components: 1,
		BitDepth:   8,
	})
	require.NoError(t, err)
	t.Logf("compressed %d -> %d bytes", len(pixels), len(compressed))

	result, err := c.Decode(compressed)
	require.NoError(t, err)
	assert.Equal(t, width, result.Width)
	assert.Equal(t, height, result.Height)
	assert.Equal(t, 1, result.Components)
	assert.Equal(t, 8, result.BitDepth)
	assert.Equal(t, pixels, result.PixelData)
}

func TestNearLosslessCodecBoundsError(t *testing.T) {
	c, err := codec.Get(jpegls.UIDNearLossless)
	require.NoError(t, err)

	width, height := 24, 24
	pixels := make([]byte, width*height)
	for i := range pixels {
		pixels[i] = byte((i * 13) % 256)
	}

	near := 3
	compressed, err := c.Encode(codec.EncodeParams{
		PixelData:  pixels,
		Width:      width,
		Height:     height,
		Components: 1,
		BitDepth:   8,
		Options:    jpegls.NewOptions().WithNEAR(near),
	})
	require.NoError(t, err)

	result, err := c.Decode(compressed)
	require.NoError(t, err)
	require.Len(t, result.PixelData, len(pixels))

	for i := range pixels {
		diff := int(pixels[i]) - int(result.PixelData[i])
		if diff < 0 {
			diff = -diff
		}
		assert.LessOrEqual(t, diff, near, "sample %d", i)
	}
}

func TestCodecOptionsParameterInterface(t *testing.T) {
	o := jpegls.NewOptions()
	o.SetParameter("near", 3)
	o.SetParameter("interleave", int(jpegls.InterleaveLine))
	o.SetParameter("custom", "value")

	assert.Equal(t, 3, o.GetParameter("near"))
	assert.Equal(t, int(jpegls.InterleaveLine), o.GetParameter("interleave"))
	assert.Equal(t, "value", o.GetParameter("custom"))
	assert.NoError(t, o.Validate())

	o.NEAR = -1
	assert.Error(t, o.Validate())
}
