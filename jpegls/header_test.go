package jpegls

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderRejectsMissingMarkerStartByte(t *testing.T) {
	_, _, err := Decode([]byte{0x33, 0x33})
	require.Error(t, err)
	assert.Equal(t, CodeMarkerStartByteNotFound, ErrorCode(err))
}

func TestHeaderRejectsOtherEncodings(t *testing.T) {
	// SOF3 (lossless sequential JPEG) is a JPEG frame, but not JPEG-LS.
	_, _, err := Decode([]byte{0xFF, 0xD8, 0xFF, 0xC3, 0x00, 0x00})
	require.Error(t, err)
	assert.Equal(t, CodeEncodingNotSupported, ErrorCode(err))
}

func TestHeaderRejectsUnknownMarker(t *testing.T) {
	_, _, err := Decode([]byte{0xFF, 0xD8, 0xFF, 0x01, 0x00, 0x00})
	require.Error(t, err)
	assert.Equal(t, CodeUnknownJpegMarker, ErrorCode(err))
}

func TestHeaderRejectsEOIBeforeScan(t *testing.T) {
	_, _, err := Decode([]byte{0xFF, 0xD8, 0xFF, 0xD9})
	require.Error(t, err)
	assert.Equal(t, CodeInvalidCompressedData, ErrorCode(err))
}

func TestHeaderSkipsApplicationSegments(t *testing.T) {
	frame := FrameInfo{Width: 4, Height: 4, BitsPerSample: 8, Components: 1}
	pixels := make([]byte, 16)
	encoded, err := Encode(pixels, frame, nil)
	require.NoError(t, err)

	// Splice an APP0 segment between SOI and SOF55.
	withApp := append([]byte{}, encoded[:2]...)
	withApp = append(withApp, 0xFF, 0xE0, 0x00, 0x04, 'J', 'L')
	withApp = append(withApp, encoded[2:]...)

	decoded, gotFrame, err := Decode(withApp)
	require.NoError(t, err)
	assert.Equal(t, frame, gotFrame)
	assert.Equal(t, pixels, decoded)
}

func TestHeaderRejectsUnsupportedBitDepth(t *testing.T) {
	// SOF55 with 17 bits per sample.
	data := []byte{
		0xFF, 0xD8,
		0xFF, 0xF7, 0x00, 0x0B, 17, 0x00, 0x01, 0x00, 0x01, 0x01, 0x01, 0x11, 0x00,
	}
	d := NewDecoder(data)
	err := d.ReadHeader()
	require.Error(t, err)
	assert.Equal(t, CodeParameterValueNotSupported, ErrorCode(err))
}

func TestDecodeDestinationBufferTooSmall(t *testing.T) {
	rng := rand.New(rand.NewSource(20))
	frame := FrameInfo{Width: 16, Height: 16, BitsPerSample: 8, Components: 1}
	pixels := randomPixels(rng, frame, 255)
	encoded, err := Encode(pixels, frame, nil)
	require.NoError(t, err)

	d := NewDecoder(encoded)
	require.NoError(t, d.ReadHeader())

	dst := make([]byte, d.DecodedSize()-1)
	err = d.Decode(dst)
	require.Error(t, err)
	assert.Equal(t, CodeDestinationBufferTooSmall, ErrorCode(err))

	// No sample was written before the failure.
	for i, b := range dst {
		require.Zero(t, b, "byte %d", i)
	}
}

func TestReadHeaderExposesParameters(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	frame := FrameInfo{Width: 20, Height: 10, BitsPerSample: 12, Components: 3}
	pixels := randomPixels(rng, frame, 4095)

	encoded, err := Encode(pixels, frame, &EncodeOptions{
		NearLossless: 2,
		Interleave:   InterleaveSample,
		Preset:       PresetCodingParameters{ResetValue: 63},
	})
	require.NoError(t, err)

	d := NewDecoder(encoded)
	require.NoError(t, d.ReadHeader())
	require.NoError(t, d.ReadHeader(), "idempotent")

	assert.Equal(t, frame, d.FrameInfo())
	assert.Equal(t, 2, d.NearLossless())
	assert.Equal(t, InterleaveSample, d.Interleave())
	assert.Equal(t, 63, d.Preset().ResetValue)
	assert.Equal(t, 4095, d.Preset().MaximumSampleValue)
	assert.Equal(t, frame.Width*frame.Height*frame.Components*2, d.DecodedSize())
}

func TestInterleaveNoneWritesMultipleScans(t *testing.T) {
	rng := rand.New(rand.NewSource(22))
	frame := FrameInfo{Width: 9, Height: 7, BitsPerSample: 8, Components: 3}
	pixels := randomPixels(rng, frame, 255)

	encoded, err := Encode(pixels, frame, &EncodeOptions{Interleave: InterleaveNone})
	require.NoError(t, err)

	// Three SOS segments, one per component.
	scans := 0
	for i := 0; i+1 < len(encoded); i++ {
		if encoded[i] == 0xFF && encoded[i+1] == 0xDA {
			scans++
		}
	}
	assert.Equal(t, 3, scans)

	decoded, _, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, pixels, decoded)
}

func TestEncodeWritesLSEOnlyWhenNeeded(t *testing.T) {
	frame := FrameInfo{Width: 4, Height: 4, BitsPerSample: 8, Components: 1}
	pixels := make([]byte, 16)

	countLSE := func(data []byte) int {
		n := 0
		for i := 0; i+1 < len(data); i++ {
			if data[i] == 0xFF && data[i+1] == 0xF8 {
				n++
			}
		}
		return n
	}

	plain, err := Encode(pixels, frame, nil)
	require.NoError(t, err)
	assert.Zero(t, countLSE(plain))

	custom, err := Encode(pixels, frame, &EncodeOptions{
		Preset: PresetCodingParameters{ResetValue: 63},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, countLSE(custom))
}

func TestEncodeValidatesParameters(t *testing.T) {
	pixels := make([]byte, 16)

	tests := []struct {
		name  string
		frame FrameInfo
		opts  *EncodeOptions
	}{
		{"zero width", FrameInfo{Width: 0, Height: 4, BitsPerSample: 8, Components: 1}, nil},
		{"bits too large", FrameInfo{Width: 4, Height: 4, BitsPerSample: 17, Components: 1}, nil},
		{"bits too small", FrameInfo{Width: 4, Height: 4, BitsPerSample: 1, Components: 1}, nil},
		{"near out of range", FrameInfo{Width: 4, Height: 4, BitsPerSample: 8, Components: 1},
			&EncodeOptions{NearLossless: 200}},
		{"sample interleave needs 2..4 components",
			FrameInfo{Width: 2, Height: 2, BitsPerSample: 8, Components: 5},
			&EncodeOptions{Interleave: InterleaveSample}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(pixels, tt.frame, tt.opts)
			require.Error(t, err)
			assert.Equal(t, CodeParameterValueNotSupported, ErrorCode(err))
		})
	}
}

func TestDecodeTruncatedScanFails(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	frame := FrameInfo{Width: 32, Height: 32, BitsPerSample: 8, Components: 1}
	pixels := randomPixels(rng, frame, 255)

	encoded, err := Encode(pixels, frame, nil)
	require.NoError(t, err)

	truncated := encoded[:len(encoded)/2]
	_, _, err = Decode(truncated)
	require.Error(t, err)
	code := ErrorCode(err)
	assert.Contains(t, []Code{CodeInvalidCompressedData, CodeTooMuchCompressedData}, code)
}
