package jpegls

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPresetCodingParameters8Bit(t *testing.T) {
	p := DefaultPresetCodingParameters(255, 0)
	assert.Equal(t, 255, p.MaximumSampleValue)
	assert.Equal(t, 3, p.Threshold1)
	assert.Equal(t, 7, p.Threshold2)
	assert.Equal(t, 21, p.Threshold3)
	assert.Equal(t, 64, p.ResetValue)
}

func TestDefaultPresetCodingParameters12Bit(t *testing.T) {
	p := DefaultPresetCodingParameters(4095, 0)
	assert.Equal(t, 18, p.Threshold1)
	assert.Equal(t, 67, p.Threshold2)
	assert.Equal(t, 276, p.Threshold3)
}

func TestDefaultPresetCodingParametersNear(t *testing.T) {
	p := DefaultPresetCodingParameters(255, 2)
	assert.Equal(t, 9, p.Threshold1)  // factor*1 + 2 + 3*NEAR
	assert.Equal(t, 17, p.Threshold2) // factor*4 + 3 + 5*NEAR
	assert.Equal(t, 35, p.Threshold3) // factor*17 + 4 + 7*NEAR

	assert.LessOrEqual(t, p.Threshold1, p.Threshold2)
	assert.LessOrEqual(t, p.Threshold2, p.Threshold3)
}

func TestPresetWithDefaults(t *testing.T) {
	p := PresetCodingParameters{ResetValue: 63}.withDefaults(255, 0)
	assert.Equal(t, 255, p.MaximumSampleValue)
	assert.Equal(t, 3, p.Threshold1)
	assert.Equal(t, 63, p.ResetValue)
}

func TestPresetIsDefault(t *testing.T) {
	assert.True(t, PresetCodingParameters{}.isDefault(255, 0))
	assert.False(t, PresetCodingParameters{ResetValue: 63}.isDefault(255, 0))
	assert.False(t, PresetCodingParameters{MaximumSampleValue: 100}.isDefault(255, 0))
}

func TestPresetValidate(t *testing.T) {
	assert.NoError(t, PresetCodingParameters{}.validate(255, 0))
	assert.NoError(t, PresetCodingParameters{ResetValue: 63}.validate(65535, 0))

	err := PresetCodingParameters{ResetValue: 2}.validate(255, 0)
	assert.Equal(t, CodeParameterValueNotSupported, ErrorCode(err))
}

func TestMaxNearLossless(t *testing.T) {
	assert.Equal(t, 127, maxNearLossless(255))
	assert.Equal(t, 255, maxNearLossless(65535))
	assert.Equal(t, 1, maxNearLossless(3))
}
