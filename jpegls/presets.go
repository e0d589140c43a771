package jpegls

// Preset coding parameters (ITU-T T.87 Annex C): the gradient thresholds,
// reset interval and maximum sample value a scan runs with. They default
// from (MAXVAL, NEAR) and may be overridden by an LSE segment.

const (
	defaultResetValue = 64

	basicThreshold1 = 3
	basicThreshold2 = 7
	basicThreshold3 = 21

	// Reserved range boundaries for LSE RESET overrides.
	minResetValue = 3
	maxResetValue = 1<<16 - 1
)

// PresetCodingParameters carries the optional LSE overrides. Zero values
// mean "use the computed default".
type PresetCodingParameters struct {
	MaximumSampleValue int
	Threshold1         int
	Threshold2         int
	Threshold3         int
	ResetValue         int
}

// clampThreshold mirrors the CLAMP operator of Annex C: out-of-range
// values fall back to the lower bound.
func clampThreshold(i, j, maxVal int) int {
	if i > maxVal || i < j {
		return j
	}
	return i
}

// DefaultPresetCodingParameters computes the Annex C default thresholds and
// reset interval for a scan with the given maximum sample value and NEAR.
func DefaultPresetCodingParameters(maxVal, near int) PresetCodingParameters {
	factorMax := maxVal
	if factorMax > 4095 {
		factorMax = 4095
	}
	factor := (factorMax + 128) / 256

	t1 := clampThreshold(factor*(basicThreshold1-2)+2+3*near, near+1, maxVal)
	t2 := clampThreshold(factor*(basicThreshold2-3)+3+5*near, t1, maxVal)
	t3 := clampThreshold(factor*(basicThreshold3-4)+4+7*near, t2, maxVal)

	return PresetCodingParameters{
		MaximumSampleValue: maxVal,
		Threshold1:         t1,
		Threshold2:         t2,
		Threshold3:         t3,
		ResetValue:         defaultResetValue,
	}
}

// withDefaults fills every zero field from the computed defaults.
func (p PresetCodingParameters) withDefaults(maxVal, near int) PresetCodingParameters {
	if p.MaximumSampleValue == 0 {
		p.MaximumSampleValue = maxVal
	}
	defaults := DefaultPresetCodingParameters(p.MaximumSampleValue, near)
	if p.Threshold1 == 0 {
		p.Threshold1 = defaults.Threshold1
	}
	if p.Threshold2 == 0 {
		p.Threshold2 = defaults.Threshold2
	}
	if p.Threshold3 == 0 {
		p.Threshold3 = defaults.Threshold3
	}
	if p.ResetValue == 0 {
		p.ResetValue = defaults.ResetValue
	}
	return p
}

// isDefault reports whether the parameters match the computed defaults, in
// which case the encoder omits the LSE segment.
func (p PresetCodingParameters) isDefault(maxVal, near int) bool {
	filled := p.withDefaults(maxVal, near)
	return filled == DefaultPresetCodingParameters(maxVal, near) && filled.MaximumSampleValue == maxVal
}

// validate rejects threshold and reset combinations the scan cannot run
// with.
func (p PresetCodingParameters) validate(maxVal, near int) error {
	if p.MaximumSampleValue < 0 || p.MaximumSampleValue > 1<<16-1 {
		return newError(CodeParameterValueNotSupported, "maximum sample value %d", p.MaximumSampleValue)
	}
	if p.ResetValue != 0 && (p.ResetValue < minResetValue || p.ResetValue > maxResetValue) {
		return newError(CodeParameterValueNotSupported, "reset value %d", p.ResetValue)
	}
	filled := p.withDefaults(maxVal, near)
	if filled.Threshold1 > filled.Threshold2 || filled.Threshold2 > filled.Threshold3 {
		return newError(CodeParameterValueNotSupported,
			"thresholds %d/%d/%d not ascending", filled.Threshold1, filled.Threshold2, filled.Threshold3)
	}
	return nil
}

// maxNearLossless returns the largest legal NEAR for a maximum sample
// value: half the range, capped at 255 (the SOS field is one byte).
func maxNearLossless(maxVal int) int {
	near := maxVal / 2
	if near > 255 {
		near = 255
	}
	return near
}
