package jpegls

// Options carries the JPEG-LS coding options in the generic parameter
// form the DICOM imaging layer passes around.
type Options struct {
	// NEAR is the maximum allowed absolute error per sample.
	// 0 is lossless; near-lossless transfer syntaxes typically use 1-3.
	NEAR int

	// Interleave selects the scan organisation for multi-component images.
	Interleave InterleaveMode

	// Preset overrides the Annex C default coding parameters.
	Preset PresetCodingParameters

	// custom parameters handed through by name
	params map[string]interface{}
}

// NewOptions creates Options with lossless defaults.
func NewOptions() *Options {
	return &Options{params: make(map[string]interface{})}
}

// GetParameter retrieves a parameter by name.
func (o *Options) GetParameter(name string) interface{} {
	switch name {
	case "near":
		return o.NEAR
	case "interleave":
		return int(o.Interleave)
	default:
		return o.params[name]
	}
}

// SetParameter sets a parameter value by name.
func (o *Options) SetParameter(name string, value interface{}) {
	switch name {
	case "near":
		if v, ok := value.(int); ok {
			o.NEAR = v
		}
	case "interleave":
		if v, ok := value.(int); ok {
			o.Interleave = InterleaveMode(v)
		}
	default:
		if o.params == nil {
			o.params = make(map[string]interface{})
		}
		o.params[name] = value
	}
}

// Validate checks if the options are valid (implements codec.Options).
func (o *Options) Validate() error {
	if o.NEAR < 0 || o.NEAR > 255 {
		return newError(CodeParameterValueNotSupported, "NEAR %d", o.NEAR)
	}
	if o.Interleave < InterleaveNone || o.Interleave > InterleaveSample {
		return newError(CodeParameterValueNotSupported, "interleave %d", int(o.Interleave))
	}
	return nil
}

// WithNEAR sets the NEAR parameter and returns the options for chaining.
func (o *Options) WithNEAR(near int) *Options {
	o.NEAR = near
	return o
}

// WithInterleave sets the interleave mode and returns the options for
// chaining.
func (o *Options) WithInterleave(mode InterleaveMode) *Options {
	o.Interleave = mode
	return o
}
