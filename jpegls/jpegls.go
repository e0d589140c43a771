// Package jpegls implements a JPEG-LS (ISO/IEC 14495-1, ITU-T T.87) codec:
// lossless and near-lossless compression of 2..16 bit images built on
// LOCO-I context modelling and Golomb-Rice coding.
package jpegls

import "github.com/kolibri91/charls/jpeg"

// InterleaveMode selects how the components of a multi-component image are
// organised in the coded scans (SOS ILV field).
type InterleaveMode int

const (
	// InterleaveNone codes every component as its own scan; decoded
	// output is planar.
	InterleaveNone InterleaveMode = 0

	// InterleaveLine codes one line per component per raster line;
	// decoded output holds consecutive component rows per line.
	InterleaveLine InterleaveMode = 1

	// InterleaveSample codes all components of a pixel together; decoded
	// output is pixel-interleaved.
	InterleaveSample InterleaveMode = 2
)

func (m InterleaveMode) String() string {
	switch m {
	case InterleaveNone:
		return "none"
	case InterleaveLine:
		return "line"
	case InterleaveSample:
		return "sample"
	default:
		return "invalid"
	}
}

// FrameInfo describes the raster geometry of an image.
type FrameInfo struct {
	Width         int
	Height        int
	BitsPerSample int
	Components    int
}

func (f FrameInfo) validate() error {
	if f.Width < 1 || f.Width > 1<<16-1 {
		return newError(CodeParameterValueNotSupported, "width %d", f.Width)
	}
	if f.Height < 1 || f.Height > 1<<16-1 {
		return newError(CodeParameterValueNotSupported, "height %d", f.Height)
	}
	if f.BitsPerSample < 2 || f.BitsPerSample > 16 {
		return newError(CodeParameterValueNotSupported, "bits per sample %d", f.BitsPerSample)
	}
	if f.Components < 1 || f.Components > 255 {
		return newError(CodeParameterValueNotSupported, "component count %d", f.Components)
	}
	return nil
}

func bytesPerSample(bitsPerSample int) int {
	if bitsPerSample <= 8 {
		return 1
	}
	return 2
}

// Decoder reads a JPEG-LS code stream: header first, then the scans.
type Decoder struct {
	reader *jpeg.Reader

	frame  FrameInfo
	preset PresetCodingParameters

	sofFound   bool
	headerRead bool
	firstScan  scanParameters
}

// NewDecoder creates a decoder over a complete JPEG-LS code stream held in
// memory. The slice is borrowed for the lifetime of the decoder.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{reader: jpeg.NewReader(data)}
}

// ReadHeader parses the markers up to the first scan. It is idempotent;
// Decode calls it when needed.
func (d *Decoder) ReadHeader() error {
	if d.headerRead {
		return nil
	}
	if err := d.readHeader(); err != nil {
		return err
	}
	d.headerRead = true
	return nil
}

// FrameInfo returns the frame geometry. Valid after ReadHeader.
func (d *Decoder) FrameInfo() FrameInfo {
	return d.frame
}

// NearLossless returns the NEAR parameter of the first scan. Valid after
// ReadHeader; 0 means lossless.
func (d *Decoder) NearLossless() int {
	return d.firstScan.near
}

// Interleave returns the interleave mode of the stream. Valid after
// ReadHeader.
func (d *Decoder) Interleave() InterleaveMode {
	if d.frame.Components > 1 && d.firstScan.componentCount == 1 {
		return InterleaveNone
	}
	return d.firstScan.interleave
}

// Preset returns the preset coding parameters with defaults filled in.
// Valid after ReadHeader.
func (d *Decoder) Preset() PresetCodingParameters {
	return d.preset.withDefaults(1<<uint(d.frame.BitsPerSample)-1, d.firstScan.near)
}

// DecodedSize returns the number of destination bytes Decode requires.
func (d *Decoder) DecodedSize() int {
	return d.frame.Width * d.frame.Height * d.frame.Components * bytesPerSample(d.frame.BitsPerSample)
}

func (d *Decoder) maximumSampleValue() int {
	if d.preset.MaximumSampleValue > 0 {
		return d.preset.MaximumSampleValue
	}
	return 1<<uint(d.frame.BitsPerSample) - 1
}

// Decode decodes every scan into dst. The destination size is checked
// before any sample is written.
func (d *Decoder) Decode(dst []byte) error {
	if err := d.ReadHeader(); err != nil {
		return err
	}
	if len(dst) < d.DecodedSize() {
		return newError(CodeDestinationBufferTooSmall,
			"need %d bytes, have %d", d.DecodedSize(), len(dst))
	}
	if err := d.preset.validate(d.maximumSampleValue(), d.firstScan.near); err != nil {
		return err
	}

	scan := d.firstScan
	scanCount := 1
	if scan.componentCount == 1 && d.frame.Components > 1 {
		scanCount = d.frame.Components
	}

	for s := 0; ; s++ {
		if err := d.decodeScanPayload(dst, s, scan); err != nil {
			return err
		}
		if s+1 == scanCount {
			break
		}
		next, err := d.readNextScanHeader()
		if err != nil {
			return err
		}
		if next.componentCount != 1 {
			return newError(CodeParameterValueNotSupported,
				"scan %d codes %d components", s+1, next.componentCount)
		}
		scan = next
	}

	return d.readEndOfImage()
}

// decodeScanPayload decodes one entropy-coded segment starting at the
// reader position and advances the reader past it.
func (d *Decoder) decodeScanPayload(dst []byte, scanIndex int, scan scanParameters) error {
	payload := d.reader.Remaining()

	var consumed int
	var err error
	if d.frame.BitsPerSample <= 8 {
		consumed, err = decodeScanInto[uint8](d, dst, scanIndex, scan, payload)
	} else {
		consumed, err = decodeScanInto[uint16](d, dst, scanIndex, scan, payload)
	}
	if err != nil {
		return err
	}

	d.reader.Seek(d.reader.Offset() + consumed)
	return nil
}

func decodeScanInto[S Sample](d *Decoder, dst []byte, scanIndex int, scan scanParameters, payload []byte) (int, error) {
	br, err := NewBitReader(payload)
	if err != nil {
		return 0, err
	}

	frame := d.frame
	bps := bytesPerSample(frame.BitsPerSample)

	var sink LineSink[S]
	scanComponents := 1
	switch scan.interleave {
	case InterleaveLine:
		scanComponents = frame.Components
		sink = &lineWriter[S]{dst: dst, components: scanComponents, width: frame.Width, bytesPerSample: bps}
	case InterleaveSample:
		scanComponents = frame.Components
		sink = &pixelWriter[S]{dst: dst, components: scanComponents, width: frame.Width, bytesPerSample: bps}
	default:
		sink = &planeWriter[S]{
			dst:            dst,
			base:           scanIndex * frame.Width * frame.Height * bps,
			width:          frame.Width,
			bytesPerSample: bps,
		}
	}

	maxVal := d.maximumSampleValue()
	pcp := d.preset.withDefaults(maxVal, scan.near)

	if useLosslessTraits(frame.BitsPerSample, maxVal, scan.near, pcp) {
		sd := newScanDecoder[S](newLosslessTraits(frame.BitsPerSample), pcp,
			frame.Width, frame.Height, scanComponents, scan.interleave, br, sink)
		if err := sd.decodeScan(); err != nil {
			return 0, err
		}
	} else {
		sd := newScanDecoder[S](newDefaultTraits(maxVal, scan.near, pcp.ResetValue), pcp,
			frame.Width, frame.Height, scanComponents, scan.interleave, br, sink)
		if err := sd.decodeScan(); err != nil {
			return 0, err
		}
	}

	return br.BytesConsumed(), nil
}

// useLosslessTraits selects the fast numeric policy: lossless, full
// power-of-two range and the default reset interval.
func useLosslessTraits(bitsPerSample, maxVal, near int, pcp PresetCodingParameters) bool {
	return near == 0 &&
		maxVal == 1<<uint(bitsPerSample)-1 &&
		pcp.ResetValue == defaultResetValue
}

// Decode is the convenience one-shot API: it allocates the destination and
// decodes the whole image.
func Decode(data []byte) ([]byte, FrameInfo, error) {
	d := NewDecoder(data)
	if err := d.ReadHeader(); err != nil {
		return nil, FrameInfo{}, err
	}
	dst := make([]byte, d.DecodedSize())
	if err := d.Decode(dst); err != nil {
		return nil, FrameInfo{}, err
	}
	return dst, d.FrameInfo(), nil
}

// EncodeOptions tunes an encode. The zero value encodes lossless with
// interleave none and default preset parameters.
type EncodeOptions struct {
	NearLossless int
	Interleave   InterleaveMode
	Preset       PresetCodingParameters
}

// Encode compresses pixels laid out per the interleave mode (planar for
// none, component rows per line for line, pixel-interleaved for sample)
// into a complete JPEG-LS code stream.
func Encode(pixels []byte, frame FrameInfo, opts *EncodeOptions) ([]byte, error) {
	var o EncodeOptions
	if opts != nil {
		o = *opts
	}

	if err := frame.validate(); err != nil {
		return nil, err
	}
	if frame.Components == 1 {
		o.Interleave = InterleaveNone
	}
	if o.Interleave < InterleaveNone || o.Interleave > InterleaveSample {
		return nil, newError(CodeParameterValueNotSupported, "interleave mode %d", o.Interleave)
	}
	if o.Interleave != InterleaveNone && (frame.Components < 2 || frame.Components > 4) {
		return nil, newError(CodeParameterValueNotSupported,
			"interleave %s with %d components", o.Interleave, frame.Components)
	}

	defaultMaxVal := 1<<uint(frame.BitsPerSample) - 1
	maxVal := defaultMaxVal
	if o.Preset.MaximumSampleValue > 0 {
		maxVal = o.Preset.MaximumSampleValue
	}
	if o.NearLossless < 0 || o.NearLossless > maxNearLossless(maxVal) {
		return nil, newError(CodeParameterValueNotSupported, "NEAR %d", o.NearLossless)
	}
	if err := o.Preset.validate(maxVal, o.NearLossless); err != nil {
		return nil, err
	}

	needed := frame.Width * frame.Height * frame.Components * bytesPerSample(frame.BitsPerSample)
	if len(pixels) < needed {
		return nil, newError(CodeParameterValueNotSupported,
			"pixel buffer holds %d bytes, frame needs %d", len(pixels), needed)
	}

	if frame.BitsPerSample <= 8 {
		return encodeStream[uint8](pixels, frame, o)
	}
	return encodeStream[uint16](pixels, frame, o)
}

func encodeStream[S Sample](pixels []byte, frame FrameInfo, o EncodeOptions) ([]byte, error) {
	w := jpeg.NewWriter()
	writeHeader(w, frame, o.NearLossless, o.Preset)

	scanCount := 1
	if o.Interleave == InterleaveNone {
		scanCount = frame.Components
	}

	for s := 0; s < scanCount; s++ {
		scanComponents := frame.Components
		if o.Interleave == InterleaveNone {
			scanComponents = 1
		}
		writeScanHeader(w, s, scanComponents, o.NearLossless, o.Interleave)

		payload, err := encodeScanBytes[S](pixels, frame, s, o)
		if err != nil {
			return nil, err
		}
		w.WriteBytes(payload)
	}

	w.WriteMarker(jpeg.MarkerEOI)
	return w.Bytes(), nil
}

func encodeScanBytes[S Sample](pixels []byte, frame FrameInfo, scanIndex int, o EncodeOptions) ([]byte, error) {
	bps := bytesPerSample(frame.BitsPerSample)

	var source LineSource[S]
	scanComponents := 1
	switch o.Interleave {
	case InterleaveLine:
		scanComponents = frame.Components
		source = &lineReader[S]{src: pixels, components: scanComponents, width: frame.Width, bytesPerSample: bps}
	case InterleaveSample:
		scanComponents = frame.Components
		source = &pixelReader[S]{src: pixels, components: scanComponents, width: frame.Width, bytesPerSample: bps}
	default:
		source = &planeReader[S]{
			src:            pixels,
			base:           scanIndex * frame.Width * frame.Height * bps,
			width:          frame.Width,
			bytesPerSample: bps,
		}
	}

	defaultMaxVal := 1<<uint(frame.BitsPerSample) - 1
	maxVal := defaultMaxVal
	if o.Preset.MaximumSampleValue > 0 {
		maxVal = o.Preset.MaximumSampleValue
	}
	pcp := o.Preset.withDefaults(maxVal, o.NearLossless)

	if useLosslessTraits(frame.BitsPerSample, maxVal, o.NearLossless, pcp) {
		se := newScanEncoder[S](newLosslessTraits(frame.BitsPerSample), pcp,
			frame.Width, frame.Height, scanComponents, o.Interleave, source)
		return se.encodeScan()
	}

	se := newScanEncoder[S](newDefaultTraits(maxVal, o.NearLossless, pcp.ResetValue), pcp,
		frame.Width, frame.Height, scanComponents, o.Interleave, source)
	return se.encodeScan()
}
