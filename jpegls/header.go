package jpegls

import (
	"errors"

	"github.com/kolibri91/charls/jpeg"
)

// Marker-segment parsing and building around the entropy-coded scans
// (ITU-T T.87 Annex B: SOI, SOF55, LSE, SOS, EOI).

// scanParameters carries the per-scan fields of an SOS segment.
type scanParameters struct {
	componentCount int
	near           int
	interleave     InterleaveMode
}

// mapMarkerError translates marker-layer sentinels into stable codes.
func mapMarkerError(err error) error {
	if errors.Is(err, jpeg.ErrMarkerStartByteNotFound) {
		return newError(CodeMarkerStartByteNotFound, "%v", err)
	}
	return newError(CodeInvalidCompressedData, "%v", err)
}

// readHeader parses the stream up to and including the first SOS segment.
func (d *Decoder) readHeader() error {
	marker, err := d.reader.ReadMarker()
	if err != nil {
		return mapMarkerError(err)
	}
	if marker != jpeg.MarkerSOI {
		return newError(CodeUnknownJpegMarker, "expected SOI, found %#04x", marker)
	}

	for {
		marker, err := d.reader.ReadMarker()
		if err != nil {
			return mapMarkerError(err)
		}

		switch {
		case marker == jpeg.MarkerSOF55:
			if err := d.parseSOF55(); err != nil {
				return err
			}

		case marker == jpeg.MarkerLSE:
			if err := d.parseLSE(); err != nil {
				return err
			}

		case marker == jpeg.MarkerSOS:
			if !d.sofFound {
				return newError(CodeInvalidCompressedData, "SOS before SOF55")
			}
			scan, err := d.parseSOS()
			if err != nil {
				return err
			}
			d.firstScan = scan
			return nil

		case marker == jpeg.MarkerEOI:
			return newError(CodeInvalidCompressedData, "EOI before scan data")

		case jpeg.IsOtherSOF(marker):
			return newError(CodeEncodingNotSupported, "frame marker %#04x is not SOF-55", marker)

		case jpeg.IsAPP(marker) || marker == jpeg.MarkerCOM:
			if _, err := d.reader.ReadSegment(); err != nil {
				return mapMarkerError(err)
			}

		default:
			return newError(CodeUnknownJpegMarker, "marker %#04x", marker)
		}
	}
}

func (d *Decoder) parseSOF55() error {
	seg, err := d.reader.ReadSegment()
	if err != nil {
		return mapMarkerError(err)
	}
	if len(seg) < 6 {
		return newError(CodeInvalidCompressedData, "SOF55 segment too short")
	}

	bits := int(seg[0])
	height := int(seg[1])<<8 | int(seg[2])
	width := int(seg[3])<<8 | int(seg[4])
	components := int(seg[5])

	if bits < 2 || bits > 16 {
		return newError(CodeParameterValueNotSupported, "bits per sample %d", bits)
	}
	if width < 1 || height < 1 {
		return newError(CodeParameterValueNotSupported, "image size %dx%d", width, height)
	}
	if components < 1 {
		return newError(CodeParameterValueNotSupported, "component count %d", components)
	}
	if len(seg) != 6+3*components {
		return newError(CodeInvalidCompressedData, "SOF55 length %d for %d components", len(seg), components)
	}

	d.frame = FrameInfo{
		Width:         width,
		Height:        height,
		BitsPerSample: bits,
		Components:    components,
	}
	d.sofFound = true
	return nil
}

func (d *Decoder) parseLSE() error {
	seg, err := d.reader.ReadSegment()
	if err != nil {
		return mapMarkerError(err)
	}
	if len(seg) < 1 {
		return newError(CodeInvalidCompressedData, "empty LSE segment")
	}

	// Only id 1 (preset coding parameters) is supported; the mapping-table
	// ids 2 and 3 are out of scope.
	if seg[0] != 1 {
		return newError(CodeParameterValueNotSupported, "LSE id %d", seg[0])
	}
	if len(seg) != 11 {
		return newError(CodeInvalidCompressedData, "LSE segment length %d", len(seg))
	}

	d.preset = PresetCodingParameters{
		MaximumSampleValue: int(seg[1])<<8 | int(seg[2]),
		Threshold1:         int(seg[3])<<8 | int(seg[4]),
		Threshold2:         int(seg[5])<<8 | int(seg[6]),
		Threshold3:         int(seg[7])<<8 | int(seg[8]),
		ResetValue:         int(seg[9])<<8 | int(seg[10]),
	}
	return nil
}

func (d *Decoder) parseSOS() (scanParameters, error) {
	var scan scanParameters

	seg, err := d.reader.ReadSegment()
	if err != nil {
		return scan, mapMarkerError(err)
	}
	if len(seg) < 1 {
		return scan, newError(CodeInvalidCompressedData, "empty SOS segment")
	}

	ns := int(seg[0])
	if len(seg) != 1+2*ns+3 {
		return scan, newError(CodeInvalidCompressedData, "SOS segment length %d for %d components", len(seg), ns)
	}

	near := int(seg[1+2*ns])
	ilv := int(seg[2+2*ns])

	if ilv > int(InterleaveSample) {
		return scan, newError(CodeParameterValueNotSupported, "interleave mode %d", ilv)
	}
	if near > maxNearLossless(d.maximumSampleValue()) {
		return scan, newError(CodeParameterValueNotSupported, "NEAR %d", near)
	}

	switch {
	case ns == 1:
		// One component per scan: interleave within the scan is none.
		if ilv != int(InterleaveNone) {
			return scan, newError(CodeParameterValueNotSupported, "interleave %d for single component scan", ilv)
		}
	case ns == d.frame.Components && ns >= 2 && ns <= 4:
		if ilv == int(InterleaveNone) {
			return scan, newError(CodeParameterValueNotSupported, "interleave none for %d component scan", ns)
		}
	default:
		return scan, newError(CodeParameterValueNotSupported, "scan component count %d", ns)
	}

	scan.componentCount = ns
	scan.near = near
	scan.interleave = InterleaveMode(ilv)
	return scan, nil
}

// readNextScanHeader advances over the markers between two scans of an
// interleave-none stream and parses the next SOS.
func (d *Decoder) readNextScanHeader() (scanParameters, error) {
	var scan scanParameters
	for {
		marker, err := d.reader.ReadMarker()
		if err != nil {
			return scan, mapMarkerError(err)
		}

		switch {
		case marker == jpeg.MarkerSOS:
			return d.parseSOS()

		case marker == jpeg.MarkerLSE:
			if err := d.parseLSE(); err != nil {
				return scan, err
			}

		case jpeg.IsAPP(marker) || marker == jpeg.MarkerCOM || marker == jpeg.MarkerDNL:
			if _, err := d.reader.ReadSegment(); err != nil {
				return scan, mapMarkerError(err)
			}

		case marker == jpeg.MarkerEOI:
			return scan, newError(CodeInvalidCompressedData, "EOI before last scan")

		default:
			return scan, newError(CodeUnknownJpegMarker, "marker %#04x between scans", marker)
		}
	}
}

// readEndOfImage consumes trailing segments after the last scan and
// requires the stream to close with EOI.
func (d *Decoder) readEndOfImage() error {
	for {
		marker, err := d.reader.ReadMarker()
		if err != nil {
			return mapMarkerError(err)
		}

		switch {
		case marker == jpeg.MarkerEOI:
			return nil

		case jpeg.IsAPP(marker) || marker == jpeg.MarkerCOM || marker == jpeg.MarkerDNL:
			if _, err := d.reader.ReadSegment(); err != nil {
				return mapMarkerError(err)
			}

		default:
			return newError(CodeUnknownJpegMarker, "marker %#04x after last scan", marker)
		}
	}
}

// writeHeader emits SOI, SOF55 and, when the preset parameters are not the
// computed defaults, an LSE segment.
func writeHeader(w *jpeg.Writer, frame FrameInfo, near int, pcp PresetCodingParameters) {
	w.WriteMarker(jpeg.MarkerSOI)

	sof := make([]byte, 0, 6+3*frame.Components)
	sof = append(sof,
		byte(frame.BitsPerSample),
		byte(frame.Height>>8), byte(frame.Height),
		byte(frame.Width>>8), byte(frame.Width),
		byte(frame.Components))
	for c := 0; c < frame.Components; c++ {
		sof = append(sof, byte(c+1), 0x11, 0)
	}
	w.WriteSegment(jpeg.MarkerSOF55, sof)

	defaultMaxVal := 1<<uint(frame.BitsPerSample) - 1
	if !pcp.isDefault(defaultMaxVal, near) {
		filled := pcp.withDefaults(defaultMaxVal, near)
		lse := []byte{
			1,
			byte(filled.MaximumSampleValue >> 8), byte(filled.MaximumSampleValue),
			byte(filled.Threshold1 >> 8), byte(filled.Threshold1),
			byte(filled.Threshold2 >> 8), byte(filled.Threshold2),
			byte(filled.Threshold3 >> 8), byte(filled.Threshold3),
			byte(filled.ResetValue >> 8), byte(filled.ResetValue),
		}
		w.WriteSegment(jpeg.MarkerLSE, lse)
	}
}

// writeScanHeader emits the SOS segment for one scan. firstComponent and
// componentCount select the component ids the scan covers.
func writeScanHeader(w *jpeg.Writer, firstComponent, componentCount, near int, interleave InterleaveMode) {
	sos := make([]byte, 0, 1+2*componentCount+3)
	sos = append(sos, byte(componentCount))
	for c := 0; c < componentCount; c++ {
		sos = append(sos, byte(firstComponent+c+1), 0)
	}
	sos = append(sos, byte(near), byte(interleave), 0)
	w.WriteSegment(jpeg.MarkerSOS, sos)
}
