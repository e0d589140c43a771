// Package jpeg provides the marker-segment layer shared by JPEG family
// codecs: marker constants, a segment reader and a segment writer.
package jpeg

// JPEG marker constants. JPEG-LS reuses the generic JPEG marker syntax
// (ITU-T T.81) and adds SOF55 and LSE (ITU-T T.87).
const (
	// Start of Image
	MarkerSOI = 0xFFD8

	// End of Image
	MarkerEOI = 0xFFD9

	// Start of Scan
	MarkerSOS = 0xFFDA

	// Start of Frame, JPEG-LS (SOF55)
	MarkerSOF55 = 0xFFF7

	// JPEG-LS preset parameters (LSE)
	MarkerLSE = 0xFFF8

	// Define Number of Lines
	MarkerDNL = 0xFFDC

	// Define Restart Interval
	MarkerDRI = 0xFFDD

	// Start of Frame markers of other JPEG processes. A JPEG-LS decoder
	// recognises these only to diagnose "wrong encoding".
	MarkerSOF0  = 0xFFC0 // Baseline DCT
	MarkerSOF1  = 0xFFC1 // Extended Sequential DCT
	MarkerSOF2  = 0xFFC2 // Progressive DCT
	MarkerSOF3  = 0xFFC3 // Lossless (Sequential)
	MarkerDHT   = 0xFFC4 // Define Huffman Table
	MarkerSOF15 = 0xFFCF // Differential Lossless, Arithmetic coding

	// Application segments
	MarkerAPP0  = 0xFFE0
	MarkerAPP15 = 0xFFEF

	// Comment
	MarkerCOM = 0xFFFE

	// Restart markers
	MarkerRST0 = 0xFFD0
	MarkerRST7 = 0xFFD7
)

// IsOtherSOF reports whether the marker starts a frame of a JPEG process
// other than JPEG-LS (the 0xFFC0..0xFFCF block, which includes DHT and DAC).
func IsOtherSOF(marker uint16) bool {
	return marker >= MarkerSOF0 && marker <= MarkerSOF15
}

// IsAPP reports whether the marker is an application data segment.
func IsAPP(marker uint16) bool {
	return marker >= MarkerAPP0 && marker <= MarkerAPP15
}

// IsRST reports whether the marker is a restart marker.
func IsRST(marker uint16) bool {
	return marker >= MarkerRST0 && marker <= MarkerRST7
}

// HasLength reports whether the marker is followed by a length field.
func HasLength(marker uint16) bool {
	if marker == MarkerSOI || marker == MarkerEOI {
		return false
	}
	return !IsRST(marker)
}
