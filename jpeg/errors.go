package jpeg

import "errors"

// Marker-layer errors. The codec packages wrap these into their own
// user-visible error codes.
var (
	ErrMarkerStartByteNotFound = errors.New("expected 0xFF marker start byte")
	ErrInvalidSegmentLength    = errors.New("invalid segment length")
	ErrUnexpectedEndOfData     = errors.New("unexpected end of data")
)
