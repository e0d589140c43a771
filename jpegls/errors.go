package jpegls

import (
	"errors"
	"fmt"
)

// Code identifies a stable, user-visible decode/encode failure category.
type Code int

const (
	// CodeInvalidCompressedData means the bit stream was exhausted or an
	// illegal bit pattern was found.
	CodeInvalidCompressedData Code = iota + 1

	// CodeTooMuchCompressedData means bits remain after the scan should
	// have ended.
	CodeTooMuchCompressedData

	// CodeMarkerStartByteNotFound means no 0xFF was found where a marker
	// was expected.
	CodeMarkerStartByteNotFound

	// CodeEncodingNotSupported means the frame uses a JPEG process other
	// than JPEG-LS (SOF-55).
	CodeEncodingNotSupported

	// CodeUnknownJpegMarker means an unrecognised marker was found.
	CodeUnknownJpegMarker

	// CodeParameterValueNotSupported means a frame or coding parameter is
	// out of the supported range.
	CodeParameterValueNotSupported

	// CodeDestinationBufferTooSmall means the destination cannot hold the
	// decoded samples.
	CodeDestinationBufferTooSmall
)

func (c Code) String() string {
	switch c {
	case CodeInvalidCompressedData:
		return "invalid_compressed_data"
	case CodeTooMuchCompressedData:
		return "too_much_compressed_data"
	case CodeMarkerStartByteNotFound:
		return "jpeg_marker_start_byte_not_found"
	case CodeEncodingNotSupported:
		return "encoding_not_supported"
	case CodeUnknownJpegMarker:
		return "unknown_jpeg_marker_found"
	case CodeParameterValueNotSupported:
		return "parameter_value_not_supported"
	case CodeDestinationBufferTooSmall:
		return "destination_buffer_too_small"
	default:
		return fmt.Sprintf("Code(%d)", int(c))
	}
}

// CodingError is a failure with a stable code and optional detail.
type CodingError struct {
	Code    Code
	Message string
}

func (e *CodingError) Error() string {
	if e.Message == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is makes errors.Is(err, target) match on equal codes, so the exported
// sentinels below can be used as targets for wrapped errors.
func (e *CodingError) Is(target error) bool {
	var other *CodingError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

func newError(code Code, format string, args ...any) *CodingError {
	return &CodingError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ErrorCode extracts the Code from an error chain, or 0 if the error did
// not originate in this package.
func ErrorCode(err error) Code {
	var ce *CodingError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return 0
}

// Sentinel errors, one per code, usable with errors.Is.
var (
	ErrInvalidCompressedData     = &CodingError{Code: CodeInvalidCompressedData}
	ErrTooMuchCompressedData     = &CodingError{Code: CodeTooMuchCompressedData}
	ErrMarkerStartByteNotFound   = &CodingError{Code: CodeMarkerStartByteNotFound}
	ErrEncodingNotSupported      = &CodingError{Code: CodeEncodingNotSupported}
	ErrUnknownJpegMarker         = &CodingError{Code: CodeUnknownJpegMarker}
	ErrParameterValueNotSupported = &CodingError{Code: CodeParameterValueNotSupported}
	ErrDestinationBufferTooSmall = &CodingError{Code: CodeDestinationBufferTooSmall}
)
