package jpeg

import "encoding/binary"

// Reader walks the marker segments of a JPEG code stream held in memory.
// It tracks its byte offset so a caller can hand the entropy-coded payload
// between SOS and the next marker to a scan decoder and resume afterwards.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a reader over the full code stream.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Offset returns the current byte position in the code stream.
func (r *Reader) Offset() int {
	return r.pos
}

// Seek repositions the reader at an absolute byte offset.
func (r *Reader) Seek(offset int) {
	r.pos = offset
}

// Remaining returns the bytes from the current position to the end.
func (r *Reader) Remaining() []byte {
	return r.data[r.pos:]
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, ErrUnexpectedEndOfData
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadUint16 reads a 16-bit big-endian value.
func (r *Reader) ReadUint16() (uint16, error) {
	if r.pos+2 > len(r.data) {
		return 0, ErrUnexpectedEndOfData
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

// ReadMarker reads the next JPEG marker. The first byte must be 0xFF;
// padding 0xFF bytes before the marker code are skipped (ITU-T T.81 B.1.1.2).
func (r *Reader) ReadMarker() (uint16, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	if b != 0xFF {
		return 0, ErrMarkerStartByteNotFound
	}

	for {
		b, err = r.ReadByte()
		if err != nil {
			return 0, err
		}
		if b != 0xFF {
			break
		}
	}

	// 0x00 is a stuffed byte inside entropy-coded data, never a marker code.
	if b == 0x00 {
		return 0, ErrMarkerStartByteNotFound
	}

	return uint16(0xFF00) | uint16(b), nil
}

// ReadSegment reads a marker segment body. The leading length field counts
// itself, so the returned slice holds length-2 bytes. The slice aliases the
// underlying code stream and must not be modified.
func (r *Reader) ReadSegment() ([]byte, error) {
	length, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	if length < 2 {
		return nil, ErrInvalidSegmentLength
	}
	n := int(length) - 2
	if r.pos+n > len(r.data) {
		return nil, ErrUnexpectedEndOfData
	}
	data := r.data[r.pos : r.pos+n]
	r.pos += n
	return data, nil
}
