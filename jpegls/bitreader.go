package jpegls

import (
	"encoding/binary"
	"io"
)

const (
	// Bit cache width. 32 bits keeps refill behaviour identical across
	// platforms; every refill leaves at least 8 bits of free space.
	cacheBitCount = 32

	// Size of the refill buffer when reading from a byte stream.
	streamBufferSize = 40000

	// The stream buffer slides and refills when no more than this many
	// bytes remain. Covers the cache width plus the worst-case code word.
	streamSlideThreshold = 64
)

// BitReader reads the entropy-coded segment of a JPEG-LS scan bit by bit,
// honouring the marker-escape rule: a 0xFF data byte is followed by a
// stuffing bit, so it contributes 8 bits and its successor only 7. Refill
// stops in front of a real marker (0xFF followed by a byte with bit 7 set).
//
// The input is either a byte range, borrowed from the caller for the
// lifetime of the reader, or a streaming source copied through an internal
// buffer.
type BitReader struct {
	data   []byte
	pos    int
	end    int
	nextFF int

	cache     uint32
	validBits int

	stream    io.Reader
	streamEOF bool
}

// NewBitReader creates a reader over an in-memory entropy-coded segment.
// The slice must start at the first byte after the SOS header.
func NewBitReader(data []byte) (*BitReader, error) {
	r := &BitReader{data: data, end: len(data)}
	r.nextFF = r.findNextFF()
	if err := r.makeValid(); err != nil {
		return nil, err
	}
	return r, nil
}

// NewStreamBitReader creates a reader fed from a byte stream through an
// internal refill buffer.
func NewStreamBitReader(stream io.Reader) (*BitReader, error) {
	r := &BitReader{
		data:   make([]byte, streamBufferSize),
		stream: stream,
	}
	r.end = 0
	r.addBytesFromStream()
	r.nextFF = r.findNextFF()
	if err := r.makeValid(); err != nil {
		return nil, err
	}
	return r, nil
}

// addBytesFromStream slides the unread residue to the front of the buffer
// and fills the rest from the stream. A no-op for in-memory readers and
// while enough buffered bytes remain.
func (r *BitReader) addBytesFromStream() {
	if r.stream == nil || r.streamEOF {
		return
	}

	count := r.end - r.pos
	if count > streamSlideThreshold {
		return
	}

	copy(r.data, r.data[r.pos:r.end])
	offset := r.pos
	r.pos = 0
	r.end = count
	r.nextFF -= offset

	// A short read means the stream is done; whatever arrived is valid.
	// Transport failures surface later as invalid compressed data when the
	// bits run out.
	n, err := io.ReadFull(r.stream, r.data[count:])
	if err != nil {
		r.streamEOF = true
	}
	r.end += n
}

// skip consumes length bits from the cache.
func (r *BitReader) skip(length int) {
	r.validBits -= length
	r.cache <<= uint(length)
}

// optimizedRead loads whole bytes big-endian while no 0xFF byte is in
// reach, so no escape inspection is needed.
func (r *BitReader) optimizedRead() bool {
	if r.pos < r.nextFF-(cacheBitCount/8-1) {
		r.cache |= binary.BigEndian.Uint32(r.data[r.pos:]) >> uint(r.validBits)
		bytesToRead := (cacheBitCount - r.validBits) >> 3
		r.pos += bytesToRead
		r.validBits += bytesToRead * 8
		return true
	}
	return false
}

// makeValid refills the cache until at least cacheBitCount-8 bits are
// valid, inspecting bytes one at a time near a 0xFF. Refill stops in front
// of a real marker; the same position is retested on the next call. Fails
// only when no bits are available at all.
func (r *BitReader) makeValid() error {
	if r.optimizedRead() {
		return nil
	}

	r.addBytesFromStream()

	for {
		if r.pos >= r.end {
			if r.validBits <= 0 {
				return newError(CodeInvalidCompressedData, "bit stream exhausted")
			}
			return nil
		}

		b := r.data[r.pos]

		if b == 0xFF {
			// No 0xFF in an entropy-coded segment may be followed by a
			// byte with bit 7 set; that is a marker and ends the scan.
			if r.pos == r.end-1 || r.data[r.pos+1]&0x80 != 0 {
				if r.validBits <= 0 {
					return newError(CodeInvalidCompressedData, "bit stream ends at marker")
				}
				return nil
			}
		}

		r.cache |= uint32(b) << uint(cacheBitCount-8-r.validBits)
		r.pos++
		r.validBits += 8

		// A stuffed 0xFF contributes 8 bits but its successor only 7: the
		// overlap swallows the stuffing bit.
		if b == 0xFF {
			r.validBits--
		}

		if r.validBits >= cacheBitCount-8 {
			break
		}
	}

	r.nextFF = r.findNextFF()
	return nil
}

func (r *BitReader) findNextFF() int {
	for i := r.pos; i < r.end; i++ {
		if r.data[i] == 0xFF {
			return i
		}
	}
	return r.end
}

// ReadValue consumes length bits (1..24) and returns them MSB first.
func (r *BitReader) ReadValue(length int) (int, error) {
	if r.validBits < length {
		if err := r.makeValid(); err != nil {
			return 0, err
		}
		if r.validBits < length {
			return 0, newError(CodeInvalidCompressedData, "not enough bits for %d-bit value", length)
		}
	}

	result := int(r.cache >> uint(cacheBitCount-length))
	r.skip(length)
	return result, nil
}

// ReadLongValue reads values up to 32 bits, split as (length-24, 24).
func (r *BitReader) ReadLongValue(length int) (int, error) {
	if length <= 24 {
		return r.ReadValue(length)
	}
	high, err := r.ReadValue(length - 24)
	if err != nil {
		return 0, err
	}
	low, err := r.ReadValue(24)
	if err != nil {
		return 0, err
	}
	return high<<24 + low, nil
}

// ReadBit consumes a single bit.
func (r *BitReader) ReadBit() (bool, error) {
	if r.validBits <= 0 {
		if err := r.makeValid(); err != nil {
			return false, err
		}
	}

	set := r.cache&(1<<(cacheBitCount-1)) != 0
	r.skip(1)
	return set, nil
}

// PeekByte returns the next 8 bits without consuming them. Near the end of
// the scan fewer than 8 bits may be valid; the remainder reads as zero.
func (r *BitReader) PeekByte() (int, error) {
	if r.validBits < 8 {
		if err := r.makeValid(); err != nil {
			return 0, err
		}
	}
	return int(r.cache >> (cacheBitCount - 8)), nil
}

// peek0Bits counts leading zero bits without consuming, or returns -1 when
// no 1 bit appears within the first 16.
func (r *BitReader) peek0Bits() (int, error) {
	if r.validBits < 16 {
		if err := r.makeValid(); err != nil {
			return 0, err
		}
	}

	test := r.cache
	for count := 0; count < 16; count++ {
		if test&(1<<(cacheBitCount-1)) != 0 {
			return count, nil
		}
		test <<= 1
	}
	return -1, nil
}

// ReadHighBits consumes a unary prefix: the leading zeros and the 1 bit
// that terminates them, returning the zero count.
func (r *BitReader) ReadHighBits() (int, error) {
	count, err := r.peek0Bits()
	if err != nil {
		return 0, err
	}
	if count >= 0 {
		r.skip(count + 1)
		return count, nil
	}

	r.skip(15)
	for highBits := 15; ; highBits++ {
		set, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		if set {
			return highBits, nil
		}
	}
}

// BytesConsumed returns the byte position of the next unconsumed bit,
// relative to the start of the segment. A preceding 0xFF contributes only
// 7 bits. The outer marker parser resumes at this offset after the scan.
func (r *BitReader) BytesConsumed() int {
	validBits := r.validBits
	pos := r.pos

	for {
		lastBits := 8
		if pos > 0 && r.data[pos-1] == 0xFF {
			lastBits = 7
		}
		if validBits < lastBits {
			return pos
		}
		validBits -= lastBits
		pos--
	}
}

// Finalize asserts the scan consumed exactly its own bits: the next byte
// must be the 0xFF of the following marker (allowing one padding bit) and
// the cache must hold no unconsumed nonzero bits.
func (r *BitReader) Finalize() error {
	if !(r.pos < r.end && r.data[r.pos] == 0xFF) {
		if _, err := r.ReadBit(); err != nil {
			return err
		}
		if !(r.pos < r.end && r.data[r.pos] == 0xFF) {
			return newError(CodeTooMuchCompressedData, "expected marker after scan")
		}
	}

	if r.cache != 0 {
		return newError(CodeTooMuchCompressedData, "unconsumed bits after scan")
	}
	return nil
}
