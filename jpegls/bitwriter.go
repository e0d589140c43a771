package jpegls

// bitWriter accumulates bits MSB first and appends whole bytes to an
// in-memory buffer. After a 0xFF byte it emits only 7 bits into the next
// byte, leaving bit 7 clear, which keeps the entropy-coded segment free of
// accidental marker codes.
type bitWriter struct {
	out          []byte
	bitBuffer    uint32
	freeBitCount int
	ffWritten    bool
}

func newBitWriter() *bitWriter {
	return &bitWriter{freeBitCount: cacheBitCount}
}

// appendToBitStream appends bitCount bits (0..31, MSB first). bits must not
// have bits set above bitCount.
func (w *bitWriter) appendToBitStream(bits, bitCount int) {
	w.freeBitCount -= bitCount
	if w.freeBitCount >= 0 {
		w.bitBuffer |= uint32(bits) << uint(w.freeBitCount)
		return
	}

	// Fill the remaining space and flush; stuffing bits may leave the
	// buffer still too full for the low part, so flush twice if needed.
	w.bitBuffer |= uint32(bits) >> uint(-w.freeBitCount)
	w.flush()

	if w.freeBitCount < 0 {
		w.bitBuffer |= uint32(bits) >> uint(-w.freeBitCount)
		w.flush()
	}

	w.bitBuffer |= uint32(bits) << uint(w.freeBitCount)
}

func (w *bitWriter) appendOnesToBitStream(length int) {
	w.appendToBitStream((1<<uint(length))-1, length)
}

// flush moves up to four complete bytes from the bit buffer to the output.
func (w *bitWriter) flush() {
	for i := 0; i < 4; i++ {
		if w.freeBitCount >= cacheBitCount {
			break
		}

		var b byte
		if w.ffWritten {
			// A 0xFF was just written: insert a 0 stuffing bit by taking
			// only 7 payload bits for this byte.
			b = byte(w.bitBuffer >> (cacheBitCount - 7))
			w.bitBuffer <<= 7
			w.freeBitCount += 7
		} else {
			b = byte(w.bitBuffer >> (cacheBitCount - 8))
			w.bitBuffer <<= 8
			w.freeBitCount += 8
		}

		w.ffWritten = b == 0xFF
		w.out = append(w.out, b)
	}
}

// endScan pads the stream to a byte boundary with zero bits and flushes.
func (w *bitWriter) endScan() {
	w.flush()

	if w.ffWritten {
		w.appendToBitStream(0, (w.freeBitCount-1)%8)
	} else {
		w.appendToBitStream(0, w.freeBitCount%8)
	}
	w.flush()
}

func (w *bitWriter) bytes() []byte {
	return w.out
}
