package jpegls

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorValueRoundTrip(t *testing.T) {
	for e := -70000; e <= 70000; e++ {
		m := mapErrorValue(e)
		require.GreaterOrEqual(t, m, 0, "mapErrorValue(%d)", e)
		require.Equal(t, e, unmapErrorValue(m), "roundtrip %d", e)
	}
}

func TestMapErrorValueInterleaving(t *testing.T) {
	// 0, -1, 1, -2, 2, ... map onto 0, 1, 2, 3, 4, ...
	assert.Equal(t, 0, mapErrorValue(0))
	assert.Equal(t, 1, mapErrorValue(-1))
	assert.Equal(t, 2, mapErrorValue(1))
	assert.Equal(t, 3, mapErrorValue(-2))
	assert.Equal(t, 4, mapErrorValue(2))
}

// Every Golomb code word, table path or fallback, decodes back to the
// error value it was encoded from.
func TestGolombEncodeDecodeRoundTrip(t *testing.T) {
	const limit, qbpp = 64, 16

	for k := 0; k < maxTableK; k++ {
		for e := -40; e <= 40; e++ {
			w := newBitWriter()
			encodeMappedValue(w, k, mapErrorValue(e), limit, qbpp)
			w.endScan()
			data := append(w.bytes(), 0xFF, 0xD9)

			r, err := NewBitReader(data)
			require.NoError(t, err)
			v, err := decodeValue(r, k, limit, qbpp)
			require.NoError(t, err, "k=%d e=%d", k, e)
			require.Equal(t, e, unmapErrorValue(v), "k=%d e=%d", k, e)
		}
	}
}

// The peek tables agree with the bit-serial decode wherever they claim a
// hit.
func TestGolombTableMatchesBitSerialDecode(t *testing.T) {
	const limit, qbpp = 64, 16

	for k := 0; k < maxTableK; k++ {
		hits := 0
		for e := -200; e <= 200; e++ {
			w := newBitWriter()
			encodeMappedValue(w, k, mapErrorValue(e), limit, qbpp)
			w.endScan()
			data := append(w.bytes(), 0xFF, 0xD9)

			r, err := NewBitReader(data)
			require.NoError(t, err)
			peek, err := r.PeekByte()
			require.NoError(t, err)

			code := decodingTables[k][peek]
			if code.length == 0 {
				continue
			}
			hits++
			require.Equal(t, e, int(code.value), "k=%d e=%d", k, e)

			length, _ := createEncodedValue(k, mapErrorValue(e))
			require.Equal(t, length, int(code.length), "k=%d e=%d", k, e)
		}
		// Code words need k+1 bits at minimum, so only tables up to k = 7
		// can hold entries within the 8-bit peek width.
		if k <= 7 {
			require.Greater(t, hits, 0, "table %d never hit", k)
		} else {
			require.Zero(t, hits, "table %d unexpectedly hit", k)
		}
	}
}

func TestGolombTableEntriesWithinPeekWidth(t *testing.T) {
	for k := 0; k < maxTableK; k++ {
		for v, code := range decodingTables[k] {
			assert.LessOrEqual(t, int(code.length), 8, "k=%d peek=%#02x", k, v)
		}
	}
}

func TestEncodeMappedValueEscapeForm(t *testing.T) {
	// With limit 10 and qbpp 4, mapped errors with a unary prefix of at
	// least limit-qbpp-1 = 5 use the escape: 5 zeros, a 1, then the
	// mapped value minus one in 4 bits.
	const limit, qbpp = 10, 4

	w := newBitWriter()
	encodeMappedValue(w, 0, 9, limit, qbpp)
	w.endScan()
	data := append(w.bytes(), 0xFF, 0xD9)

	r, err := NewBitReader(data)
	require.NoError(t, err)
	high, err := r.ReadHighBits()
	require.NoError(t, err)
	assert.Equal(t, 5, high)

	v, err := r.ReadValue(qbpp)
	require.NoError(t, err)
	assert.Equal(t, 8, v)

	// And decodeValue reassembles it.
	r2, err := NewBitReader(data)
	require.NoError(t, err)
	got, err := decodeValue(r2, 0, limit, qbpp)
	require.NoError(t, err)
	assert.Equal(t, 9, got)
}
