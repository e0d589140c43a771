package jpegls

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLengthJTable(t *testing.T) {
	expected := [32]int{
		0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 3,
		4, 4, 5, 5, 6, 6, 7, 7, 8, 9, 10, 11, 12, 13, 14, 15,
	}
	assert.Equal(t, expected, runLengthJ)
}

func TestRunIndexBounds(t *testing.T) {
	assert.Equal(t, 1, incrementRunIndex(0))
	assert.Equal(t, 31, incrementRunIndex(31))
	assert.Equal(t, 0, decrementRunIndex(1))
	assert.Equal(t, 0, decrementRunIndex(0))
}

func TestRunModeContextGolombParameter(t *testing.T) {
	for _, riType := range []int{0, 1} {
		ctx := runModeContext{runInterruptionType: riType, A: 32, N: 2}
		k := ctx.golombParameter()
		temp := ctx.A + (ctx.N>>1)*riType
		assert.GreaterOrEqual(t, ctx.N<<uint(k), temp, "type %d", riType)
		if k > 0 {
			assert.Less(t, ctx.N<<uint(k-1), temp, "type %d", riType)
		}
	}
}

// The encoder-side mapping and the decoder-side reconstruction of run
// interruption errors are inverses for every context state.
func TestRunModeErrorMappingInverse(t *testing.T) {
	states := []runModeContext{
		{N: 1, Nn: 0},
		{N: 4, Nn: 1},
		{N: 4, Nn: 2},
		{N: 64, Nn: 40},
	}

	for _, riType := range []int{0, 1} {
		for _, state := range states {
			for k := 0; k <= 4; k++ {
				for e := -25; e <= 25; e++ {
					if riType == 1 && e == 0 {
						// Type 1 interruptions always carry a nonzero
						// error: the run ended because the sample was not
						// near Ra.
						continue
					}
					ctx := state
					ctx.runInterruptionType = riType

					mapBit := 0
					if ctx.computeMap(e, k) {
						mapBit = 1
					}
					eMapped := 2*abs(e) - riType - mapBit
					require.GreaterOrEqual(t, eMapped, 0,
						"type=%d k=%d e=%d state=%+v", riType, k, e, state)

					got := ctx.computeErrorValue(eMapped+riType, k)
					require.Equal(t, e, got,
						"type=%d k=%d e=%d state=%+v", riType, k, e, state)
				}
			}
		}
	}
}

func TestRunModeContextUpdate(t *testing.T) {
	ctx := newRunModeContext(0, 256)
	a0 := ctx.A

	ctx.update(-3, 5, defaultResetValue)
	assert.Equal(t, 1, ctx.Nn, "negative errors bump Nn")
	assert.Equal(t, a0+3, ctx.A) // (5+1-0)>>1
	assert.Equal(t, 2, ctx.N)

	ctx.update(4, 8, defaultResetValue)
	assert.Equal(t, 1, ctx.Nn)
	assert.Equal(t, 3, ctx.N)
}

func TestRunModeContextResetHalving(t *testing.T) {
	ctx := newRunModeContext(1, 256)
	ctx.A = 80
	ctx.N = defaultResetValue
	ctx.Nn = 21

	ctx.update(2, 3, defaultResetValue)

	// A += (3+1-1)>>1 = 1, then halve all three, then N++.
	assert.Equal(t, 40, ctx.A)
	assert.Equal(t, 33, ctx.N)
	assert.Equal(t, 10, ctx.Nn)
}
