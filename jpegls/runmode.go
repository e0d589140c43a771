package jpegls

// Run mode: entered when all three gradients quantise to zero. Run lengths
// are coded with the fixed order table J below; the sample that breaks a
// run is coded through one of two dedicated interruption contexts.

// runLengthJ holds the run-length code orders (ITU-T T.87 A.2.1 step 3).
var runLengthJ = [32]int{
	0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 3,
	4, 4, 5, 5, 6, 6, 7, 7, 8, 9, 10, 11, 12, 13, 14, 15,
}

// incrementRunIndex raises the run-length code order, saturating at the
// end of the J table.
func incrementRunIndex(runIndex int) int {
	if runIndex < len(runLengthJ)-1 {
		return runIndex + 1
	}
	return runIndex
}

// decrementRunIndex lowers the run-length code order, saturating at zero.
func decrementRunIndex(runIndex int) int {
	if runIndex > 0 {
		return runIndex - 1
	}
	return runIndex
}

// runModeContext holds the statistics of one run-interruption context.
// Nn counts negative errors and drives the asymmetric error mapping.
type runModeContext struct {
	runInterruptionType int // 0 when Ra != Rb at the interruption, 1 otherwise
	A                   int
	N                   int
	Nn                  int
}

func newRunModeContext(runInterruptionType, rng int) runModeContext {
	return runModeContext{
		runInterruptionType: runInterruptionType,
		A:                   initializationValueA(rng),
		N:                   1,
	}
}

// golombParameter derives k for the interruption sample (A.7.1.2, with the
// type-1 bias of N/2 added to the activity).
func (c *runModeContext) golombParameter() int {
	temp := c.A + (c.N>>1)*c.runInterruptionType
	nTest := c.N
	k := 0
	for nTest < temp {
		nTest <<= 1
		k++
	}
	return k
}

// computeMap returns the mapping bit for an interruption error
// (code segment A.21).
func (c *runModeContext) computeMap(errorValue, k int) bool {
	if k == 0 && errorValue > 0 && 2*c.Nn < c.N {
		return true
	}
	if errorValue < 0 && 2*c.Nn >= c.N {
		return true
	}
	if errorValue < 0 && k != 0 {
		return true
	}
	return false
}

// computeErrorValue reconstructs the signed error from the decoded mapped
// value, inverting computeMap.
func (c *runModeContext) computeErrorValue(temp, k int) int {
	mapBit := temp & 1
	errorValueAbs := (temp + mapBit) / 2

	if (k != 0 || 2*c.Nn >= c.N) == (mapBit != 0) {
		return -errorValueAbs
	}
	return errorValueAbs
}

// update folds one interruption error into the statistics
// (code segment A.23).
func (c *runModeContext) update(errorValue, eMappedErrorValue, reset int) {
	if errorValue < 0 {
		c.Nn++
	}

	c.A += (eMappedErrorValue + 1 - c.runInterruptionType) >> 1

	if c.N == reset {
		c.A >>= 1
		c.N >>= 1
		c.Nn >>= 1
	}
	c.N++
}
