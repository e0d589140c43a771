package jpegls

// Numeric policy of a scan: sample range, error quantisation and sample
// reconstruction, derived from (MAXVAL, NEAR, RESET) per ITU-T T.87 A.2.1.
// Two implementations exist: a fast one for the common lossless case with a
// full power-of-two range, and a general one for every other legal
// combination. They produce bit-identical results on overlapping inputs.

// codingParams holds the derived scan parameters shared by both traits.
type codingParams struct {
	MaxVal int
	Near   int
	Range  int
	Qbpp   int
	Bpp    int
	Limit  int
	Reset  int
}

// log2Ceil returns the smallest k such that 1<<k >= n.
func log2Ceil(n int) int {
	k := 0
	for n > 1<<uint(k) {
		k++
	}
	return k
}

func computeCodingParams(maxVal, near, reset int) codingParams {
	rng := maxVal + 1
	if near > 0 {
		rng = (maxVal+2*near)/(2*near+1) + 1
	}
	bpp := log2Ceil(maxVal + 1)
	if bpp < 2 {
		bpp = 2
	}
	limitBpp := bpp
	if limitBpp < 8 {
		limitBpp = 8
	}
	return codingParams{
		MaxVal: maxVal,
		Near:   near,
		Range:  rng,
		Qbpp:   log2Ceil(rng),
		Bpp:    bpp,
		Limit:  2 * (bpp + limitBpp),
		Reset:  reset,
	}
}

// traits is the constraint the scan codecs monomorphise over. Both scan
// decoder and encoder are generic in the traits type, so the per-sample
// calls below compile to direct calls.
type traits interface {
	params() codingParams
	computeErrorValue(e int) int
	moduloRange(e int) int
	computeReconstructedSample(px, errorValue int) int
	correctPrediction(p int) int
	isNear(a, b int) bool
}

// losslessTraits is the fast path for NEAR = 0 with MAXVAL = 2^bpp - 1,
// where the range reduction is a sign extension and reconstruction a mask.
type losslessTraits struct {
	cp codingParams
}

func newLosslessTraits(bitsPerSample int) losslessTraits {
	maxVal := 1<<uint(bitsPerSample) - 1
	return losslessTraits{cp: computeCodingParams(maxVal, 0, defaultResetValue)}
}

func (t losslessTraits) params() codingParams { return t.cp }

func (t losslessTraits) moduloRange(e int) int {
	shift := uint(32 - t.cp.Bpp)
	return int(int32(e) << shift >> shift)
}

func (t losslessTraits) computeErrorValue(e int) int {
	return t.moduloRange(e)
}

func (t losslessTraits) computeReconstructedSample(px, errorValue int) int {
	return t.cp.MaxVal & (px + errorValue)
}

func (t losslessTraits) correctPrediction(p int) int {
	if p < 0 {
		return 0
	}
	if p > t.cp.MaxVal {
		return t.cp.MaxVal
	}
	return p
}

func (t losslessTraits) isNear(a, b int) bool { return a == b }

// defaultTraits handles every legal (MAXVAL, NEAR, RESET) combination,
// including near-lossless scans and ranges that are not a power of two.
type defaultTraits struct {
	cp codingParams
}

func newDefaultTraits(maxVal, near, reset int) defaultTraits {
	return defaultTraits{cp: computeCodingParams(maxVal, near, reset)}
}

func (t defaultTraits) params() codingParams { return t.cp }

// quantize maps a raw prediction error to its quantised bucket (A.4.4).
func (t defaultTraits) quantize(e int) int {
	if e > 0 {
		return (e + t.cp.Near) / (2*t.cp.Near + 1)
	}
	return -(t.cp.Near - e) / (2*t.cp.Near + 1)
}

func (t defaultTraits) dequantize(e int) int {
	return e * (2*t.cp.Near + 1)
}

func (t defaultTraits) moduloRange(e int) int {
	if e < 0 {
		e += t.cp.Range
	}
	if e >= (t.cp.Range+1)/2 {
		e -= t.cp.Range
	}
	return e
}

func (t defaultTraits) computeErrorValue(e int) int {
	return t.moduloRange(t.quantize(e))
}

func (t defaultTraits) computeReconstructedSample(px, errorValue int) int {
	return t.fixReconstructedValue(px + t.dequantize(errorValue))
}

// fixReconstructedValue wraps a reconstructed value back into the nominal
// range before clamping (A.4.2 wraparound rule).
func (t defaultTraits) fixReconstructedValue(v int) int {
	if v < -t.cp.Near {
		v += t.cp.Range * (2*t.cp.Near + 1)
	} else if v > t.cp.MaxVal+t.cp.Near {
		v -= t.cp.Range * (2*t.cp.Near + 1)
	}
	return t.correctPrediction(v)
}

func (t defaultTraits) correctPrediction(p int) int {
	if p < 0 {
		return 0
	}
	if p > t.cp.MaxVal {
		return t.cp.MaxVal
	}
	return p
}

func (t defaultTraits) isNear(a, b int) bool {
	return abs(a-b) <= t.cp.Near
}
