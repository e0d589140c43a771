package jpegls

// scanEncoder is the mirror of scanDecoder: it pulls raster lines from a
// source, runs the same predictor and context machinery, and emits the
// entropy-coded scan. The line buffers hold reconstructed samples, so
// near-lossless scans predict from exactly what the decoder will see.
type scanEncoder[S Sample, T traits] struct {
	traits T
	cp     codingParams

	t1, t2, t3 int

	width          int
	height         int
	componentCount int
	interleave     InterleaveMode

	writer *bitWriter
	source LineSource[S]

	contexts    [contextCount]regularContext
	runContexts [2]runModeContext
	runIndex    int

	cur  []S
	prev []S
}

func newScanEncoder[S Sample, T traits](
	t T, pcp PresetCodingParameters,
	width, height, componentCount int, interleave InterleaveMode,
	source LineSource[S],
) *scanEncoder[S, T] {
	e := &scanEncoder[S, T]{
		traits:         t,
		cp:             t.params(),
		t1:             pcp.Threshold1,
		t2:             pcp.Threshold2,
		t3:             pcp.Threshold3,
		width:          width,
		height:         height,
		componentCount: componentCount,
		interleave:     interleave,
		writer:         newBitWriter(),
		source:         source,
	}
	e.initScan()
	return e
}

func (e *scanEncoder[S, T]) initScan() {
	ctx := newRegularContext(e.cp.Range)
	for i := range e.contexts {
		e.contexts[i] = ctx
	}
	e.runContexts[0] = newRunModeContext(0, e.cp.Range)
	e.runContexts[1] = newRunModeContext(1, e.cp.Range)
	e.runIndex = 0
}

func (e *scanEncoder[S, T]) quantize(diff int) int {
	return quantizeGradient(diff, e.t1, e.t2, e.t3, e.cp.Near)
}

// encodeScan encodes the whole scan and returns the entropy-coded segment,
// padded to a byte boundary.
func (e *scanEncoder[S, T]) encodeScan() ([]byte, error) {
	var err error
	if e.interleave == InterleaveSample {
		err = e.encodeLinesSampleInterleaved()
	} else {
		err = e.encodeLines()
	}
	if err != nil {
		return nil, err
	}
	e.writer.endScan()
	return e.writer.bytes(), nil
}

func (e *scanEncoder[S, T]) encodeLines() error {
	cc := 1
	if e.interleave == InterleaveLine {
		cc = e.componentCount
	}

	stride := e.width + 2
	buf := make([]S, 2*cc*stride)
	runIndexes := make([]int, cc)

	for line := 0; line < e.height; line++ {
		prevHalf := buf[:cc*stride]
		curHalf := buf[cc*stride:]
		if line&1 == 1 {
			prevHalf, curHalf = curHalf, prevHalf
		}

		if err := e.source.CopyLine(curHalf[1:], e.width, stride); err != nil {
			return err
		}

		for comp := 0; comp < cc; comp++ {
			e.runIndex = runIndexes[comp]
			e.prev = prevHalf[comp*stride : (comp+1)*stride]
			e.cur = curHalf[comp*stride : (comp+1)*stride]

			e.prev[e.width+1] = e.prev[e.width]
			e.cur[0] = e.prev[1]

			e.encodeLine()
			runIndexes[comp] = e.runIndex
		}
	}
	return nil
}

func (e *scanEncoder[S, T]) encodeLine() {
	index := 0
	rb := int(e.prev[0])
	rd := int(e.prev[1])

	for index < e.width {
		ra := int(e.cur[index])
		rc := rb
		rb = rd
		rd = int(e.prev[index+2])

		qs := computeContextID(
			e.quantize(rd-rb),
			e.quantize(rb-rc),
			e.quantize(rc-ra))

		if qs != 0 {
			x := e.encodeRegular(qs, int(e.cur[index+1]), medianPredictor(ra, rb, rc))
			e.cur[index+1] = S(x)
			index++
		} else {
			index += e.encodeRunMode(index)
			rb = int(e.prev[index])
			rd = int(e.prev[index+1])
		}
	}
}

// encodeRegular codes one regular-mode sample and returns its
// reconstructed value, which replaces the source sample in the line buffer.
func (e *scanEncoder[S, T]) encodeRegular(qs, x, predicted int) int {
	sgn := bitwiseSign(qs)
	ctx := &e.contexts[applySign(qs, sgn)]
	k := ctx.golombParameter()
	px := e.traits.correctPrediction(predicted + applySign(ctx.C, sgn))
	errorValue := e.traits.computeErrorValue(applySign(x-px, sgn))

	encodeMappedValue(e.writer, k,
		mapErrorValue(ctx.errorCorrection(k|e.cp.Near)^errorValue), e.cp.Limit, e.cp.Qbpp)
	ctx.update(errorValue, e.cp.Near, e.cp.Reset)

	return e.traits.computeReconstructedSample(px, applySign(errorValue, sgn))
}

// encodeRunMode normalises a run of samples near Ra to Ra, codes the run
// length and, unless the line ended, the interruption sample.
func (e *scanEncoder[S, T]) encodeRunMode(index int) int {
	ra := int(e.cur[index])
	remaining := e.width - index

	runLength := 0
	for e.traits.isNear(int(e.cur[index+1+runLength]), ra) {
		e.cur[index+1+runLength] = S(ra)
		runLength++
		if runLength == remaining {
			break
		}
	}

	e.encodeRunPixels(runLength, runLength == remaining)
	if runLength == remaining {
		return runLength
	}

	end := index + runLength
	x := e.encodeRunInterruptionPixel(int(e.cur[end+1]), ra, int(e.prev[end+1]))
	e.cur[end+1] = S(x)
	e.runIndex = decrementRunIndex(e.runIndex)
	return runLength + 1
}

func (e *scanEncoder[S, T]) encodeRunPixels(runLength int, endOfLine bool) {
	for runLength >= 1<<uint(runLengthJ[e.runIndex]) {
		e.writer.appendOnesToBitStream(1)
		runLength -= 1 << uint(runLengthJ[e.runIndex])
		e.runIndex = incrementRunIndex(e.runIndex)
	}

	if endOfLine {
		if runLength != 0 {
			e.writer.appendOnesToBitStream(1)
		}
	} else {
		// A 0 bit followed by the tail length in J[runIndex] bits.
		e.writer.appendToBitStream(runLength, runLengthJ[e.runIndex]+1)
	}
}

func (e *scanEncoder[S, T]) encodeRunInterruptionError(ctx *runModeContext, errorValue int) {
	k := ctx.golombParameter()
	mapBit := ctx.computeMap(errorValue, k)

	eMapped := 2*abs(errorValue) - ctx.runInterruptionType
	if mapBit {
		eMapped--
	}

	encodeMappedValue(e.writer, k, eMapped, e.cp.Limit-runLengthJ[e.runIndex]-1, e.cp.Qbpp)
	ctx.update(errorValue, eMapped, e.cp.Reset)
}

func (e *scanEncoder[S, T]) encodeRunInterruptionPixel(x, ra, rb int) int {
	if abs(ra-rb) <= e.cp.Near {
		errorValue := e.traits.computeErrorValue(x - ra)
		e.encodeRunInterruptionError(&e.runContexts[1], errorValue)
		return e.traits.computeReconstructedSample(ra, errorValue)
	}

	errorValue := e.traits.computeErrorValue((x - rb) * sign(rb - ra))
	e.encodeRunInterruptionError(&e.runContexts[0], errorValue)
	return e.traits.computeReconstructedSample(rb, errorValue*sign(rb-ra))
}

func (e *scanEncoder[S, T]) encodeLinesSampleInterleaved() error {
	cc := e.componentCount
	stride := (e.width + 2) * cc
	buf := make([]S, 2*stride)
	qs := make([]int, cc)

	for line := 0; line < e.height; line++ {
		prev := buf[:stride]
		cur := buf[stride:]
		if line&1 == 1 {
			prev, cur = cur, prev
		}

		if err := e.source.CopyLine(cur[cc:], e.width, stride); err != nil {
			return err
		}

		for c := 0; c < cc; c++ {
			prev[(e.width+1)*cc+c] = prev[e.width*cc+c]
			cur[c] = prev[cc+c]
		}
		e.prev, e.cur = prev, cur

		e.encodeLineSampleInterleaved(qs)
	}
	return nil
}

func (e *scanEncoder[S, T]) encodeLineSampleInterleaved(qs []int) {
	cc := e.componentCount

	for index := 0; index < e.width; {
		allZero := true
		for c := 0; c < cc; c++ {
			ra := int(e.cur[index*cc+c])
			rc := int(e.prev[index*cc+c])
			rb := int(e.prev[(index+1)*cc+c])
			rd := int(e.prev[(index+2)*cc+c])
			q := computeContextID(
				e.quantize(rd-rb),
				e.quantize(rb-rc),
				e.quantize(rc-ra))
			qs[c] = q
			if q != 0 {
				allZero = false
			}
		}

		if allZero {
			index += e.encodeRunModeSampleInterleaved(index)
			continue
		}

		for c := 0; c < cc; c++ {
			ra := int(e.cur[index*cc+c])
			rc := int(e.prev[index*cc+c])
			rb := int(e.prev[(index+1)*cc+c])
			x := e.encodeRegular(qs[c], int(e.cur[(index+1)*cc+c]), medianPredictor(ra, rb, rc))
			e.cur[(index+1)*cc+c] = S(x)
		}
		index++
	}
}

// pixelNear reports whether every component of the pixel at column col is
// within NEAR of the Ra pixel west of the run start.
func (e *scanEncoder[S, T]) pixelNear(raCol, col int) bool {
	cc := e.componentCount
	for c := 0; c < cc; c++ {
		if !e.traits.isNear(int(e.cur[(col+1)*cc+c]), int(e.cur[raCol*cc+c])) {
			return false
		}
	}
	return true
}

func (e *scanEncoder[S, T]) encodeRunModeSampleInterleaved(index int) int {
	cc := e.componentCount
	remaining := e.width - index

	runLength := 0
	for e.pixelNear(index, index+runLength) {
		for c := 0; c < cc; c++ {
			e.cur[(index+1+runLength)*cc+c] = e.cur[index*cc+c]
		}
		runLength++
		if runLength == remaining {
			break
		}
	}

	e.encodeRunPixels(runLength, runLength == remaining)
	if runLength == remaining {
		return runLength
	}

	end := index + runLength
	for c := 0; c < cc; c++ {
		ra := int(e.cur[index*cc+c])
		rb := int(e.prev[(end+1)*cc+c])
		x := int(e.cur[(end+1)*cc+c])

		errorValue := e.traits.computeErrorValue((x - rb) * sign(rb - ra))
		e.encodeRunInterruptionError(&e.runContexts[0], errorValue)
		e.cur[(end+1)*cc+c] = S(e.traits.computeReconstructedSample(rb, errorValue*sign(rb-ra)))
	}
	e.runIndex = decrementRunIndex(e.runIndex)
	return runLength + 1
}
