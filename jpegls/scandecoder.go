package jpegls

// scanDecoder decodes one entropy-coded scan: it drives the predictor and
// the regular/run state machine line by line, reconstructs samples and
// hands every completed raster line to the sink. All state lives for one
// scan only. The type is generic in the sample storage type and the traits
// variant so the per-sample arithmetic is monomorphised.
type scanDecoder[S Sample, T traits] struct {
	traits T
	cp     codingParams

	t1, t2, t3 int

	width          int
	height         int
	componentCount int // components coded inside this scan
	interleave     InterleaveMode

	reader *BitReader
	sink   LineSink[S]

	contexts    [contextCount]regularContext
	runContexts [2]runModeContext
	runIndex    int

	// current and previous line windows; column i lives at index i+1 so
	// the border column -1 is addressable.
	cur  []S
	prev []S
}

func newScanDecoder[S Sample, T traits](
	t T, pcp PresetCodingParameters,
	width, height, componentCount int, interleave InterleaveMode,
	reader *BitReader, sink LineSink[S],
) *scanDecoder[S, T] {
	d := &scanDecoder[S, T]{
		traits:         t,
		cp:             t.params(),
		t1:             pcp.Threshold1,
		t2:             pcp.Threshold2,
		t3:             pcp.Threshold3,
		width:          width,
		height:         height,
		componentCount: componentCount,
		interleave:     interleave,
		reader:         reader,
		sink:           sink,
	}
	d.initScan()
	return d
}

func (d *scanDecoder[S, T]) initScan() {
	ctx := newRegularContext(d.cp.Range)
	for i := range d.contexts {
		d.contexts[i] = ctx
	}
	d.runContexts[0] = newRunModeContext(0, d.cp.Range)
	d.runContexts[1] = newRunModeContext(1, d.cp.Range)
	d.runIndex = 0
}

func (d *scanDecoder[S, T]) quantize(diff int) int {
	return quantizeGradient(diff, d.t1, d.t2, d.t3, d.cp.Near)
}

// decodeScan runs the whole scan and verifies the trailing bit residue.
func (d *scanDecoder[S, T]) decodeScan() error {
	var err error
	if d.interleave == InterleaveSample {
		err = d.decodeLinesSampleInterleaved()
	} else {
		err = d.decodeLines()
	}
	if err != nil {
		return err
	}
	return d.reader.Finalize()
}

// decodeLines handles interleave none (one component per scan) and line
// (all components, one line each per raster line). The two line buffers
// swap roles every line; the first previous line is all zero.
func (d *scanDecoder[S, T]) decodeLines() error {
	cc := 1
	if d.interleave == InterleaveLine {
		cc = d.componentCount
	}

	stride := d.width + 2
	buf := make([]S, 2*cc*stride)
	runIndexes := make([]int, cc)

	for line := 0; line < d.height; line++ {
		prevHalf := buf[:cc*stride]
		curHalf := buf[cc*stride:]
		if line&1 == 1 {
			prevHalf, curHalf = curHalf, prevHalf
		}

		for comp := 0; comp < cc; comp++ {
			d.runIndex = runIndexes[comp]
			d.prev = prevHalf[comp*stride : (comp+1)*stride]
			d.cur = curHalf[comp*stride : (comp+1)*stride]

			// Initialise the edge samples: Rd beyond the last column
			// repeats Rb, and the virtual sample west of column 0 is the
			// sample north of it.
			d.prev[d.width+1] = d.prev[d.width]
			d.cur[0] = d.prev[1]

			if err := d.decodeLine(); err != nil {
				return err
			}
			runIndexes[comp] = d.runIndex
		}

		if err := d.sink.AcceptLine(curHalf[1:], d.width, stride); err != nil {
			return err
		}
	}
	return nil
}

// decodeLine decodes one single-component line, switching between regular
// and run mode per the quantised gradients.
func (d *scanDecoder[S, T]) decodeLine() error {
	index := 0
	rb := int(d.prev[0])
	rd := int(d.prev[1])

	for index < d.width {
		ra := int(d.cur[index])
		rc := rb
		rb = rd
		rd = int(d.prev[index+2])

		qs := computeContextID(
			d.quantize(rd-rb),
			d.quantize(rb-rc),
			d.quantize(rc-ra))

		if qs != 0 {
			x, err := d.decodeRegular(qs, medianPredictor(ra, rb, rc))
			if err != nil {
				return err
			}
			d.cur[index+1] = S(x)
			index++
		} else {
			n, err := d.decodeRunMode(index)
			if err != nil {
				return err
			}
			index += n
			rb = int(d.prev[index])
			rd = int(d.prev[index+1])
		}
	}
	return nil
}

// decodeRegular decodes one regular-mode sample: select the context by the
// folded gradient sign, derive k, decode the mapped error (table fast path
// first), apply the k = 0 bias flip, update the context and reconstruct.
func (d *scanDecoder[S, T]) decodeRegular(qs, predicted int) (int, error) {
	sgn := bitwiseSign(qs)
	ctx := &d.contexts[applySign(qs, sgn)]
	k := ctx.golombParameter()
	px := d.traits.correctPrediction(predicted + applySign(ctx.C, sgn))

	var errorValue int
	decoded := false

	if k < maxTableK {
		peek, err := d.reader.PeekByte()
		if err != nil {
			return 0, err
		}
		if code := decodingTables[k][peek]; code.length != 0 {
			d.reader.skip(int(code.length))
			errorValue = int(code.value)
			decoded = true
		}
	}

	if !decoded {
		v, err := decodeValue(d.reader, k, d.cp.Limit, d.cp.Qbpp)
		if err != nil {
			return 0, err
		}
		errorValue = unmapErrorValue(v)
		if abs(errorValue) > 65535 {
			return 0, newError(CodeInvalidCompressedData, "error value out of range")
		}
	}

	errorValue ^= ctx.errorCorrection(k | d.cp.Near)
	ctx.update(errorValue, d.cp.Near, d.cp.Reset)
	errorValue = applySign(errorValue, sgn)
	return d.traits.computeReconstructedSample(px, errorValue), nil
}

// decodeRunMode decodes a run of samples equal to Ra plus, unless the run
// reached the end of the line, the interruption sample. Returns how many
// samples were produced.
func (d *scanDecoder[S, T]) decodeRunMode(index int) (int, error) {
	ra := int(d.cur[index])

	runLength, err := d.decodeRunPixels(index, d.width-index)
	if err != nil {
		return 0, err
	}
	for i := 0; i < runLength; i++ {
		d.cur[index+1+i] = S(ra)
	}

	end := index + runLength
	if end == d.width {
		return runLength, nil
	}

	rb := int(d.prev[end+1])
	x, err := d.decodeRunInterruptionPixel(ra, rb)
	if err != nil {
		return 0, err
	}
	d.cur[end+1] = S(x)
	d.runIndex = decrementRunIndex(d.runIndex)
	return runLength + 1, nil
}

// decodeRunPixels reads the run-length code: every 1 bit stands for
// min(2^J[runIndex], remaining) samples, the run index climbing on full
// segments; a 0 bit is followed by J[runIndex] tail bits unless the run
// already covers the rest of the line.
func (d *scanDecoder[S, T]) decodeRunPixels(index, maxCount int) (int, error) {
	count := 0
	for {
		set, err := d.reader.ReadBit()
		if err != nil {
			return 0, err
		}
		if !set {
			if count != maxCount {
				if j := runLengthJ[d.runIndex]; j > 0 {
					tail, err := d.reader.ReadValue(j)
					if err != nil {
						return 0, err
					}
					count += tail
				}
			}
			break
		}

		segment := 1 << uint(runLengthJ[d.runIndex])
		n := segment
		if n > maxCount-count {
			n = maxCount - count
		}
		count += n
		if n == segment {
			d.runIndex = incrementRunIndex(d.runIndex)
		}
		if count == maxCount {
			break
		}
	}

	if count > maxCount {
		return 0, newError(CodeInvalidCompressedData, "run length %d exceeds line", count)
	}
	return count, nil
}

func (d *scanDecoder[S, T]) decodeRunInterruptionError(ctx *runModeContext) (int, error) {
	k := ctx.golombParameter()
	eMapped, err := decodeValue(d.reader, k, d.cp.Limit-runLengthJ[d.runIndex]-1, d.cp.Qbpp)
	if err != nil {
		return 0, err
	}
	errorValue := ctx.computeErrorValue(eMapped+ctx.runInterruptionType, k)
	ctx.update(errorValue, eMapped, d.cp.Reset)
	return errorValue, nil
}

func (d *scanDecoder[S, T]) decodeRunInterruptionPixel(ra, rb int) (int, error) {
	if abs(ra-rb) <= d.cp.Near {
		errorValue, err := d.decodeRunInterruptionError(&d.runContexts[1])
		if err != nil {
			return 0, err
		}
		return d.traits.computeReconstructedSample(ra, errorValue), nil
	}

	errorValue, err := d.decodeRunInterruptionError(&d.runContexts[0])
	if err != nil {
		return 0, err
	}
	return d.traits.computeReconstructedSample(rb, errorValue*sign(rb-ra)), nil
}

// decodeLinesSampleInterleaved handles interleave sample: the components of
// every pixel are decoded together, runs compare whole pixels, and the
// interruption sample always uses run context 0.
func (d *scanDecoder[S, T]) decodeLinesSampleInterleaved() error {
	cc := d.componentCount
	stride := (d.width + 2) * cc
	buf := make([]S, 2*stride)
	qs := make([]int, cc)

	for line := 0; line < d.height; line++ {
		prev := buf[:stride]
		cur := buf[stride:]
		if line&1 == 1 {
			prev, cur = cur, prev
		}

		for c := 0; c < cc; c++ {
			prev[(d.width+1)*cc+c] = prev[d.width*cc+c]
			cur[c] = prev[cc+c]
		}
		d.prev, d.cur = prev, cur

		if err := d.decodeLineSampleInterleaved(qs); err != nil {
			return err
		}

		if err := d.sink.AcceptLine(cur[cc:], d.width, stride); err != nil {
			return err
		}
	}
	return nil
}

func (d *scanDecoder[S, T]) decodeLineSampleInterleaved(qs []int) error {
	cc := d.componentCount

	for index := 0; index < d.width; {
		allZero := true
		for c := 0; c < cc; c++ {
			ra := int(d.cur[index*cc+c])
			rc := int(d.prev[index*cc+c])
			rb := int(d.prev[(index+1)*cc+c])
			rd := int(d.prev[(index+2)*cc+c])
			q := computeContextID(
				d.quantize(rd-rb),
				d.quantize(rb-rc),
				d.quantize(rc-ra))
			qs[c] = q
			if q != 0 {
				allZero = false
			}
		}

		if allZero {
			n, err := d.decodeRunModeSampleInterleaved(index)
			if err != nil {
				return err
			}
			index += n
			continue
		}

		for c := 0; c < cc; c++ {
			ra := int(d.cur[index*cc+c])
			rc := int(d.prev[index*cc+c])
			rb := int(d.prev[(index+1)*cc+c])
			x, err := d.decodeRegular(qs[c], medianPredictor(ra, rb, rc))
			if err != nil {
				return err
			}
			d.cur[(index+1)*cc+c] = S(x)
		}
		index++
	}
	return nil
}

func (d *scanDecoder[S, T]) decodeRunModeSampleInterleaved(index int) (int, error) {
	cc := d.componentCount

	runLength, err := d.decodeRunPixels(index, d.width-index)
	if err != nil {
		return 0, err
	}
	for i := 0; i < runLength; i++ {
		for c := 0; c < cc; c++ {
			d.cur[(index+1+i)*cc+c] = d.cur[index*cc+c]
		}
	}

	end := index + runLength
	if end == d.width {
		return runLength, nil
	}

	for c := 0; c < cc; c++ {
		ra := int(d.cur[index*cc+c])
		rb := int(d.prev[(end+1)*cc+c])
		errorValue, err := d.decodeRunInterruptionError(&d.runContexts[0])
		if err != nil {
			return 0, err
		}
		d.cur[(end+1)*cc+c] = S(d.traits.computeReconstructedSample(rb, errorValue*sign(rb-ra)))
	}
	d.runIndex = decrementRunIndex(d.runIndex)
	return runLength + 1, nil
}
