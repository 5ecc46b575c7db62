package buffer

// Deinterleave copies frame-interleaved float32 samples into b and returns the
// number of frames written. Surplus source frames are ignored and a short
// source leaves the remaining samples untouched.
func Deinterleave(b Block, src []float32) int {
	numCh := b.NumChannels()
	if numCh == 0 || b.Validate() != nil {
		return 0
	}

	frames := min(len(src)/numCh, b.numSamples)

	for ch := range numCh {
		dst := b.channels[ch]
		for i := range frames {
			dst[i] = float64(src[i*numCh+ch])
		}
	}

	return frames
}

// Interleave writes b into dst frame by frame and returns the number of frames
// written.
func Interleave(dst []float32, b Block) int {
	numCh := b.NumChannels()
	if numCh == 0 || b.Validate() != nil {
		return 0
	}

	frames := min(len(dst)/numCh, b.numSamples)

	for ch := range numCh {
		src := b.channels[ch]
		for i := range frames {
			dst[i*numCh+ch] = float32(src[i])
		}
	}

	return frames
}
