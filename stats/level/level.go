// Package level accumulates level statistics of processed audio: peak, RMS,
// crest factor, DC offset and clipping.
package level

import (
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-drive/dsp/buffer"
)

// ClipThreshold is the absolute sample value counted as clipping.
const ClipThreshold = 1.0

// Stats holds level statistics of a signal.
//
//nolint:revive
type Stats struct {
	Length         int
	DC             float64
	RMS            float64
	RMS_dB         float64
	Peak           float64
	Peak_dB        float64
	CrestFactor    float64
	CrestFactor_dB float64
	Clipped        int
	ZeroCrossings  int
}

func ampTodB(value float64) float64 {
	a := math.Abs(value)
	if a == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(a)
}

// Calculate returns the statistics of one signal.
func Calculate(signal []float64) Stats {
	var acc accumulator
	acc.update(signal)

	return acc.result()
}

type accumulator struct {
	n             int
	sum           float64
	sumSq         float64
	peak          float64
	clipped       int
	zeroCrossings int
	last          float64
}

func (a *accumulator) update(samples []float64) {
	if len(samples) == 0 {
		return
	}

	a.sum += vecmath.Sum(samples)
	a.sumSq += vecmath.DotProduct(samples, samples)
	a.peak = math.Max(a.peak, vecmath.MaxAbs(samples))

	prev := a.last
	for i, x := range samples {
		if math.Abs(x) >= ClipThreshold {
			a.clipped++
		}

		if (a.n > 0 || i > 0) && prev*x < 0 {
			a.zeroCrossings++
		}

		prev = x
	}

	a.last = prev
	a.n += len(samples)
}

func (a *accumulator) merge(b accumulator) {
	a.n += b.n
	a.sum += b.sum
	a.sumSq += b.sumSq
	a.peak = math.Max(a.peak, b.peak)
	a.clipped += b.clipped
	a.zeroCrossings += b.zeroCrossings
}

func (a *accumulator) result() Stats {
	if a.n == 0 {
		return Stats{
			RMS_dB:         math.Inf(-1),
			Peak_dB:        math.Inf(-1),
			CrestFactor_dB: math.Inf(-1),
		}
	}

	nf := float64(a.n)
	rms := math.Sqrt(a.sumSq / nf)

	var crest, crestdB float64
	if rms > 0 {
		crest = a.peak / rms
		crestdB = 20 * math.Log10(crest)
	}

	return Stats{
		Length:         a.n,
		DC:             a.sum / nf,
		RMS:            rms,
		RMS_dB:         ampTodB(rms),
		Peak:           a.peak,
		Peak_dB:        ampTodB(a.peak),
		CrestFactor:    crest,
		CrestFactor_dB: crestdB,
		Clipped:        a.clipped,
		ZeroCrossings:  a.zeroCrossings,
	}
}

// Meter accumulates per-channel statistics across blocks.
type Meter struct {
	channels []accumulator
}

// NewMeter creates a meter for numChannels channels.
func NewMeter(numChannels int) *Meter {
	return &Meter{channels: make([]accumulator, max(numChannels, 0))}
}

// Update adds every channel of b. Malformed channels and channels beyond the
// meter's count are skipped.
func (m *Meter) Update(b buffer.Block) {
	for ch := range min(b.NumChannels(), len(m.channels)) {
		m.channels[ch].update(b.Channel(ch))
	}
}

// Channel returns the statistics of channel ch so far.
func (m *Meter) Channel(ch int) Stats {
	if ch < 0 || ch >= len(m.channels) {
		var empty accumulator
		return empty.result()
	}

	return m.channels[ch].result()
}

// Result returns the statistics of all channels combined.
func (m *Meter) Result() Stats {
	var all accumulator
	for _, ch := range m.channels {
		all.merge(ch)
	}

	return all.result()
}

// Reset clears all accumulated data.
func (m *Meter) Reset() {
	clear(m.channels)
}
