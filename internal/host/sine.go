package host

import (
	"fmt"
	"math"
)

// Sine is a phase-continuous sine oscillator.
type Sine struct {
	amplitude float64
	step      float64
	phase     float64
}

// NewSine creates an oscillator at freq Hz.
func NewSine(freq, sampleRate, amplitude float64) (*Sine, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("sine sample rate must be > 0: %f", sampleRate)
	}

	if freq < 0 || freq >= sampleRate/2 || math.IsNaN(freq) {
		return nil, fmt.Errorf("sine frequency must be in [0, %g): %f", sampleRate/2, freq)
	}

	return &Sine{
		amplitude: amplitude,
		step:      2 * math.Pi * freq / sampleRate,
	}, nil
}

// Fill writes the next len(dst) samples.
func (s *Sine) Fill(dst []float64) {
	for i := range dst {
		dst[i] = s.amplitude * math.Sin(s.phase)

		s.phase += s.step
		if s.phase >= 2*math.Pi {
			s.phase -= 2 * math.Pi
		}
	}
}

// Reset restarts the oscillator at phase zero.
func (s *Sine) Reset() { s.phase = 0 }
