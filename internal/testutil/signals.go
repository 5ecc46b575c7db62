// Package testutil holds signal generators and assertions shared by tests.
package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a sine wave starting at phase zero.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate

	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}

	return out
}

// DeterministicNoise generates uniform white noise in [-amplitude, amplitude)
// from a fixed seed.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))

	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}

	return out
}

// Ramp returns length evenly spaced values from lo to hi inclusive.
func Ramp(lo, hi float64, length int) []float64 {
	out := make([]float64, length)
	if length == 1 {
		out[0] = lo
		return out
	}

	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(length-1)
	}

	return out
}

// Channels returns numChannels independent copies of src.
func Channels(src []float64, numChannels int) [][]float64 {
	out := make([][]float64, numChannels)
	for ch := range out {
		out[ch] = append([]float64(nil), src...)
	}

	return out
}
