package thd

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-drive/dsp/effects"
	"github.com/cwbudde/algo-drive/dsp/param"
)

const (
	defaultMeasureFFTSize = 4096
	defaultMeasureFreq    = 1000.0
)

// MeasureDistortion drives d with a sine of the given amplitude using snapshot
// snap and analyses the output. The test frequency is moved onto the nearest
// FFT bin so the tone is periodic in the analysis frame.
func MeasureDistortion(d *effects.Distortion, snap param.Snapshot, amplitude float64, cfg Config) (Result, error) {
	if d == nil {
		return Result{}, fmt.Errorf("thd: nil distortion")
	}

	if cfg.SampleRate <= 0 || math.IsNaN(cfg.SampleRate) {
		return Result{}, fmt.Errorf("thd: sample rate must be > 0: %f", cfg.SampleRate)
	}

	if cfg.FFTSize <= 0 {
		cfg.FFTSize = defaultMeasureFFTSize
	}

	if cfg.FundamentalFreq <= 0 {
		cfg.FundamentalFreq = defaultMeasureFreq
	}

	binHz := cfg.SampleRate / float64(cfg.FFTSize)

	bin := max(int(math.Round(cfg.FundamentalFreq/binHz)), 1)
	if bin >= cfg.FFTSize/2 {
		return Result{}, fmt.Errorf("thd: fundamental %f Hz at or above Nyquist", cfg.FundamentalFreq)
	}

	cfg.FundamentalFreq = float64(bin) * binHz

	signal := make([]float64, cfg.FFTSize)
	step := 2 * math.Pi * float64(bin) / float64(cfg.FFTSize)

	for i := range signal {
		signal[i] = amplitude * math.Sin(step*float64(i))
	}

	d.ProcessInPlace(signal, snap)

	return AnalyzeSignal(signal, cfg)
}
