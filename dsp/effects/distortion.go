package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-drive/dsp/buffer"
	"github.com/cwbudde/algo-drive/dsp/core"
	"github.com/cwbudde/algo-drive/dsp/param"
	"github.com/cwbudde/algo-vecmath"
)

// twoOverPi scales atan output to the open interval (-1, 1).
const twoOverPi = 2 / math.Pi

// Coefficients of the polynomial arctangent on [0, 1].
const (
	atanPolyA = 0.2447
	atanPolyB = 0.0663
)

// DistortionApproxMode selects exact vs polynomial arctangent evaluation.
type DistortionApproxMode int

const (
	DistortionApproxExact DistortionApproxMode = iota
	DistortionApproxPolynomial
)

// DistortionOption mutates construction-time parameters.
type DistortionOption func(*distortionConfig) error

type distortionConfig struct {
	approxMode DistortionApproxMode
}

func defaultDistortionConfig() distortionConfig {
	return distortionConfig{approxMode: DistortionApproxExact}
}

// WithDistortionApproxMode selects exact or polynomial arctangent processing.
func WithDistortionApproxMode(mode DistortionApproxMode) DistortionOption {
	return func(cfg *distortionConfig) error {
		if !validApproxMode(mode) {
			return fmt.Errorf("distortion approximation mode is invalid: %d", mode)
		}

		cfg.approxMode = mode

		return nil
	}
}

// Gains holds the linear factors derived from one parameter snapshot.
type Gains struct {
	Input  float64
	Drive  float64
	Mix    float64
	Output float64
}

// GainsFor converts a snapshot into linear gains. Fields outside their
// declared range are clamped first, so a hand-built snapshot can never push
// an out-of-range value into the audio path.
func GainsFor(s param.Snapshot) Gains {
	s = s.Clamped()

	return Gains{
		Input:  core.DBToLinear(s.InputDB),
		Drive:  core.DBToLinear(s.DriveDB),
		Mix:    s.Mix,
		Output: core.DBToLinear(s.OutputDB),
	}
}

// Distortion is the drive signal chain: input gain, arctangent soft clip,
// dry/wet blend and output gain. It keeps no per-sample state, so one value
// may serve any number of channels and consecutive blocks are independent.
//
// The dry signal of the blend is the input after input gain, so mix = 0
// reproduces the gain-staged input exactly.
type Distortion struct {
	approxMode DistortionApproxMode
}

// NewDistortion creates a distortion chain with validated options.
func NewDistortion(opts ...DistortionOption) (*Distortion, error) {
	cfg := defaultDistortionConfig()

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		err := opt(&cfg)
		if err != nil {
			return nil, err
		}
	}

	return &Distortion{approxMode: cfg.approxMode}, nil
}

// SetApproxMode sets exact vs polynomial arctangent evaluation.
func (d *Distortion) SetApproxMode(mode DistortionApproxMode) error {
	if !validApproxMode(mode) {
		return fmt.Errorf("distortion approximation mode is invalid: %d", mode)
	}

	d.approxMode = mode

	return nil
}

// ApproxMode returns the active arctangent mode.
func (d *Distortion) ApproxMode() DistortionApproxMode { return d.approxMode }

// ProcessSample runs one sample through the chain.
func (d *Distortion) ProcessSample(x float64, g Gains) float64 {
	return d.blend(x*g.Input, g)
}

// ProcessInPlace runs one channel through the chain using snapshot s.
func (d *Distortion) ProcessInPlace(buf []float64, s param.Snapshot) {
	d.processChannel(buf, GainsFor(s))
}

// ProcessBlock runs every input channel of b through the chain using snapshot
// s. Output channels past the input count, and channels whose storage does
// not match the descriptor, are filled with silence.
func (d *Distortion) ProcessBlock(b buffer.Block, s param.Snapshot) {
	g := GainsFor(s)
	inputs := b.NumInputChannels()

	for ch := range b.NumChannels() {
		data := b.Channel(ch)
		if data == nil || ch >= inputs {
			b.ClearChannel(ch)
			continue
		}

		d.processChannel(data, g)
	}
}

// TransferCurve evaluates the static transfer function for each input in xs
// and writes the result into dst. dst must be at least as long as xs.
func (d *Distortion) TransferCurve(s param.Snapshot, xs, dst []float64) error {
	if len(dst) < len(xs) {
		return fmt.Errorf("transfer curve destination too short: %d < %d", len(dst), len(xs))
	}

	g := GainsFor(s)
	for i, x := range xs {
		dst[i] = d.ProcessSample(x, g)
	}

	return nil
}

func (d *Distortion) processChannel(buf []float64, g Gains) {
	if len(buf) == 0 {
		return
	}

	vecmath.ScaleBlockInPlace(buf, g.Input)

	for i, stageIn := range buf {
		buf[i] = d.blend(stageIn, g)
	}
}

func (d *Distortion) blend(stageIn float64, g Gains) float64 {
	shaped := twoOverPi * d.atan(stageIn*g.Drive)
	y := (stageIn*(1-g.Mix) + shaped*g.Mix) * g.Output

	if !core.IsFinite(y) {
		return 0
	}

	return core.FlushDenormals(y)
}

func (d *Distortion) atan(x float64) float64 {
	if d.approxMode == DistortionApproxPolynomial {
		return fastAtanApprox(x)
	}

	return math.Atan(x)
}

// fastAtanApprox is odd-symmetric and monotonic with an absolute error below
// 1.6e-3 rad. Inputs above one use atan(x) = pi/2 - atan(1/x).
func fastAtanApprox(x float64) float64 {
	a := math.Abs(x)
	if math.IsInf(a, 0) {
		return math.Copysign(math.Pi/2, x)
	}

	var r float64
	if a <= 1 {
		r = atanPoly(a)
	} else {
		r = math.Pi/2 - atanPoly(1/a)
	}

	return math.Copysign(r, x)
}

func atanPoly(a float64) float64 {
	return math.Pi/4*a - a*(a-1)*(atanPolyA+atanPolyB*a)
}

func validApproxMode(mode DistortionApproxMode) bool {
	return mode == DistortionApproxExact || mode == DistortionApproxPolynomial
}
