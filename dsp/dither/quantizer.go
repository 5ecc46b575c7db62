package dither

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"
)

const (
	defaultBitDepth = 16
	minBitDepth     = 8
	maxBitDepth     = 24
)

type config struct {
	bitDepth   int
	ditherType DitherType
	shaping    bool
	rng        *rand.Rand
}

// Option configures a Quantizer.
type Option func(*config) error

// WithBitDepth sets the target bit depth: 8, 16 or 24 (default 16).
func WithBitDepth(bits int) Option {
	return func(cfg *config) error {
		if bits != 8 && bits != 16 && bits != 24 {
			return fmt.Errorf("dither: bit depth must be 8, 16 or 24: %d", bits)
		}

		cfg.bitDepth = bits

		return nil
	}
}

// WithDitherType sets the dither noise PDF (default DitherTriangular).
func WithDitherType(dt DitherType) Option {
	return func(cfg *config) error {
		if !dt.Valid() {
			return fmt.Errorf("dither: invalid dither type: %d", dt)
		}

		cfg.ditherType = dt

		return nil
	}
}

// WithNoiseShaping enables first-order error feedback, moving quantization
// noise towards high frequencies.
func WithNoiseShaping(enabled bool) Option {
	return func(cfg *config) error {
		cfg.shaping = enabled
		return nil
	}
}

// WithSeed makes the dither noise reproducible.
func WithSeed(seed uint64) Option {
	return func(cfg *config) error {
		cfg.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		return nil
	}
}

// Quantizer converts samples in [-1, 1] to signed integers. It keeps one
// shaping error per interleaved channel, so a single Quantizer must always
// see the same channel count.
type Quantizer struct {
	bitDepth   int
	ditherType DitherType
	shaping    bool
	rng        *rand.Rand

	scale   float64
	limitLo int32
	limitHi int32
	errs    []float64
}

// NewQuantizer creates a quantizer for interleaved audio with numChannels
// channels.
func NewQuantizer(numChannels int, opts ...Option) (*Quantizer, error) {
	if numChannels < 1 {
		return nil, fmt.Errorf("dither: channel count must be >= 1: %d", numChannels)
	}

	cfg := config{bitDepth: defaultBitDepth, ditherType: DitherTriangular}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if cfg.rng == nil {
		cfg.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	full := math.Exp2(float64(cfg.bitDepth - 1))

	return &Quantizer{
		bitDepth:   cfg.bitDepth,
		ditherType: cfg.ditherType,
		shaping:    cfg.shaping,
		rng:        cfg.rng,
		scale:      full,
		limitLo:    int32(-full),
		limitHi:    int32(full - 1),
		errs:       make([]float64, numChannels),
	}, nil
}

// BitDepth returns the target bit depth.
func (q *Quantizer) BitDepth() int { return q.bitDepth }

// BytesPerSample returns the encoded size of one sample.
func (q *Quantizer) BytesPerSample() int { return q.bitDepth / 8 }

// Quantize converts one sample of channel ch. Out-of-range and non-finite
// input is limited to the integer range; NaN becomes zero.
func (q *Quantizer) Quantize(ch int, x float64) int32 {
	if math.IsNaN(x) {
		x = 0
	}

	scaled := x * q.scale

	e := &q.errs[ch%len(q.errs)]
	if q.shaping {
		scaled -= *e
	}

	v := math.Round(scaled + q.noise())
	v = math.Max(float64(q.limitLo), math.Min(float64(q.limitHi), v))

	if q.shaping {
		*e = v - scaled
		// Limit the feedback so a clipped run cannot build up.
		*e = math.Max(-1, math.Min(1, *e))
	}

	return int32(v)
}

// AppendPCM quantizes interleaved samples and appends them to dst as signed
// little-endian integers.
func (q *Quantizer) AppendPCM(dst []byte, samples []float32) []byte {
	ch := len(q.errs)

	for i, s := range samples {
		v := q.Quantize(i%ch, float64(s))

		switch q.bitDepth {
		case 8:
			dst = append(dst, byte(int8(v)))
		case 16:
			dst = binary.LittleEndian.AppendUint16(dst, uint16(int16(v)))
		default:
			u := uint32(v)
			dst = append(dst, byte(u), byte(u>>8), byte(u>>16))
		}
	}

	return dst
}

// Reset clears the noise shaping history.
func (q *Quantizer) Reset() {
	clear(q.errs)
}

func (q *Quantizer) noise() float64 {
	switch q.ditherType {
	case DitherRectangular:
		return q.rng.Float64() - 0.5
	case DitherTriangular:
		return q.rng.Float64() - q.rng.Float64()
	default:
		return 0
	}
}
