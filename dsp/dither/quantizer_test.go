package dither

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/cwbudde/algo-drive/internal/testutil"
)

func TestNewQuantizerValidation(t *testing.T) {
	if _, err := NewQuantizer(0); err == nil {
		t.Fatal("expected error for zero channels")
	}

	if _, err := NewQuantizer(1, WithBitDepth(12)); err == nil {
		t.Fatal("expected error for 12-bit depth")
	}

	if _, err := NewQuantizer(1, WithDitherType(DitherType(9))); err == nil {
		t.Fatal("expected error for invalid dither type")
	}

	q, err := NewQuantizer(2, nil, WithBitDepth(24))
	if err != nil {
		t.Fatalf("NewQuantizer() error = %v", err)
	}

	if q.BitDepth() != 24 || q.BytesPerSample() != 3 {
		t.Fatalf("bit depth = %d, bytes = %d", q.BitDepth(), q.BytesPerSample())
	}
}

func TestQuantizeWithoutDither(t *testing.T) {
	q, err := NewQuantizer(1, WithDitherType(DitherNone))
	if err != nil {
		t.Fatalf("NewQuantizer() error = %v", err)
	}

	cases := []struct {
		in   float64
		want int32
	}{
		{0, 0},
		{0.5, 16384},
		{-0.5, -16384},
		{1, 32767},
		{-1, -32768},
		{3, 32767},
		{math.Inf(-1), -32768},
		{math.NaN(), 0},
	}

	for _, tc := range cases {
		if got := q.Quantize(0, tc.in); got != tc.want {
			t.Fatalf("Quantize(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestTriangularDitherIsBoundedAndUnbiased(t *testing.T) {
	q, err := NewQuantizer(1, WithSeed(7))
	if err != nil {
		t.Fatalf("NewQuantizer() error = %v", err)
	}

	const x = 0.25 / 32768

	sum := 0.0

	for range 20000 {
		v := q.Quantize(0, x)
		if v < -1 || v > 2 {
			t.Fatalf("dithered value %d outside TPDF support", v)
		}

		sum += float64(v)
	}

	if mean := sum / 20000; math.Abs(mean-0.25) > 0.02 {
		t.Fatalf("mean = %g, want about 0.25", mean)
	}
}

func TestSeedIsReproducible(t *testing.T) {
	sig := testutil.DeterministicNoise(1, 0.5, 256)
	in := make([]float32, len(sig))

	for i, v := range sig {
		in[i] = float32(v)
	}

	a, _ := NewQuantizer(2, WithSeed(3), WithNoiseShaping(true))
	b, _ := NewQuantizer(2, WithSeed(3), WithNoiseShaping(true))

	pa := a.AppendPCM(nil, in)
	pb := b.AppendPCM(nil, in)

	if string(pa) != string(pb) {
		t.Fatal("same seed produced different output")
	}
}

func TestNoiseShapingKeepsAverage(t *testing.T) {
	q, err := NewQuantizer(1, WithDitherType(DitherNone), WithNoiseShaping(true))
	if err != nil {
		t.Fatalf("NewQuantizer() error = %v", err)
	}

	// 0.3 LSB would always round to 0 without shaping.
	const x = 0.3 / 32768

	sum := 0
	for range 1000 {
		sum += int(q.Quantize(0, x))
	}

	if sum < 290 || sum > 310 {
		t.Fatalf("sum = %d, want about 300", sum)
	}

	q.Reset()

	if got := q.Quantize(0, 0); got != 0 {
		t.Fatalf("Quantize after Reset = %d, want 0", got)
	}
}

func TestAppendPCMLayouts(t *testing.T) {
	in := []float32{0.5, -0.5}

	q16, _ := NewQuantizer(2, WithDitherType(DitherNone))
	p16 := q16.AppendPCM(nil, in)

	if len(p16) != 4 {
		t.Fatalf("16-bit len = %d, want 4", len(p16))
	}

	if got := int16(binary.LittleEndian.Uint16(p16[2:])); got != -16384 {
		t.Fatalf("16-bit right = %d, want -16384", got)
	}

	q24, _ := NewQuantizer(2, WithDitherType(DitherNone), WithBitDepth(24))
	p24 := q24.AppendPCM(nil, in)

	if len(p24) != 6 {
		t.Fatalf("24-bit len = %d, want 6", len(p24))
	}

	left := int32(p24[0]) | int32(p24[1])<<8 | int32(int8(p24[2]))<<16
	right := int32(p24[3]) | int32(p24[4])<<8 | int32(int8(p24[5]))<<16

	if left != 1<<22 || right != -(1<<22) {
		t.Fatalf("24-bit = %d/%d, want %d/%d", left, right, 1<<22, -(1 << 22))
	}

	q8, _ := NewQuantizer(1, WithDitherType(DitherNone), WithBitDepth(8))
	if p8 := q8.AppendPCM(nil, []float32{-1}); len(p8) != 1 || int8(p8[0]) != -128 {
		t.Fatalf("8-bit = %v, want [-128]", p8)
	}
}

func TestParseDitherType(t *testing.T) {
	for name, want := range map[string]DitherType{"none": DitherNone, "rpdf": DitherRectangular, "Triangular": DitherTriangular} {
		got, err := ParseDitherType(name)
		if err != nil || got != want {
			t.Fatalf("ParseDitherType(%q) = %v, %v", name, got, err)
		}
	}

	if _, err := ParseDitherType("gauss"); err == nil {
		t.Fatal("expected error for unknown name")
	}

	if DitherTriangular.String() != "Triangular" || DitherType(9).String() != "DitherType(9)" {
		t.Fatal("unexpected String output")
	}
}
