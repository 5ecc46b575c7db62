package testutil

import (
	"math"
	"testing"
)

func TestDeterministicSine(t *testing.T) {
	s := DeterministicSine(1000, 48000, 0.5, 48)
	if len(s) != 48 {
		t.Fatalf("len = %d, want 48", len(s))
	}

	if s[0] != 0 {
		t.Fatalf("s[0] = %v, want 0", s[0])
	}

	if math.Abs(s[12]-0.5) > 1e-15 {
		t.Fatalf("s[12] = %v, want 0.5 at a quarter period", s[12])
	}
}

func TestDeterministicNoise(t *testing.T) {
	a := DeterministicNoise(42, 0.25, 64)
	b := DeterministicNoise(42, 0.25, 64)
	c := DeterministicNoise(43, 0.25, 64)

	same := true

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("noise not deterministic at index %d", i)
		}

		if math.Abs(a[i]) > 0.25 {
			t.Fatalf("a[%d] = %v exceeds amplitude", i, a[i])
		}

		if a[i] != c[i] {
			same = false
		}
	}

	if same {
		t.Fatal("different seeds produced identical noise")
	}
}

func TestRamp(t *testing.T) {
	r := Ramp(-1, 1, 5)
	want := []float64{-1, -0.5, 0, 0.5, 1}

	for i := range want {
		if r[i] != want[i] {
			t.Fatalf("Ramp[%d] = %v, want %v", i, r[i], want[i])
		}
	}

	if got := Ramp(3, 9, 1); got[0] != 3 {
		t.Fatalf("Ramp(3, 9, 1) = %v, want [3]", got)
	}
}

func TestChannels(t *testing.T) {
	src := []float64{1, 2}
	chs := Channels(src, 2)
	chs[0][0] = 9

	if chs[1][0] != 1 || src[0] != 1 {
		t.Fatalf("channels share storage: %v, src %v", chs, src)
	}
}
