//go:build !fastmath

package core

import (
	"math"
	"testing"
)

func TestDBConversions(t *testing.T) {
	if got := DBToLinear(0); got != 1 {
		t.Fatalf("DBToLinear(0) = %v, want 1", got)
	}

	if got := DBToLinear(20); !NearlyEqual(got, 10, 1e-12) {
		t.Fatalf("DBToLinear(20) = %v, want 10", got)
	}

	if got := DBToLinear(6); !NearlyEqual(got, 1.9952623149688795, 1e-12) {
		t.Fatalf("DBToLinear(6) = %v, want 1.99526", got)
	}

	db := LinearToDB(DBToLinear(-6))
	if !NearlyEqual(db, -6, 1e-10) {
		t.Fatalf("LinearToDB(DBToLinear(-6)) = %v, want -6", db)
	}
	if !math.IsInf(LinearToDB(0), -1) {
		t.Fatal("expected -Inf for zero")
	}
	if !math.IsNaN(LinearToDB(-1)) {
		t.Fatal("expected NaN for negative amplitude")
	}
}
