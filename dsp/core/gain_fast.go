//go:build fastmath

package core

import (
	"github.com/meko-christian/algo-approx"
)

// ln10Over20 turns 10^(dB/20) into e^(dB*ln10/20).
const ln10Over20 = 0.115129254649702284200899572734218210380

// dbToGain is only evaluated once per block per parameter, so the
// approximation error never accumulates across samples.
func dbToGain(db float64) float64 {
	return approx.FastExp(db * ln10Over20)
}
