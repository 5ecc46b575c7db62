package param

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-drive/dsp/core"
)

// Snapshot is the effective parameter set the signal chain reads: gains in
// dB and mix as a fraction in [0, 1].
type Snapshot struct {
	InputDB  float64
	DriveDB  float64
	Mix      float64
	OutputDB float64
}

// DefaultSnapshot returns the effective values of a freshly constructed store.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		InputDB:  declared[0].Default,
		DriveDB:  declared[1].Default,
		Mix:      declared[2].Default / 100,
		OutputDB: declared[3].Default,
	}
}

// Validate reports the first field outside its declared range.
func (s Snapshot) Validate() error {
	check := func(id ID, v, lo, hi float64) error {
		if math.IsNaN(v) || v < lo || v > hi {
			return fmt.Errorf("parameter %s must be in [%g, %g]: %f", id, lo, hi, v)
		}

		return nil
	}

	if err := check(Gain, s.InputDB, declared[0].Min, declared[0].Max); err != nil {
		return err
	}

	if err := check(Drive, s.DriveDB, declared[1].Min, declared[1].Max); err != nil {
		return err
	}

	if err := check(Mix, s.Mix, declared[2].Min/100, declared[2].Max/100); err != nil {
		return err
	}

	return check(Output, s.OutputDB, declared[3].Min, declared[3].Max)
}

// Field returns the effective value stored for id.
func (s Snapshot) Field(id ID) (float64, bool) {
	switch id {
	case Gain:
		return s.InputDB, true
	case Drive:
		return s.DriveDB, true
	case Mix:
		return s.Mix, true
	case Output:
		return s.OutputDB, true
	default:
		return 0, false
	}
}

// Clamped returns s with every field limited to its declared range. NaN
// fields fall back to the declared default. It does not allocate.
func (s Snapshot) Clamped() Snapshot {
	def := DefaultSnapshot()

	fix := func(v, fallback, lo, hi float64) float64 {
		if math.IsNaN(v) {
			return fallback
		}

		return core.Clamp(v, lo, hi)
	}

	return Snapshot{
		InputDB:  fix(s.InputDB, def.InputDB, declared[0].Min, declared[0].Max),
		DriveDB:  fix(s.DriveDB, def.DriveDB, declared[1].Min, declared[1].Max),
		Mix:      fix(s.Mix, def.Mix, declared[2].Min/100, declared[2].Max/100),
		OutputDB: fix(s.OutputDB, def.OutputDB, declared[3].Min, declared[3].Max),
	}
}
