package param

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-drive/dsp/core"
)

// ID names a parameter the way hosts and state blobs refer to it.
type ID string

// Parameter identifiers.
const (
	Gain   ID = "GAIN"
	Drive  ID = "DRIVE"
	Mix    ID = "MIX"
	Output ID = "OUTPUT"
)

// Unit is the host-facing unit of a parameter value.
type Unit string

// Units used by the declared parameters.
const (
	UnitDecibel Unit = "dB"
	UnitPercent Unit = "%"
)

// ErrUnknownParameter is returned by lookups for an undeclared id.
var ErrUnknownParameter = errors.New("unknown parameter")

// Definition is the range metadata of one parameter. Min, Max and Default
// are in host units (dB or percent).
type Definition struct {
	ID      ID
	Label   string
	Unit    Unit
	Min     float64
	Max     float64
	Default float64
	// Tag is the stable numeric key used by persisted state.
	Tag uint32
}

// Definitions is the ordered parameter declaration published to a host.
type Definitions []Definition

var declared = Definitions{
	{ID: Gain, Label: "Gain", Unit: UnitDecibel, Min: -24, Max: 24, Default: 0, Tag: 0},
	{ID: Drive, Label: "Drive", Unit: UnitDecibel, Min: 0, Max: 20, Default: 0, Tag: 1},
	{ID: Mix, Label: "Mix", Unit: UnitPercent, Min: 0, Max: 100, Default: 0, Tag: 2},
	{ID: Output, Label: "Output", Unit: UnitDecibel, Min: -24, Max: 24, Default: 0, Tag: 3},
}

// Declare returns the four parameter definitions. The returned slice is a
// copy; callers may keep or modify it.
func Declare() Definitions {
	out := make(Definitions, len(declared))
	copy(out, declared)

	return out
}

// Lookup returns the definition for id.
func (d Definitions) Lookup(id ID) (Definition, bool) {
	for _, def := range d {
		if def.ID == id {
			return def, true
		}
	}

	return Definition{}, false
}

// LookupTag returns the definition persisted under tag.
func (d Definitions) LookupTag(tag uint32) (Definition, bool) {
	for _, def := range d {
		if def.Tag == tag {
			return def, true
		}
	}

	return Definition{}, false
}

// Clamp limits a host-unit value to the declared range.
func (d Definition) Clamp(value float64) float64 {
	return core.Clamp(value, d.Min, d.Max)
}

// Contains reports whether value lies inside the declared range.
func (d Definition) Contains(value float64) bool {
	return value >= d.Min && value <= d.Max
}

// Normalize maps a host-unit value to [0, 1] for host automation lanes.
func (d Definition) Normalize(value float64) float64 {
	if d.Max <= d.Min {
		return 0
	}

	return core.Clamp((value-d.Min)/(d.Max-d.Min), 0, 1)
}

// Denormalize maps a [0, 1] automation value back to host units.
func (d Definition) Denormalize(normalized float64) float64 {
	normalized = core.Clamp(normalized, 0, 1)
	return d.Min + normalized*(d.Max-d.Min)
}

// Format renders a host-unit value for display, e.g. "-3.0 dB" or "50 %".
func (d Definition) Format(value float64) string {
	switch d.Unit {
	case UnitPercent:
		return fmt.Sprintf("%.0f %%", value)
	case UnitDecibel:
		return fmt.Sprintf("%.1f dB", value)
	default:
		return fmt.Sprintf("%.2f", value)
	}
}

// Parse reads display text back into a clamped host-unit value. The unit
// suffix is optional.
func (d Definition) Parse(text string) (float64, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimSuffix(s, string(d.Unit))
	if d.Unit == UnitDecibel {
		s = strings.TrimSuffix(s, "db")
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("parameter %s: parse %q: %w", d.ID, text, err)
	}

	if math.IsNaN(v) {
		return 0, fmt.Errorf("parameter %s: value is NaN", d.ID)
	}

	return d.Clamp(v), nil
}
