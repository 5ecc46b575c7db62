// Package dither converts processed float audio to integer PCM with
// optional dither noise and first-order noise shaping.
package dither

import "fmt"

// DitherType selects the probability distribution used for dither noise.
type DitherType int

const (
	// DitherNone rounds without added noise.
	DitherNone DitherType = iota
	// DitherRectangular uses a uniform PDF of one LSB peak.
	DitherRectangular
	// DitherTriangular uses a triangular PDF (TPDF), the usual choice.
	DitherTriangular

	ditherTypeCount
)

var ditherTypeNames = [ditherTypeCount]string{"None", "Rectangular", "Triangular"}

// String returns the name of the dither type.
func (dt DitherType) String() string {
	if dt.Valid() {
		return ditherTypeNames[dt]
	}

	return fmt.Sprintf("DitherType(%d)", dt)
}

// Valid reports whether dt is a known dither type.
func (dt DitherType) Valid() bool {
	return dt >= 0 && dt < ditherTypeCount
}

// ParseDitherType maps a case-sensitive name such as "Triangular" or "tpdf"
// to a DitherType.
func ParseDitherType(name string) (DitherType, error) {
	switch name {
	case "None", "none":
		return DitherNone, nil
	case "Rectangular", "rectangular", "rpdf":
		return DitherRectangular, nil
	case "Triangular", "triangular", "tpdf":
		return DitherTriangular, nil
	default:
		return 0, fmt.Errorf("dither: unknown dither type %q", name)
	}
}
