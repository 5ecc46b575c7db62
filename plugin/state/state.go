// Package state persists the four drive parameters as a compact binary blob.
//
// Layout (little-endian):
//
//	magic   [4]byte  "ADRV"
//	version uint32
//	count   uint32
//	count × { tag uint32, value float64 }
//
// Values are stored in the units the signal chain reads: dB for the gains and
// a fraction in [0, 1] for the mix.
package state

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/cwbudde/algo-drive/dsp/param"
)

// Version is the blob version written by Save.
const Version uint32 = 1

var magic = [4]byte{'A', 'D', 'R', 'V'}

var (
	// ErrInvalidFormat is returned for blobs with a bad header or truncated body.
	ErrInvalidFormat = errors.New("invalid state format")
	// ErrUnsupportedVersion is returned for blobs written by a newer version.
	ErrUnsupportedVersion = errors.New("unsupported state version")
)

type entry struct {
	Tag   uint32
	Value float64
}

type header struct {
	Magic   [4]byte
	Version uint32
	Count   uint32
}

// Save writes snap to w.
func Save(w io.Writer, snap param.Snapshot) error {
	defs := param.Declare()

	h := header{Magic: magic, Version: Version, Count: uint32(len(defs))}
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("write state header: %w", err)
	}

	for _, def := range defs {
		v, _ := snap.Field(def.ID)

		if err := binary.Write(w, binary.LittleEndian, entry{Tag: def.Tag, Value: v}); err != nil {
			return fmt.Errorf("write parameter %s: %w", def.ID, err)
		}
	}

	return nil
}

// Load reads a blob from r. Parameters missing from the blob, or stored as
// NaN, keep their value from base; unknown tags are skipped. Every loaded
// value is clamped to its declared range.
func Load(r io.Reader, base param.Snapshot) (param.Snapshot, error) {
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return base, fmt.Errorf("%w: read header: %w", ErrInvalidFormat, err)
	}

	if h.Magic != magic {
		return base, fmt.Errorf("%w: bad magic %q", ErrInvalidFormat, h.Magic[:])
	}

	if h.Version == 0 || h.Version > Version {
		return base, fmt.Errorf("%w: %d (supported up to %d)", ErrUnsupportedVersion, h.Version, Version)
	}

	defs := param.Declare()
	out := base

	for i := range h.Count {
		var e entry
		if err := binary.Read(r, binary.LittleEndian, &e); err != nil {
			return base, fmt.Errorf("%w: entry %d of %d: %w", ErrInvalidFormat, i, h.Count, err)
		}

		def, ok := defs.LookupTag(e.Tag)
		if !ok || math.IsNaN(e.Value) {
			continue
		}

		switch def.ID {
		case param.Gain:
			out.InputDB = e.Value
		case param.Drive:
			out.DriveDB = e.Value
		case param.Mix:
			out.Mix = e.Value
		case param.Output:
			out.OutputDB = e.Value
		}
	}

	return out.Clamped(), nil
}

// Marshal returns snap encoded as a blob.
func Marshal(snap param.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := Save(&buf, snap); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Unmarshal decodes data on top of base. Trailing bytes are ignored.
func Unmarshal(data []byte, base param.Snapshot) (param.Snapshot, error) {
	return Load(bytes.NewReader(data), base)
}
