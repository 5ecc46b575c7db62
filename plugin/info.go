package plugin

// Info is the static description a host queries once.
type Info struct {
	Name         string
	Vendor       string
	Version      string
	AcceptsMIDI  bool
	ProducesMIDI bool
	IsMIDIEffect bool
	// TailSeconds is how long output continues after input stops.
	TailSeconds float64
	// Programs is the number of host programs; the processor exposes one.
	Programs int
}

var info = Info{
	Name:        "Distortion",
	Vendor:      "algo-drive",
	Version:     "1.0.0",
	TailSeconds: 0,
	Programs:    1,
}

// Layout is a bus arrangement given as channel counts.
type Layout struct {
	Input  int
	Output int
}

var (
	Mono   = Layout{Input: 1, Output: 1}
	Stereo = Layout{Input: 2, Output: 2}
)

// IsLayoutSupported reports whether l is mono or stereo with matching input
// and output.
func IsLayoutSupported(l Layout) bool {
	if l.Output != 1 && l.Output != 2 {
		return false
	}

	return l.Input == l.Output
}

// Event is a timestamped host event delivered with a block. The drive core
// has no MIDI or timing behaviour, so events are accepted and dropped.
type Event struct {
	SampleOffset int
	Data         [3]byte
}
