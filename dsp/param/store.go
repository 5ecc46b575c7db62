package param

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/cwbudde/algo-drive/dsp/core"
)

// Listener receives a parameter id and its new host-unit value after the
// effective set has been updated. Listeners run on the goroutine that
// delivered the change.
type Listener func(id ID, value float64)

type subscription struct {
	id uint64
	fn Listener
}

// Store owns the parameter definitions and the effective-value cache.
//
// OnParameterChanged is meant for a single control goroutine; Current may be
// called concurrently from the processing goroutine.
type Store struct {
	defs Definitions

	inputDB  atomic.Uint64
	driveDB  atomic.Uint64
	mix      atomic.Uint64
	outputDB atomic.Uint64

	listeners atomic.Pointer[[]subscription]

	// subMu serialises Subscribe and cancel; notification never takes it.
	subMu  sync.Mutex
	nextID uint64
}

// NewStore returns a store holding the declared defaults.
func NewStore() *Store {
	s := &Store{defs: Declare()}
	s.store(DefaultSnapshot())

	return s
}

// Definitions returns the parameter declaration of this store.
func (s *Store) Definitions() Definitions {
	out := make(Definitions, len(s.defs))
	copy(out, s.defs)

	return out
}

// OnParameterChanged updates the effective value for id. value is in host
// units: dB for GAIN, DRIVE and OUTPUT, percent for MIX. Out-of-range values
// are clamped, NaN and unknown ids are ignored.
func (s *Store) OnParameterChanged(id ID, value float64) {
	if math.IsNaN(value) {
		return
	}

	field, def := s.slot(id)
	if field == nil {
		return
	}

	plain := def.Clamp(value)

	effective := plain
	if id == Mix {
		effective = plain / 100
	}

	field.Store(math.Float64bits(effective))
	s.notify(id, plain)
}

// Current returns the latest effective values.
func (s *Store) Current() Snapshot {
	return Snapshot{
		InputDB:  math.Float64frombits(s.inputDB.Load()),
		DriveDB:  math.Float64frombits(s.driveDB.Load()),
		Mix:      math.Float64frombits(s.mix.Load()),
		OutputDB: math.Float64frombits(s.outputDB.Load()),
	}
}

// Value returns the host-unit value of id (MIX in percent).
func (s *Store) Value(id ID) (float64, bool) {
	field, _ := s.slot(id)
	if field == nil {
		return 0, false
	}

	v := math.Float64frombits(field.Load())
	if id == Mix {
		v *= 100
	}

	return v, true
}

// Restore replaces the effective set, clamping every field to its range.
// NaN fields keep their current value. Listeners are notified per field.
func (s *Store) Restore(snap Snapshot) {
	for _, def := range s.defs {
		v, _ := snap.Field(def.ID)
		if math.IsNaN(v) {
			continue
		}

		field, _ := s.slot(def.ID)
		var plain float64

		if def.ID == Mix {
			v = core.Clamp(v, def.Min/100, def.Max/100)
			plain = v * 100
		} else {
			v = def.Clamp(v)
			plain = v
		}

		field.Store(math.Float64bits(v))
		s.notify(def.ID, plain)
	}
}

// Reset restores the declared defaults.
func (s *Store) Reset() {
	s.Restore(DefaultSnapshot())
}

// Subscribe registers fn for change notifications and returns a function
// that removes it again.
func (s *Store) Subscribe(fn Listener) (cancel func()) {
	if fn == nil {
		return func() {}
	}

	s.subMu.Lock()
	s.nextID++
	id := s.nextID

	var next []subscription
	if cur := s.listeners.Load(); cur != nil {
		next = make([]subscription, 0, len(*cur)+1)
		next = append(next, *cur...)
	}

	next = append(next, subscription{id: id, fn: fn})
	s.listeners.Store(&next)
	s.subMu.Unlock()

	var once sync.Once

	return func() {
		once.Do(func() { s.unsubscribe(id) })
	}
}

func (s *Store) unsubscribe(id uint64) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	cur := s.listeners.Load()
	if cur == nil {
		return
	}

	next := make([]subscription, 0, len(*cur))
	for _, sub := range *cur {
		if sub.id != id {
			next = append(next, sub)
		}
	}

	s.listeners.Store(&next)
}

func (s *Store) notify(id ID, value float64) {
	subs := s.listeners.Load()
	if subs == nil {
		return
	}

	for _, sub := range *subs {
		sub.fn(id, value)
	}
}

func (s *Store) store(snap Snapshot) {
	s.inputDB.Store(math.Float64bits(snap.InputDB))
	s.driveDB.Store(math.Float64bits(snap.DriveDB))
	s.mix.Store(math.Float64bits(snap.Mix))
	s.outputDB.Store(math.Float64bits(snap.OutputDB))
}

func (s *Store) slot(id ID) (*atomic.Uint64, Definition) {
	switch id {
	case Gain:
		return &s.inputDB, declared[0]
	case Drive:
		return &s.driveDB, declared[1]
	case Mix:
		return &s.mix, declared[2]
	case Output:
		return &s.outputDB, declared[3]
	default:
		return nil, Definition{}
	}
}
