package param

import (
	"math"
	"sync"
	"testing"
)

func TestNewStoreDefaults(t *testing.T) {
	s := NewStore()

	got := s.Current()
	if got != DefaultSnapshot() {
		t.Fatalf("Current() = %+v, want %+v", got, DefaultSnapshot())
	}

	if got != (Snapshot{}) {
		t.Fatalf("defaults = %+v, want all zero", got)
	}
}

func TestOnParameterChangedUnits(t *testing.T) {
	s := NewStore()

	s.OnParameterChanged(Gain, 6)
	s.OnParameterChanged(Drive, 12.5)
	s.OnParameterChanged(Mix, 25)
	s.OnParameterChanged(Output, -3)

	want := Snapshot{InputDB: 6, DriveDB: 12.5, Mix: 0.25, OutputDB: -3}
	if got := s.Current(); got != want {
		t.Fatalf("Current() = %+v, want %+v", got, want)
	}
}

func TestMixConversionEndpoints(t *testing.T) {
	s := NewStore()

	s.OnParameterChanged(Mix, 100)
	if got := s.Current().Mix; got != 1.0 {
		t.Fatalf("mix 100%% = %v, want exactly 1.0", got)
	}

	s.OnParameterChanged(Mix, 0)
	if got := s.Current().Mix; got != 0.0 {
		t.Fatalf("mix 0%% = %v, want exactly 0.0", got)
	}
}

func TestOnParameterChangedIdempotent(t *testing.T) {
	once := NewStore()
	once.OnParameterChanged(Mix, 50)

	twice := NewStore()
	twice.OnParameterChanged(Mix, 50)
	twice.OnParameterChanged(Mix, 50)

	if once.Current() != twice.Current() {
		t.Fatalf("once = %+v, twice = %+v", once.Current(), twice.Current())
	}

	if got := twice.Current().Mix; got != 0.5 {
		t.Fatalf("mix = %v, want 0.5", got)
	}
}

func TestOnParameterChangedClamps(t *testing.T) {
	tests := []struct {
		id    ID
		value float64
		want  Snapshot
	}{
		{Gain, 40, Snapshot{InputDB: 24}},
		{Gain, -100, Snapshot{InputDB: -24}},
		{Drive, -5, Snapshot{DriveDB: 0}},
		{Drive, 21, Snapshot{DriveDB: 20}},
		{Mix, 150, Snapshot{Mix: 1}},
		{Mix, -1, Snapshot{Mix: 0}},
		{Output, math.Inf(1), Snapshot{OutputDB: 24}},
		{Output, math.Inf(-1), Snapshot{OutputDB: -24}},
	}

	for _, tt := range tests {
		s := NewStore()
		s.OnParameterChanged(tt.id, tt.value)

		if got := s.Current(); got != tt.want {
			t.Fatalf("%s=%v: Current() = %+v, want %+v", tt.id, tt.value, got, tt.want)
		}

		if err := s.Current().Validate(); err != nil {
			t.Fatalf("%s=%v: clamped snapshot invalid: %v", tt.id, tt.value, err)
		}
	}
}

func TestOnParameterChangedIgnoresUnknownAndNaN(t *testing.T) {
	s := NewStore()
	s.OnParameterChanged(Drive, 10)

	calls := 0
	cancel := s.Subscribe(func(ID, float64) { calls++ })
	defer cancel()

	s.OnParameterChanged("BOGUS", 3)
	s.OnParameterChanged(Drive, math.NaN())

	if got := s.Current().DriveDB; got != 10 {
		t.Fatalf("drive = %v, want 10", got)
	}

	if calls != 0 {
		t.Fatalf("listener called %d times, want 0", calls)
	}
}

func TestValueHostUnits(t *testing.T) {
	s := NewStore()
	s.OnParameterChanged(Mix, 75)
	s.OnParameterChanged(Gain, -12)

	if v, ok := s.Value(Mix); !ok || v != 75 {
		t.Fatalf("Value(MIX) = %v, %v; want 75, true", v, ok)
	}

	if v, ok := s.Value(Gain); !ok || v != -12 {
		t.Fatalf("Value(GAIN) = %v, %v; want -12, true", v, ok)
	}

	if _, ok := s.Value("NOPE"); ok {
		t.Fatal("Value(unknown) reported ok")
	}
}

func TestSubscribeNotifiesHostUnits(t *testing.T) {
	s := NewStore()

	type change struct {
		id    ID
		value float64
	}

	var got []change

	cancel := s.Subscribe(func(id ID, v float64) {
		got = append(got, change{id, v})
	})

	s.OnParameterChanged(Mix, 40)
	s.OnParameterChanged(Drive, 30)
	cancel()
	s.OnParameterChanged(Gain, 1)

	want := []change{{Mix, 40}, {Drive, 20}}
	if len(got) != len(want) {
		t.Fatalf("got %d notifications, want %d: %+v", len(got), len(want), got)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("notification %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	// Cancelling twice is harmless.
	cancel()
}

func TestSubscribeNilListener(t *testing.T) {
	s := NewStore()
	cancel := s.Subscribe(nil)
	cancel()
	s.OnParameterChanged(Gain, 3)
}

func TestRestoreAndReset(t *testing.T) {
	s := NewStore()

	s.Restore(Snapshot{InputDB: 3, DriveDB: 50, Mix: 0.3, OutputDB: math.NaN()})

	want := Snapshot{InputDB: 3, DriveDB: 20, Mix: 0.3, OutputDB: 0}
	if got := s.Current(); got != want {
		t.Fatalf("Current() = %+v, want %+v", got, want)
	}

	s.Restore(Snapshot{Mix: 7})
	if got := s.Current().Mix; got != 1 {
		t.Fatalf("mix = %v, want clamp to 1", got)
	}

	s.Reset()
	if got := s.Current(); got != DefaultSnapshot() {
		t.Fatalf("after Reset Current() = %+v, want defaults", got)
	}
}

func TestConcurrentReadersSeeInRangeValues(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup

	stop := make(chan struct{})

	wg.Add(1)

	go func() {
		defer wg.Done()

		for {
			select {
			case <-stop:
				return
			default:
			}

			snap := s.Current()
			if err := snap.Validate(); err != nil {
				t.Errorf("reader saw invalid snapshot: %v", err)
				return
			}
		}
	}()

	for i := range 10000 {
		v := float64(i%200) - 50
		s.OnParameterChanged(Gain, v)
		s.OnParameterChanged(Drive, v)
		s.OnParameterChanged(Mix, v)
		s.OnParameterChanged(Output, v)
	}

	close(stop)
	wg.Wait()
}

func BenchmarkStoreCurrent(b *testing.B) {
	s := NewStore()
	s.OnParameterChanged(Drive, 12)

	b.ReportAllocs()
	b.ResetTimer()

	var snap Snapshot
	for range b.N {
		snap = s.Current()
	}

	_ = snap
}

func BenchmarkStoreOnParameterChanged(b *testing.B) {
	s := NewStore()

	b.ReportAllocs()
	b.ResetTimer()

	for i := range b.N {
		s.OnParameterChanged(Mix, float64(i%100))
	}
}
