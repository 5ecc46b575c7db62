package automation

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-drive/dsp/core"
	"github.com/cwbudde/algo-drive/dsp/param"
)

type recorder struct {
	ids    []param.ID
	values []float64
}

func (r *recorder) ParameterChanged(id param.ID, value float64) {
	r.ids = append(r.ids, id)
	r.values = append(r.values, value)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return l
}

const rampScript = `
function automate(block)
  set("DRIVE", math.min(block, 20))
  if block % 2 == 0 then
    set("MIX", 50)
  end
end
`

func TestStepForwardsSets(t *testing.T) {
	s, err := Load("ramp", rampScript, quietLogger())
	require.NoError(t, err)
	defer s.Close()

	rec := &recorder{}
	for block := range 3 {
		require.NoError(t, s.Step(block, rec))
	}

	assert.Equal(t, []param.ID{param.Drive, param.Mix, param.Drive, param.Drive, param.Mix}, rec.ids)
	assert.Equal(t, []float64{0, 50, 1, 2, 50}, rec.values)
	assert.Equal(t, 5, s.Sets())
}

func TestStepDrivesStore(t *testing.T) {
	s, err := Load("ramp", rampScript, quietLogger())
	require.NoError(t, err)
	defer s.Close()

	store := param.NewStore()
	require.NoError(t, s.Step(40, SinkFunc(store.OnParameterChanged)))

	snap := store.Current()
	assert.Equal(t, 20.0, snap.DriveDB)
	assert.Equal(t, 0.5, snap.Mix)
}

func TestTimingGlobals(t *testing.T) {
	src := `
function automate(block)
  set("OUTPUT", -(block * BLOCK_SIZE / SAMPLE_RATE))
end
`
	s, err := Load("timing", src, quietLogger())
	require.NoError(t, err)
	defer s.Close()

	s.SetTiming(core.ProcessorConfig{SampleRate: 1000, BlockSize: 100, Channels: 1})

	rec := &recorder{}
	require.NoError(t, s.Step(30, rec))
	assert.Equal(t, []float64{-3}, rec.values)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("syntax", "function automate(", quietLogger())
	require.Error(t, err)

	_, err = Load("missing", "x = 1", quietLogger())
	require.ErrorIs(t, err, ErrNoEntryPoint)

	_, err = Load("sandbox", "os.exit(1)\nfunction automate() end", quietLogger())
	require.Error(t, err, "os library must not be available")
}

func TestStepErrors(t *testing.T) {
	s, err := Load("bad", `function automate(block) set("TONE", 1) end`, quietLogger())
	require.NoError(t, err)
	defer s.Close()

	rec := &recorder{}
	require.Error(t, s.Step(0, rec))
	assert.Empty(t, rec.ids)

	s2, err := Load("bad", `function automate(block) error("boom") end`, quietLogger())
	require.NoError(t, err)
	defer s2.Close()
	require.Error(t, s2.Step(0, rec))
}

func TestLogFunction(t *testing.T) {
	logger, hook := test.NewNullLogger()

	s, err := Load("logger", `function automate(block) log("block " .. block) end`, logger)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Step(7, nil))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "block 7", entry.Message)
	assert.Equal(t, "logger", entry.Data["script"])
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auto.lua")
	require.NoError(t, os.WriteFile(path, []byte(rampScript), 0o600))

	s, err := LoadFile(path, quietLogger())
	require.NoError(t, err)
	s.Close()
	s.Close()

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.lua"), quietLogger())
	require.Error(t, err)
}
