// Command drivefx runs a test tone through the drive processor.
//
// Usage:
//
//	drivefx [flags]
//
// By default the processed tone is written as raw interleaved float32
// little-endian PCM. With -play it is played on the default audio device and
// the parameters can be changed from the keyboard.
//
// Examples:
//
//	drivefx -drive 12 -mix 100 -out tone.f32
//	drivefx -play -drive 6 -mix 50
//	drivefx -script sweep.lua -seconds 4 -out sweep.f32
//	drivefx -load-state preset.bin -save-state preset.bin -out /dev/null
//	drivefx -format s24 -dither tpdf -out tone.s24
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-drive/dsp/core"
	"github.com/cwbudde/algo-drive/dsp/dither"
	"github.com/cwbudde/algo-drive/dsp/param"
	"github.com/cwbudde/algo-drive/internal/automation"
	"github.com/cwbudde/algo-drive/internal/host"
	"github.com/cwbudde/algo-drive/plugin"
	"github.com/cwbudde/algo-drive/stats/level"
)

type options struct {
	gain, drive, mix, output float64
	freq, amplitude          float64
	rate                     float64
	channels, block          int
	seconds                  float64
	script                   string
	out                      string
	format, dither           string
	shape                    bool
	play                     bool
	loadState, saveState     string
}

func main() {
	var o options

	flag.Float64Var(&o.gain, "gain", 0, "input gain in dB [-24, 24]")
	flag.Float64Var(&o.drive, "drive", 0, "drive in dB [0, 20]")
	flag.Float64Var(&o.mix, "mix", 0, "dry/wet mix in percent [0, 100]")
	flag.Float64Var(&o.output, "output", 0, "output gain in dB [-24, 24]")
	flag.Float64Var(&o.freq, "freq", 220, "test tone frequency in Hz")
	flag.Float64Var(&o.amplitude, "amp", 0.5, "test tone amplitude")
	flag.Float64Var(&o.rate, "rate", 48000, "sample rate in Hz")
	flag.IntVar(&o.channels, "channels", 2, "channel count (1 or 2)")
	flag.IntVar(&o.block, "block", 512, "block size in samples")
	flag.Float64Var(&o.seconds, "seconds", 2, "duration in seconds (0 plays until q with -play)")
	flag.StringVar(&o.script, "script", "", "Lua automation script")
	flag.StringVar(&o.out, "out", "-", "output file for raw PCM (- for stdout)")
	flag.StringVar(&o.format, "format", "f32", "output sample format: f32, s16 or s24")
	flag.StringVar(&o.dither, "dither", "tpdf", "dither for integer formats: none, rpdf or tpdf")
	flag.BoolVar(&o.shape, "shape", false, "noise shaping for integer formats")
	flag.BoolVar(&o.play, "play", false, "play through the default audio device")
	flag.StringVar(&o.loadState, "load-state", "", "restore parameters from a state file before applying flags")
	flag.StringVar(&o.saveState, "save-state", "", "write the final parameter state to a file")
	verbose := flag.Bool("v", false, "verbose logging")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: drivefx [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Runs a sine test tone through the drive processor.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys with -play: g/G gain, d/D drive, m/M mix, o/O output, q quit\n")
	}
	flag.Parse()

	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}

	if err := run(o, logger); err != nil {
		die("%v", err)
	}
}

func run(o options, logger *logrus.Logger) error {
	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(o.rate),
		core.WithBlockSize(o.block),
		core.WithChannels(o.channels),
	)
	if cfg.Channels != o.channels {
		return fmt.Errorf("channels must be 1 or 2: %d", o.channels)
	}

	proc, err := plugin.New(plugin.WithLogger(logger))
	if err != nil {
		return err
	}

	if err := proc.Prepare(cfg); err != nil {
		return err
	}
	defer proc.Release()

	if o.loadState != "" {
		if err := loadState(proc, o.loadState); err != nil {
			return err
		}
	}

	applyFlags(proc, o)

	src, err := host.NewSine(o.freq, cfg.SampleRate, o.amplitude)
	if err != nil {
		return err
	}

	engine, err := host.NewEngine(proc, src, cfg)
	if err != nil {
		return err
	}

	var script *automation.Script

	if o.script != "" {
		script, err = automation.LoadFile(o.script, logger)
		if err != nil {
			return err
		}
		defer script.Close()

		script.SetTiming(cfg)

		// With -play the script runs on the control loop instead.
		if !o.play {
			engine.OnBlock(func(block int) {
				// Errors are logged by the script; rendering continues.
				_ = script.Step(block, proc)
			})
		}
	}

	meter := level.NewMeter(cfg.Channels)
	engine.OnOutput(meter.Update)

	frames := int(math.Round(o.seconds * cfg.SampleRate))

	if o.play {
		err = play(engine, proc, script, cfg, o.seconds, logger)
	} else {
		err = render(engine, o, frames)
	}

	if err != nil {
		return err
	}

	stats := meter.Result()

	logger.WithFields(logrus.Fields{
		"function":  "drivefx.run",
		"blocks":    engine.Blocks(),
		"peak_dbfs": stats.Peak_dB,
		"rms_dbfs":  stats.RMS_dB,
		"clipped":   stats.Clipped,
	}).Info("Done")

	if o.saveState != "" {
		return saveState(proc, o.saveState)
	}

	return nil
}

// applyFlags sets the parameters from the command line. After a state load
// only flags given explicitly override the restored values.
func applyFlags(proc *plugin.Processor, o options) {
	values := map[string]struct {
		id param.ID
		v  float64
	}{
		"gain":   {param.Gain, o.gain},
		"drive":  {param.Drive, o.drive},
		"mix":    {param.Mix, o.mix},
		"output": {param.Output, o.output},
	}

	if o.loadState == "" {
		for _, p := range values {
			proc.ParameterChanged(p.id, p.v)
		}

		return
	}

	flag.Visit(func(f *flag.Flag) {
		if p, ok := values[f.Name]; ok {
			proc.ParameterChanged(p.id, p.v)
		}
	})
}

func render(engine *host.Engine, o options, frames int) error {
	quant, err := newQuantizer(o, engine.Channels())
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout

	if o.out != "-" {
		f, err := os.Create(o.out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()

		w = f
	}

	bw := bufio.NewWriter(w)

	if quant == nil {
		err = engine.Render(bw, frames)
	} else {
		err = renderInt(engine, quant, bw, frames)
	}

	if err != nil {
		return err
	}

	return bw.Flush()
}

// newQuantizer returns nil for float output.
func newQuantizer(o options, channels int) (*dither.Quantizer, error) {
	var bits int

	switch o.format {
	case "f32":
		return nil, nil
	case "s16":
		bits = 16
	case "s24":
		bits = 24
	default:
		return nil, fmt.Errorf("unknown output format %q", o.format)
	}

	dt, err := dither.ParseDitherType(o.dither)
	if err != nil {
		return nil, err
	}

	return dither.NewQuantizer(channels,
		dither.WithBitDepth(bits),
		dither.WithDitherType(dt),
		dither.WithNoiseShaping(o.shape),
	)
}

func renderInt(engine *host.Engine, quant *dither.Quantizer, w io.Writer, frames int) error {
	var pcm []byte

	channels := engine.Channels()

	for frames > 0 {
		samples := engine.NextBlock()
		n := min(frames, len(samples)/channels)

		pcm = quant.AppendPCM(pcm[:0], samples[:n*channels])
		if _, err := w.Write(pcm); err != nil {
			return fmt.Errorf("write pcm: %w", err)
		}

		frames -= n
	}

	return nil
}

func loadState(proc *plugin.Processor, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read state: %w", err)
	}

	return proc.SetState(data)
}

func saveState(proc *plugin.Processor, path string) error {
	data, err := proc.State()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}

	return nil
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}
