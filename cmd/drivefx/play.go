package main

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/cwbudde/algo-drive/dsp/core"
	"github.com/cwbudde/algo-drive/internal/automation"
	"github.com/cwbudde/algo-drive/internal/host"
	"github.com/cwbudde/algo-drive/plugin"
)

// play streams engine to the default device. When stdin is a terminal the
// keyboard nudges parameters; q or Ctrl-C stops. seconds <= 0 plays until q.
// Key handling and the automation script share this goroutine, which is the
// only writer of the parameters while the device pulls audio.
func play(engine *host.Engine, proc *plugin.Processor, script *automation.Script, cfg core.ProcessorConfig, seconds float64, logger *logrus.Logger) error {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(cfg.SampleRate),
		ChannelCount: engine.Channels(),
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(cfg.BlockSize) * time.Second / time.Duration(cfg.SampleRate),
	})
	if err != nil {
		return fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	player := ctx.NewPlayer(engine)
	defer player.Close()

	player.Play()

	logger.WithFields(logrus.Fields{
		"function":    "drivefx.play",
		"sample_rate": cfg.SampleRate,
		"channels":    engine.Channels(),
	}).Info("Playback started")

	var deadline <-chan time.Time
	if seconds > 0 {
		deadline = time.After(time.Duration(seconds * float64(time.Second)))
	}

	keys, restore := readKeys(logger)
	defer restore()

	if keys == nil && deadline == nil {
		return fmt.Errorf("stdin is not a terminal: use -seconds to bound playback")
	}

	var tick <-chan time.Time

	if script != nil {
		period := time.Duration(float64(cfg.BlockSize) / cfg.SampleRate * float64(time.Second))
		ticker := time.NewTicker(max(period, time.Millisecond))
		defer ticker.Stop()

		tick = ticker.C
	}

	control(proc, script, keys, tick, deadline, os.Stderr)

	return nil
}

// control applies key presses and script steps until the deadline passes, the
// key stream ends or q / Ctrl-C is pressed. It is the only parameter writer
// during playback.
func control(proc *plugin.Processor, script *automation.Script, keys <-chan byte, tick, deadline <-chan time.Time, echo io.Writer) {
	bindings := host.DefaultKeyMap()
	block := 0

	for {
		select {
		case <-deadline:
			return
		case <-tick:
			// Errors are logged by the script; playback continues.
			_ = script.Step(block, proc)
			block++
		case k, ok := <-keys:
			if !ok || k == 'q' || k == 3 {
				return
			}

			id, v, ok := bindings.Apply(proc.Store(), k)
			if !ok {
				continue
			}

			def, _ := proc.Parameters().Lookup(id)
			fmt.Fprintf(echo, "\r%-8s %-10s\r\n", def.Label, def.Format(v))
		}
	}
}

// readKeys switches stdin to raw mode and streams key presses. keys is nil
// when stdin is not a terminal. restore puts the terminal back and is safe to
// call more than once.
func readKeys(logger *logrus.Logger) (keys <-chan byte, restore func()) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, func() {}
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"function": "drivefx.readKeys",
			"error":    err.Error(),
		}).Warn("Keyboard control unavailable")

		return nil, func() {}
	}

	var once sync.Once

	restore = func() {
		once.Do(func() { _ = term.Restore(fd, oldState) })
	}

	ch := make(chan byte, 16)

	go func() {
		defer close(ch)

		buf := make([]byte, 1)

		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return
			}

			if n == 1 {
				ch <- buf[0]
			}
		}
	}()

	return ch, restore
}
