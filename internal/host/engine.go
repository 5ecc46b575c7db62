package host

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/cwbudde/algo-drive/dsp/buffer"
	"github.com/cwbudde/algo-drive/dsp/core"
	"github.com/cwbudde/algo-drive/plugin"
)

const bytesPerSample = 4

// Processor runs one block in place.
type Processor interface {
	Process(block buffer.Block, events []plugin.Event)
}

// Source produces mono input samples.
type Source interface {
	Fill(dst []float64)
}

// Engine pulls fixed-size blocks through a Processor. The mono source is
// copied to every input channel.
type Engine struct {
	proc      Processor
	src       Source
	channels  int

	block buffer.Block
	mono  []float64
	in    []float32
	out   []float32

	// pcm holds the encoded current block; pcm[off:] is not yet read.
	pcm []byte
	off int

	blocks      int
	beforeBlock func(block int)
	afterBlock  func(block buffer.Block)
}

// NewEngine creates an engine for cfg.
func NewEngine(proc Processor, src Source, cfg core.ProcessorConfig) (*Engine, error) {
	if proc == nil || src == nil {
		return nil, errors.New("host engine needs a processor and a source")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	frameLen := cfg.Channels * cfg.BlockSize

	return &Engine{
		proc:      proc,
		src:       src,
		channels:  cfg.Channels,
		block:     buffer.NewBlock(cfg.Channels, cfg.BlockSize),
		mono:      make([]float64, cfg.BlockSize),
		in:        make([]float32, frameLen),
		out:       make([]float32, frameLen),
		pcm:       make([]byte, frameLen*bytesPerSample),
		off:       frameLen * bytesPerSample,
	}, nil
}

// OnBlock registers fn to run before each block, e.g. to apply automation
// during an offline render. It runs on the goroutine that pulls audio, so it
// must not be used for control work while a device is reading.
func (e *Engine) OnBlock(fn func(block int)) { e.beforeBlock = fn }

// OnOutput registers fn to observe each processed block, e.g. for metering.
// The block is only valid during the call.
func (e *Engine) OnOutput(fn func(block buffer.Block)) { e.afterBlock = fn }

// Blocks returns the number of blocks processed so far.
func (e *Engine) Blocks() int { return e.blocks }

// Channels returns the interleaved channel count.
func (e *Engine) Channels() int { return e.channels }

// NextBlock processes one block and returns it interleaved. The returned
// slice is reused by the next call.
func (e *Engine) NextBlock() []float32 {
	if e.beforeBlock != nil {
		e.beforeBlock(e.blocks)
	}

	e.src.Fill(e.mono)

	for i, v := range e.mono {
		for ch := range e.channels {
			e.in[i*e.channels+ch] = float32(v)
		}
	}

	buffer.Deinterleave(e.block, e.in)
	e.proc.Process(e.block, nil)

	if e.afterBlock != nil {
		e.afterBlock(e.block)
	}

	buffer.Interleave(e.out, e.block)

	e.blocks++

	return e.out
}

// Read implements io.Reader with float32 little-endian interleaved PCM. It
// always fills p completely and does not allocate.
func (e *Engine) Read(p []byte) (int, error) {
	n := 0

	for n < len(p) {
		if e.off == len(e.pcm) {
			encodePCM(e.pcm, e.NextBlock())
			e.off = 0
		}

		c := copy(p[n:], e.pcm[e.off:])
		e.off += c
		n += c
	}

	return n, nil
}

// Render writes frames frames of PCM to w.
func (e *Engine) Render(w io.Writer, frames int) error {
	if frames < 0 {
		return fmt.Errorf("render frame count must be >= 0: %d", frames)
	}

	remaining := frames * e.channels * bytesPerSample
	buf := make([]byte, len(e.out)*bytesPerSample)

	for remaining > 0 {
		chunk := buf[:min(len(buf), remaining)]

		if _, err := io.ReadFull(e, chunk); err != nil {
			return err
		}

		if _, err := w.Write(chunk); err != nil {
			return fmt.Errorf("write pcm: %w", err)
		}

		remaining -= len(chunk)
	}

	return nil
}

func encodePCM(dst []byte, samples []float32) {
	for i, s := range samples {
		binary.LittleEndian.PutUint32(dst[i*bytesPerSample:], math.Float32bits(s))
	}
}
