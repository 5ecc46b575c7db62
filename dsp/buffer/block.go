package buffer

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-vecmath"
)

// ErrMalformedBlock is returned by Validate when the descriptor does not
// match the channel storage.
var ErrMalformedBlock = errors.New("malformed audio block")

// Block describes one audio callback: per-channel sample storage, the number
// of samples to process and how many leading channels carry input. Channels
// past the input count exist on the output bus only.
type Block struct {
	channels      [][]float64
	numSamples    int
	inputChannels int
}

// FromChannels wraps caller-owned channel slices without copying.
func FromChannels(channels [][]float64, numSamples, inputChannels int) Block {
	return Block{
		channels:      channels,
		numSamples:    numSamples,
		inputChannels: inputChannels,
	}
}

// NewBlock allocates a zeroed block whose channels all carry input.
func NewBlock(numChannels, numSamples int) Block {
	if numChannels < 0 {
		numChannels = 0
	}

	if numSamples < 0 {
		numSamples = 0
	}

	backing := make([]float64, numChannels*numSamples)

	channels := make([][]float64, numChannels)
	for ch := range channels {
		channels[ch] = backing[ch*numSamples : (ch+1)*numSamples : (ch+1)*numSamples]
	}

	return Block{
		channels:      channels,
		numSamples:    numSamples,
		inputChannels: numChannels,
	}
}

// NumChannels returns the number of output channels.
func (b Block) NumChannels() int { return len(b.channels) }

// NumSamples returns the per-channel sample count of this call.
func (b Block) NumSamples() int { return b.numSamples }

// NumInputChannels returns the input channel count limited to [0, NumChannels].
func (b Block) NumInputChannels() int {
	n := b.inputChannels
	if n < 0 {
		return 0
	}

	if n > len(b.channels) {
		return len(b.channels)
	}

	return n
}

// WithInputChannels returns a copy of b that reports n input channels.
func (b Block) WithInputChannels(n int) Block {
	b.inputChannels = n
	return b
}

// Channel returns channel i trimmed to NumSamples, or nil if the index is out
// of range or the channel storage is shorter than the descriptor claims.
func (b Block) Channel(i int) []float64 {
	if i < 0 || i >= len(b.channels) || b.numSamples < 0 {
		return nil
	}

	ch := b.channels[i]
	if len(ch) < b.numSamples {
		return nil
	}

	return ch[:b.numSamples]
}

// Validate reports whether every channel can hold NumSamples samples and the
// input channel count fits the channel list.
func (b Block) Validate() error {
	if b.numSamples < 0 {
		return fmt.Errorf("%w: negative sample count %d", ErrMalformedBlock, b.numSamples)
	}

	if b.inputChannels < 0 || b.inputChannels > len(b.channels) {
		return fmt.Errorf("%w: %d input channels for %d channels",
			ErrMalformedBlock, b.inputChannels, len(b.channels))
	}

	for i, ch := range b.channels {
		if len(ch) < b.numSamples {
			return fmt.Errorf("%w: channel %d holds %d samples, want %d",
				ErrMalformedBlock, i, len(ch), b.numSamples)
		}
	}

	return nil
}

// ClearChannel zeroes channel i. For a malformed channel the samples that do
// exist are zeroed; nothing outside the slice is touched.
func (b Block) ClearChannel(i int) {
	if i < 0 || i >= len(b.channels) {
		return
	}

	ch := b.channels[i]

	n := len(ch)
	if b.numSamples >= 0 && b.numSamples < n {
		n = b.numSamples
	}

	clear(ch[:n])
}

// Clear zeroes every channel.
func (b Block) Clear() {
	for i := range b.channels {
		b.ClearChannel(i)
	}
}

// Peak returns the largest absolute sample of channel i, or 0 if the channel
// is malformed.
func (b Block) Peak(i int) float64 {
	ch := b.Channel(i)
	if len(ch) == 0 {
		return 0
	}

	return vecmath.MaxAbs(ch)
}
