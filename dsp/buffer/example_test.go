package buffer_test

import (
	"fmt"

	"github.com/cwbudde/algo-drive/dsp/buffer"
)

func ExampleFromChannels() {
	left := []float64{0.5, -0.25}
	right := []float64{0, 0}

	// Mono input on a stereo bus.
	b := buffer.FromChannels([][]float64{left, right}, 2, 1)

	fmt.Println(b.NumChannels(), b.NumInputChannels(), b.Validate() == nil)
	fmt.Println(b.Peak(0))

	// Output:
	// 2 1 true
	// 0.5
}
