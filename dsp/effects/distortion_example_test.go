package effects_test

import (
	"fmt"

	"github.com/cwbudde/algo-drive/dsp/buffer"
	"github.com/cwbudde/algo-drive/dsp/effects"
	"github.com/cwbudde/algo-drive/dsp/param"
)

func ExampleDistortion_ProcessBlock() {
	d, err := effects.NewDistortion()
	if err != nil {
		panic(err)
	}

	store := param.NewStore()
	store.OnParameterChanged(param.Mix, 100)

	left := []float64{1, 0, -1}
	right := []float64{7, 7, 7}

	// Mono input routed to a stereo bus: the right channel is silenced.
	block := buffer.FromChannels([][]float64{left, right}, 3, 1)
	d.ProcessBlock(block, store.Current())

	fmt.Printf("%.3f %.3f %.3f\n", left[0], left[1], left[2])
	fmt.Println(right)

	// Output:
	// 0.500 0.000 -0.500
	// [0 0 0]
}

func ExampleDistortion_ProcessSample() {
	d, err := effects.NewDistortion()
	if err != nil {
		panic(err)
	}

	g := effects.GainsFor(param.Snapshot{InputDB: 6})
	fmt.Printf("%.3f\n", d.ProcessSample(0.5, g))

	// Output: 0.998
}
