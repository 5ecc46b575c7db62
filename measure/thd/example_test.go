package thd_test

import (
	"fmt"

	"github.com/cwbudde/algo-drive/dsp/effects"
	"github.com/cwbudde/algo-drive/dsp/param"
	"github.com/cwbudde/algo-drive/measure/thd"
)

func ExampleMeasureDistortion() {
	d, err := effects.NewDistortion()
	if err != nil {
		panic(err)
	}

	res, err := thd.MeasureDistortion(d, param.Snapshot{Mix: 0}, 0.5, thd.Config{SampleRate: 48000})
	if err != nil {
		panic(err)
	}

	fmt.Printf("dry THD below -100 dB: %v\n", res.THD_dB < -100)
	fmt.Printf("fundamental: %.1f Hz\n", res.FundamentalFreq)
	// Output:
	// dry THD below -100 dB: true
	// fundamental: 996.1 Hz
}
