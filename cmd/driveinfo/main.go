// Command driveinfo prints the harmonic distortion of the drive chain.
//
// Usage:
//
//	driveinfo [flags]
//
// For each drive setting a sine is processed and analysed. The table lists
// THD, odd and even harmonic ratios and the output peak.
//
// Examples:
//
//	driveinfo
//	driveinfo -mix 50 -amp 0.25
//	driveinfo -drive 0,6,12,20 -curve
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-drive/dsp/core"
	"github.com/cwbudde/algo-drive/dsp/effects"
	"github.com/cwbudde/algo-drive/dsp/param"
	"github.com/cwbudde/algo-drive/internal/host"
	"github.com/cwbudde/algo-drive/measure/thd"
	"github.com/cwbudde/algo-drive/stats/level"
)

func main() {
	gain := flag.Float64("gain", 0, "input gain in dB")
	mix := flag.Float64("mix", 100, "dry/wet mix in percent")
	output := flag.Float64("output", 0, "output gain in dB")
	drives := flag.String("drive", "0,2,4,6,8,10,12,14,16,18,20", "comma-separated drive settings in dB")
	amp := flag.Float64("amp", 0.5, "test tone amplitude")
	freq := flag.Float64("freq", 1000, "test tone frequency in Hz")
	rate := flag.Float64("rate", 48000, "sample rate in Hz")
	size := flag.Int("size", 8192, "FFT size")
	approx := flag.Bool("approx", false, "use the polynomial arctangent")
	curve := flag.Bool("curve", false, "also print the static transfer curve")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: driveinfo [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Prints harmonic distortion of the drive chain across drive settings.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *size < 16 {
		die("size must be >= 16: %d", *size)
	}

	levels, err := parseList(*drives)
	if err != nil {
		die("invalid -drive: %v", err)
	}

	mode := effects.DistortionApproxExact
	if *approx {
		mode = effects.DistortionApproxPolynomial
	}

	d, err := effects.NewDistortion(effects.WithDistortionApproxMode(mode))
	if err != nil {
		die("%v", err)
	}

	base := param.Snapshot{InputDB: *gain, Mix: *mix / 100, OutputDB: *output}
	cfg := thd.Config{SampleRate: *rate, FFTSize: *size, FundamentalFreq: *freq}

	printAnalysis(d, base, levels, *amp, cfg)

	if *curve {
		base.DriveDB = levels[len(levels)-1]
		printCurve(d, base)
	}
}

func printAnalysis(d *effects.Distortion, base param.Snapshot, drives []float64, amp float64, cfg thd.Config) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "Drive [dB]\tTHD [%%]\tTHD [dB]\tOdd [%%]\tEven [%%]\tPeak [dBFS]\tRMS [dBFS]\tCrest [dB]\t\n")

	for _, drive := range drives {
		snap := base
		snap.DriveDB = drive

		res, err := thd.MeasureDistortion(d, snap, amp, cfg)
		if err != nil {
			die("drive %g: %v", drive, err)
		}

		lv := outputLevel(d, snap, amp, cfg)

		fmt.Fprintf(w, "%.1f\t%.3f\t%.1f\t%.3f\t%.3f\t%.2f\t%.2f\t%.2f\t\n",
			snap.Clamped().DriveDB,
			res.THD*100, res.THD_dB,
			res.OddHD*100, res.EvenHD*100,
			core.LinearToDB(res.Peak), lv.RMS_dB, lv.CrestFactor_dB)
	}

	_ = w.Flush()
}

// outputLevel processes one analysis frame of the test tone and returns its
// level statistics.
func outputLevel(d *effects.Distortion, snap param.Snapshot, amp float64, cfg thd.Config) level.Stats {
	src, err := host.NewSine(cfg.FundamentalFreq, cfg.SampleRate, amp)
	if err != nil {
		die("%v", err)
	}

	sig := make([]float64, cfg.FFTSize)
	src.Fill(sig)
	d.ProcessInPlace(sig, snap)

	return level.Calculate(sig)
}

func printCurve(d *effects.Distortion, snap param.Snapshot) {
	const points = 21

	xs := make([]float64, points)
	for i := range xs {
		xs[i] = -1 + 2*float64(i)/float64(points-1)
	}

	ys := make([]float64, points)
	if err := d.TransferCurve(snap, xs, ys); err != nil {
		die("%v", err)
	}

	fmt.Printf("\nTransfer curve at drive %.1f dB:\n", snap.Clamped().DriveDB)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "in\tout\t\n")

	for i := range xs {
		fmt.Fprintf(w, "%.2f\t%.4f\t\n", xs[i], ys[i])
	}

	_ = w.Flush()
}

func parseList(s string) ([]float64, error) {
	var out []float64

	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, err
		}

		out = append(out, v)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("empty list")
	}

	return out, nil
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}
