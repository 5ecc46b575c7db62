// Package core holds the numeric helpers and processing configuration shared
// by the drive packages: decibel conversion, clamping, denormal flushing and
// the sample-rate/block-size/channel options a host negotiates before playback.
package core
