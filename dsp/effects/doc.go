// Package effects provides the drive signal chain.
//
// Distortion turns an audio block and a parameter snapshot into processed
// output in four stages:
//   - input gain: stageIn = x * 10^(inputDB/20)
//   - soft clip: shaped = (2/pi) * atan(stageIn * 10^(driveDB/20))
//   - dry/wet blend: stageIn*(1-mix) + shaped*mix
//   - output gain: 10^(outputDB/20)
//
// The chain keeps no state between samples. ProcessBlock does not allocate,
// lock or log, so it is safe to call from a real-time audio callback.
package effects
