// Package buffer provides Block, a non-owning multi-channel view over
// caller-supplied sample slices, plus interleave helpers for hosts that
// exchange interleaved float32 audio.
//
// A Block never copies or retains the slices it wraps beyond the call that
// uses it. Malformed descriptors are reported by Validate and handled by
// Channel returning nil, so processors can fall back to silence instead of
// indexing out of bounds.
package buffer
