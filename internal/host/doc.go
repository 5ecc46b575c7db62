// Package host is a minimal audio host for the command-line tools: it pulls
// blocks from a test-tone source through a processor and exposes the result
// as interleaved float32 little-endian PCM.
package host
