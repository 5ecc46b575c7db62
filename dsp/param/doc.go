// Package param declares the four drive parameters and keeps the effective
// values the audio path reads.
//
// The control side (UI, automation, state reload) calls
// Store.OnParameterChanged; the processing side calls Store.Current once per
// block. Every field of the effective set is an independent atomic scalar, so
// neither side ever waits on the other and a change arriving mid-block is
// picked up on the next block.
package param
