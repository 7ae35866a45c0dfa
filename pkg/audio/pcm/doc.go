// Package pcm provides format arithmetic for PCM (Pulse Code Modulation)
// audio data.
//
// The package defines audio formats for 16-bit mono configurations at common
// sample rates and converts between byte counts, sample counts, and
// durations.
//
// Example usage:
//
//	// Bytes needed for 300ms of 16kHz mono audio
//	n := pcm.L16Mono16K.BytesInDuration(300 * time.Millisecond)
//
//	// Duration of a captured buffer
//	d := pcm.L16Mono16K.Duration(int64(len(buf)))
package pcm
