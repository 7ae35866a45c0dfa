// Package audio is an umbrella for the audio sub-packages:
//
//   - pcm: PCM format math (sample rates, byte/duration conversion)
//   - resampler: streaming sample-rate conversion
//   - portaudio: CGO bindings for microphone capture and playback
//
// Example usage:
//
//	import "github.com/apexlabs/apexengineer/pkg/audio/pcm"
//
//	format := pcm.L16Mono16K
//	bytes := format.BytesInDuration(time.Second)
package audio
