// Package resampler converts 16-bit PCM audio between sample rates and
// channel layouts using a pure Go resampling backend.
//
// It supports:
//   - Sample rate conversion (e.g., 48000Hz microphone capture to 16000Hz
//     for transcription)
//   - Channel conversion (mono to stereo or stereo to mono)
//   - Streaming via io.Reader
//
// Example usage:
//
//	src := resampler.Format{SampleRate: 48000, Stereo: true}
//	dst := resampler.Format{SampleRate: 16000, Stereo: false}
//	r, err := resampler.New(micReader, src, dst)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//	io.Copy(out, r)
package resampler
