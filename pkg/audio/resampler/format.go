package resampler

import "github.com/apexlabs/apexengineer/pkg/audio/pcm"

// Format describes the audio format for resampling. Currently only supports
// 16-bit signed integer samples.
type Format struct {
	// SampleRate is the sample rate in Hz (e.g., 16000, 48000).
	SampleRate int

	// Stereo indicates stereo (2 channels) if true, mono (1 channel) if false.
	Stereo bool
}

// FromPCM converts a pcm.Format into a resampler Format.
func FromPCM(f pcm.Format) Format {
	return Format{
		SampleRate: f.SampleRate(),
		Stereo:     f.Channels() == 2,
	}
}

func (f Format) channels() int {
	if f.Stereo {
		return 2
	}
	return 1
}

func (f Format) sampleBytes() int {
	if f.Stereo {
		return 4
	}
	return 2
}
