package resampler

import (
	"fmt"
	"io"
	"sync"

	resampling "github.com/tphakala/go-audio-resampling"
)

// Resampler wraps an io.Reader and resamples audio from a source format to a
// destination format. It supports sample rate conversion and channel
// conversion (mono↔stereo). The resampler must be closed with Close() to
// release resources.
type Resampler interface {
	io.ReadCloser
	CloseWithError(error) error
}

// Stream resamples audio read from an underlying io.Reader. Both formats
// must use 16-bit signed integer samples.
type Stream struct {
	srcFmt Format
	src    io.Reader

	dstFmt  Format
	readBuf []byte

	mu         sync.Mutex
	closeErr   error
	conv       resampling.Resampler
	leftover   []byte
	rateChange bool
}

// New creates a new Resampler that converts audio from srcFmt to dstFmt.
func New(src io.Reader, srcFmt, dstFmt Format) (Resampler, error) {
	rateChange := srcFmt.SampleRate != dstFmt.SampleRate

	var conv resampling.Resampler
	if rateChange {
		cfg := &resampling.Config{
			InputRate:  float64(srcFmt.SampleRate),
			OutputRate: float64(dstFmt.SampleRate),
			Channels:   dstFmt.channels(),
			Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
		}
		var err error
		conv, err = resampling.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("resampler: %w", err)
		}
	}

	return &Stream{
		srcFmt: srcFmt,
		src:    newFrameReader(src, srcFmt.sampleBytes()),

		dstFmt: dstFmt,

		conv:       conv,
		rateChange: rateChange,
	}, nil
}

// Read copies resampled audio data into p. It returns the number of bytes
// written and any encountered error. Not safe for concurrent use.
func (r *Stream) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	if len(p) < r.dstFmt.sampleBytes() {
		return 0, io.ErrShortBuffer
	}

	// Truncate p to a multiple of sampleBytes
	p = p[:len(p)/r.dstFmt.sampleBytes()*r.dstFmt.sampleBytes()]

	r.mu.Lock()
	defer r.mu.Unlock()

	// Drain leftover output from the previous Read first
	if len(r.leftover) > 0 {
		n := copy(p, r.leftover)
		r.leftover = r.leftover[n:]
		return n, nil
	}

	if r.closeErr != nil {
		return 0, r.closeErr
	}

	if !r.rateChange {
		// No sample rate conversion, just channel conversion
		n, err := r.readSource(len(p))
		if n == 0 {
			return 0, err
		}
		copy(p, r.readBuf[:n])
		return n, err
	}

	return r.convert(p)
}

// convert reads source audio, runs it through the rate converter, and fills p.
func (r *Stream) convert(p []byte) (int, error) {
	// Estimate how much source data we need based on the rate ratio
	ratio := float64(r.srcFmt.SampleRate) / float64(r.dstFmt.SampleRate)
	srcBytes := int(float64(len(p))*ratio) + r.srcFmt.sampleBytes()*4

	bytesRead, readErr := r.readSource(srcBytes)
	if bytesRead == 0 {
		if readErr != nil {
			return 0, readErr
		}
		return 0, io.EOF
	}

	// int16 LE -> normalized float64
	channels := r.dstFmt.channels()
	frames := bytesRead / (2 * channels)
	input := make([]float64, frames*channels)
	for i := range input {
		sample := int16(r.readBuf[i*2]) | int16(r.readBuf[i*2+1])<<8
		input[i] = float64(sample) / 32768.0
	}

	output, err := r.conv.Process(input)
	if err != nil {
		return 0, fmt.Errorf("resampler: %w", err)
	}
	if len(output) == 0 {
		if readErr != nil {
			return 0, readErr
		}
		return 0, nil
	}

	// normalized float64 -> int16 LE, clamped
	out := make([]byte, len(output)*2)
	for i, s := range output {
		sample := int16(s * 32767.0)
		if s > 1.0 {
			sample = 32767
		} else if s < -1.0 {
			sample = -32768
		}
		out[i*2] = byte(sample)
		out[i*2+1] = byte(sample >> 8)
	}

	// Align to whole samples
	out = out[:(len(out)/r.dstFmt.sampleBytes())*r.dstFmt.sampleBytes()]

	n := copy(p, out)
	if len(out) > n {
		r.leftover = append(r.leftover, out[n:]...)
	}
	return n, readErr
}

// readSource reads from the source into readBuf, applying channel conversion.
// Returns the number of valid bytes in readBuf.
func (r *Stream) readSource(dstLen int) (int, error) {
	if cap(r.readBuf) < dstLen {
		r.readBuf = make([]byte, dstLen)
	}

	switch {
	case r.srcFmt.Stereo && !r.dstFmt.Stereo:
		// Downmix: need double the source data
		srcLen := dstLen * 2
		if cap(r.readBuf) < srcLen {
			r.readBuf = make([]byte, srcLen)
		}
		rn, err := r.src.Read(r.readBuf[:srcLen])
		if rn == 0 {
			return 0, err
		}
		return stereoToMono(r.readBuf[:rn]), err

	case r.srcFmt.Stereo == r.dstFmt.Stereo:
		return r.src.Read(r.readBuf[:dstLen])

	default:
		// Upmix mono to stereo
		rn, err := r.src.Read(r.readBuf[:dstLen/2])
		if rn == 0 {
			return 0, err
		}
		return monoToStereo(r.readBuf[:rn*2]), err
	}
}

// Close releases resources and marks the resampler as closed.
// Subsequent Read calls will return io.ErrClosedPipe.
func (r *Stream) Close() error {
	return r.CloseWithError(fmt.Errorf("resampler: %w", io.ErrClosedPipe))
}

// CloseWithError releases resources with a custom error. Subsequent Read
// calls will return the provided error.
func (r *Stream) CloseWithError(err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closeErr == nil {
		r.closeErr = err
	}
	r.conv = nil
	return nil
}

// stereoToMono converts stereo 16-bit samples to mono in-place by averaging
// L and R channels.
func stereoToMono(b []byte) int {
	frames := len(b) / 4
	for i := range frames {
		j := i * 4
		k := i * 2
		l := int16(b[j]) | int16(b[j+1])<<8
		r := int16(b[j+2]) | int16(b[j+3])<<8
		m := int16((int32(l) + int32(r)) / 2)
		b[k] = byte(m)
		b[k+1] = byte(m >> 8)
	}
	return frames * 2
}

// monoToStereo converts mono 16-bit samples to stereo in-place by duplicating
// each sample.
func monoToStereo(b []byte) int {
	stereoLen := len(b)
	samples := stereoLen / 4
	for i := samples - 1; i >= 0; i-- {
		s0, s1 := b[i*2], b[i*2+1]
		j := i * 4
		b[j], b[j+1] = s0, s1
		b[j+2], b[j+3] = s0, s1
	}
	return stereoLen
}
