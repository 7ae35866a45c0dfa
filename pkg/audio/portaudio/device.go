package portaudio

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/apexlabs/apexengineer/pkg/audio/pcm"
)

// DefaultBufferDuration is the stream buffer period used when a Mic or
// Speaker does not set one.
const DefaultBufferDuration = 20 * time.Millisecond

// Mic exposes the default input device as a capture source. Each Start
// opens a fresh input stream; the returned reader delivers little-endian
// int16 frames until closed.
type Mic struct {
	// Format is the capture format. Defaults to pcm.L16Mono16K.
	Format pcm.Format

	// Buffer is the stream buffer period. Defaults to DefaultBufferDuration.
	Buffer time.Duration
}

// Start opens the input stream.
func (m *Mic) Start(_ context.Context) (io.ReadCloser, pcm.Format, error) {
	if err := Initialize(); err != nil {
		return nil, 0, err
	}

	buffer := m.Buffer
	if buffer <= 0 {
		buffer = DefaultBufferDuration
	}

	is, err := NewInputStream(m.Format, buffer)
	if err != nil {
		return nil, 0, err
	}
	return micReader{is}, m.Format, nil
}

// micReader adapts the sample-oriented InputStream to io.ReadCloser.
type micReader struct {
	is *InputStream
}

func (r micReader) Read(p []byte) (int, error) {
	// ReadBytes delivers at most one stream buffer per call; the caller's
	// buffer must hold it.
	return r.is.ReadBytes(p)
}

func (r micReader) Close() error {
	return r.is.Close()
}

// Speaker plays PCM audio on the default output device.
type Speaker struct {
	// Buffer is the stream buffer period. Defaults to DefaultBufferDuration.
	Buffer time.Duration
}

// Play opens an output stream in the audio format and drains the reader
// through it. It returns when the audio ends, the context is cancelled, or
// the stream fails.
func (s *Speaker) Play(ctx context.Context, audio io.Reader, format pcm.Format) error {
	if err := Initialize(); err != nil {
		return err
	}

	buffer := s.Buffer
	if buffer <= 0 {
		buffer = DefaultBufferDuration
	}

	out, err := NewOutputStream(format, buffer)
	if err != nil {
		return err
	}
	defer out.Close()

	buf := make([]byte, out.BufferBytes())
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := io.ReadFull(audio, buf)
		if n > 0 {
			if _, werr := out.WriteBytes(buf[:n&^1]); werr != nil {
				return werr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return err
		}
	}
}
