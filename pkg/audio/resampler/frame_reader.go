package resampler

import "io"

// frameReader aligns reads from an underlying PCM stream to whole frames.
// The converter consumes one frame (one sample across all channels) at a
// time, so a torn frame at a read boundary would shift every later sample.
// Trailing partial-frame bytes are held back until the next Read.
type frameReader struct {
	rem    []byte // partial frame carried over, at most frameSize-1 bytes
	remLen int

	frameSize int

	r io.Reader
}

func newFrameReader(r io.Reader, frameSize int) *frameReader {
	return &frameReader{
		rem:       make([]byte, frameSize-1),
		frameSize: frameSize,
		r:         r,
	}
}

// Read fills p with a whole number of frames. It returns io.ErrShortBuffer
// when p cannot hold even one frame, and io.ErrUnexpectedEOF when the
// stream ends inside a frame.
func (fr *frameReader) Read(p []byte) (n int, err error) {
	if len(p) < fr.frameSize {
		return 0, io.ErrShortBuffer
	}
	p = p[:len(p)/fr.frameSize*fr.frameSize]

	if fr.remLen > 0 {
		n = copy(p, fr.rem[:fr.remLen])
		fr.remLen = 0
	}

	rn, err := fr.r.Read(p[n:])
	n += rn
	if err != nil {
		if err == io.EOF && n%fr.frameSize != 0 {
			return n, io.ErrUnexpectedEOF
		}
		return n, err
	}
	if mod := n % fr.frameSize; mod != 0 {
		n -= mod
		copy(fr.rem[:mod], p[n:n+mod])
		fr.remLen = mod
	}
	return n, nil
}
