package resampler

import (
	"bytes"
	"io"
	"testing"
)

func TestFrameReader_WholeFrames(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	r := newFrameReader(bytes.NewReader(data), 4)

	buf := make([]byte, 8)
	n, err := r.Read(buf)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if !bytes.Equal(buf[:n], data) {
		t.Fatalf("Read got %v, want %v", buf[:n], data)
	}
}

func TestFrameReader_TornFinalFrame(t *testing.T) {
	// 6 bytes with 4-byte frames: one whole frame, then a torn tail.
	data := []byte{1, 2, 3, 4, 5, 6}
	r := newFrameReader(bytes.NewReader(data), 4)

	buf := make([]byte, 8)
	n, err := r.Read(buf)
	if err != nil {
		t.Fatalf("first Read error: %v", err)
	}
	if !bytes.Equal(buf[:n], []byte{1, 2, 3, 4}) {
		t.Fatalf("first Read got %v, want [1 2 3 4]", buf[:n])
	}

	n, err = r.Read(buf)
	if err != io.ErrUnexpectedEOF {
		t.Fatalf("second Read error = %v, want io.ErrUnexpectedEOF", err)
	}
	if n != 2 {
		t.Fatalf("second Read returned %d, want 2", n)
	}
}

func TestFrameReader_ShortBuffer(t *testing.T) {
	r := newFrameReader(bytes.NewReader([]byte{1, 2, 3, 4}), 4)

	buf := make([]byte, 2)
	if _, err := r.Read(buf); err != io.ErrShortBuffer {
		t.Fatalf("Read error = %v, want io.ErrShortBuffer", err)
	}
}

func TestFrameReader_TruncatesUnalignedBuffer(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	r := newFrameReader(bytes.NewReader(data), 4)

	// A 6-byte destination holds only one whole 4-byte frame.
	buf := make([]byte, 6)
	n, err := r.Read(buf)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if n != 4 {
		t.Fatalf("Read returned %d, want 4", n)
	}
}

func TestFrameReader_SequentialReads(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	r := newFrameReader(bytes.NewReader(data), 4)

	buf := make([]byte, 4)
	for i := 0; i < 3; i++ {
		n, err := r.Read(buf)
		if err != nil {
			t.Fatalf("Read %d error: %v", i, err)
		}
		if n != 4 || !bytes.Equal(buf[:n], data[i*4:i*4+4]) {
			t.Fatalf("Read %d got %v, want %v", i, buf[:n], data[i*4:i*4+4])
		}
	}
	if _, err := r.Read(buf); err != io.EOF {
		t.Fatalf("Read past end = %v, want io.EOF", err)
	}
}

func TestFrameReader_Empty(t *testing.T) {
	r := newFrameReader(bytes.NewReader(nil), 4)

	buf := make([]byte, 8)
	n, err := r.Read(buf)
	if err != io.EOF {
		t.Fatalf("Read error = %v, want io.EOF", err)
	}
	if n != 0 {
		t.Fatalf("Read returned %d, want 0", n)
	}
}

func TestFrameReader_CarriesRemainder(t *testing.T) {
	// The underlying reader hands out 5 bytes at a time against 4-byte
	// frames, so every read leaves one byte for the next call.
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	r := newFrameReader(&chunkedReader{data: data, chunkSize: 5}, 4)

	buf := make([]byte, 8)
	n, err := r.Read(buf)
	if err != nil && err != io.EOF {
		t.Fatalf("first Read error: %v", err)
	}
	if !bytes.Equal(buf[:n], []byte{1, 2, 3, 4}) {
		t.Fatalf("first Read got %v, want [1 2 3 4]", buf[:n])
	}

	n, err = r.Read(buf)
	if err != nil && err != io.EOF {
		t.Fatalf("second Read error: %v", err)
	}
	if !bytes.Equal(buf[:n], []byte{5, 6, 7, 8}) {
		t.Fatalf("second Read got %v, want [5 6 7 8]", buf[:n])
	}
}

// chunkedReader returns data in fixed-size chunks.
type chunkedReader struct {
	data      []byte
	pos       int
	chunkSize int
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	end := r.pos + r.chunkSize
	if end > len(r.data) {
		end = len(r.data)
	}
	if end > r.pos+len(p) {
		end = r.pos + len(p)
	}
	n := copy(p, r.data[r.pos:end])
	r.pos += n
	if r.pos >= len(r.data) {
		return n, io.EOF
	}
	return n, nil
}
