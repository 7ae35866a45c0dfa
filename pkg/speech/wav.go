package speech

import (
	"encoding/binary"

	"github.com/apexlabs/apexengineer/pkg/audio/pcm"
)

const wavHeaderSize = 44

// EncodeWAV wraps raw PCM samples in a RIFF/WAVE header. Transcription
// endpoints take container formats, not bare sample streams.
func EncodeWAV(format pcm.Format, data []byte) []byte {
	var (
		sampleRate    = uint32(format.SampleRate())
		channels      = uint16(format.Channels())
		bitsPerSample = uint16(format.Depth())
		blockAlign    = channels * bitsPerSample / 8
		byteRate      = sampleRate * uint32(blockAlign)
	)

	out := make([]byte, wavHeaderSize+len(data))
	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(36+len(data)))
	copy(out[8:12], "WAVE")

	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16) // PCM fmt chunk size
	binary.LittleEndian.PutUint16(out[20:22], 1)  // audio format: PCM
	binary.LittleEndian.PutUint16(out[22:24], channels)
	binary.LittleEndian.PutUint32(out[24:28], sampleRate)
	binary.LittleEndian.PutUint32(out[28:32], byteRate)
	binary.LittleEndian.PutUint16(out[32:34], blockAlign)
	binary.LittleEndian.PutUint16(out[34:36], bitsPerSample)

	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(len(data)))
	copy(out[wavHeaderSize:], data)
	return out
}
