package speech

import (
	"bytes"
	"encoding/binary"

	"voiceassist/internal/audio"
)

// encodeWAV упаковывает сэмплы в WAV (PCM16, mono, audio.SampleRate).
func encodeWAV(samples []float32) []byte {
	pcm := audio.PCM16(samples)

	const (
		bitsPerSample = 16
		blockAlign    = audio.Channels * bitsPerSample / 8
		byteRate      = audio.SampleRate * blockAlign
	)

	var buf bytes.Buffer
	buf.Grow(44 + len(pcm))

	le := func(v any) { _ = binary.Write(&buf, binary.LittleEndian, v) }

	buf.WriteString("RIFF")
	le(uint32(36 + len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	le(uint32(16))
	le(uint16(1)) // PCM
	le(uint16(audio.Channels))
	le(uint32(audio.SampleRate))
	le(uint32(byteRate))
	le(uint16(blockAlign))
	le(uint16(bitsPerSample))

	buf.WriteString("data")
	le(uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}
