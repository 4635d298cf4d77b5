package audio

import (
	"encoding/binary"
	"math"
	"time"
)

// PadSilence дополняет запись нулями до MinSamples.
func PadSilence(samples []float32) []float32 {
	if len(samples) >= MinSamples {
		return samples
	}
	return append(samples, make([]float32, MinSamples-len(samples))...)
}

// PCM16 переводит float32 [-1, 1] в 16-битный little-endian PCM.
// Значения вне диапазона обрезаются.
func PCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		s = max(-1, min(1, s))
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(s*math.MaxInt16)))
	}
	return out
}

// Duration - длительность записи из n сэмплов.
func Duration(n int) time.Duration {
	return time.Duration(n) * time.Second / SampleRate
}
