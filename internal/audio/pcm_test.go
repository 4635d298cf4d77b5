package audio

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPadSilence(t *testing.T) {
	short := []float32{0.5, -0.5}
	padded := PadSilence(short)
	require.Len(t, padded, MinSamples)
	assert.Equal(t, float32(0.5), padded[0])
	assert.Equal(t, float32(0), padded[MinSamples-1])

	long := make([]float32, MinSamples+10)
	assert.Len(t, PadSilence(long), MinSamples+10)

	assert.Len(t, PadSilence(nil), MinSamples)
}

func TestPCM16(t *testing.T) {
	pcm := PCM16([]float32{0, 1, -1, 2, -2, 0.5})
	require.Len(t, pcm, 12)

	sample := func(i int) int16 {
		return int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	assert.Equal(t, int16(0), sample(0))
	assert.Equal(t, int16(32767), sample(1))
	assert.Equal(t, int16(-32767), sample(2))
	assert.Equal(t, int16(32767), sample(3))
	assert.Equal(t, int16(-32767), sample(4))
	assert.Equal(t, int16(16383), sample(5))
}

func TestDuration(t *testing.T) {
	assert.Equal(t, time.Second, Duration(SampleRate))
	assert.Equal(t, 200*time.Millisecond, Duration(MinSamples))
}
