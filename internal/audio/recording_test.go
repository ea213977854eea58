// SPDX-License-Identifier: MIT
package audio_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nativeaudio/internal/audio"
	"nativeaudio/pkg/utils"
)

// testWAV returns an encoded mono 48 kHz WAV of frames samples.
func testWAV(t *testing.T, frames int) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tone.wav")
	pcm := utils.GenerateSineWave(frames, audio.SampleRate, 660, 0.3)
	require.NoError(t, audio.WriteWAV(path, pcm, audio.SampleRate, 1))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestWriteReadWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.wav")
	pcm := utils.GenerateRamp(4800, -2400)

	require.NoError(t, audio.WriteWAV(path, pcm, audio.SampleRate, audio.Channels))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	clip, err := audio.ReadWAV(f)
	require.NoError(t, err)
	assert.Equal(t, audio.SampleRate, clip.SampleRate)
	assert.Equal(t, 1, clip.Channels)
	assert.Equal(t, 4800, clip.Frames())
	assert.Equal(t, pcm, clip.PCM)
	assert.Equal(t, "100ms", clip.Duration().String())
}

func TestWriteWAVInvalidFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	assert.Error(t, audio.WriteWAV(path, nil, 0, 1))
	assert.Error(t, audio.WriteWAV(path, nil, audio.SampleRate, 0))
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	_, err := audio.DecodeWAV(bytes.Repeat([]byte("x"), 64))
	assert.ErrorIs(t, err, audio.ErrInvalidWAV)
}

func TestEmbeddedSoundsDecode(t *testing.T) {
	for _, name := range []string{"sounds/error.wav", "sounds/notification.wav"} {
		data, err := os.ReadFile(name)
		require.NoError(t, err)

		clip, err := audio.DecodeWAV(data)
		require.NoError(t, err, name)
		assert.Equal(t, audio.SampleRate, clip.SampleRate, name)
		assert.Equal(t, 1, clip.Channels, name)
		assert.NotZero(t, clip.Frames(), name)
	}
}
