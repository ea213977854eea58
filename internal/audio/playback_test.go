package audio_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nativeaudio/internal/audio"
	"nativeaudio/pkg/utils"
)

const silenceBytes = audio.SampleRate * audio.TrailingSilenceSeconds * audio.BytesPerSample

func TestFillPeriodWrap(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	tests := []struct {
		name      string
		pos       int
		outLen    int
		want      []byte
		wantNext  int
		wantUnder bool
	}{
		{"full period", 0, 4, []byte{1, 2, 3, 4}, 4, false},
		{"ends exactly", 6, 4, []byte{7, 8, 9, 10}, 10, false},
		{"tail then silence", 7, 8, []byte{8, 9, 10, 0, 0, 0, 0, 0}, 0, true},
		{"past end restarts", 10, 3, []byte{1, 2, 3}, 3, false},
		{"negative restarts", -4, 2, []byte{1, 2}, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := bytes.Repeat([]byte{0xFF}, tt.outLen)
			next, under := audio.FillPeriod(out, buf, tt.pos)
			assert.Equal(t, tt.want, out)
			assert.Equal(t, tt.wantNext, next)
			assert.Equal(t, tt.wantUnder, under)
		})
	}
}

func TestFillPeriodEmptyBuffer(t *testing.T) {
	out := bytes.Repeat([]byte{0xFF}, 6)
	next, under := audio.FillPeriod(out, nil, 0)
	assert.Equal(t, make([]byte, 6), out)
	assert.Zero(t, next)
	assert.True(t, under)
}

func TestAddSilence(t *testing.T) {
	buf := []byte{1, 2}
	buf = audio.AddSilence(buf, 8000, 2)
	assert.Len(t, buf, 2+8000*2*2)
	assert.Equal(t, []byte{1, 2}, buf[:2])
	assert.Equal(t, make([]byte, 8000*2*2), buf[2:])

	buf = audio.AddSilence(buf, 8000, 1)
	assert.Len(t, buf, 2+8000*2*2+8000*2)

	assert.Equal(t, []byte{9}, audio.AddSilence([]byte{9}, 48000, 0))
}

func TestBufferPlaybackLoops(t *testing.T) {
	e, drv, _ := newTestEngine(t)

	pcm := utils.GenerateRamp(500, 1)
	require.NoError(t, e.StartBufferPlayback(pcm))
	total := len(pcm) + silenceBytes
	assert.Equal(t, total, e.BufferLen())

	s := drv.LastStream()
	require.NotNil(t, s)
	assert.Equal(t, audio.Playback, s.Config.Type)
	assert.Nil(t, s.Config.Device)

	out := s.Render(audio.PeriodFrames)
	assert.Equal(t, pcm, out[:len(pcm)])
	assert.Equal(t, periodBytes, e.BufferCursor())

	periods := total / periodBytes
	for i := 0; i < periods-1; i++ {
		s.Render(audio.PeriodFrames)
	}
	k := total - periods*periodBytes
	require.Equal(t, total-k, e.BufferCursor())

	// k bytes of tail, the rest zero, then back to the start.
	out = s.Render(audio.PeriodFrames)
	assert.Equal(t, make([]byte, periodBytes), out)
	assert.Zero(t, e.BufferCursor())

	out = s.Render(audio.PeriodFrames)
	assert.Equal(t, pcm, out[:len(pcm)])
}

func TestBufferPlaybackCallerKeepsBuffer(t *testing.T) {
	e, drv, _ := newTestEngine(t)

	pcm := utils.GenerateRamp(10, 1)
	require.NoError(t, e.StartBufferPlayback(pcm))
	clear(pcm)

	out := drv.LastStream().Render(10)
	assert.Equal(t, utils.GenerateRamp(10, 1), out)
}

func TestStopBufferPlaybackResetsCursor(t *testing.T) {
	e, drv, _ := newTestEngine(t)

	require.NoError(t, e.StartBufferPlayback(bytes.Repeat([]byte{0x11}, 4000)))
	s := drv.LastStream()
	s.Render(audio.PeriodFrames)
	require.NotZero(t, e.BufferCursor())

	require.NoError(t, e.StopBufferPlayback())
	assert.Zero(t, e.BufferCursor())
	assert.Equal(t, 1, s.Stops())
	assert.False(t, s.Running())
}

func TestBufferPlaybackSwapReplacesContents(t *testing.T) {
	e, drv, _ := newTestEngine(t)

	require.NoError(t, e.StartBufferPlayback(bytes.Repeat([]byte{0x11}, 4000)))
	s := drv.LastStream()
	s.Render(audio.PeriodFrames)
	require.NoError(t, e.StopBufferPlayback())

	require.NoError(t, e.StartBufferPlayback(bytes.Repeat([]byte{0x22}, 2000)))
	assert.Len(t, drv.Streams(), 1)
	assert.Equal(t, 2, s.Starts())
	assert.Equal(t, 2000+silenceBytes, e.BufferLen())

	first := s.Render(audio.PeriodFrames)
	assert.Equal(t, bytes.Repeat([]byte{0x22}, periodBytes), first)
	for i := 0; i < 5; i++ {
		out := s.Render(audio.PeriodFrames)
		assert.Equal(t, -1, bytes.IndexByte(out, 0x11), "residual bytes from previous buffer")
	}
}

func TestBufferPlaybackStartFailureUninits(t *testing.T) {
	m := &countingMetrics{}
	e, drv, _ := newTestEngine(t, audio.WithMetrics(m))

	drv.StartErr = errors.New("no output")
	err := e.StartBufferPlayback([]byte{1, 2})
	assert.ErrorIs(t, err, audio.ErrStreamStart)
	require.Len(t, drv.Streams(), 1)
	assert.True(t, drv.Streams()[0].Uninitialized())
	assert.Equal(t, 1, m.get("buffer_playback").starts[false])

	drv.StartErr = nil
	require.NoError(t, e.StartBufferPlayback([]byte{1, 2}))
	assert.Len(t, drv.Streams(), 2)
}

func TestBufferPlaybackUnderrunMetric(t *testing.T) {
	m := &countingMetrics{}
	e, drv, _ := newTestEngine(t, audio.WithMetrics(m))

	// One sample past a whole number of periods.
	require.NoError(t, e.StartBufferPlayback([]byte{1, 2}))
	s := drv.LastStream()
	for i := 0; i < silenceBytes/periodBytes+1; i++ {
		s.Render(audio.PeriodFrames)
	}
	c := m.get("buffer_playback")
	assert.Equal(t, 1, c.underruns)
	assert.Equal(t, (silenceBytes/periodBytes+1)*periodBytes, c.bytes)
}

func TestDevicePlaybackPlaysCapturedBuffer(t *testing.T) {
	e, drv, _ := newTestEngine(t)

	require.NoError(t, e.StartRecording("Default Capture Device"))
	recorded := utils.GenerateRamp(audio.PeriodFrames, 7)
	drv.LastStream().Capture(recorded)
	_, err := e.StopRecording()
	require.NoError(t, err)

	require.NoError(t, e.StartPlayback("USB Headset Speakers"))
	s := drv.LastStream()
	assert.Equal(t, audio.Playback, s.Config.Type)
	assert.Equal(t, "USB Headset Speakers", s.Config.Device.Name)
	assert.Equal(t, audio.IntID(1), s.Config.Device.ID)

	// No silence is appended in this mode.
	assert.Equal(t, len(recorded), e.BufferLen())
	assert.Equal(t, recorded, s.Render(audio.PeriodFrames))
	assert.Equal(t, len(recorded), e.DeviceCursor())
	assert.Equal(t, recorded, s.Render(audio.PeriodFrames))

	s.Render(audio.PeriodFrames / 2)
	require.NotZero(t, e.DeviceCursor())
	require.NoError(t, e.StopPlayback())
	assert.Zero(t, e.DeviceCursor())
}

func TestDevicePlaybackIndependentCursor(t *testing.T) {
	e, drv, _ := newTestEngine(t)

	require.NoError(t, e.StartBufferPlayback(utils.GenerateRamp(audio.PeriodFrames*4, 0)))
	buffered := drv.LastStream()
	require.NoError(t, e.StartPlayback("Default Playback Device"))
	device := drv.LastStream()

	buffered.Render(audio.PeriodFrames)
	buffered.Render(audio.PeriodFrames)
	assert.Equal(t, 2*periodBytes, e.BufferCursor())
	assert.Zero(t, e.DeviceCursor())

	assert.Equal(t, utils.GenerateRamp(audio.PeriodFrames, 0), device.Render(audio.PeriodFrames))
}

func TestDevicePlaybackUnknownDevice(t *testing.T) {
	e, drv, _ := newTestEngine(t)

	assert.ErrorIs(t, e.StartPlayback("No Such Speakers"), audio.ErrDeviceNotFound)
	assert.Empty(t, drv.Streams())

	e.SetPlaybackDevice("USB Headset Speakers")
	require.NoError(t, e.StartPlayback(""))
	assert.Equal(t, "USB Headset Speakers", drv.LastStream().Config.Device.Name)
}
