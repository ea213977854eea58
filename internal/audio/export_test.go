package audio

import "time"

var FillPeriod = fillPeriod

// SetSoundPollInterval shortens sound polling for tests and returns a
// function restoring the previous value.
func SetSoundPollInterval(d time.Duration) func() {
	old := soundPollInterval
	soundPollInterval = d
	return func() { soundPollInterval = old }
}

func (e *Engine) BufferCursor() int {
	pos, _ := e.bufferHead.load()
	return pos
}

func (e *Engine) DeviceCursor() int {
	pos, _ := e.deviceHead.load()
	return pos
}

func (e *Engine) BufferLen() int {
	return e.buffer.len()
}
