package audio

import (
	"bytes"
	"sync"
)

// clip is the engine's shared audio buffer.
//
// Bytes below the length of any slice returned by view are never written
// again: reset and replace install a new slice and append only writes past
// the current length. Playback callbacks can therefore copy from a view
// without holding the lock while the control goroutine swaps buffers or a
// capture callback keeps appending.
type clip struct {
	mu   sync.Mutex
	data []byte
}

func (c *clip) reset() {
	c.mu.Lock()
	c.data = nil
	c.mu.Unlock()
}

// replace takes ownership of data.
func (c *clip) replace(data []byte) {
	c.mu.Lock()
	c.data = data
	c.mu.Unlock()
}

func (c *clip) append(p []byte) {
	c.mu.Lock()
	c.data = append(c.data, p...)
	c.mu.Unlock()
}

// view returns the current buffer for read-only use.
func (c *clip) view() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data
}

// snapshot returns a copy the caller owns.
func (c *clip) snapshot() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return bytes.Clone(c.data)
}

func (c *clip) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// playhead is the read cursor of one playback pipeline. gen changes on
// every reset so a callback that computed its next position against an
// older buffer cannot overwrite the reset.
type playhead struct {
	mu  sync.Mutex
	pos int
	gen uint64
}

func (p *playhead) load() (pos int, gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos, p.gen
}

func (p *playhead) commit(pos int, gen uint64) {
	p.mu.Lock()
	if p.gen == gen {
		p.pos = pos
	}
	p.mu.Unlock()
}

func (p *playhead) reset() {
	p.mu.Lock()
	p.pos = 0
	p.gen++
	p.mu.Unlock()
}

// fillPeriod copies buf from pos into out and zero-fills whatever the
// buffer cannot supply. A position at or past the end restarts at 0.
// The returned position is 0 whenever the buffer ran out inside this
// period, so the next period starts again from the beginning.
func fillPeriod(out, buf []byte, pos int) (next int, underrun bool) {
	if pos < 0 || pos >= len(buf) {
		pos = 0
	}
	n := copy(out, buf[pos:])
	if n < len(out) {
		clear(out[n:])
		return 0, true
	}
	return pos + n, false
}

// AddSilence appends seconds of 16-bit mono silence at sampleRate to buf.
func AddSilence(buf []byte, sampleRate, seconds int) []byte {
	n := sampleRate * seconds * BytesPerSample * Channels
	if n <= 0 {
		return buf
	}
	return append(buf, make([]byte, n)...)
}
