package utils

import (
	"encoding/binary"
	"math"
	"sync"
)

// MockTransport implements the Transport interface for testing.
type MockTransport struct {
	mu   sync.Mutex
	sent []any
	Err  error
}

// Send stores the data for later inspection instead of transmitting.
func (m *MockTransport) Send(data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, data)
	return nil
}

func (m *MockTransport) Close() error {
	return nil
}

// Sent returns everything passed to Send so far.
func (m *MockTransport) Sent() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]any(nil), m.sent...)
}

// GenerateSineWave returns frames of mono 16-bit little-endian PCM.
// amplitude is a fraction of full scale.
func GenerateSineWave(frames int, sampleRate, frequency, amplitude float64) []byte {
	buf := make([]byte, frames*2)
	for i := 0; i < frames; i++ {
		t := float64(i) / sampleRate
		putSample(buf, i, math.Sin(2*math.Pi*frequency*t)*amplitude)
	}
	return buf
}

func GenerateComplexWave(frames int, sampleRate float64) []byte {
	buf := make([]byte, frames*2)
	for i := 0; i < frames; i++ {
		tm := float64(i) / sampleRate
		signal := math.Sin(2*math.Pi*440*tm)*0.5 +
			math.Sin(2*math.Pi*880*tm)*0.3 +
			math.Sin(2*math.Pi*1320*tm)*0.2 // 440Hz fundamental + harmonics
		putSample(buf, i, signal*0.9)
	}
	return buf
}

// GenerateRamp returns frames of mono PCM whose sample i is start+i, so
// ordering and gaps are easy to spot.
func GenerateRamp(frames, start int) []byte {
	buf := make([]byte, frames*2)
	for i := 0; i < frames; i++ {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(int16(start+i)))
	}
	return buf
}

func putSample(buf []byte, i int, v float64) {
	v = max(-1, min(1, v))
	binary.LittleEndian.PutUint16(buf[i*2:], uint16(int16(v*math.MaxInt16)))
}
