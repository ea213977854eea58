// SPDX-License-Identifier: MIT
package utils

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

const (
	testFrames     = 1024
	testSampleRate = 48000
	testFrequency  = 440.0 // A4 note
)

func TestMockTransport(t *testing.T) {
	m := &MockTransport{}
	for _, v := range []any{"a", 1, map[string]int{"b": 2}} {
		if err := m.Send(v); err != nil {
			t.Fatalf("Send(%v) returned %v", v, err)
		}
	}
	if got := len(m.Sent()); got != 3 {
		t.Errorf("expected 3 sent values, got %d", got)
	}

	m.Err = errors.New("down")
	if err := m.Send("c"); err == nil {
		t.Error("expected error from failing transport")
	}
	if got := len(m.Sent()); got != 3 {
		t.Errorf("failed send should not be recorded, got %d values", got)
	}
}

func TestGenerateSineWave(t *testing.T) {
	buf := GenerateSineWave(testFrames, testSampleRate, testFrequency, 0.5)
	if len(buf) != testFrames*2 {
		t.Fatalf("expected %d bytes, got %d", testFrames*2, len(buf))
	}

	peak := 0
	for i := 0; i < len(buf); i += 2 {
		v := int(int16(binary.LittleEndian.Uint16(buf[i:])))
		peak = max(peak, v, -v)
	}
	want := int(0.5 * math.MaxInt16)
	if peak < want-200 || peak > want {
		t.Errorf("peak %d not close to %d", peak, want)
	}
}

func TestGenerateComplexWaveClips(t *testing.T) {
	buf := GenerateComplexWave(testFrames, testSampleRate)
	for i := 0; i < len(buf); i += 2 {
		v := int16(binary.LittleEndian.Uint16(buf[i:]))
		if v == math.MinInt16 {
			t.Fatalf("sample %d wrapped to %d", i/2, v)
		}
	}
}

func TestGenerateRamp(t *testing.T) {
	buf := GenerateRamp(4, 10)
	for i := 0; i < 4; i++ {
		if got := int16(binary.LittleEndian.Uint16(buf[i*2:])); got != int16(10+i) {
			t.Errorf("sample %d = %d, want %d", i, got, 10+i)
		}
	}
}
