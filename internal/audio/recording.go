// SPDX-License-Identifier: MIT
package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var ErrInvalidWAV = errors.New("invalid wav data")

// Clip is decoded 16-bit little-endian PCM with its format.
type Clip struct {
	PCM        []byte
	SampleRate int
	Channels   int
}

// Frames is the number of sample frames in the clip.
func (c Clip) Frames() int {
	if c.Channels <= 0 {
		return 0
	}
	return len(c.PCM) / (BytesPerSample * c.Channels)
}

// Duration is the playing time of the clip.
func (c Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(c.Frames()) * time.Second / time.Duration(c.SampleRate)
}

// DecodeWAV decodes an in-memory WAV payload.
func DecodeWAV(data []byte) (Clip, error) {
	return ReadWAV(bytes.NewReader(data))
}

// ReadWAV decodes a PCM WAV stream into 16-bit samples. 8, 24 and 32-bit
// sources are rescaled.
func ReadWAV(r io.ReadSeeker) (Clip, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return Clip{}, ErrInvalidWAV
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Clip{}, fmt.Errorf("failed to decode wav: %w", err)
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels <= 0 {
		return Clip{}, ErrInvalidWAV
	}

	depth := buf.SourceBitDepth
	if depth == 0 {
		depth = int(dec.BitDepth)
	}

	pcm := make([]byte, len(buf.Data)*BytesPerSample)
	for i, v := range buf.Data {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(toInt16(v, depth)))
	}

	return Clip{
		PCM:        pcm,
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
	}, nil
}

func toInt16(v, depth int) int16 {
	switch depth {
	case 8:
		// unsigned in the file
		return int16((v - 128) << 8)
	case 16:
		return int16(v)
	case 24:
		return int16(v >> 8)
	case 32:
		return int16(v >> 16)
	}
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

// WriteWAV writes 16-bit little-endian PCM to path as a WAV file.
func WriteWAV(path string, pcm []byte, sampleRate, channels int) error {
	if channels <= 0 || sampleRate <= 0 {
		return fmt.Errorf("invalid wav format: %d Hz, %d channels", sampleRate, channels)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := wav.NewEncoder(file, sampleRate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           Samples(pcm),
		SourceBitDepth: 16,
	}

	if err := enc.Write(buf); err != nil {
		file.Close()
		return fmt.Errorf("failed to write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		file.Close()
		return fmt.Errorf("failed to finalize wav: %w", err)
	}
	return file.Close()
}

// Samples widens 16-bit little-endian PCM to ints. A trailing odd byte is
// ignored.
func Samples(pcm []byte) []int {
	out := make([]int, len(pcm)/BytesPerSample)
	for i := range out {
		out[i] = int(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
	}
	return out
}
