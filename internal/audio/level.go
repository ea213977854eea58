// SPDX-License-Identifier: MIT
package audio

import (
	"math"
	"math/bits"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"
)

// SilenceFloorDBFS is reported for an empty or all-zero buffer.
const SilenceFloorDBFS = -96.0

// Level summarises the loudness of a block of 16-bit PCM.
// Peak and RMS are normalised to 0.0-1.0 of full scale.
type Level struct {
	Peak     float64 `json:"peak"`
	RMS      float64 `json:"rms"`
	PeakDBFS float64 `json:"peak_dbfs"`
	RMSDBFS  float64 `json:"rms_dbfs"`
}

// MeasureLevel computes peak and RMS of 16-bit little-endian PCM.
func MeasureLevel(pcm []byte) Level {
	x := normalise(pcm)
	if len(x) == 0 {
		return Level{PeakDBFS: SilenceFloorDBFS, RMSDBFS: SilenceFloorDBFS}
	}

	peak := floats.Norm(x, math.Inf(1))
	rms := floats.Norm(x, 2) / math.Sqrt(float64(len(x)))
	return Level{
		Peak:     peak,
		RMS:      rms,
		PeakDBFS: dbfs(peak),
		RMSDBFS:  dbfs(rms),
	}
}

// Gated reports whether the block stays below threshold, which is in the
// range 0.0-1.0 where 0=never gated, 1=always gated.
func (l Level) Gated(threshold float64) bool {
	threshold = max(0, min(1, threshold))
	return l.Peak < threshold
}

// DominantFrequency returns the strongest frequency in pcm, sampled at
// sampleRate, using a Hann-windowed FFT over the whole block zero-padded
// to a power of two. It returns 0 for blocks shorter than two samples.
func DominantFrequency(pcm []byte, sampleRate int) float64 {
	x := normalise(pcm)
	if len(x) < 2 || sampleRate <= 0 {
		return 0
	}

	size := 1 << bits.Len(uint(len(x)-1))
	in := make([]float64, size)
	copy(in, window.Hann(x))

	coeffs := fourier.NewFFT(size).Coefficients(nil, in)
	best, bestMag := 0, 0.0
	// skip DC
	for i := 1; i < len(coeffs); i++ {
		if m := cmplx.Abs(coeffs[i]); m > bestMag {
			best, bestMag = i, m
		}
	}
	return float64(best) * float64(sampleRate) / float64(size)
}

func normalise(pcm []byte) []float64 {
	samples := Samples(pcm)
	x := make([]float64, len(samples))
	for i, v := range samples {
		x[i] = float64(v) / 32768.0
	}
	return x
}

func dbfs(v float64) float64 {
	if v <= 0 {
		return SilenceFloorDBFS
	}
	return max(SilenceFloorDBFS, 20*math.Log10(v))
}
