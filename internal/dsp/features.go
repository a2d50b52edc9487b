// Copyright 2025 Series Automation Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package dsp computes the low-level audio descriptors attached to scenes:
// RMS energy, zero-crossing rate, spectral centroid, and a tempo estimate.
// All functions operate on mono float64 samples in [-1, 1].
package dsp

import (
	"math"
	"math/cmplx"
)

const (
	frameLength = 2048
	hopLength   = 512

	// Tempo search range in beats per minute.
	minBPM = 60.0
	maxBPM = 180.0
)

// RMSEnergy returns the root-mean-square amplitude of the signal. An empty
// signal yields 0.
func RMSEnergy(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// ZeroCrossingRate returns the fraction of adjacent sample pairs whose signs
// differ. Signals shorter than two samples yield 0.
func ZeroCrossingRate(samples []float64) float64 {
	if len(samples) < 2 {
		return 0
	}
	var crossings int
	for i := 1; i < len(samples); i++ {
		if (samples[i-1] >= 0) != (samples[i] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(samples)-1)
}

// SpectralCentroidMean returns the magnitude-weighted mean frequency, in Hz,
// averaged over Hann-windowed frames of the signal. Frames with no energy are
// skipped; a signal with no energetic frames yields 0.
func SpectralCentroidMean(samples []float64, sampleRate int) float64 {
	if len(samples) < frameLength || sampleRate <= 0 {
		return 0
	}
	window := hannWindow(frameLength)
	buf := make([]complex128, frameLength)
	binHz := float64(sampleRate) / float64(frameLength)

	var total float64
	var frames int
	for start := 0; start+frameLength <= len(samples); start += hopLength {
		for i := 0; i < frameLength; i++ {
			buf[i] = complex(samples[start+i]*window[i], 0)
		}
		fft(buf)
		var weighted, magSum float64
		for k := 0; k < frameLength/2; k++ {
			mag := cmplx.Abs(buf[k])
			weighted += float64(k) * binHz * mag
			magSum += mag
		}
		if magSum > 0 {
			total += weighted / magSum
			frames++
		}
	}
	if frames == 0 {
		return 0
	}
	return total / float64(frames)
}

// EstimateTempo returns an estimated tempo in beats per minute, derived from
// the autocorrelation of the onset-strength envelope. Signals too short to
// hold a full beat period in the search range yield 0.
func EstimateTempo(samples []float64, sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0
	}
	onsets := onsetEnvelope(samples)
	if len(onsets) < 4 {
		return 0
	}
	// Remove the mean so the autocorrelation reflects periodicity rather than
	// overall loudness.
	var mean float64
	for _, o := range onsets {
		mean += o
	}
	mean /= float64(len(onsets))
	for i := range onsets {
		onsets[i] -= mean
	}

	framesPerSecond := float64(sampleRate) / float64(hopLength)
	minLag := int(framesPerSecond * 60.0 / maxBPM)
	maxLag := int(framesPerSecond * 60.0 / minBPM)
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(onsets) {
		maxLag = len(onsets) - 1
	}
	if maxLag < minLag {
		return 0
	}

	bestLag, bestCorr := 0, 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		var corr float64
		for i := lag; i < len(onsets); i++ {
			corr += onsets[i] * onsets[i-lag]
		}
		if corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}
	if bestLag == 0 || bestCorr <= 0 {
		return 0
	}
	return 60.0 * framesPerSecond / float64(bestLag)
}

// onsetEnvelope returns the half-wave rectified first difference of per-hop
// frame energies, a cheap stand-in for a spectral-flux onset detector.
func onsetEnvelope(samples []float64) []float64 {
	if len(samples) < hopLength*2 {
		return nil
	}
	numFrames := len(samples) / hopLength
	energies := make([]float64, numFrames)
	for f := 0; f < numFrames; f++ {
		var sum float64
		for i := f * hopLength; i < (f+1)*hopLength; i++ {
			sum += samples[i] * samples[i]
		}
		energies[f] = math.Sqrt(sum / float64(hopLength))
	}
	onsets := make([]float64, numFrames-1)
	for f := 1; f < numFrames; f++ {
		d := energies[f] - energies[f-1]
		if d > 0 {
			onsets[f-1] = d
		}
	}
	return onsets
}

func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// fft computes an in-place radix-2 Cooley-Tukey transform. len(buf) must be a
// power of two.
func fft(buf []complex128) {
	n := len(buf)
	if n <= 1 {
		return
	}
	// Bit-reversal permutation.
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j |= bit
		if i < j {
			buf[i], buf[j] = buf[j], buf[i]
		}
	}
	for length := 2; length <= n; length <<= 1 {
		angle := -2 * math.Pi / float64(length)
		wl := cmplx.Exp(complex(0, angle))
		for start := 0; start < n; start += length {
			w := complex(1, 0)
			for k := 0; k < length/2; k++ {
				u := buf[start+k]
				v := buf[start+k+length/2] * w
				buf[start+k] = u + v
				buf[start+k+length/2] = u - v
				w *= wl
			}
		}
	}
}
