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

package media

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os/exec"
	"strconv"
)

// ExtractWaveform decodes the file's audio track to mono float64 samples at
// the given sample rate. A video with no audio track yields an empty slice
// and no error.
//
// Inputs:
//   - ctx: Cancels the ffmpeg process when done.
//   - path: The local path of the video file.
//   - sampleRate: Target sample rate in Hz.
//
// Outputs:
//   - []float64: PCM samples scaled to [-1, 1].
//   - error: Non-nil when ffmpeg fails.
func (t *Toolbox) ExtractWaveform(ctx context.Context, path string, sampleRate int) ([]float64, error) {
	cmd := exec.CommandContext(ctx, t.FFmpegPath,
		"-hide_banner",
		"-i", path,
		"-vn",
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"-f", "s16le",
		"-c:a", "pcm_s16le",
		"-")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		// ffmpeg exits non-zero when asked to map audio from a file that
		// has none. Treat that as an empty waveform.
		if bytes.Contains(stderr.Bytes(), []byte("does not contain any stream")) ||
			bytes.Contains(stderr.Bytes(), []byte("Output file does not contain any stream")) {
			return nil, nil
		}
		return nil, fmt.Errorf("ffmpeg audio extract %s: %w: %s", path, err, stderr.String())
	}

	raw := stdout.Bytes()
	samples := make([]float64, len(raw)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		samples[i] = float64(v) / math.MaxInt16
	}
	return samples, nil
}

// SliceWaveform returns the sub-slice of samples covering [startTime, endTime)
// at the given sample rate, clamped to the waveform bounds.
func SliceWaveform(samples []float64, sampleRate int, startTime, endTime float64) []float64 {
	start := int(startTime * float64(sampleRate))
	end := int(endTime * float64(sampleRate))
	if start < 0 {
		start = 0
	}
	if end > len(samples) {
		end = len(samples)
	}
	if start >= end {
		return nil
	}
	return samples[start:end]
}
