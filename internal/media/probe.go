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

// Package media wraps the ffmpeg and ffprobe executables behind small,
// testable Go APIs: container metadata probing, decoded frame streaming for
// cut detection, still-frame sampling, and waveform extraction.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Default executable names, resolved through PATH. Overridable per Toolbox
// for tests and non-standard installs.
const (
	DefaultFFmpegPath  = "ffmpeg"
	DefaultFFprobePath = "ffprobe"
)

// VideoInfo is the subset of container metadata the analysis pipeline needs.
type VideoInfo struct {
	Duration   float64 // Seconds.
	FPS        float64
	Width      int
	Height     int
	FrameCount int // Best-effort; derived from duration*fps when the container omits it.
	HasAudio   bool
}

// Toolbox bundles the configured executable paths so callers hold one handle
// instead of two strings.
type Toolbox struct {
	FFmpegPath  string
	FFprobePath string
}

// NewToolbox returns a Toolbox using the default PATH-resolved executables.
func NewToolbox() *Toolbox {
	return &Toolbox{FFmpegPath: DefaultFFmpegPath, FFprobePath: DefaultFFprobePath}
}

// ffprobe's -print_format json output, reduced to the fields we read.
type probeOutput struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
		RFrameRate   string `json:"r_frame_rate"`
		NBFrames     string `json:"nb_frames"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe runs ffprobe against the file at path and returns its metadata.
//
// Inputs:
//   - ctx: Cancels the ffprobe process when done.
//   - path: The local path of the video file.
//
// Outputs:
//   - *VideoInfo: Parsed metadata.
//   - error: Non-nil when ffprobe fails, the output is unparsable, or the
//     file has no video stream.
func (t *Toolbox) Probe(ctx context.Context, path string) (*VideoInfo, error) {
	cmd := exec.CommandContext(ctx, t.FFprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w: %s", path, err, strings.TrimSpace(stderr.String()))
	}

	var raw probeOutput
	if err := json.Unmarshal(stdout.Bytes(), &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe output for %s: %w", path, err)
	}

	info := &VideoInfo{}
	info.Duration, _ = strconv.ParseFloat(raw.Format.Duration, 64)

	foundVideo := false
	for _, s := range raw.Streams {
		switch s.CodecType {
		case "video":
			if foundVideo {
				continue // First video stream wins.
			}
			foundVideo = true
			info.Width = s.Width
			info.Height = s.Height
			info.FPS = parseRate(s.AvgFrameRate)
			if info.FPS == 0 {
				info.FPS = parseRate(s.RFrameRate)
			}
			info.FrameCount, _ = strconv.Atoi(s.NBFrames)
		case "audio":
			info.HasAudio = true
		}
	}
	if !foundVideo {
		return nil, fmt.Errorf("no video stream in %s", path)
	}
	if info.FrameCount == 0 && info.FPS > 0 {
		info.FrameCount = int(info.Duration * info.FPS)
	}
	return info, nil
}

// parseRate converts ffprobe's "num/den" rational frame rates to a float.
// "0/0" and malformed values yield 0.
func parseRate(r string) float64 {
	num, den, found := strings.Cut(r, "/")
	if !found {
		v, _ := strconv.ParseFloat(r, 64)
		return v
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}
