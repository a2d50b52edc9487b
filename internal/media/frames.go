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

// This file streams decoded frames out of ffmpeg for cut detection and
// samples JPEG stills for the visual feature extractor.
//
// Logic Flow (StreamGrayFrames):
//  1. Start ffmpeg decoding the input to raw 8-bit grayscale frames at a
//     small fixed resolution, written to stdout.
//  2. Read stdout frame by frame (width*height bytes each) and hand each
//     frame to the caller's callback together with its index.
//  3. Stop early if the callback or the context reports an error.
//
// The downscale happens inside ffmpeg so the Go side never touches
// full-resolution pixel data.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
)

// ErrStopStreaming can be returned by a frame callback to end the stream
// early without reporting a failure.
var ErrStopStreaming = errors.New("stop streaming")

// StreamGrayFrames decodes the video at path into grayscale frames of the
// given size and invokes fn for each one. The frame slice is reused between
// calls; callbacks must copy anything they keep.
//
// Inputs:
//   - ctx: Cancels the ffmpeg process when done.
//   - path: The local path of the video file.
//   - width, height: Decode resolution; small values keep detection cheap.
//   - fn: Called once per frame with the frame index and pixel data.
//
// Outputs:
//   - error: Non-nil when ffmpeg or the callback fails.
func (t *Toolbox) StreamGrayFrames(ctx context.Context, path string, width, height int, fn func(index int, pixels []byte) error) error {
	scale := fmt.Sprintf("scale=%d:%d", width, height)
	cmd := exec.CommandContext(ctx, t.FFmpegPath,
		"-hide_banner",
		"-i", path,
		"-vf", scale,
		"-f", "rawvideo",
		"-pix_fmt", "gray",
		"-")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg for %s: %w", path, err)
	}

	frameSize := width * height
	frame := make([]byte, frameSize)
	index := 0
	var cbErr error
	for {
		_, err := io.ReadFull(stdout, frame)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			cbErr = err
			break
		}
		if err := fn(index, frame); err != nil {
			cbErr = err
			break
		}
		index++
	}

	if cbErr != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		if errors.Is(cbErr, ErrStopStreaming) {
			return nil
		}
		return cbErr
	}
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg decode %s: %w: %s", path, err, stderr.String())
	}
	return nil
}

// SampleJPEG extracts a single still frame at the given timestamp, encoded
// as JPEG bytes.
//
// Inputs:
//   - ctx: Cancels the ffmpeg process when done.
//   - path: The local path of the video file.
//   - timestamp: Seconds from the start of the video.
//
// Outputs:
//   - []byte: The encoded JPEG image.
//   - error: Non-nil when ffmpeg fails or produces no output.
func (t *Toolbox) SampleJPEG(ctx context.Context, path string, timestamp float64) ([]byte, error) {
	cmd := exec.CommandContext(ctx, t.FFmpegPath,
		"-hide_banner",
		"-ss", strconv.FormatFloat(timestamp, 'f', 3, 64),
		"-i", path,
		"-frames:v", "1",
		"-f", "image2",
		"-c:v", "mjpeg",
		"-q:v", "3",
		"-")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg frame at %.3fs of %s: %w: %s", timestamp, path, err, stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("no frame decoded at %.3fs of %s", timestamp, path)
	}
	return stdout.Bytes(), nil
}
