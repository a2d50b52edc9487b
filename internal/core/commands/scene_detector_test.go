// Copyright 2025 Series Automation Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package commands

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flatScores returns n frame scores with no cut anywhere.
func flatScores(n int) []float64 {
	return make([]float64, n)
}

func TestDetectScenesNoCuts(t *testing.T) {
	scenes := DetectScenes(flatScores(250), 25, 27.0, 0.6)
	require.Len(t, scenes, 1)
	assert.Equal(t, "scene_1", scenes[0].ID)
	assert.Equal(t, 0, scenes[0].StartFrame)
	assert.Equal(t, 250, scenes[0].EndFrame)
	assert.InDelta(t, 10.0, scenes[0].Duration, 1e-9)
}

func TestDetectScenesEmpty(t *testing.T) {
	assert.Nil(t, DetectScenes(nil, 25, 27.0, 0.6))
}

func TestDetectScenesSplitsAtThreshold(t *testing.T) {
	// 10 seconds at 25fps with cuts at frames 100 and 175.
	scores := flatScores(250)
	scores[100] = 40.0
	scores[175] = 27.0 // exactly at threshold still counts as a cut

	scenes := DetectScenes(scores, 25, 27.0, 0.6)
	require.Len(t, scenes, 3)

	assert.Equal(t, 0, scenes[0].StartFrame)
	assert.Equal(t, 100, scenes[0].EndFrame)
	assert.Equal(t, 100, scenes[1].StartFrame)
	assert.Equal(t, 175, scenes[1].EndFrame)
	assert.Equal(t, 175, scenes[2].StartFrame)
	assert.Equal(t, 250, scenes[2].EndFrame)

	assert.InDelta(t, 4.0, scenes[0].EndTime, 1e-9)
	assert.InDelta(t, 4.0, scenes[1].StartTime, 1e-9)
}

func TestDetectScenesMergesFlashFrames(t *testing.T) {
	// A 5-frame flash between two long scenes: cuts at 100 and 105 with the
	// second boundary weaker, so the flash merges rightward into the scene
	// after it.
	scores := flatScores(250)
	scores[100] = 50.0
	scores[105] = 30.0

	scenes := DetectScenes(scores, 25, 27.0, 0.6)
	require.Len(t, scenes, 2)
	assert.Equal(t, 0, scenes[0].StartFrame)
	assert.Equal(t, 100, scenes[0].EndFrame)
	assert.Equal(t, 100, scenes[1].StartFrame)
	assert.Equal(t, 250, scenes[1].EndFrame)
}

func TestDetectScenesMergeTowardWeakerBoundary(t *testing.T) {
	// Same flash but with the first boundary weaker: the flash merges
	// leftward instead.
	scores := flatScores(250)
	scores[100] = 30.0
	scores[105] = 50.0

	scenes := DetectScenes(scores, 25, 27.0, 0.6)
	require.Len(t, scenes, 2)
	assert.Equal(t, 105, scenes[0].EndFrame)
	assert.Equal(t, 105, scenes[1].StartFrame)
}

func TestDetectScenesAllShortCollapseToOne(t *testing.T) {
	// Cuts every 3 frames with a 1-second minimum: everything merges back
	// into a single scene covering the full span.
	scores := flatScores(30)
	for i := 3; i < 30; i += 3 {
		scores[i] = 40.0
	}

	scenes := DetectScenes(scores, 25, 27.0, 10.0)
	require.Len(t, scenes, 1)
	assert.Equal(t, 0, scenes[0].StartFrame)
	assert.Equal(t, 30, scenes[0].EndFrame)
}

func TestDetectScenesPartitionInvariant(t *testing.T) {
	scores := flatScores(500)
	for _, f := range []int{40, 90, 91, 200, 310, 311, 312, 450} {
		scores[f] = 35.0
	}

	scenes := DetectScenes(scores, 25, 27.0, 0.6)
	require.NotEmpty(t, scenes)

	// Scenes tile the full frame range in order with no gaps or overlaps.
	assert.Equal(t, 0, scenes[0].StartFrame)
	assert.Equal(t, 500, scenes[len(scenes)-1].EndFrame)
	for i := 1; i < len(scenes); i++ {
		assert.Equal(t, scenes[i-1].EndFrame, scenes[i].StartFrame)
	}
	for i, scene := range scenes {
		assert.Greater(t, scene.EndFrame, scene.StartFrame)
		assert.Equal(t, fmt.Sprintf("scene_%d", i+1), scene.ID)
	}
}
