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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i-kohan/series-automation/internal/core/model"
)

// profiledScenes builds n scenes with one-second spans and the given unit
// profiles.
func profiledScenes(profiles ...[]float64) []*model.Scene {
	scenes := make([]*model.Scene, len(profiles))
	for i, p := range profiles {
		scenes[i] = &model.Scene{
			ID:        "scene_" + string(rune('a'+i)),
			StartTime: float64(i),
			EndTime:   float64(i) + 1,
			Duration:  1,
			Profile:   p,
		}
	}
	return scenes
}

func TestAssignStorylinesEmpty(t *testing.T) {
	assert.Nil(t, AssignStorylines(nil, 3))
}

func TestAssignStorylinesClampsK(t *testing.T) {
	scenes := profiledScenes([]float64{1, 0}, []float64{0, 1})

	// k larger than the scene count clamps to one scene per storyline.
	storylines := AssignStorylines(scenes, 10)
	require.Len(t, storylines, 2)
	assert.Len(t, storylines[0].Scenes, 1)
	assert.Len(t, storylines[1].Scenes, 1)

	// Non-positive k clamps to a single storyline.
	storylines = AssignStorylines(scenes, 0)
	require.Len(t, storylines, 1)
	assert.Len(t, storylines[0].Scenes, 2)
}

func TestAssignStorylinesRoutesThroughNegativeTotals(t *testing.T) {
	// Three mutually dissimilar profiles on the unit circle: the first pair
	// has cosine -0.2, the second pair -0.9. The optimal 2-split groups the
	// first two scenes (total 0.8 against 0.1 for the alternative), but its
	// winning prefix state carries a negative running coherence, so it must
	// survive the reachability bookkeeping.
	unit := func(theta float64) []float64 {
		return []float64{math.Cos(theta), math.Sin(theta)}
	}
	t2 := math.Acos(-0.2)
	t3 := t2 + math.Acos(-0.9)
	scenes := profiledScenes(unit(0), unit(t2), unit(t3))

	storylines := AssignStorylines(scenes, 2)
	require.Len(t, storylines, 2)
	assert.Len(t, storylines[0].Scenes, 2)
	assert.Len(t, storylines[1].Scenes, 1)
}

func TestAssignStorylinesFindsCoherentSplit(t *testing.T) {
	// Two clearly separated topics: three scenes pointing along one axis,
	// then three along an orthogonal one. The optimal 2-split falls exactly
	// on the topic change.
	a := []float64{1, 0}
	b := []float64{0, 1}
	scenes := profiledScenes(a, a, a, b, b, b)

	storylines := AssignStorylines(scenes, 2)
	require.Len(t, storylines, 2)
	assert.Len(t, storylines[0].Scenes, 3)
	assert.Len(t, storylines[1].Scenes, 3)
	assert.Equal(t, "storyline_1", storylines[0].ID)
	assert.Equal(t, "storyline_2", storylines[1].ID)
}

func TestAssignStorylinesPartitionInvariant(t *testing.T) {
	a := []float64{1, 0, 0}
	b := []float64{0, 1, 0}
	c := []float64{0, 0, 1}
	scenes := profiledScenes(a, a, b, c, c, b, a)

	storylines := AssignStorylines(scenes, 3)
	require.Len(t, storylines, 3)

	// Every scene appears exactly once, in the original order.
	var flattened []*model.Scene
	for _, s := range storylines {
		flattened = append(flattened, s.Scenes...)
	}
	require.Len(t, flattened, len(scenes))
	for i, scene := range flattened {
		assert.Same(t, scenes[i], scene)
	}
}

func TestAssignStorylinesBalancedTieBreak(t *testing.T) {
	// Identical profiles make every split equally coherent; the secondary
	// objective must then prefer the balanced partition.
	p := []float64{1, 0}
	scenes := profiledScenes(p, p, p, p)

	storylines := AssignStorylines(scenes, 2)
	require.Len(t, storylines, 2)
	assert.Len(t, storylines[0].Scenes, 2)
	assert.Len(t, storylines[1].Scenes, 2)
}

func TestAssignStorylinesRecalculatesBounds(t *testing.T) {
	a := []float64{1, 0}
	b := []float64{0, 1}
	scenes := profiledScenes(a, a, b, b)

	storylines := AssignStorylines(scenes, 2)
	require.Len(t, storylines, 2)

	assert.InDelta(t, 0.0, storylines[0].StartTime, 1e-9)
	assert.InDelta(t, 2.0, storylines[0].EndTime, 1e-9)
	assert.InDelta(t, 2.0, storylines[0].Duration, 1e-9)
	assert.InDelta(t, 2.0, storylines[1].StartTime, 1e-9)
	assert.InDelta(t, 4.0, storylines[1].EndTime, 1e-9)
}

func TestAssignStorylinesMixedProfileDimensions(t *testing.T) {
	// A scene that fell back to a shorter visual embedding must not break
	// the split; its profile is treated as zero-padded.
	scenes := profiledScenes(
		[]float64{1, 0, 0},
		[]float64{1, 0, 0},
		[]float64{0, 1},
		[]float64{0, 1, 0},
	)

	storylines := AssignStorylines(scenes, 2)
	require.Len(t, storylines, 2)
	assert.Len(t, storylines[0].Scenes, 2)
	assert.Len(t, storylines[1].Scenes, 2)
}
