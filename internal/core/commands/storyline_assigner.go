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

// This file defines the storyline assigner: an exact dynamic program that
// partitions the time-ordered scene list into k contiguous groups maximizing
// total intra-group coherence.
//
// Logic Flow:
//  1. The coherence of a group is the mean pairwise dot product of its scene
//     profiles. With prefix vector sums this reduces to (|S|^2 - n) / (n(n-1))
//     for a group of n unit profiles with vector sum S; singleton groups
//     score 1.0.
//  2. best[m][g] is the best total coherence of splitting the first m scenes
//     into g groups: best[m][g] = max over j of best[j][g-1] + coherence of
//     scenes j..m-1. Backpointers reconstruct the split.
//  3. Ties on coherence are broken toward balanced partitions by minimizing
//     the sum of squared group sizes as a secondary objective.
//  4. A requested k larger than the scene count is clamped, so every scene
//     can be its own storyline but never less than one scene per group.
package commands

import (
	"fmt"
	"math"

	"github.com/i-kohan/series-automation/internal/core/cor"
	"github.com/i-kohan/series-automation/internal/core/model"
)

// StorylineAssigner partitions the scene list into storylines.
type StorylineAssigner struct {
	cor.BaseCommand
}

// NewStorylineAssigner constructs the command.
func NewStorylineAssigner(name string) *StorylineAssigner {
	return &StorylineAssigner{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute runs the partition and emits the storyline list.
func (c *StorylineAssigner) Execute(context cor.Context) {
	scenes := context.Get(c.GetInputParam()).([]*model.Scene)
	request := context.Get(GetRequestParamName()).(*model.AnalysisRequest)

	context.ReportProgress(0.8, "clustering scenes into storylines")

	storylines := AssignStorylines(scenes, request.NumStorylines)
	if len(storylines) == 0 {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("no scenes to cluster"))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(cor.CtxOut, storylines)
}

// AssignStorylines splits scenes into at most k contiguous, time-ordered
// storylines. The scene order is preserved and the groups partition the
// input exactly: every scene appears in exactly one storyline.
func AssignStorylines(scenes []*model.Scene, k int) []*model.Storyline {
	n := len(scenes)
	if n == 0 {
		return nil
	}
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}

	boundaries := optimalSplit(scenes, k)

	storylines := make([]*model.Storyline, k)
	start := 0
	for g := 0; g < k; g++ {
		end := boundaries[g]
		s := &model.Storyline{
			ID:     fmt.Sprintf("storyline_%d", g+1),
			Scenes: append([]*model.Scene(nil), scenes[start:end]...),
		}
		s.RecalculateBounds()
		storylines[g] = s
		start = end
	}
	return storylines
}

// optimalSplit returns the exclusive end index of each of the k groups.
func optimalSplit(scenes []*model.Scene, k int) []int {
	n := len(scenes)

	// Pad profiles to a common dimension so prefix sums line up even when
	// some scenes fell back to visual embeddings.
	dim := 0
	for _, scene := range scenes {
		if len(scene.Profile) > dim {
			dim = len(scene.Profile)
		}
	}
	prefix := make([][]float64, n+1)
	prefix[0] = make([]float64, dim)
	for i, scene := range scenes {
		row := make([]float64, dim)
		copy(row, prefix[i])
		for d, v := range scene.Profile {
			row[d] += v
		}
		prefix[i+1] = row
	}

	// coherence of the group covering scenes [i, j).
	coherence := func(i, j int) float64 {
		count := j - i
		if count <= 1 {
			return 1.0
		}
		var normSq float64
		for d := 0; d < dim; d++ {
			diff := prefix[j][d] - prefix[i][d]
			normSq += diff * diff
		}
		return (normSq - float64(count)) / float64(count*(count-1))
	}

	const tieEpsilon = 1e-9

	// best[m][g]: best coherence total for the first m scenes in g groups.
	// spread[m][g]: secondary objective, sum of squared group sizes.
	best := make([][]float64, n+1)
	spread := make([][]float64, n+1)
	choice := make([][]int, n+1)
	for m := 0; m <= n; m++ {
		best[m] = make([]float64, k+1)
		spread[m] = make([]float64, k+1)
		choice[m] = make([]int, k+1)
		// Coherence totals can be negative (dissimilar profiles push a
		// group's mean pairwise similarity below zero), so unreachable
		// states are marked with -Inf rather than any finite sentinel.
		for g := range best[m] {
			best[m][g] = math.Inf(-1)
			choice[m][g] = -1
		}
	}
	best[0][0] = 0
	spread[0][0] = 0

	for m := 1; m <= n; m++ {
		maxGroups := k
		if m < maxGroups {
			maxGroups = m
		}
		for g := 1; g <= maxGroups; g++ {
			for j := g - 1; j < m; j++ {
				if math.IsInf(best[j][g-1], -1) {
					continue
				}
				size := float64(m - j)
				total := best[j][g-1] + coherence(j, m)
				totalSpread := spread[j][g-1] + size*size
				better := total > best[m][g]+tieEpsilon
				tied := !better && total > best[m][g]-tieEpsilon
				if better || (tied && totalSpread < spread[m][g]) {
					best[m][g] = total
					spread[m][g] = totalSpread
					choice[m][g] = j
				}
			}
		}
	}

	boundaries := make([]int, k)
	m := n
	for g := k; g >= 1; g-- {
		boundaries[g-1] = m
		m = choice[m][g]
	}
	return boundaries
}
