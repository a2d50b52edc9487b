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

// This file provides factory functions for creating hardcoded, example
// instances of the data models.
//
// These example objects are used for "few-shot" prompting with the generative
// naming models. By providing a concrete example of the desired JSON output
// structure within the prompt itself, we guide the AI to return data that is
// consistent, correctly formatted, and easily parsable.
package model

// StorylineTitle is the JSON shape the generative naming model is asked to
// produce for one storyline.
type StorylineTitle struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// GetExampleStorylineTitle creates a sample StorylineTitle object. It is
// embedded in the naming prompt as a "few-shot" learning example so the model
// understands the expected JSON structure and the register of the name and
// description fields.
//
// Outputs:
//   - *StorylineTitle: A pointer to a hardcoded StorylineTitle object.
func GetExampleStorylineTitle() *StorylineTitle {
	return &StorylineTitle{
		Name:        "The Ambush at the Crossing",
		Description: "The convoy is forced off the road at the river crossing and the survivors regroup in the tree line, arguing over whether to press on or turn back.",
	}
}

// GetExampleStorylineScenes creates a small set of captioned, transcribed
// scenes that accompany GetExampleStorylineTitle in the naming prompt. The
// pair shows the model how scene evidence maps onto a title.
//
// Outputs:
//   - []*Scene: Hardcoded scenes covering the example storyline.
func GetExampleStorylineScenes() []*Scene {
	return []*Scene{
		{
			ID:        "scene_1",
			StartTime: 0,
			EndTime:   14.5,
			Duration:  14.5,
			Caption:   "A line of trucks moves along a dirt road beside a river at dusk.",
			AudioAnalysis: &AudioAnalysis{
				Transcript: "Keep the spacing tight. We cross before dark or not at all.",
				Language:   "en",
			},
		},
		{
			ID:        "scene_2",
			StartTime: 14.5,
			EndTime:   31.0,
			Duration:  16.5,
			Caption:   "The lead truck swerves as debris blocks the bridge; figures scatter into the trees.",
			AudioAnalysis: &AudioAnalysis{
				Transcript: "Contact left! Everybody off the road, now!",
				Language:   "en",
			},
		},
	}
}
