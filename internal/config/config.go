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

// Package config defines the data structures for application configuration,
// loaded from TOML files with an environment-specific overlay and a small set
// of environment-variable overrides for operational knobs.
//
// Structs:
//   - SceneDetection: Cut-detection threshold and minimum scene length.
//   - FrameAnalysis: Frame sampling parameters for visual feature extraction.
//   - AudioAnalysis: Silence gating and waveform decode parameters.
//   - InferenceModel: Configuration for one model served behind the inference
//     client (captioning, transcription, or embedding).
//   - Matching: Entity-matcher thresholds and feature toggles.
//   - Storage: Locations of the shared video directory, result files, and
//     roster files.
//   - Config: The top-level struct aggregating everything.
package config

// SceneDetection holds the tunables for content-based cut detection.
type SceneDetection struct {
	Threshold      float64 `toml:"threshold"`        // Mean luma delta (0-255 scale) above which a cut is declared.
	MinSceneLength float64 `toml:"min_scene_length"` // Minimum scene length in seconds; shorter scenes merge into a neighbor.
	DetectWidth    int     `toml:"detect_width"`     // Downscaled frame width used for the dissimilarity signal.
	DetectHeight   int     `toml:"detect_height"`    // Downscaled frame height used for the dissimilarity signal.
}

// FrameAnalysis holds the frame sampling parameters for the visual extractor.
type FrameAnalysis struct {
	FramesPerScene   int     `toml:"frames_per_scene"`   // Number of frames sampled evenly across a scene.
	MinSceneDuration float64 `toml:"min_scene_duration"` // Scenes shorter than this are sampled with a single frame.
}

// AudioAnalysis holds the waveform decode and silence gating parameters.
type AudioAnalysis struct {
	SampleRate       int     `toml:"sample_rate"`       // Target sample rate for decoded waveforms (Hz).
	SilenceThreshold float64 `toml:"silence_threshold"` // RMS below this means the slice carries no intelligible audio.
}

// InferenceModel configures one model behind the inference client. Device and
// compute type are passed through to self-hosted serving backends and ignored
// by hosted ones.
type InferenceModel struct {
	Model       string `toml:"model"`        // Model identifier (e.g. "gemini-2.0-flash", "whisper-small").
	Device      string `toml:"device"`       // "cpu" or "cuda"; advisory for self-hosted backends.
	ComputeType string `toml:"compute_type"` // e.g. "int8", "float16"; advisory for self-hosted backends.
	RateLimit   int    `toml:"rate_limit"`   // Requests per second allowed against the model.
}

// NamingModel configures the generative storyline-naming model. Only used when
// the naming strategy is "generative".
type NamingModel struct {
	Model              string  `toml:"model"`
	SystemInstructions string  `toml:"system_instructions"`
	Temperature        float32 `toml:"temperature"`
	TopP               float32 `toml:"top_p"`
	TopK               float32 `toml:"top_k"`
	MaxTokens          int32   `toml:"max_tokens"`
	OutputFormat       string  `toml:"output_format"` // Desired response MIME type, normally "application/json".
	RateLimit          int     `toml:"rate_limit"`
}

// Matching holds entity-matcher thresholds and the toggles gating it.
type Matching struct {
	MinScore               float64 `toml:"min_score"`                // Auto-accept threshold for roster matches.
	EnableCharacterMatches bool    `toml:"enable_character_matches"` // Gate for matching mentions against the character roster.
	EnableKeywordMatches   bool    `toml:"enable_keyword_matches"`   // Gate for matching mentions against roster keywords.
}

// Storage holds the file-system locations the service reads and writes.
type Storage struct {
	VideoDir  string `toml:"video_dir"`  // Shared directory holding source videos (ingestion is external).
	ResultDir string `toml:"result_dir"` // Directory where completed AnalysisResults are persisted as JSON.
	RosterDir string `toml:"roster_dir"` // Directory of per-series roster JSON files (content management owns these).
}

// Config is the root configuration for the application, loaded from TOML files.
type Config struct {
	Application struct {
		Name           string `toml:"name"`             // Service name, used for telemetry resource attributes.
		ListenAddr     string `toml:"listen_addr"`      // HTTP listen address, e.g. ":8080".
		ThreadPoolSize int    `toml:"thread_pool_size"` // Worker pool size for per-scene feature extraction.
		GoogleProject  string `toml:"google_project"`   // Project for the hosted inference backend.
		GoogleLocation string `toml:"google_location"`  // Location for the hosted inference backend.
	} `toml:"application"`
	Storage        Storage                   `toml:"storage"`
	SceneDetection SceneDetection            `toml:"scene_detection"`
	FrameAnalysis  FrameAnalysis             `toml:"frame_analysis"`
	AudioAnalysis  AudioAnalysis             `toml:"audio_analysis"`
	Matching       Matching                  `toml:"matching"`
	NamingStrategy string                    `toml:"naming_strategy"` // "template" (default) or "generative".
	Models         map[string]InferenceModel `toml:"models"`          // Keyed by role: "caption", "transcription", "embedding".
	NamingModels   map[string]NamingModel    `toml:"naming_models"`   // Keyed by a logical name, e.g. "creative-flash".
}

// NewConfig creates a Config with maps initialized and defaults that match the
// original analyzer's behavior. TOML decoding overwrites any field present in
// the files.
func NewConfig() *Config {
	c := &Config{
		Models:       make(map[string]InferenceModel),
		NamingModels: make(map[string]NamingModel),
	}
	c.Application.ListenAddr = ":8080"
	c.Application.ThreadPoolSize = 4
	c.SceneDetection = SceneDetection{
		Threshold:      27.0,
		MinSceneLength: 0.6,
		DetectWidth:    160,
		DetectHeight:   90,
	}
	c.FrameAnalysis = FrameAnalysis{
		FramesPerScene:   3,
		MinSceneDuration: 1.0,
	}
	c.AudioAnalysis = AudioAnalysis{
		SampleRate:       16000,
		SilenceThreshold: 1e-4,
	}
	c.Matching = Matching{
		MinScore:               0.8,
		EnableCharacterMatches: true,
		EnableKeywordMatches:   true,
	}
	c.NamingStrategy = "template"
	return c
}
