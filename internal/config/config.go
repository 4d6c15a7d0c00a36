package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable of a planning run. Zero values are filled in
// by Default(); Load() layers a YAML file on top of the defaults.
type Config struct {
	InputPath  string `yaml:"input"`
	OutputPath string `yaml:"output"`

	// Target format
	AspectRatio string `yaml:"aspect_ratio"` // "9:16", "16:9", "1:1", "4:3"
	FocusMode   string `yaml:"focus_mode"`   // "face", "person", "object", "text", "auto"

	// Source geometry. Zero means "take it from the detections dump".
	SourceWidth  int     `yaml:"source_width"`
	SourceHeight int     `yaml:"source_height"`
	FPS          float64 `yaml:"fps"`

	// SampleRate caps how many frames of the dump are analyzed; the pipeline
	// keeps every max(1, frameCount/SampleRate)-th sampled frame. 0 uses all.
	SampleRate int `yaml:"sample_rate"`

	Workers   int  `yaml:"workers"` // 0 = auto-size from the host
	ShowStats bool `yaml:"show_stats"`

	Scene      SceneConfig      `yaml:"scene"`
	Stabilizer StabilizerConfig `yaml:"stabilizer"`
	Motion     MotionConfig     `yaml:"motion"`
	Zoom       ZoomConfig       `yaml:"zoom"`
}

// SceneConfig tunes scene boundary detection and merging.
type SceneConfig struct {
	DetectionDelta     int     `yaml:"detection_delta"`      // boundary when |Δ count| exceeds this
	BoundaryInterval   int     `yaml:"boundary_interval"`    // periodic boundary safety net (sampled frames)
	MinSceneDuration   float64 `yaml:"min_scene_duration"`   // seconds; shorter scenes are merged
	TrackingDriftRatio float64 `yaml:"tracking_drift_ratio"` // centroid drift / source width above which a scene tracks
}

// StabilizerConfig tunes the three smoothing phases.
type StabilizerConfig struct {
	WindowSize          int     `yaml:"window_size"`          // Gaussian window half-width (keyframes)
	MaxVelocity         float64 `yaml:"max_velocity"`         // px per sampled frame
	ConfidenceThreshold float64 `yaml:"confidence_threshold"` // below this, blend with neighbors
}

// MotionConfig tunes the camera motion analyzer.
type MotionConfig struct {
	StaticThreshold    float64 `yaml:"static_threshold"`    // px; below this a pair is static
	ReferenceMagnitude float64 `yaml:"reference_magnitude"` // px; magnitude at which confidence saturates
	Tolerance          float64 `yaml:"tolerance"`           // seconds; max keyframe-to-sample time distance
}

// ZoomConfig mirrors zoom.Settings in plain YAML-friendly fields.
type ZoomConfig struct {
	MinZoomFactor     float64 `yaml:"min_zoom_factor"`
	MaxZoomFactor     float64 `yaml:"max_zoom_factor"`
	AdaptiveEnabled   bool    `yaml:"adaptive_enabled"`
	FocusPriorityMode string  `yaml:"focus_priority_mode"` // "preserve_all", "smart_crop", "optimal_framing"
	SubjectPadding    float64 `yaml:"subject_padding"`     // fraction of crop dimension
}

// Default returns a Config with documented defaults for every knob.
func Default() *Config {
	return &Config{
		AspectRatio: "9:16",
		FocusMode:   "auto",
		Scene: SceneConfig{
			DetectionDelta:     2,
			BoundaryInterval:   90,
			MinSceneDuration:   2.0,
			TrackingDriftRatio: 0.08,
		},
		Stabilizer: StabilizerConfig{
			WindowSize:          5,
			MaxVelocity:         40.0,
			ConfidenceThreshold: 0.5,
		},
		Motion: MotionConfig{
			StaticThreshold:    2.0,
			ReferenceMagnitude: 20.0,
			Tolerance:          0.25,
		},
		Zoom: ZoomConfig{
			MinZoomFactor:     0.5,
			MaxZoomFactor:     2.0,
			AdaptiveEnabled:   false,
			FocusPriorityMode: "preserve_all",
			SubjectPadding:    0.1,
		},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// ParseAspectRatio maps the supported aspect strings to width/height ratios.
// Unknown strings are an error: a wrong ratio silently produces a wrong crop
// for the entire run.
func ParseAspectRatio(s string) (float64, error) {
	switch s {
	case "9:16", "":
		return 9.0 / 16.0, nil
	case "16:9":
		return 16.0 / 9.0, nil
	case "1:1":
		return 1.0, nil
	case "4:3":
		return 4.0 / 3.0, nil
	default:
		return 0, fmt.Errorf("unsupported aspect ratio %q (want 9:16, 16:9, 1:1 or 4:3)", s)
	}
}

// Validate checks the invariants that make a run impossible rather than
// merely low-quality. Everything else degrades gracefully downstream.
func (c *Config) Validate() error {
	if _, err := ParseAspectRatio(c.AspectRatio); err != nil {
		return err
	}
	if c.Stabilizer.WindowSize < 1 {
		return fmt.Errorf("stabilizer window_size must be >= 1, got %d", c.Stabilizer.WindowSize)
	}
	if c.Stabilizer.MaxVelocity <= 0 {
		return fmt.Errorf("stabilizer max_velocity must be positive, got %f", c.Stabilizer.MaxVelocity)
	}
	if c.Scene.MinSceneDuration < 0 {
		return fmt.Errorf("scene min_scene_duration must not be negative, got %f", c.Scene.MinSceneDuration)
	}
	if c.Zoom.MinZoomFactor > c.Zoom.MaxZoomFactor {
		return fmt.Errorf("zoom min_zoom_factor %f exceeds max_zoom_factor %f",
			c.Zoom.MinZoomFactor, c.Zoom.MaxZoomFactor)
	}
	if c.Zoom.SubjectPadding < 0 || c.Zoom.SubjectPadding >= 0.5 {
		return fmt.Errorf("zoom subject_padding must be in [0, 0.5), got %f", c.Zoom.SubjectPadding)
	}
	switch c.Zoom.FocusPriorityMode {
	case "preserve_all", "smart_crop", "optimal_framing":
	default:
		return fmt.Errorf("unknown focus_priority_mode %q", c.Zoom.FocusPriorityMode)
	}
	return nil
}

// GetEnv returns an environment variable or a default, the way the service
// binaries read their port and directories.
func GetEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}
