package trajectory

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/reframe/internal/planner"
)

// Stats summarizes a planning run, mirroring what the analysis stage saw.
type Stats struct {
	FramesAnalyzed     int            `yaml:"frames_analyzed" json:"frames_analyzed"`
	Scenes             int            `yaml:"scenes" json:"scenes"`
	DetectionsAccepted int            `yaml:"detections_accepted" json:"detections_accepted"`
	DetectionsByClass  map[string]int `yaml:"detections_by_class,omitempty" json:"detections_by_class,omitempty"`
	FramesWithSubject  int            `yaml:"frames_with_subject" json:"frames_with_subject"`
	AverageConfidence  float64        `yaml:"average_confidence" json:"average_confidence"`
	ElapsedSeconds     float64        `yaml:"elapsed_seconds" json:"elapsed_seconds"`
}

// Trajectory is the final time-ordered crop path handed to the rendering
// collaborator: rectangles in source-pixel space, aspect-matched to the
// target.
type Trajectory struct {
	Version      string                 `yaml:"version" json:"version"`
	SourceWidth  int                    `yaml:"source_width" json:"source_width"`
	SourceHeight int                    `yaml:"source_height" json:"source_height"`
	AspectRatio  string                 `yaml:"aspect_ratio" json:"aspect_ratio"`
	FocusMode    string                 `yaml:"focus_mode" json:"focus_mode"`
	Keyframes    []planner.CropKeyframe `yaml:"keyframes" json:"keyframes"`
	Stats        Stats                  `yaml:"stats" json:"stats"`
}

// Write writes a trajectory to a YAML file.
func Write(tr *Trajectory, path string) error {
	data, err := yaml.Marshal(tr)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Read reads a trajectory from a YAML file.
func Read(path string) (*Trajectory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var tr Trajectory
	if err := yaml.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("failed to parse trajectory: %w", err)
	}
	return &tr, nil
}
