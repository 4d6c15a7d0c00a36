package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseAspectRatio(t *testing.T) {
	tests := []struct {
		in       string
		expected float64
		wantErr  bool
	}{
		{"9:16", 9.0 / 16.0, false},
		{"", 9.0 / 16.0, false}, // vertical is the default
		{"16:9", 16.0 / 9.0, false},
		{"1:1", 1.0, false},
		{"4:3", 4.0 / 3.0, false},
		{"21:9", 0, true},
		{"vertical", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseAspectRatio(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseAspectRatio(%q) should fail", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAspectRatio(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseAspectRatio(%q) = %f, expected %f", tt.in, got, tt.expected)
		}
	}
}

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default config must validate: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	broken := []func(*Config){
		func(c *Config) { c.AspectRatio = "3:7" },
		func(c *Config) { c.Stabilizer.WindowSize = 0 },
		func(c *Config) { c.Stabilizer.MaxVelocity = -1 },
		func(c *Config) { c.Scene.MinSceneDuration = -0.5 },
		func(c *Config) { c.Zoom.MinZoomFactor = 3.0 },
		func(c *Config) { c.Zoom.SubjectPadding = 0.5 },
		func(c *Config) { c.Zoom.FocusPriorityMode = "yolo" },
	}

	for i, mutate := range broken {
		cfg := Default()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("Case %d: expected validation error", i)
		}
	}
}

func TestLoadLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
aspect_ratio: "1:1"
focus_mode: person
stabilizer:
  window_size: 7
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.AspectRatio != "1:1" || cfg.FocusMode != "person" {
		t.Errorf("File values not applied: %+v", cfg)
	}
	if cfg.Stabilizer.WindowSize != 7 {
		t.Errorf("Expected window_size 7, got %d", cfg.Stabilizer.WindowSize)
	}
	// Untouched knobs keep their defaults.
	if cfg.Scene.BoundaryInterval != 90 {
		t.Errorf("Default lost: boundary_interval = %d", cfg.Scene.BoundaryInterval)
	}
	if cfg.Zoom.FocusPriorityMode != "preserve_all" {
		t.Errorf("Default lost: focus_priority_mode = %s", cfg.Zoom.FocusPriorityMode)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("REFRAME_TEST_KEY", "value")
	if got := GetEnv("REFRAME_TEST_KEY", "fallback"); got != "value" {
		t.Errorf("Expected value, got %s", got)
	}
	if got := GetEnv("REFRAME_TEST_MISSING", "fallback"); got != "fallback" {
		t.Errorf("Expected fallback, got %s", got)
	}
}
