package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/ivlev/reframe/internal/config"
	"github.com/ivlev/reframe/internal/detector"
	"github.com/ivlev/reframe/internal/trajectory"
)

func TestHealthRoute(t *testing.T) {
	app := NewServer(config.Default())

	req, _ := http.NewRequest("GET", "/health", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
}

func TestPlanRoute(t *testing.T) {
	app := NewServer(config.Default())

	dump := &detector.Dump{
		SourceWidth:  1920,
		SourceHeight: 1080,
		FPS:          1,
	}
	for i := 0; i < 10; i++ {
		dump.Frames = append(dump.Frames, detector.DumpFrame{
			FrameIndex: i,
			Detections: []detector.DumpDetection{
				{Class: "face", X: 900, Y: 400, W: 120, H: 120, Score: 0.9},
			},
		})
	}

	body, _ := json.Marshal(map[string]any{
		"aspect_ratio": "1:1",
		"focus_mode":   "face",
		"filter_fps":   30,
		"dump":         dump,
	})

	req, _ := http.NewRequest("POST", "/reframe/plan", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var payload struct {
		Trajectory trajectory.Trajectory `json:"trajectory"`
		CropFilter string                `json:"crop_filter"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	tr := payload.Trajectory
	if tr.AspectRatio != "1:1" || tr.FocusMode != "face" {
		t.Errorf("Overrides not applied: %+v", tr)
	}
	if len(tr.Keyframes) != 10 {
		t.Errorf("Expected 10 keyframes, got %d", len(tr.Keyframes))
	}
	if payload.CropFilter == "" {
		t.Error("Expected a crop filter in the response")
	}
}

func TestPlanRouteRejectsBadInput(t *testing.T) {
	app := NewServer(config.Default())

	cases := []string{
		`not json`,
		`{}`, // missing dump
		`{"dump": {"source_width": 0, "source_height": 0, "frames": []}}`,
		`{"aspect_ratio": "13:37", "dump": {"source_width": 1920, "source_height": 1080, "frames": [{"frame_idx": 0}]}}`,
	}

	for i, body := range cases {
		req, _ := http.NewRequest("POST", "/reframe/plan", bytes.NewReader([]byte(body)))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("Case %d: request failed: %v", i, err)
		}
		if resp.StatusCode != 400 {
			t.Errorf("Case %d: expected 400, got %d", i, resp.StatusCode)
		}
	}
}
