package scene

import (
	"testing"

	"github.com/ivlev/reframe/internal/signal"
)

func makeFrames(counts []int, interval float64) []signal.FrameAnalysis {
	frames := make([]signal.FrameAnalysis, len(counts))
	for i, n := range counts {
		frames[i] = signal.FrameAnalysis{
			FrameIndex: i,
			Timestamp:  float64(i) * interval,
		}
		for j := 0; j < n; j++ {
			frames[i].Detections = append(frames[i].Detections, signal.Accepted{
				Detection: signal.Detection{
					Box:   signal.BBox{X: 100, Y: 100, W: 50, H: 50},
					Score: 0.9,
				},
				Weight: 1.0,
			})
		}
	}
	return frames
}

func TestSegmentDetectionDelta(t *testing.T) {
	// Population jumps from 1 to 4 at frame 5: a cut.
	counts := []int{1, 1, 1, 1, 1, 4, 4, 4, 4, 4}
	frames := makeFrames(counts, 1.0)

	s := NewSegmenter(2, 0, 0, 0.08, 1920)
	scenes := s.Segment(frames)

	if len(scenes) != 2 {
		t.Fatalf("Expected 2 scenes, got %d", len(scenes))
	}
	if scenes[0].EndFrame != 4 || scenes[1].StartFrame != 5 {
		t.Errorf("Boundary misplaced: %d / %d", scenes[0].EndFrame, scenes[1].StartFrame)
	}
	if !frames[5].SceneChange {
		t.Error("Frame 5 should be marked as a scene change")
	}
}

func TestSegmentStableUnderSmallDelta(t *testing.T) {
	counts := []int{1, 2, 1, 2, 3, 2, 1, 2, 1, 2}
	frames := makeFrames(counts, 1.0)

	s := NewSegmenter(2, 0, 0, 0.08, 1920)
	scenes := s.Segment(frames)

	if len(scenes) != 1 {
		t.Fatalf("Small population jitter must not split: got %d scenes", len(scenes))
	}
}

func TestSegmentPeriodicBoundary(t *testing.T) {
	counts := make([]int, 10)
	for i := range counts {
		counts[i] = 1
	}
	frames := makeFrames(counts, 1.0)

	s := NewSegmenter(2, 4, 0, 0.08, 1920)
	scenes := s.Segment(frames)

	if len(scenes) < 2 {
		t.Fatalf("Periodic boundary should split a uniform run: got %d scenes", len(scenes))
	}
	t.Logf("Periodic split produced %d scenes", len(scenes))
}

func TestMergeShortScenes(t *testing.T) {
	counts := []int{1, 1, 1, 1, 1, 4, 1, 1, 1, 1, 1}
	frames := makeFrames(counts, 0.5)

	// Boundaries at frames 5 and 6 create a 0.5s scene; min duration 2s
	// folds it back.
	s := NewSegmenter(2, 0, 2.0, 0.08, 1920)
	scenes := s.Segment(frames)

	for _, sc := range scenes {
		if sc.Duration() < 2.0 && len(scenes) > 1 {
			t.Errorf("Scene [%d..%d] is %.2fs, shorter than the minimum", sc.StartFrame, sc.EndFrame, sc.Duration())
		}
	}

	total := 0
	for _, sc := range scenes {
		total += len(sc.Frames)
	}
	if total != len(frames) {
		t.Errorf("Merging lost frames: %d != %d", total, len(frames))
	}
}

func TestClassifyTracking(t *testing.T) {
	frames := make([]signal.FrameAnalysis, 10)
	for i := range frames {
		frames[i] = signal.FrameAnalysis{
			FrameIndex: i,
			Timestamp:  float64(i),
			Detections: []signal.Accepted{{
				Detection: signal.Detection{
					// Subject walks 400px across a 1920px source.
					Box:   signal.BBox{X: 100 + float64(i)*45, Y: 500, W: 60, H: 60},
					Score: 0.9,
				},
				Weight: 1.0,
			}},
		}
	}

	s := NewSegmenter(2, 0, 0, 0.08, 1920)
	scenes := s.Segment(frames)

	if len(scenes) != 1 {
		t.Fatalf("Expected 1 scene, got %d", len(scenes))
	}
	if scenes[0].CameraMotion != MotionTracking {
		t.Errorf("Expected tracking scene, got %s", scenes[0].CameraMotion)
	}
}

func TestClassifyStable(t *testing.T) {
	frames := make([]signal.FrameAnalysis, 10)
	for i := range frames {
		frames[i] = signal.FrameAnalysis{
			FrameIndex: i,
			Timestamp:  float64(i),
			Detections: []signal.Accepted{{
				Detection: signal.Detection{
					Box:   signal.BBox{X: 900 + float64(i%2)*5, Y: 500, W: 60, H: 60},
					Score: 0.9,
				},
				Weight: 1.0,
			}},
		}
	}

	s := NewSegmenter(2, 0, 0, 0.08, 1920)
	scenes := s.Segment(frames)

	if scenes[0].CameraMotion != MotionStable {
		t.Errorf("Expected stable scene, got %s", scenes[0].CameraMotion)
	}
}
