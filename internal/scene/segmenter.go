package scene

import (
	"math"

	"github.com/ivlev/reframe/internal/signal"
)

// CameraMotion selects which planning algorithm a scene gets.
type CameraMotion string

const (
	MotionStable   CameraMotion = "stable"
	MotionTracking CameraMotion = "tracking"
)

// Scene is a contiguous run of sampled frames treated as one shot.
type Scene struct {
	StartFrame   int
	EndFrame     int
	StartTime    float64
	EndTime      float64
	Frames       []signal.FrameAnalysis
	CameraMotion CameraMotion
}

// Duration returns the covered time span in seconds.
func (s Scene) Duration() float64 {
	return s.EndTime - s.StartTime
}

// Segmenter groups filtered frames into scenes using detection-population
// deltas, with a periodic boundary as a safety net against missed cuts.
type Segmenter struct {
	DetectionDelta     int     // boundary when |Δ accepted count| exceeds this
	BoundaryInterval   int     // force a boundary every N sampled frames
	MinSceneDuration   float64 // seconds; shorter scenes are merged
	TrackingDriftRatio float64 // centroid drift / source width marking a tracking shot
	SourceWidth        float64
}

// NewSegmenter creates a Segmenter with the given tuning.
func NewSegmenter(delta, interval int, minDuration, driftRatio, sourceWidth float64) *Segmenter {
	return &Segmenter{
		DetectionDelta:     delta,
		BoundaryInterval:   interval,
		MinSceneDuration:   minDuration,
		TrackingDriftRatio: driftRatio,
		SourceWidth:        sourceWidth,
	}
}

// Segment splits frames into scenes, merges the too-short ones into their
// predecessor, and classifies each scene's camera motion. The input order
// is preserved; scenes are contiguous and non-overlapping.
func (s *Segmenter) Segment(frames []signal.FrameAnalysis) []Scene {
	if len(frames) == 0 {
		return nil
	}

	var scenes []Scene
	start := 0

	for i := 1; i < len(frames); i++ {
		delta := len(frames[i].Detections) - len(frames[i-1].Detections)
		if delta < 0 {
			delta = -delta
		}

		boundary := delta > s.DetectionDelta
		if s.BoundaryInterval > 0 && i-start >= s.BoundaryInterval {
			boundary = true
		}

		if boundary {
			frames[i].SceneChange = true
			scenes = append(scenes, s.makeScene(frames[start:i]))
			start = i
		}
	}

	// End of stream closes the final scene.
	scenes = append(scenes, s.makeScene(frames[start:]))

	return s.classify(s.mergeShort(scenes))
}

func (s *Segmenter) makeScene(frames []signal.FrameAnalysis) Scene {
	return Scene{
		StartFrame: frames[0].FrameIndex,
		EndFrame:   frames[len(frames)-1].FrameIndex,
		StartTime:  frames[0].Timestamp,
		EndTime:    frames[len(frames)-1].Timestamp,
		Frames:     frames,
	}
}

// mergeShort folds scenes shorter than MinSceneDuration into the preceding
// scene (frames appended, end markers extended). The first scene has no
// predecessor and is folded forward instead.
func (s *Segmenter) mergeShort(scenes []Scene) []Scene {
	if len(scenes) <= 1 {
		return scenes
	}

	merged := make([]Scene, 0, len(scenes))
	for _, sc := range scenes {
		if len(merged) > 0 && sc.Duration() < s.MinSceneDuration {
			prev := &merged[len(merged)-1]
			prev.Frames = append(prev.Frames, sc.Frames...)
			prev.EndFrame = sc.EndFrame
			prev.EndTime = sc.EndTime
			continue
		}
		merged = append(merged, sc)
	}

	// A short leading scene could not merge backwards above.
	if len(merged) > 1 && merged[0].Duration() < s.MinSceneDuration {
		head := merged[0]
		merged[1].Frames = append(head.Frames, merged[1].Frames...)
		merged[1].StartFrame = head.StartFrame
		merged[1].StartTime = head.StartTime
		merged = merged[1:]
	}

	return merged
}

// classify marks a scene as tracking when the fused centroid drifts across
// it by more than TrackingDriftRatio of the source width.
func (s *Segmenter) classify(scenes []Scene) []Scene {
	for i := range scenes {
		scenes[i].CameraMotion = MotionStable
		if s.SourceWidth <= 0 {
			continue
		}

		firstX, firstY, lastX, lastY := 0.0, 0.0, 0.0, 0.0
		seen := false
		for _, f := range scenes[i].Frames {
			cx, cy, ok := f.Centroid()
			if !ok {
				continue
			}
			if !seen {
				firstX, firstY = cx, cy
				seen = true
			}
			lastX, lastY = cx, cy
		}
		if !seen {
			continue
		}

		drift := math.Hypot(lastX-firstX, lastY-firstY)
		if drift > s.TrackingDriftRatio*s.SourceWidth {
			scenes[i].CameraMotion = MotionTracking
		}
	}
	return scenes
}
