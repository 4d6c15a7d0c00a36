package zoom

import (
	"math"
	"testing"

	"github.com/ivlev/reframe/internal/planner"
	"github.com/ivlev/reframe/internal/signal"
)

func subjectFrame(idx int, box signal.BBox) signal.FrameAnalysis {
	return signal.FrameAnalysis{
		FrameIndex:  idx,
		HasRequired: true,
		Detections: []signal.Accepted{{
			Detection: signal.Detection{Class: signal.ClassFace, Box: box, Score: 0.9},
			Weight:    1.0,
			Required:  true,
		}},
	}
}

func baseKeyframe(idx int) planner.CropKeyframe {
	return planner.CropKeyframe{
		FrameIndex: idx,
		X:          656.25,
		Y:          0,
		Width:      607.5,
		Height:     1080,
		Method:     planner.MethodSignalFusion,
	}
}

func TestApplyDisabledIsNoop(t *testing.T) {
	p := &Planner{Settings: DefaultSettings(), SourceWidth: 1920, SourceHeight: 1080}

	kfs := []planner.CropKeyframe{baseKeyframe(0)}
	frames := []signal.FrameAnalysis{subjectFrame(0, signal.BBox{X: 900, Y: 400, W: 100, H: 100})}

	p.Apply(kfs, frames)

	if kfs[0].ZoomFactor != 1.0 {
		t.Errorf("Disabled zoom must still record factor 1.0, got %f", kfs[0].ZoomFactor)
	}
	if kfs[0].Width != 607.5 || kfs[0].Height != 1080 {
		t.Errorf("Disabled zoom resized the crop: %+v", kfs[0])
	}
}

func TestApplyZoomOutBoundedBySource(t *testing.T) {
	settings := DefaultSettings()
	settings.AdaptiveEnabled = true
	p := &Planner{Settings: settings, SourceWidth: 1920, SourceHeight: 1080}

	// Subject wider than the crop window. The crop already spans the full
	// source height, so the requested zoom-out has no room: the clamp takes
	// it back and the recorded factor must reflect that.
	kfs := []planner.CropKeyframe{baseKeyframe(0)}
	frames := []signal.FrameAnalysis{subjectFrame(0, signal.BBox{X: 500, Y: 300, W: 900, H: 200})}

	p.Apply(kfs, frames)

	kf := kfs[0]
	if kf.X < 0 || kf.X+kf.Width > 1920.001 || kf.Y < 0 || kf.Y+kf.Height > 1080.001 {
		t.Errorf("Zoom left the crop out of bounds: %+v", kf)
	}

	ratio := kf.Width / kf.Height
	if math.Abs(ratio-607.5/1080) > 0.001 {
		t.Errorf("Zoom changed the aspect ratio: %f", ratio)
	}
	if math.Abs(kf.ZoomFactor-kfBase().Width/kf.Width) > 0.001 {
		t.Errorf("Recorded factor %f does not match actual size %.1f", kf.ZoomFactor, kf.Width)
	}
}

func kfBase() planner.CropKeyframe { return baseKeyframe(0) }

func TestApplyOptimalFramingZoomsIn(t *testing.T) {
	settings := DefaultSettings()
	settings.AdaptiveEnabled = true
	settings.FocusPriorityMode = OptimalFraming
	p := &Planner{Settings: settings, SourceWidth: 1920, SourceHeight: 1080}

	kfs := []planner.CropKeyframe{baseKeyframe(0)}
	frames := []signal.FrameAnalysis{subjectFrame(0, signal.BBox{X: 900, Y: 500, W: 40, H: 40})}

	p.Apply(kfs, frames)

	kf := kfs[0]
	if kf.ZoomFactor != 2.0 {
		t.Errorf("Tiny subject should hit the max zoom factor, got %f", kf.ZoomFactor)
	}
	if math.Abs(kf.Width-607.5/2) > 0.001 {
		t.Errorf("Expected width %.2f, got %.2f", 607.5/2, kf.Width)
	}
	// Subject box [900..940]x[500..540] stays inside the tighter crop.
	if kf.X > 900 || kf.X+kf.Width < 940 || kf.Y > 500 || kf.Y+kf.Height < 540 {
		t.Errorf("Subject escapes the zoomed crop: %+v", kf)
	}
}

func TestApplyPreserveAllNeverZoomsIn(t *testing.T) {
	settings := DefaultSettings()
	settings.AdaptiveEnabled = true
	p := &Planner{Settings: settings, SourceWidth: 1920, SourceHeight: 1080}

	// Tiny subject: the fit factor would be far above 1.0.
	kfs := []planner.CropKeyframe{baseKeyframe(0)}
	frames := []signal.FrameAnalysis{subjectFrame(0, signal.BBox{X: 900, Y: 500, W: 40, H: 40})}

	p.Apply(kfs, frames)

	if kfs[0].ZoomFactor > 1.0 {
		t.Errorf("preserve_all must not zoom in, got %f", kfs[0].ZoomFactor)
	}
}

func TestApplySmartCropRange(t *testing.T) {
	settings := DefaultSettings()
	settings.AdaptiveEnabled = true
	settings.FocusPriorityMode = SmartCrop
	p := &Planner{Settings: settings, SourceWidth: 1920, SourceHeight: 1080}

	kfs := []planner.CropKeyframe{baseKeyframe(0), baseKeyframe(1)}
	frames := []signal.FrameAnalysis{
		subjectFrame(0, signal.BBox{X: 900, Y: 500, W: 40, H: 40}),   // tiny: wants deep zoom-in
		subjectFrame(1, signal.BBox{X: 200, Y: 100, W: 1500, H: 800}), // huge: wants deep zoom-out
	}

	p.Apply(kfs, frames)

	for _, kf := range kfs {
		if kf.ZoomFactor < 0.8-0.001 || kf.ZoomFactor > 1.2+0.001 {
			t.Errorf("smart_crop factor %f outside [0.8, 1.2]", kf.ZoomFactor)
		}
	}
}

func TestApplyNoSubjectKeepsUnitZoom(t *testing.T) {
	settings := DefaultSettings()
	settings.AdaptiveEnabled = true
	p := &Planner{Settings: settings, SourceWidth: 1920, SourceHeight: 1080}

	kfs := []planner.CropKeyframe{baseKeyframe(0)}
	frames := []signal.FrameAnalysis{{FrameIndex: 0}}

	p.Apply(kfs, frames)

	if kfs[0].ZoomFactor != 1.0 {
		t.Errorf("Frames without subjects must keep zoom 1.0, got %f", kfs[0].ZoomFactor)
	}
}
