package zoom

import (
	"github.com/ivlev/reframe/internal/planner"
	"github.com/ivlev/reframe/internal/signal"
)

// PriorityMode decides how aggressively the zoom may reframe subjects.
type PriorityMode string

const (
	// PreserveAll never crops tighter than showing every required subject.
	PreserveAll PriorityMode = "preserve_all"
	// SmartCrop allows mild reframing in both directions.
	SmartCrop PriorityMode = "smart_crop"
	// OptimalFraming applies no policy clamp beyond the absolute limits.
	OptimalFraming PriorityMode = "optimal_framing"
)

// Settings is the zoom configuration for a run. Not mutated while planning.
type Settings struct {
	MinZoomFactor     float64
	MaxZoomFactor     float64
	AdaptiveEnabled   bool
	FocusPriorityMode PriorityMode
	SubjectPadding    float64 // fraction of the crop dimension
}

// DefaultSettings returns the documented defaults: adaptive zoom off,
// preserve-all policy, 10% subject padding.
func DefaultSettings() Settings {
	return Settings{
		MinZoomFactor:     0.5,
		MaxZoomFactor:     2.0,
		AdaptiveEnabled:   false,
		FocusPriorityMode: PreserveAll,
		SubjectPadding:    0.1,
	}
}

// Planner derives per-frame zoom factors so required subjects plus padding
// fit the frame, subject to the focus-priority policy.
type Planner struct {
	Settings     Settings
	SourceWidth  float64
	SourceHeight float64
}

// Apply resizes each keyframe around its center by the planned zoom factor
// and re-clamps to source bounds. Frames without required subjects keep
// zoom 1.0 so the path never zooms onto emptiness. No-op unless adaptive
// zoom is enabled.
func (p *Planner) Apply(keyframes []planner.CropKeyframe, frames []signal.FrameAnalysis) {
	for i := range keyframes {
		if keyframes[i].ZoomFactor == 0 {
			keyframes[i].ZoomFactor = 1.0
		}
	}
	if !p.Settings.AdaptiveEnabled {
		return
	}

	byIndex := make(map[int]signal.FrameAnalysis, len(frames))
	for _, f := range frames {
		byIndex[f.FrameIndex] = f
	}

	for i := range keyframes {
		kf := &keyframes[i]

		f, ok := byIndex[kf.FrameIndex]
		if !ok {
			continue
		}
		bounds, ok := f.RequiredBounds()
		if !ok {
			continue
		}

		requiredW := bounds.W + 2*p.Settings.SubjectPadding*kf.Width
		requiredH := bounds.H + 2*p.Settings.SubjectPadding*kf.Height
		if requiredW <= 0 || requiredH <= 0 {
			continue
		}

		// Minimal zoom making the padded subject fit the target window.
		z := kf.Width / requiredW
		if kf.Height/requiredH < z {
			z = kf.Height / requiredH
		}

		z = p.applyPolicy(z)
		z = clamp(z, p.Settings.MinZoomFactor, p.Settings.MaxZoomFactor)

		cx, cy := kf.CenterX(), kf.CenterY()
		origWidth := kf.Width
		kf.Width /= z
		kf.Height /= z
		kf.SetCenter(cx, cy)
		kf.Clamp(p.SourceWidth, p.SourceHeight)
		// The clamp may shrink an oversized zoom-out back; record the factor
		// actually achieved, not the one requested.
		kf.ZoomFactor = origWidth / kf.Width
	}
}

func (p *Planner) applyPolicy(z float64) float64 {
	switch p.Settings.FocusPriorityMode {
	case PreserveAll:
		if z > 1.0 {
			z = 1.0
		}
	case SmartCrop:
		z = clamp(z, 0.8, 1.2)
	case OptimalFraming:
		// no policy clamp
	}
	return z
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
