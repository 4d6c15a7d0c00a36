package planner

import (
	"github.com/ivlev/reframe/internal/scene"
	"github.com/ivlev/reframe/internal/signal"
)

const (
	// Confidence assigned to crops with no signal behind them.
	fallbackConfidence = 0.1
	// Degenerate-interval fallbacks keep half their fused confidence.
	degeneratePenalty = 0.5
	// Confidence decay per held frame, matching lost-subject tracking decay.
	holdDecay = 0.8
)

// Planner computes the initial crop rectangle per scene/frame. The target
// crop size is fixed for the whole run; the zoom stage resizes later.
type Planner struct {
	SourceWidth    float64
	SourceHeight   float64
	TargetWidth    float64
	TargetHeight   float64
	SubjectPadding float64 // fraction of the crop dimension kept around required subjects
}

// New creates a Planner for the given source and target aspect ratio.
func New(sourceWidth, sourceHeight, targetRatio, subjectPadding float64) *Planner {
	tw, th := TargetCropSize(sourceWidth, sourceHeight, targetRatio)
	return &Planner{
		SourceWidth:    sourceWidth,
		SourceHeight:   sourceHeight,
		TargetWidth:    tw,
		TargetHeight:   th,
		SubjectPadding: subjectPadding,
	}
}

// PlanScenes plans every scene and concatenates the keyframes in time order.
func (p *Planner) PlanScenes(scenes []scene.Scene) []CropKeyframe {
	var path []CropKeyframe
	for _, sc := range scenes {
		path = append(path, p.PlanScene(sc)...)
	}
	return path
}

// PlanScene produces one keyframe per sampled frame of the scene, using the
// algorithm selected by the scene's camera motion.
func (p *Planner) PlanScene(sc scene.Scene) []CropKeyframe {
	if sc.CameraMotion == scene.MotionTracking {
		return p.planTracking(sc)
	}
	return p.planStable(sc)
}

// planStable fuses every accepted detection of the scene into a single crop
// rectangle and repeats it for each frame. Required subjects are guaranteed
// visible via the valid-origin interval; when no window can contain them the
// crop centers on the subject bounds instead (documented widening fallback).
func (p *Planner) planStable(sc scene.Scene) []CropKeyframe {
	centroidX, centroidY, confidence, hasSignal := p.fuseScene(sc)
	bounds, hasRequired := p.sceneRequiredBounds(sc)

	var x, y float64
	method := MethodSignalFusion

	switch {
	case !hasSignal:
		// No detections anywhere in the scene: stable center crop.
		x = (p.SourceWidth - p.TargetWidth) / 2
		y = (p.SourceHeight - p.TargetHeight) / 2
		method = MethodCenterFallback
		confidence = fallbackConfidence

	case hasRequired:
		padX := p.SubjectPadding * p.TargetWidth
		padY := p.SubjectPadding * p.TargetHeight

		minX, maxX, okX := originInterval(bounds.X, bounds.MaxX(), padX, p.TargetWidth, p.SourceWidth)
		minY, maxY, okY := originInterval(bounds.Y, bounds.MaxY(), padY, p.TargetHeight, p.SourceHeight)

		if okX && okY {
			x = clampRange(centroidX-p.TargetWidth/2, minX, maxX)
			y = clampRange(centroidY-p.TargetHeight/2, minY, maxY)
		} else {
			// Subject too large for the window: center on its bounds.
			bcx, bcy := bounds.Center()
			x = bcx - p.TargetWidth/2
			y = bcy - p.TargetHeight/2
			method = MethodCenterFallback
			confidence *= degeneratePenalty
		}

	default:
		x = centroidX - p.TargetWidth/2
		y = centroidY - p.TargetHeight/2
	}

	path := make([]CropKeyframe, 0, len(sc.Frames))
	for _, f := range sc.Frames {
		kf := CropKeyframe{
			FrameIndex: f.FrameIndex,
			Timestamp:  f.Timestamp,
			X:          x,
			Y:          y,
			Width:      p.TargetWidth,
			Height:     p.TargetHeight,
			Method:     method,
			Confidence: frameConfidence(f, confidence),
		}
		kf.Clamp(p.SourceWidth, p.SourceHeight)
		path = append(path, kf)
	}
	return path
}

// planTracking follows the single strongest detection per frame. Frames with
// nothing accepted reuse the previous crop unchanged (hold-last) so the path
// never snaps; leading empty frames fall back to the center crop.
func (p *Planner) planTracking(sc scene.Scene) []CropKeyframe {
	path := make([]CropKeyframe, 0, len(sc.Frames))

	for _, f := range sc.Frames {
		best, ok := bestDetection(f)

		var kf CropKeyframe
		switch {
		case ok:
			cx, cy := best.Box.Center()
			kf = CropKeyframe{
				Width:      p.TargetWidth,
				Height:     p.TargetHeight,
				Method:     MethodSignalFusion,
				Confidence: best.Score,
			}
			kf.SetCenter(cx, cy)

		case len(path) > 0:
			kf = path[len(path)-1]
			kf.Method = MethodHoldLast
			kf.Confidence *= holdDecay

		default:
			kf = CropKeyframe{
				X:          (p.SourceWidth - p.TargetWidth) / 2,
				Y:          (p.SourceHeight - p.TargetHeight) / 2,
				Width:      p.TargetWidth,
				Height:     p.TargetHeight,
				Method:     MethodCenterFallback,
				Confidence: fallbackConfidence,
			}
		}

		kf.FrameIndex = f.FrameIndex
		kf.Timestamp = f.Timestamp
		kf.Clamp(p.SourceWidth, p.SourceHeight)
		path = append(path, kf)
	}
	return path
}

// fuseScene computes the confidence-weighted centroid over every accepted
// detection of the scene, plus the mean score used as fused confidence.
func (p *Planner) fuseScene(sc scene.Scene) (cx, cy, confidence float64, ok bool) {
	var sumW, sumX, sumY, sumScore float64
	n := 0
	for _, f := range sc.Frames {
		for _, d := range f.Detections {
			w := d.Weight * d.Score
			if w <= 0 {
				continue
			}
			dx, dy := d.Box.Center()
			sumX += dx * w
			sumY += dy * w
			sumW += w
			sumScore += d.Score
			n++
		}
	}
	if sumW == 0 {
		return 0, 0, 0, false
	}
	return sumX / sumW, sumY / sumW, sumScore / float64(n), true
}

func (p *Planner) sceneRequiredBounds(sc scene.Scene) (signal.BBox, bool) {
	var bounds signal.BBox
	found := false
	for _, f := range sc.Frames {
		b, ok := f.RequiredBounds()
		if !ok {
			continue
		}
		if !found {
			bounds = b
			found = true
		} else {
			bounds = bounds.Union(b)
		}
	}
	return bounds, found
}

// originInterval computes the valid crop-origin range so a window of size
// target, padded by pad, fully contains [lo, hi]. The second return marks a
// degenerate (inverted) interval: the subject does not fit.
func originInterval(lo, hi, pad, target, source float64) (float64, float64, bool) {
	min := hi + pad - target
	max := lo - pad
	if min < 0 {
		min = 0
	}
	if max > source-target {
		max = source - target
	}
	if min > max {
		return 0, 0, false
	}
	return min, max, true
}

func clampRange(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// frameConfidence gives frames that carry their own signal the fused scene
// confidence, and frames without any a decayed share of it, so confidence
// visibly drops where the crop is coasting.
func frameConfidence(f signal.FrameAnalysis, fused float64) float64 {
	if len(f.Detections) > 0 {
		return fused
	}
	return fused * degeneratePenalty
}

// bestDetection picks the highest weight*score detection of a frame.
func bestDetection(f signal.FrameAnalysis) (signal.Accepted, bool) {
	bestIdx := -1
	bestScore := 0.0
	for i, d := range f.Detections {
		s := d.Weight * d.Score
		if bestIdx == -1 || s > bestScore {
			bestIdx = i
			bestScore = s
		}
	}
	if bestIdx == -1 {
		return signal.Accepted{}, false
	}
	return f.Detections[bestIdx], true
}
