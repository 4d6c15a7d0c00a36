package stabilizer

import (
	"math"
	"sort"

	"github.com/ivlev/reframe/internal/planner"
)

// Stabilizer converts a raw crop-point sequence into a jitter-free
// trajectory via three ordered phases: Gaussian window smoothing, a forward
// velocity clamp, and confidence-weighted interpolation. After the phases
// every rectangle is re-clamped to source bounds; phase outputs may drift
// outside near the edges and the bounds invariant is not optional.
type Stabilizer struct {
	WindowSize          int     // Gaussian window half-width, in keyframes
	MaxVelocity         float64 // max center distance per sampled frame, px
	ConfidenceThreshold float64 // below this a keyframe is blended with neighbors
	SourceWidth         float64
	SourceHeight        float64
}

// NewStabilizer creates a Stabilizer for the given source bounds.
func NewStabilizer(windowSize int, maxVelocity, confidenceThreshold, sourceWidth, sourceHeight float64) *Stabilizer {
	return &Stabilizer{
		WindowSize:          windowSize,
		MaxVelocity:         maxVelocity,
		ConfidenceThreshold: confidenceThreshold,
		SourceWidth:         sourceWidth,
		SourceHeight:        sourceHeight,
	}
}

// Smooth runs the three phases over a copy of the keyframes, ordered by
// timestamp, and returns the stabilized sequence.
func (s *Stabilizer) Smooth(keyframes []planner.CropKeyframe) []planner.CropKeyframe {
	if len(keyframes) == 0 {
		return nil
	}

	out := make([]planner.CropKeyframe, len(keyframes))
	copy(out, keyframes)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})

	s.gaussianSmooth(out)
	s.clampVelocity(out)
	s.blendLowConfidence(out)

	for i := range out {
		out[i].Clamp(s.SourceWidth, s.SourceHeight)
	}
	return out
}

// gaussianSmooth replaces each position with the exp(-d²/(2W)) weighted
// average of its window, removing single-frame jitter while keeping slow
// camera intent.
func (s *Stabilizer) gaussianSmooth(kfs []planner.CropKeyframe) {
	w := s.WindowSize
	if w < 1 || len(kfs) < 2 {
		return
	}

	type pos struct{ x, y float64 }
	smoothed := make([]pos, len(kfs))

	for i := range kfs {
		lo := i - w
		if lo < 0 {
			lo = 0
		}
		hi := i + w
		if hi > len(kfs)-1 {
			hi = len(kfs) - 1
		}

		var sumW, sumX, sumY float64
		for j := lo; j <= hi; j++ {
			d := float64(i - j)
			weight := math.Exp(-(d * d) / (2 * float64(w)))
			sumX += kfs[j].X * weight
			sumY += kfs[j].Y * weight
			sumW += weight
		}
		smoothed[i] = pos{x: sumX / sumW, y: sumY / sumW}
	}

	for i := range kfs {
		kfs[i].X = smoothed[i].x
		kfs[i].Y = smoothed[i].y
	}
}

// clampVelocity walks forward and scales down any step whose center moves
// farther than MaxVelocity, so no single step reads as a cut.
func (s *Stabilizer) clampVelocity(kfs []planner.CropKeyframe) {
	if s.MaxVelocity <= 0 {
		return
	}
	for i := 1; i < len(kfs); i++ {
		dx := kfs[i].CenterX() - kfs[i-1].CenterX()
		dy := kfs[i].CenterY() - kfs[i-1].CenterY()
		dist := math.Hypot(dx, dy)
		if dist <= s.MaxVelocity {
			continue
		}
		scale := s.MaxVelocity / dist
		kfs[i].SetCenter(kfs[i-1].CenterX()+dx*scale, kfs[i-1].CenterY()+dy*scale)
	}
}

// blendLowConfidence pulls keyframes below the confidence threshold toward
// the average of their immediate neighbors: position·conf + avg·(1-conf).
// Low-confidence detections are trusted less than their stable neighbors.
func (s *Stabilizer) blendLowConfidence(kfs []planner.CropKeyframe) {
	if len(kfs) < 2 {
		return
	}
	for i := range kfs {
		conf := kfs[i].Confidence
		if conf >= s.ConfidenceThreshold {
			continue
		}
		if conf < 0 {
			conf = 0
		}

		var sumX, sumY float64
		n := 0.0
		if i > 0 {
			sumX += kfs[i-1].X
			sumY += kfs[i-1].Y
			n++
		}
		if i < len(kfs)-1 {
			sumX += kfs[i+1].X
			sumY += kfs[i+1].Y
			n++
		}
		if n == 0 {
			continue
		}

		avgX, avgY := sumX/n, sumY/n
		kfs[i].X = kfs[i].X*conf + avgX*(1-conf)
		kfs[i].Y = kfs[i].Y*conf + avgY*(1-conf)
	}
}
