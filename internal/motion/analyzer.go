package motion

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/reframe/internal/signal"
)

// Type classifies the camera movement between two consecutive frames.
type Type string

const (
	TypeStatic  Type = "static"
	TypePan     Type = "pan"
	TypeTilt    Type = "tilt"
	TypeZoom    Type = "zoom"
	TypeShake   Type = "shake"
	TypeComplex Type = "complex"
)

// Vector is a 2-D camera displacement in source pixels.
type Vector struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Magnitude returns the Euclidean length.
func (v Vector) Magnitude() float64 { return math.Hypot(v.X, v.Y) }

// Sample describes the estimated camera motion for one frame pair. Derived
// independently per pair; read-only input to compensation.
type Sample struct {
	FrameIndex    int
	Timestamp     float64
	Vector        Vector
	Magnitude     float64
	RotationAngle float64
	ScaleChange   float64
	Confidence    float64
	Type          Type
}

// VectorSource supplies raw motion vectors for a frame pair, either from an
// external optical-flow collaborator or the built-in frame-difference
// estimator. The confidence factor scales the analyzer's own confidence:
// 1.0 for a real flow source, lower for coarse estimates.
type VectorSource interface {
	VectorBetween(ctx context.Context, prevFrame, nextFrame int) (Vector, float64, error)
}

// Analyzer turns raw vectors into classified motion samples. Purely
// observational: it never changes a crop itself.
type Analyzer struct {
	StaticThreshold    float64 // px; below this the pair is static
	ReferenceMagnitude float64 // px; magnitude at which confidence saturates
}

// NewAnalyzer creates an Analyzer with the given thresholds.
func NewAnalyzer(staticThreshold, referenceMagnitude float64) *Analyzer {
	return &Analyzer{
		StaticThreshold:    staticThreshold,
		ReferenceMagnitude: referenceMagnitude,
	}
}

// Classify maps a displacement to a motion type. A 2x-dominant axis reads as
// pan or tilt; large magnitude without axis dominance as shake; both axes
// above threshold as complex; the remainder as zoom.
func (a *Analyzer) Classify(v Vector) Type {
	mag := v.Magnitude()
	if mag < a.StaticThreshold {
		return TypeStatic
	}

	dx, dy := math.Abs(v.X), math.Abs(v.Y)
	switch {
	case dx >= 2*dy:
		return TypePan
	case dy >= 2*dx:
		return TypeTilt
	case mag > 3*a.StaticThreshold:
		return TypeShake
	case dx > a.StaticThreshold && dy > a.StaticThreshold:
		return TypeComplex
	default:
		return TypeZoom
	}
}

// Sample builds a classified sample for a frame pair. confidenceFactor comes
// from the vector source (1.0 for real flow, less for estimates).
func (a *Analyzer) Sample(frameIndex int, timestamp float64, v Vector, scaleChange, confidenceFactor float64) Sample {
	mag := v.Magnitude()
	conf := 1.0
	if a.ReferenceMagnitude > 0 {
		conf = math.Min(1.0, mag/a.ReferenceMagnitude)
	}
	return Sample{
		FrameIndex:    frameIndex,
		Timestamp:     timestamp,
		Vector:        v,
		Magnitude:     mag,
		RotationAngle: math.Atan2(v.Y, v.X),
		ScaleChange:   scaleChange,
		Confidence:    conf * confidenceFactor,
		Type:          a.Classify(v),
	}
}

// Analyze produces one sample per consecutive frame pair, fanning the pairs
// out over at most workers goroutines. Each pair depends only on its own
// inputs; the result slice is indexed by pair, so completion order does not
// matter. A source failure for a pair degrades to a zero-confidence static
// sample rather than aborting the pass.
func (a *Analyzer) Analyze(ctx context.Context, frames []signal.FrameAnalysis, src VectorSource, workers int) ([]Sample, error) {
	if src == nil || len(frames) < 2 {
		return nil, nil
	}
	if workers < 1 {
		workers = 1
	}

	samples := make([]Sample, len(frames)-1)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 1; i < len(frames); i++ {
		i := i
		g.Go(func() error {
			v, factor, err := src.VectorBetween(ctx, frames[i-1].FrameIndex, frames[i].FrameIndex)
			if err != nil {
				samples[i-1] = Sample{
					FrameIndex: frames[i].FrameIndex,
					Timestamp:  frames[i].Timestamp,
					Type:       TypeStatic,
				}
				return nil
			}
			samples[i-1] = a.Sample(frames[i].FrameIndex, frames[i].Timestamp, v, 0, factor)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}
