package stabilizer

import (
	"math"

	"github.com/ivlev/reframe/internal/motion"
	"github.com/ivlev/reframe/internal/planner"
)

// compensationFractions is the share of the camera's own motion subtracted
// from the crop position per motion type. A pan the operator already
// performed must not be counted again by the crop path; shake gets the
// strongest correction, deliberate zooms none.
var compensationFractions = map[motion.Type]float64{
	motion.TypePan:     0.3,
	motion.TypeTilt:    0.3,
	motion.TypeShake:   0.5,
	motion.TypeComplex: 0.2,
	motion.TypeStatic:  0,
	motion.TypeZoom:    0,
}

// Compensator subtracts a motion-type-specific fraction of the camera
// motion from each keyframe, using the motion sample nearest in time.
type Compensator struct {
	Tolerance    float64 // seconds; samples farther than this are ignored
	SourceWidth  float64
	SourceHeight float64
}

// Apply compensates the keyframes in place against the given samples, then
// re-clamps each rectangle to source bounds. Samples must be time-ordered.
func (c *Compensator) Apply(keyframes []planner.CropKeyframe, samples []motion.Sample) {
	if len(samples) == 0 {
		return
	}

	si := 0
	for i := range keyframes {
		t := keyframes[i].Timestamp

		// Samples and keyframes are both time-ordered; advance a cursor
		// instead of searching from scratch.
		for si < len(samples)-1 &&
			math.Abs(samples[si+1].Timestamp-t) <= math.Abs(samples[si].Timestamp-t) {
			si++
		}

		sample := samples[si]
		if math.Abs(sample.Timestamp-t) > c.Tolerance {
			continue
		}

		fraction := compensationFractions[sample.Type]
		if fraction == 0 {
			continue
		}

		keyframes[i].X -= sample.Vector.X * fraction
		keyframes[i].Y -= sample.Vector.Y * fraction
		keyframes[i].Clamp(c.SourceWidth, c.SourceHeight)
	}
}
