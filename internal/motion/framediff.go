package motion

import (
	"context"
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"
)

// FrameProvider supplies grayscale frames for the fallback estimator. The
// decode side lives with the caller; this package only consumes pixels.
type FrameProvider interface {
	GrayFrame(ctx context.Context, frameIndex int) (*image.Gray, error)
}

const (
	// Estimates from coarse frame differencing are trusted half as much as
	// vectors from a real optical-flow collaborator.
	frameDiffConfidence = 0.5

	defaultThumbWidth   = 160
	defaultSearchRadius = 8
)

// FrameDiffEstimator is the built-in VectorSource used when no optical-flow
// collaborator is configured. It downscales both frames and finds the
// integer shift minimizing the sum of absolute differences.
type FrameDiffEstimator struct {
	Provider     FrameProvider
	ThumbWidth   int // downscale target width
	SearchRadius int // max shift tried per axis, in thumb pixels
}

// NewFrameDiffEstimator creates an estimator with default search settings.
func NewFrameDiffEstimator(provider FrameProvider) *FrameDiffEstimator {
	return &FrameDiffEstimator{
		Provider:     provider,
		ThumbWidth:   defaultThumbWidth,
		SearchRadius: defaultSearchRadius,
	}
}

// VectorBetween estimates the camera displacement between two frames,
// scaled back to source pixels, with the reduced frame-diff confidence.
func (e *FrameDiffEstimator) VectorBetween(ctx context.Context, prevFrame, nextFrame int) (Vector, float64, error) {
	prev, err := e.Provider.GrayFrame(ctx, prevFrame)
	if err != nil {
		return Vector{}, 0, fmt.Errorf("frame %d: %w", prevFrame, err)
	}
	next, err := e.Provider.GrayFrame(ctx, nextFrame)
	if err != nil {
		return Vector{}, 0, fmt.Errorf("frame %d: %w", nextFrame, err)
	}

	sourceWidth := prev.Bounds().Dx()
	if sourceWidth == 0 || prev.Bounds() != next.Bounds() {
		return Vector{}, 0, fmt.Errorf("frame pair %d/%d has mismatched bounds", prevFrame, nextFrame)
	}

	prevThumb := e.downscale(prev)
	nextThumb := e.downscale(next)

	dx, dy := bestShift(prevThumb, nextThumb, e.SearchRadius)

	// Back to source scale. The camera motion is the inverse of the shift
	// that maps prev onto next content.
	scale := float64(sourceWidth) / float64(prevThumb.Bounds().Dx())
	return Vector{X: float64(dx) * scale, Y: float64(dy) * scale}, frameDiffConfidence, nil
}

func (e *FrameDiffEstimator) downscale(src *image.Gray) *image.Gray {
	w := e.ThumbWidth
	if w <= 0 {
		w = defaultThumbWidth
	}
	if src.Bounds().Dx() <= w {
		return src
	}
	h := src.Bounds().Dy() * w / src.Bounds().Dx()
	if h < 1 {
		h = 1
	}
	dst := image.NewGray(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// bestShift finds the integer (dx, dy) within the radius minimizing the mean
// absolute difference between prev shifted by (dx, dy) and next.
func bestShift(prev, next *image.Gray, radius int) (int, int) {
	if radius < 1 {
		radius = 1
	}

	bestDx, bestDy := 0, 0
	bestCost := -1.0

	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			cost := shiftCost(prev, next, dx, dy)
			if cost < 0 {
				continue
			}
			if bestCost < 0 || cost < bestCost {
				bestCost = cost
				bestDx, bestDy = dx, dy
			}
		}
	}
	return bestDx, bestDy
}

// shiftCost returns the mean absolute difference over the overlap region, or
// -1 when the shift leaves no overlap.
func shiftCost(prev, next *image.Gray, dx, dy int) float64 {
	b := prev.Bounds()
	w, h := b.Dx(), b.Dy()

	x0, x1 := 0, w
	y0, y1 := 0, h
	if dx > 0 {
		x0 = dx
	} else {
		x1 = w + dx
	}
	if dy > 0 {
		y0 = dy
	} else {
		y1 = h + dy
	}
	if x0 >= x1 || y0 >= y1 {
		return -1
	}

	var sum, count float64
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			p := prev.GrayAt(x-dx, y-dy).Y
			n := next.GrayAt(x, y).Y
			d := int(p) - int(n)
			if d < 0 {
				d = -d
			}
			sum += float64(d)
			count++
		}
	}
	return sum / count
}
