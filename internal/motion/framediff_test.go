package motion

import (
	"context"
	"image"
	"image/color"
	"testing"
)

// syntheticFrames serves two gray frames where the second is the first
// shifted by (shiftX, shiftY).
type syntheticFrames struct {
	shiftX, shiftY int
	w, h           int
}

func (s *syntheticFrames) GrayFrame(_ context.Context, frameIndex int) (*image.Gray, error) {
	img := image.NewGray(image.Rect(0, 0, s.w, s.h))
	dx, dy := 0, 0
	if frameIndex > 0 {
		dx, dy = s.shiftX, s.shiftY
	}
	for y := 0; y < s.h; y++ {
		for x := 0; x < s.w; x++ {
			// Gradient pattern with enough structure for SAD matching.
			v := uint8(((x - dx) * 7) % 251)
			v += uint8(((y - dy) * 13) % 239)
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img, nil
}

func TestFrameDiffEstimator(t *testing.T) {
	src := &syntheticFrames{shiftX: 4, shiftY: -2, w: 160, h: 90}

	e := NewFrameDiffEstimator(src)
	e.ThumbWidth = 160 // no downscale: keep the shift exact

	v, factor, err := e.VectorBetween(context.Background(), 0, 1)
	if err != nil {
		t.Fatalf("VectorBetween failed: %v", err)
	}

	if abs(v.X-4) > 1.0 || abs(v.Y-(-2)) > 1.0 {
		t.Errorf("Expected shift ~(4, -2), got (%.1f, %.1f)", v.X, v.Y)
	}
	if factor >= 1.0 {
		t.Errorf("Frame-diff estimates must carry reduced confidence, got %f", factor)
	}

	t.Logf("Estimated vector (%.1f, %.1f) with factor %.2f", v.X, v.Y, factor)
}

func TestBestShiftZero(t *testing.T) {
	src := &syntheticFrames{shiftX: 0, shiftY: 0, w: 80, h: 45}
	e := NewFrameDiffEstimator(src)

	v, _, err := e.VectorBetween(context.Background(), 0, 1)
	if err != nil {
		t.Fatalf("VectorBetween failed: %v", err)
	}
	if v.X != 0 || v.Y != 0 {
		t.Errorf("Identical frames should give a zero vector, got (%.1f, %.1f)", v.X, v.Y)
	}
}
