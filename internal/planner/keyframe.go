package planner

// Provenance tags carried on every keyframe so downstream stages and
// consumers can tell fused positions from fallbacks.
const (
	MethodSignalFusion   = "signal_fusion"
	MethodCenterFallback = "center_fallback"
	MethodHoldLast       = "hold_last"
)

// CropKeyframe is one crop rectangle of the trajectory, in source pixels.
type CropKeyframe struct {
	FrameIndex int     `yaml:"frame" json:"frame"`
	Timestamp  float64 `yaml:"time" json:"time"`
	X          float64 `yaml:"x" json:"x"`
	Y          float64 `yaml:"y" json:"y"`
	Width      float64 `yaml:"w" json:"w"`
	Height     float64 `yaml:"h" json:"h"`
	Confidence float64 `yaml:"confidence" json:"confidence"`
	Method     string  `yaml:"method" json:"method"`
	ZoomFactor float64 `yaml:"zoom,omitempty" json:"zoom,omitempty"`
}

// CenterX returns the horizontal crop center.
func (k CropKeyframe) CenterX() float64 { return k.X + k.Width/2 }

// CenterY returns the vertical crop center.
func (k CropKeyframe) CenterY() float64 { return k.Y + k.Height/2 }

// SetCenter moves the rectangle so its center lands on (cx, cy).
func (k *CropKeyframe) SetCenter(cx, cy float64) {
	k.X = cx - k.Width/2
	k.Y = cy - k.Height/2
}

// Clamp forces the rectangle inside the source bounds. The size is reduced
// first when it exceeds a source dimension, uniformly on both axes so the
// aspect ratio survives.
func (k *CropKeyframe) Clamp(sourceWidth, sourceHeight float64) {
	if k.Width > sourceWidth || k.Height > sourceHeight {
		scale := sourceWidth / k.Width
		if sourceHeight/k.Height < scale {
			scale = sourceHeight / k.Height
		}
		cx, cy := k.CenterX(), k.CenterY()
		k.Width *= scale
		k.Height *= scale
		k.SetCenter(cx, cy)
	}

	if k.X < 0 {
		k.X = 0
	}
	if k.Y < 0 {
		k.Y = 0
	}
	if k.X+k.Width > sourceWidth {
		k.X = sourceWidth - k.Width
	}
	if k.Y+k.Height > sourceHeight {
		k.Y = sourceHeight - k.Height
	}
}

// TargetCropSize derives the crop dimensions for a target aspect ratio by
// cropping exactly one dimension of the source: height is kept when the
// target is narrower than the source, width when it is wider.
func TargetCropSize(sourceWidth, sourceHeight, targetRatio float64) (float64, float64) {
	currentRatio := sourceWidth / sourceHeight
	if targetRatio < currentRatio {
		return sourceHeight * targetRatio, sourceHeight
	}
	return sourceWidth, sourceWidth / targetRatio
}
