package signal

// Class identifies what kind of content a detection describes.
type Class string

const (
	ClassFace   Class = "face"
	ClassPerson Class = "person"
	ClassObject Class = "object"
	ClassText   Class = "text"
	ClassLogo   Class = "logo"
	ClassPet    Class = "pet"
	ClassCar    Class = "car"
)

// BBox is an axis-aligned bounding box in source-pixel space (or normalized
// 0-1 space before ingest conversion).
type BBox struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	W float64 `yaml:"w" json:"w"`
	H float64 `yaml:"h" json:"h"`
}

// Center returns the box midpoint.
func (b BBox) Center() (float64, float64) {
	return b.X + b.W/2, b.Y + b.H/2
}

// MaxX returns the right edge.
func (b BBox) MaxX() float64 { return b.X + b.W }

// MaxY returns the bottom edge.
func (b BBox) MaxY() float64 { return b.Y + b.H }

// Area returns the box area.
func (b BBox) Area() float64 { return b.W * b.H }

// Union returns the smallest box containing both b and o.
func (b BBox) Union(o BBox) BBox {
	minX := b.X
	if o.X < minX {
		minX = o.X
	}
	minY := b.Y
	if o.Y < minY {
		minY = o.Y
	}
	maxX := b.MaxX()
	if o.MaxX() > maxX {
		maxX = o.MaxX()
	}
	maxY := b.MaxY()
	if o.MaxY() > maxY {
		maxY = o.MaxY()
	}
	return BBox{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Scale multiplies the box by per-axis factors. Used once at ingest to turn
// normalized detector output into source pixels.
func (b BBox) Scale(sx, sy float64) BBox {
	return BBox{X: b.X * sx, Y: b.Y * sy, W: b.W * sx, H: b.H * sy}
}

// Detection is one raw box from the external detector. Immutable.
type Detection struct {
	Class Class   `yaml:"class" json:"class"`
	Box   BBox    `yaml:"bbox" json:"bbox"`
	Score float64 `yaml:"score" json:"score"`
}

// Accepted is a detection that passed the filter, tagged with the rule that
// admitted it.
type Accepted struct {
	Detection
	RuleName string
	Weight   float64
	Required bool
}

// FrameAnalysis is the filter output for one sampled frame.
type FrameAnalysis struct {
	FrameIndex int
	Timestamp  float64
	Detections []Accepted
	// HasRequired is false when the catalog carries required rules and none
	// matched; the planner must fall back rather than trust this frame.
	HasRequired bool
	SceneChange bool
}

// Centroid returns the weight*score weighted center of the accepted
// detections, and false when the frame has none.
func (f FrameAnalysis) Centroid() (float64, float64, bool) {
	var sumW, sumX, sumY float64
	for _, d := range f.Detections {
		w := d.Weight * d.Score
		if w <= 0 {
			continue
		}
		cx, cy := d.Box.Center()
		sumX += cx * w
		sumY += cy * w
		sumW += w
	}
	if sumW == 0 {
		return 0, 0, false
	}
	return sumX / sumW, sumY / sumW, true
}

// RequiredBounds returns the union box of required detections, and false
// when the frame has none.
func (f FrameAnalysis) RequiredBounds() (BBox, bool) {
	var bounds BBox
	found := false
	for _, d := range f.Detections {
		if !d.Required {
			continue
		}
		if !found {
			bounds = d.Box
			found = true
		} else {
			bounds = bounds.Union(d.Box)
		}
	}
	return bounds, found
}
