package detector

import (
	"context"
	"fmt"
	"sort"

	"github.com/ivlev/reframe/internal/signal"
)

// DumpDetection is one detection on the wire. Short msgpack keys match the
// compact encoding the detector sidecar emits.
type DumpDetection struct {
	Class string  `json:"class" msgpack:"c"`
	X     float64 `json:"x" msgpack:"x"`
	Y     float64 `json:"y" msgpack:"y"`
	W     float64 `json:"w" msgpack:"w"`
	H     float64 `json:"h" msgpack:"h"`
	Score float64 `json:"score" msgpack:"s"`
}

// DumpFrame is one sampled frame of a dump.
type DumpFrame struct {
	FrameIndex int             `json:"frame_idx" msgpack:"f"`
	Timestamp  float64         `json:"timestamp" msgpack:"t"`
	Detections []DumpDetection `json:"detections" msgpack:"d"`
}

// Dump is a full per-run detection dump as produced by the external
// detector: source geometry plus every sampled frame's boxes.
type Dump struct {
	SourceWidth  int         `json:"source_width" msgpack:"sw"`
	SourceHeight int         `json:"source_height" msgpack:"sh"`
	FPS          float64     `json:"fps" msgpack:"fps"`
	Normalized   bool        `json:"normalized" msgpack:"n"`
	Frames       []DumpFrame `json:"frames" msgpack:"fr"`
}

// DumpProvider serves a fully loaded dump. Frames missing from the dump are
// zero-detection frames, not errors.
type DumpProvider struct {
	dump    *Dump
	byIndex map[int]*DumpFrame
	indices []int
}

// FromDump wraps an in-memory dump, validating the geometry it declares.
func FromDump(d *Dump) (*DumpProvider, error) {
	if len(d.Frames) == 0 {
		return nil, fmt.Errorf("detection dump contains no frames")
	}
	if d.SourceWidth <= 0 || d.SourceHeight <= 0 {
		return nil, fmt.Errorf("detection dump declares invalid source size %dx%d", d.SourceWidth, d.SourceHeight)
	}

	byIndex := make(map[int]*DumpFrame, len(d.Frames))
	indices := make([]int, 0, len(d.Frames))
	for i := range d.Frames {
		f := &d.Frames[i]
		if _, dup := byIndex[f.FrameIndex]; dup {
			return nil, fmt.Errorf("detection dump repeats frame %d", f.FrameIndex)
		}
		byIndex[f.FrameIndex] = f
		indices = append(indices, f.FrameIndex)
	}
	sort.Ints(indices)

	return &DumpProvider{
		dump:    d,
		byIndex: byIndex,
		indices: indices,
	}, nil
}

// FrameIndices returns the sampled frame indices in ascending order.
func (p *DumpProvider) FrameIndices() []int { return p.indices }

// SourceSize returns the declared source dimensions.
func (p *DumpProvider) SourceSize() (int, int) { return p.dump.SourceWidth, p.dump.SourceHeight }

// FPS returns the declared frame rate, defaulting to 1 when absent.
func (p *DumpProvider) FPS() float64 {
	if p.dump.FPS <= 0 {
		return 1
	}
	return p.dump.FPS
}

// Normalized reports the dump's coordinate system.
func (p *DumpProvider) Normalized() bool { return p.dump.Normalized }

// Detections converts one frame's wire boxes to signal detections.
func (p *DumpProvider) Detections(_ context.Context, frameIndex int) ([]signal.Detection, error) {
	f, ok := p.byIndex[frameIndex]
	if !ok {
		return nil, nil
	}

	dets := make([]signal.Detection, 0, len(f.Detections))
	for _, d := range f.Detections {
		dets = append(dets, signal.Detection{
			Class: signal.Class(d.Class),
			Box:   signal.BBox{X: d.X, Y: d.Y, W: d.W, H: d.H},
			Score: d.Score,
		})
	}
	return dets, nil
}

// Timestamp returns a frame's dump timestamp when present, or derives it
// from the frame rate.
func (p *DumpProvider) Timestamp(frameIndex int) float64 {
	if f, ok := p.byIndex[frameIndex]; ok && f.Timestamp > 0 {
		return f.Timestamp
	}
	return float64(frameIndex) / p.FPS()
}
