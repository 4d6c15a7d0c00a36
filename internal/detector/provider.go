package detector

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ivlev/reframe/internal/signal"
)

// Provider is the boundary to the external detector collaborator. It hands
// the pipeline raw detections per sampled frame; parsing, repair and wire
// formats stay on this side of the boundary.
type Provider interface {
	// FrameIndices returns the sampled frame indices of the run, sorted.
	FrameIndices() []int
	// Timestamp returns the timestamp of a sampled frame in seconds.
	Timestamp(frameIndex int) float64
	// SourceSize returns the source dimensions in pixels.
	SourceSize() (int, int)
	// FPS returns the sampled frame rate used for timestamps.
	FPS() float64
	// Normalized reports whether boxes are in 0-1 coordinates. Fixed for
	// the whole run.
	Normalized() bool
	// Detections returns the raw detections of one frame. An error means
	// an upstream gap for that frame only; the run continues with it
	// treated as a zero-detection frame.
	Detections(ctx context.Context, frameIndex int) ([]signal.Detection, error)
}

// NewProvider creates a provider based on the specified variant. An empty
// variant picks by file extension.
func NewProvider(variant, path string) (Provider, error) {
	if variant == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".msgpack", ".mp":
			variant = "msgpack"
		default:
			variant = "json"
		}
	}

	switch variant {
	case "json":
		return NewJSONFileProvider(path)
	case "msgpack":
		return NewMsgpackFileProvider(path)
	case "grpc":
		return nil, fmt.Errorf("grpc detector transport not yet implemented")
	default:
		return nil, fmt.Errorf("unknown detector variant: %s", variant)
	}
}
