package motion

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"
)

// DirFrameProvider serves grayscale frames from a directory of extracted
// stills named by the pattern, e.g. "frame_%06d.png". The extraction itself
// belongs to the rendering collaborator; only decoded pixels enter here.
type DirFrameProvider struct {
	Dir     string
	Pattern string
}

// NewDirFrameProvider creates a provider over dir. An empty pattern defaults
// to "frame_%06d.png".
func NewDirFrameProvider(dir, pattern string) *DirFrameProvider {
	if pattern == "" {
		pattern = "frame_%06d.png"
	}
	return &DirFrameProvider{Dir: dir, Pattern: pattern}
}

// GrayFrame decodes one frame file and converts it to grayscale.
func (p *DirFrameProvider) GrayFrame(ctx context.Context, frameIndex int) (*image.Gray, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(p.Dir, fmt.Sprintf(p.Pattern, frameIndex))
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	if gray, ok := img.(*image.Gray); ok {
		return gray, nil
	}
	gray := image.NewGray(img.Bounds())
	xdraw.Draw(gray, gray.Bounds(), img, img.Bounds().Min, xdraw.Src)
	return gray, nil
}
