package pipeline

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/reframe/internal/config"
	"github.com/ivlev/reframe/internal/detector"
	"github.com/ivlev/reframe/internal/motion"
	"github.com/ivlev/reframe/internal/planner"
	"github.com/ivlev/reframe/internal/scene"
	"github.com/ivlev/reframe/internal/signal"
	"github.com/ivlev/reframe/internal/stabilizer"
	"github.com/ivlev/reframe/internal/system"
	"github.com/ivlev/reframe/internal/trajectory"
	"github.com/ivlev/reframe/internal/zoom"
)

const buildVersion = "1.0"

// Pipeline runs the full planning pass: filter, segment, plan, stabilize,
// compensate, zoom. Stages run strictly in order; only the per-frame work
// inside a stage fans out.
type Pipeline struct {
	Config   *config.Config
	Catalog  *signal.Catalog
	Provider detector.Provider
	Motion   motion.VectorSource // nil skips camera-motion compensation
	Workers  int
}

// New wires a Pipeline from a validated config and a loaded provider.
func New(cfg *config.Config, provider detector.Provider, motionSrc motion.VectorSource) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	catalog, err := signal.NewCatalog(cfg.FocusMode)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		Config:   cfg,
		Catalog:  catalog,
		Provider: provider,
		Motion:   motionSrc,
		Workers:  system.AutoWorkers(cfg.Workers),
	}, nil
}

// Run executes the planning pass and returns the final trajectory.
func (p *Pipeline) Run(ctx context.Context) (*trajectory.Trajectory, error) {
	startTime := time.Now()

	indices := sampleIndices(p.Provider.FrameIndices(), p.Config.SampleRate)
	if len(indices) == 0 {
		return nil, fmt.Errorf("no sampled frames in detection input")
	}

	sw, sh := p.Provider.SourceSize()
	if p.Config.SourceWidth > 0 && p.Config.SourceHeight > 0 {
		sw, sh = p.Config.SourceWidth, p.Config.SourceHeight
	}
	sourceW, sourceH := float64(sw), float64(sh)

	ratio, err := config.ParseAspectRatio(p.Config.AspectRatio)
	if err != nil {
		return nil, err
	}

	fmt.Printf("[*] Source: %dx%d | Sampled frames: %d | Target: %s (%s)\n",
		sw, sh, len(indices), p.Config.AspectRatio, p.Catalog.Mode)

	filterStart := time.Now()
	frames, err := p.filterFrames(ctx, indices, sourceW, sourceH)
	if err != nil {
		return nil, err
	}
	filterTime := time.Since(filterStart)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	motionStart := time.Now()
	analyzer := motion.NewAnalyzer(p.Config.Motion.StaticThreshold, p.Config.Motion.ReferenceMagnitude)
	samples, err := analyzer.Analyze(ctx, frames, p.Motion, p.Workers)
	if err != nil {
		return nil, err
	}
	motionTime := time.Since(motionStart)

	planStart := time.Now()
	seg := scene.NewSegmenter(
		p.Config.Scene.DetectionDelta,
		p.Config.Scene.BoundaryInterval,
		p.Config.Scene.MinSceneDuration,
		p.Config.Scene.TrackingDriftRatio,
		sourceW,
	)
	scenes := seg.Segment(frames)

	pl := planner.New(sourceW, sourceH, ratio, p.Config.Zoom.SubjectPadding)
	path := pl.PlanScenes(scenes)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	st := stabilizer.NewStabilizer(
		p.Config.Stabilizer.WindowSize,
		p.Config.Stabilizer.MaxVelocity,
		p.Config.Stabilizer.ConfidenceThreshold,
		sourceW, sourceH,
	)
	path = st.Smooth(path)

	comp := &stabilizer.Compensator{
		Tolerance:    p.Config.Motion.Tolerance,
		SourceWidth:  sourceW,
		SourceHeight: sourceH,
	}
	comp.Apply(path, samples)

	zp := &zoom.Planner{
		Settings: zoom.Settings{
			MinZoomFactor:     p.Config.Zoom.MinZoomFactor,
			MaxZoomFactor:     p.Config.Zoom.MaxZoomFactor,
			AdaptiveEnabled:   p.Config.Zoom.AdaptiveEnabled,
			FocusPriorityMode: zoom.PriorityMode(p.Config.Zoom.FocusPriorityMode),
			SubjectPadding:    p.Config.Zoom.SubjectPadding,
		},
		SourceWidth:  sourceW,
		SourceHeight: sourceH,
	}
	zp.Apply(path, frames)

	// Every upstream stage clamps after itself, but the output contract is
	// checked here one final time.
	for i := range path {
		path[i].Clamp(sourceW, sourceH)
	}
	planTime := time.Since(planStart)

	totalTime := time.Since(startTime)
	stats := buildStats(frames, scenes, path, totalTime)

	if p.Config.ShowStats {
		fmt.Printf(
			"--- [PERFORMANCE REPORT] ---\n"+
				"Build: %s\n"+
				"Total Time: %.2fs\n"+
				"Filtering: %.2fs\n"+
				"Motion Analysis: %.2fs\n"+
				"Planning: %.2fs\n"+
				"Frames: %d | Scenes: %d | Accepted: %d\n"+
				"Subject Coverage: %.1f%%\n"+
				"----------------------------\n",
			buildVersion, totalTime.Seconds(), filterTime.Seconds(), motionTime.Seconds(), planTime.Seconds(),
			stats.FramesAnalyzed, stats.Scenes, stats.DetectionsAccepted,
			coverage(stats)*100,
		)
	}

	return &trajectory.Trajectory{
		Version:      buildVersion,
		SourceWidth:  sw,
		SourceHeight: sh,
		AspectRatio:  p.Config.AspectRatio,
		FocusMode:    p.Catalog.Mode,
		Keyframes:    path,
		Stats:        stats,
	}, nil
}

// filterFrames fans the per-frame fetch+filter out over the worker pool.
// Each frame is independent; the result slice is indexed by position so
// completion order does not matter. A provider error on one frame degrades
// that frame to zero detections instead of failing the run.
func (p *Pipeline) filterFrames(ctx context.Context, indices []int, sourceW, sourceH float64) ([]signal.FrameAnalysis, error) {
	frames := make([]signal.FrameAnalysis, len(indices))
	normalized := p.Provider.Normalized()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Workers)
	for i, idx := range indices {
		i, idx := i, idx
		g.Go(func() error {
			ts := p.Provider.Timestamp(idx)

			dets, err := p.Provider.Detections(ctx, idx)
			if err != nil {
				fmt.Printf("[!] Detections unavailable for frame %d: %v\n", idx, err)
				frames[i] = signal.FrameAnalysis{FrameIndex: idx, Timestamp: ts}
				return nil
			}

			if normalized {
				for j := range dets {
					dets[j].Box = dets[j].Box.Scale(sourceW, sourceH)
				}
			}

			frames[i] = p.Catalog.Filter(idx, ts, dets)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return frames, nil
}

// sampleIndices keeps every max(1, len/rate)-th frame when a rate cap is
// set, so dense dumps do not blow up the analysis cost.
func sampleIndices(indices []int, rate int) []int {
	if rate <= 0 || len(indices) <= rate {
		return indices
	}
	interval := len(indices) / rate
	if interval < 1 {
		interval = 1
	}
	sampled := make([]int, 0, rate+1)
	for i := 0; i < len(indices); i += interval {
		sampled = append(sampled, indices[i])
	}
	return sampled
}

func buildStats(frames []signal.FrameAnalysis, scenes []scene.Scene, path []planner.CropKeyframe, elapsed time.Duration) trajectory.Stats {
	stats := trajectory.Stats{
		FramesAnalyzed: len(frames),
		Scenes:         len(scenes),
		ElapsedSeconds: elapsed.Seconds(),
	}

	for _, f := range frames {
		stats.DetectionsAccepted += len(f.Detections)
		if f.HasRequired {
			stats.FramesWithSubject++
		}
		for _, d := range f.Detections {
			if stats.DetectionsByClass == nil {
				stats.DetectionsByClass = make(map[string]int)
			}
			stats.DetectionsByClass[string(d.Class)]++
		}
	}

	if len(path) > 0 {
		sum := 0.0
		for _, kf := range path {
			sum += kf.Confidence
		}
		stats.AverageConfidence = sum / float64(len(path))
	}

	return stats
}

func coverage(s trajectory.Stats) float64 {
	if s.FramesAnalyzed == 0 {
		return 0
	}
	return float64(s.FramesWithSubject) / float64(s.FramesAnalyzed)
}
