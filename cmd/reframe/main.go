package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ivlev/reframe/internal/config"
	"github.com/ivlev/reframe/internal/detector"
	"github.com/ivlev/reframe/internal/motion"
	"github.com/ivlev/reframe/internal/pipeline"
	"github.com/ivlev/reframe/internal/system"
	"github.com/ivlev/reframe/internal/trajectory"
)

func main() {
	godotenv.Load()
	system.InitResourceLimits()

	dirs := []string{"input/detections", "output"}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	inputPtr := flag.String("input", "", "Path to a detection dump, JSON or msgpack (default: latest file in input/detections/)")
	outputPtr := flag.String("output", "", "Path to the trajectory YAML (default: generated in output/)")
	configPtr := flag.String("config", "", "Path to a YAML config file")
	aspectPtr := flag.String("aspect", "", "Target aspect ratio: 9:16, 16:9, 1:1, 4:3")
	focusPtr := flag.String("focus", "", "Focus mode: face, person, object, text, auto")
	framesPtr := flag.String("frames", "", "Directory of extracted frame stills for camera-motion analysis (optional)")
	framePatternPtr := flag.String("frame-pattern", "frame_%06d.png", "Filename pattern of extracted frames")
	samplePtr := flag.Int("sample-rate", 0, "Cap on analyzed frames; keeps every max(1, n/rate)-th frame (0 = all)")
	workersPtr := flag.Int("workers", 0, "Worker pool size (0 = auto-size from the host)")
	zoomPtr := flag.Bool("zoom", false, "Enable adaptive zoom")
	filterFPSPtr := flag.Int("filter-fps", 0, "Print an FFmpeg crop filter for the given output FPS")
	statsPtr := flag.Bool("stats", false, "Print a performance report")

	flag.Parse()

	cfg := config.Default()
	if *configPtr != "" {
		loaded, err := config.Load(*configPtr)
		if err != nil {
			log.Fatalf("[-] Config error: %v", err)
		}
		cfg = loaded
	}

	if *aspectPtr != "" {
		cfg.AspectRatio = *aspectPtr
	}
	if *focusPtr != "" {
		cfg.FocusMode = *focusPtr
	}
	if *samplePtr > 0 {
		cfg.SampleRate = *samplePtr
	}
	if *workersPtr > 0 {
		cfg.Workers = *workersPtr
	}
	if *zoomPtr {
		cfg.Zoom.AdaptiveEnabled = true
	}
	cfg.ShowStats = cfg.ShowStats || *statsPtr

	inputPath := *inputPtr
	if inputPath == "" {
		if cfg.InputPath != "" {
			inputPath = cfg.InputPath
		} else {
			latest, err := system.FindLatestDump("input/detections")
			if err != nil {
				log.Fatalf("[-] Error: %v. Put a detection dump in input/detections/", err)
			}
			inputPath = latest
			fmt.Printf("[*] Selected dump: %s\n", inputPath)
		}
	}

	provider, err := detector.NewProvider("", inputPath)
	if err != nil {
		log.Fatalf("[-] Failed to load detections: %v", err)
	}

	var motionSrc motion.VectorSource
	if *framesPtr != "" {
		frames := motion.NewDirFrameProvider(*framesPtr, *framePatternPtr)
		motionSrc = motion.NewFrameDiffEstimator(frames)
		fmt.Printf("[*] Camera-motion analysis enabled: %s\n", *framesPtr)
	}

	p, err := pipeline.New(cfg, provider, motionSrc)
	if err != nil {
		log.Fatalf("[-] Error: %v", err)
	}

	tr, err := p.Run(context.Background())
	if err != nil {
		log.Fatalf("[-] Planning failed: %v", err)
	}

	outputPath := *outputPtr
	if outputPath == "" {
		if cfg.OutputPath != "" {
			outputPath = cfg.OutputPath
		} else {
			baseName := filepath.Base(inputPath)
			nameOnly := strings.TrimSuffix(baseName, filepath.Ext(baseName))
			cleanName := strings.ReplaceAll(nameOnly, " ", "_")
			timestamp := time.Now().Format("2006-01-02_15-04-05")
			outputPath = filepath.Join("output", fmt.Sprintf("%s_%s.yaml", cleanName, timestamp))
		}
	}

	if err := trajectory.Write(tr, outputPath); err != nil {
		log.Fatalf("[-] Failed to write trajectory: %v", err)
	}

	if *filterFPSPtr > 0 {
		fmt.Println(trajectory.GenerateCropFilter(tr.Keyframes, *filterFPSPtr))
	}

	fmt.Printf("[+++] Success! Trajectory saved: %s (%d keyframes)\n", outputPath, len(tr.Keyframes))
}
