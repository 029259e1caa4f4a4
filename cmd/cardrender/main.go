package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ivlev/cardrender/internal/config"
	"github.com/ivlev/cardrender/internal/render"
	"github.com/ivlev/cardrender/internal/storyboard"
	"github.com/ivlev/cardrender/internal/video"
)

func main() {
	cfg := config.Default()

	storyboardPath := flag.String("storyboard", "", "path to the storyboard yaml (required)")
	output := flag.String("output", cfg.OutputPath, "output video path")
	preset := flag.String("preset", string(cfg.Preset), "aspect preset: 16:9, 9:16 or 4:5")
	width := flag.Int("width", 0, "output width, overrides the preset")
	height := flag.Int("height", 0, "output height, overrides the preset")
	fps := flag.Int("fps", cfg.FPS, "output frame rate")
	duration := flag.Float64("duration", 0, "rescale scene durations to this total in seconds")
	workers := flag.Int("workers", 0, "render workers, 0 sizes from the host")
	encoder := flag.String("encoder", "", "h264 encoder, empty probes ffmpeg")
	quality := flag.Int("quality", 0, "encoder quality, 0 picks a per-codec default")
	verbose := flag.Bool("verbose", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *storyboardPath == "" {
		fmt.Fprintln(os.Stderr, "usage: cardrender -storyboard card.yaml [-output out.mp4]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg.StoryboardPath = *storyboardPath
	cfg.OutputPath = *output
	cfg.Preset = config.Preset(*preset)
	cfg.Width, cfg.Height = cfg.Preset.Dimensions()
	if *width > 0 {
		cfg.Width = *width
	}
	if *height > 0 {
		cfg.Height = *height
	}
	cfg.FPS = *fps
	cfg.TotalDuration = *duration
	cfg.Workers = *workers
	cfg.Encoder = *encoder
	cfg.Quality = *quality

	if err := run(cfg, log); err != nil {
		log.Error("render failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	start := time.Now()

	sb, err := storyboard.Read(cfg.StoryboardPath)
	if err != nil {
		return fmt.Errorf("reading storyboard: %w", err)
	}
	if cfg.TotalDuration > 0 {
		sb.ScaleDurations(cfg.TotalDuration, cfg.FPS)
	}

	tl, err := render.BuildTimeline(sb, filepath.Dir(cfg.StoryboardPath), log)
	if err != nil {
		return fmt.Errorf("building timeline: %w", err)
	}
	log.Info("timeline ready",
		"scenes", len(tl.Scenes),
		"overlays", len(tl.Overlays),
		"duration", tl.Duration())

	r, err := render.NewRenderer(tl, cfg.Width, cfg.Height, log)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	enc, err := video.NewFFmpegEncoder(cfg.OutputPath, video.Options{
		Width:   cfg.Width,
		Height:  cfg.Height,
		FPS:     cfg.FPS,
		Encoder: cfg.Encoder,
		Quality: cfg.Quality,
		Log:     log,
	})
	if err != nil {
		return fmt.Errorf("starting encoder: %w", err)
	}

	renderErr := render.RenderOffline(context.Background(), r, enc, render.OfflineOptions{
		FPS:     cfg.FPS,
		Workers: cfg.Workers,
		Preset:  string(cfg.Preset),
	})
	closeErr := enc.Close()
	if renderErr != nil {
		return renderErr
	}
	if closeErr != nil {
		return closeErr
	}

	log.Info("render complete", "output", cfg.OutputPath, "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}
