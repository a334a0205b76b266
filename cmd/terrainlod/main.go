// Package main is the entry point for the terrain LOD fly-through.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Faultbox/midgard-terrain/internal/config"
	"github.com/Faultbox/midgard-terrain/internal/engine/debug"
	"github.com/Faultbox/midgard-terrain/internal/logger"
	"github.com/Faultbox/midgard-terrain/internal/viewer"
)

// Virtual screen used for paint picking.
const (
	screenW = 1280
	screenH = 720
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Midgard Terrain LOD ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if path := config.WriteConfigPath(); path != "" {
		if err := cfg.SaveTo(path); err != nil {
			logger.Error("failed to write config", zap.Error(err))
			os.Exit(1)
		}
		logger.Info("config written", zap.String("path", path))
		return
	}

	v, err := viewer.New(cfg)
	if err != nil {
		logger.Error("failed to build terrain", zap.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, v, cfg); err != nil {
		logger.Error("fly-through failed", zap.Error(err))
		os.Exit(1)
	}

	if cfg.Run.SnapshotDir != "" {
		paths, err := v.Snapshot(debug.NewSnapshotter(cfg.Run.SnapshotDir, "terrain"))
		if err != nil {
			logger.Error("snapshot failed", zap.Error(err))
			os.Exit(1)
		}
		logger.Info("snapshots written", zap.Strings("files", paths))
	}

	logger.Info("fly-through finished")
}

// summary accumulates per-frame statistics.
type summary struct {
	frames     int
	minVisible int
	maxVisible int
	sumVisible int
	lods       []int
	strokes    int
}

func (s *summary) add(st viewer.Stats) {
	if s.frames == 0 || st.Visible < s.minVisible {
		s.minVisible = st.Visible
	}
	s.maxVisible = max(s.maxVisible, st.Visible)
	s.sumVisible += st.Visible
	s.frames++

	if len(s.lods) < len(st.LODHistogram) {
		s.lods = append(s.lods, make([]int, len(st.LODHistogram)-len(s.lods))...)
	}
	for i, n := range st.LODHistogram {
		s.lods[i] += n
	}
}

func (s *summary) average() float64 {
	if s.frames == 0 {
		return 0
	}
	return float64(s.sumVisible) / float64(s.frames)
}

// run flies the camera for cfg.Run.Frames frames. With cfg.Run.FPS > 0 frames
// are paced in real time; an interrupt ends the run early without error.
func run(ctx context.Context, v *viewer.Viewer, cfg *config.Config) error {
	var limiter *rate.Limiter
	dt := float32(1.0 / 60)
	if cfg.Run.FPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Run.FPS), 1)
		dt = float32(1 / cfg.Run.FPS)
	}

	f := newFlight(v.Camera(), v.Heightfield(), cfg.Camera.Speed)
	var sum summary
	start := time.Now()

	for frame := range cfg.Run.Frames {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					logger.Info("interrupted", zap.Int("frame", frame))
					break
				}
				return fmt.Errorf("frame %d: %w", frame, err)
			}
		} else if ctx.Err() != nil {
			logger.Info("interrupted", zap.Int("frame", frame))
			break
		}

		f.step(dt)
		if _, err := v.Frame(); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}

		if frame%paintInterval == 0 {
			if _, ok := v.PaintAt(screenW/2, screenH/2, screenW, screenH); ok {
				sum.strokes++
			}
		}

		st := v.Stats()
		sum.add(st)
		logger.Debug("frame stats",
			zap.Int("frame", frame),
			zap.Int("visible", st.Visible),
			zap.Int("total", st.Total),
			zap.Ints("lods", st.LODHistogram))
	}

	logger.Info("fly-through summary",
		zap.Int("frames", sum.frames),
		zap.Int("minVisible", sum.minVisible),
		zap.Int("maxVisible", sum.maxVisible),
		zap.Float64("avgVisible", sum.average()),
		zap.Ints("lodHistogram", sum.lods),
		zap.Int("paintStrokes", sum.strokes),
		zap.Bool("paintDirty", v.Paint().TakeDirty()),
		zap.Duration("elapsed", time.Since(start)))

	return nil
}
