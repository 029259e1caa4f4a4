package render

import (
	"context"
	"fmt"
	"image"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/cardrender/internal/system"
)

// Encoder consumes composited frames in display order and produces the
// output file. The engine only emits frames; container and codec handling
// belong to the encoder.
type Encoder interface {
	EncodeFrame(frame *image.RGBA) error
	Close() error
}

// OfflineOptions tunes the offline driver.
type OfflineOptions struct {
	FPS     int
	Workers int    // 0 picks a count from CPU and memory headroom
	Preset  string // responsive override preset for overlays, may be empty
}

type renderedFrame struct {
	index int
	buf   *image.RGBA
}

// RenderOffline iterates a virtual clock at the output frame rate from 0 to
// the timeline duration, composing each discrete timestamp and handing the
// frames to the encoder in display order. Frame state is a pure function of
// the timestamp, so frames are computed in parallel and reordered before
// encoding.
func RenderOffline(ctx context.Context, r *Renderer, enc Encoder, opts OfflineOptions) error {
	fps := opts.FPS
	if fps <= 0 {
		fps = 30
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = system.RenderWorkers(r.w, r.h)
	}

	frameCount := int(math.Ceil(r.tl.Duration() * float64(fps)))
	if frameCount < 1 {
		frameCount = 1
	}
	if workers > frameCount {
		workers = frameCount
	}

	r.log.Info("offline render",
		"frames", frameCount, "fps", fps, "workers", workers,
		"width", r.w, "height", r.h)

	g, ctx := errgroup.WithContext(ctx)
	jobs := make(chan int)
	results := make(chan renderedFrame, workers)

	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < frameCount; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	g.Go(func() error {
		defer close(results)
		wg, wctx := errgroup.WithContext(ctx)
		for w := 0; w < workers; w++ {
			wg.Go(func() error {
				ras := r.NewRasterizer(opts.Preset)
				for i := range jobs {
					buf := system.GetImage(image.Rect(0, 0, r.w, r.h))
					t := float64(i) / float64(fps)
					if err := r.ComposeFrame(t, buf, ras); err != nil {
						system.PutImage(buf)
						return fmt.Errorf("frame %d: %w", i, err)
					}
					select {
					case results <- renderedFrame{index: i, buf: buf}:
					case <-wctx.Done():
						system.PutImage(buf)
						return wctx.Err()
					}
				}
				return nil
			})
		}
		return wg.Wait()
	})

	g.Go(func() error {
		pending := make(map[int]*image.RGBA)
		next := 0
		for f := range results {
			pending[f.index] = f.buf
			for {
				buf, ok := pending[next]
				if !ok {
					break
				}
				if err := enc.EncodeFrame(buf); err != nil {
					// Drain before failing so workers are not blocked.
					go drain(results)
					return fmt.Errorf("encode frame %d: %w", next, err)
				}
				system.PutImage(buf)
				delete(pending, next)
				next++
			}
		}
		if next != frameCount {
			// Workers stopped early; their error surfaces from the group.
			for _, buf := range pending {
				system.PutImage(buf)
			}
		}
		return nil
	})

	return g.Wait()
}

func drain(results <-chan renderedFrame) {
	for f := range results {
		system.PutImage(f.buf)
	}
}
