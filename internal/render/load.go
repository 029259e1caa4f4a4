package render

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ivlev/cardrender/internal/mask"
	"github.com/ivlev/cardrender/internal/refframe"
	"github.com/ivlev/cardrender/internal/source"
	"github.com/ivlev/cardrender/internal/storyboard"
)

// BuildTimeline decodes a storyboard's assets into a read-only timeline.
// Scene inputs resolve relative to baseDir. A mask that fails to decode
// degrades that transition to a hard cut with a warning; a scene image that
// fails to decode is fatal and fails the build.
func BuildTimeline(sb *storyboard.Storyboard, baseDir string, log *slog.Logger) (*Timeline, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if err := sb.Validate(); err != nil {
		return nil, err
	}

	tl := &Timeline{Overlays: sb.Overlays}

	for i, sc := range sb.Scenes {
		img, err := loadSceneImage(filepath.Join(baseDir, sc.Input))
		if err != nil {
			return nil, fmt.Errorf("scene %d: %w", i, err)
		}

		scene := Scene{Image: img, Duration: sc.Duration}
		if tr := sc.Transition; tr != nil {
			set, err := mask.Load(filepath.Join(baseDir, tr.Mask))
			if err != nil {
				var mediaErr *source.MediaLoadError
				if errors.As(err, &mediaErr) {
					log.Warn("transition mask unavailable, hard cut",
						"scene", i, "mask", tr.Mask, "error", err)
					set = &mask.Set{}
				} else {
					return nil, fmt.Errorf("scene %d mask: %w", i, err)
				}
			}
			scene.Transition = &Transition{Mask: set, Duration: tr.Duration}
		}
		tl.Scenes = append(tl.Scenes, scene)
	}

	// The first scene's decoded dimensions back the resolution fallback.
	resolver := refframe.NewResolver(log)
	var mediaW, mediaH int
	if b := tl.Scenes[0].Image.Bounds(); !b.Empty() {
		mediaW, mediaH = b.Dx(), b.Dy()
	}
	tl.Ref = resolver.Resolve("design", sb.Design, mediaW, mediaH)
	return tl, nil
}

// loadSceneImage decodes a single base visual: the first page of a PDF or
// one still image.
func loadSceneImage(path string) (image.Image, error) {
	var src source.Source
	var err error
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		src, err = source.NewPDFSource(path, 150)
	} else {
		src, err = source.NewImageSource(path)
	}
	if err != nil {
		return nil, err
	}
	defer src.Close()

	if src.FrameCount() == 0 {
		return nil, &source.MediaLoadError{Asset: path, Err: fmt.Errorf("no frames")}
	}
	return src.Frame(0)
}
