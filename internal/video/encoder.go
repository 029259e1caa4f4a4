// Package video is the offline encoder collaborator: it accepts composited
// RGBA frames in display order and produces the output file through ffmpeg.
package video

import (
	"fmt"
	"image"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// FFmpegEncoder streams raw RGBA frames into an ffmpeg process over a pipe.
type FFmpegEncoder struct {
	pw        *io.PipeWriter
	done      chan error
	w, h      int
	frameSize int
	closed    bool
}

// Options selects the codec and quality.
type Options struct {
	Width   int
	Height  int
	FPS     int
	Encoder string // h264 encoder name; empty means DetectEncoder
	Quality int    // 0 picks a per-encoder default
	Log     *slog.Logger
}

// NewFFmpegEncoder starts the encoding process. Frames written with
// EncodeFrame must match Options dimensions; Close finishes the file.
func NewFFmpegEncoder(outputPath string, opts Options) (*FFmpegEncoder, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("encoder needs positive dimensions, got %dx%d", opts.Width, opts.Height)
	}
	fps := opts.FPS
	if fps <= 0 {
		fps = 30
	}
	log := opts.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	encoderName := opts.Encoder
	if encoderName == "" {
		encoderName = DetectEncoder()
	}

	outArgs := ffmpeg.KwArgs{
		"c:v":     encoderName,
		"pix_fmt": "yuv420p",
		"r":       fps,
	}
	for k, v := range qualityArgs(encoderName, opts.Quality) {
		outArgs[k] = v
	}

	pr, pw := io.Pipe()

	stream := ffmpeg.Input("pipe:", ffmpeg.KwArgs{
		"format":       "rawvideo",
		"pixel_format": "rgba",
		"video_size":   fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"framerate":    fps,
	}).
		Output(outputPath, outArgs).
		OverWriteOutput().
		WithInput(pr)

	log.Info("encoder started", "output", outputPath, "codec", encoderName, "fps", fps)

	done := make(chan error, 1)
	go func() {
		err := stream.Run()
		// Unblock any in-flight EncodeFrame write on encoder failure.
		pr.CloseWithError(err)
		done <- err
	}()

	return &FFmpegEncoder{
		pw:        pw,
		done:      done,
		w:         opts.Width,
		h:         opts.Height,
		frameSize: opts.Width * opts.Height * 4,
	}, nil
}

// EncodeFrame writes one frame to the encoder. Frames must arrive in
// display order.
func (e *FFmpegEncoder) EncodeFrame(frame *image.RGBA) error {
	b := frame.Bounds()
	if b.Dx() != e.w || b.Dy() != e.h {
		return fmt.Errorf("frame %dx%d does not match encoder %dx%d", b.Dx(), b.Dy(), e.w, e.h)
	}
	if len(frame.Pix) < e.frameSize {
		return fmt.Errorf("short frame buffer: %d bytes, want %d", len(frame.Pix), e.frameSize)
	}
	_, err := e.pw.Write(frame.Pix[:e.frameSize])
	return err
}

// Close finishes the stream and waits for ffmpeg to exit.
func (e *FFmpegEncoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.pw.Close()
	if err := <-e.done; err != nil {
		return fmt.Errorf("ffmpeg: %w", err)
	}
	return nil
}

// qualityArgs maps a quality knob onto each encoder's own flags. Zero picks
// a sane default per codec.
func qualityArgs(encoderName string, quality int) map[string]interface{} {
	switch encoderName {
	case "h264_videotoolbox":
		if quality <= 0 {
			quality = 75
		}
		// VideoToolbox ignores -q:v on many versions; use a bitrate.
		return map[string]interface{}{"b:v": fmt.Sprintf("%dk", quality*100)}
	case "h264_nvenc":
		if quality <= 0 {
			quality = 28
		}
		return map[string]interface{}{"cq": quality}
	default: // libx264
		if quality <= 0 {
			quality = 23
		}
		return map[string]interface{}{"crf": quality, "preset": "medium"}
	}
}

// DetectEncoder probes ffmpeg for hardware h264 encoders, preferring
// VideoToolbox, then NVENC, then software x264.
func DetectEncoder() string {
	out, err := exec.Command("ffmpeg", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(string(out), name) {
			return name
		}
	}
	return "libx264"
}
