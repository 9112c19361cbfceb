package ai

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io/fs"
	"log/slog"
	"math"
	"os"
)

type VideoInfo struct {
	FrameRate  float64
	FrameCount int64
	Width      int
	Height     int
}

// VideoDecoder exposes the container metadata and the decoded frame stream of
// a video file. Decode calls fn once per decoded frame in presentation order;
// img is only valid for the duration of the call.
type VideoDecoder interface {
	Inspect(videoPath string) (*VideoInfo, error)
	Decode(videoPath string, info *VideoInfo, fn func(index int, img image.Image) error) error
}

type FrameSampler struct {
	decoder VideoDecoder
	logger  *slog.Logger
	quality int
}

func NewFrameSampler(decoder VideoDecoder, logger *slog.Logger) *FrameSampler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FrameSampler{
		decoder: decoder,
		logger:  logger,
		quality: JPEGQuality,
	}
}

// FrameStride converts a sampling interval into a frame-index step.
func FrameStride(fps, interval float64) int {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	stride := int(math.Round(fps * interval))
	if stride < 1 {
		stride = 1
	}
	return stride
}

func (s *FrameSampler) SampleFrames(videoPath string, interval float64) (*SampleResult, error) {
	if err := checkVideoPath(videoPath); err != nil {
		return nil, err
	}

	info, err := s.decoder.Inspect(videoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect video: %w", err)
	}

	fps := info.FrameRate
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		s.logger.Warn("could not determine frame rate, assuming default",
			"path", videoPath, "fps", DefaultFrameRate)
		fps = DefaultFrameRate
	}
	stride := FrameStride(fps, interval)

	s.logger.Debug("sampling video",
		"path", videoPath, "fps", fps, "interval", interval, "stride", stride)

	var frames []Frame
	decoded := 0
	err = s.decoder.Decode(videoPath, info, func(index int, img image.Image) error {
		decoded++
		if index%stride != 0 {
			return nil
		}
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: s.quality}); err != nil {
			return fmt.Errorf("failed to encode frame %d: %w", index, err)
		}
		frames = append(frames, Frame{
			Timestamp: float64(index) / fps,
			Image:     buf.Bytes(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decode video: %w", err)
	}

	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyResult, videoPath)
	}

	s.logger.Info("sampled video frames",
		"path", videoPath, "decoded", decoded, "sampled", len(frames))

	return &SampleResult{
		Frames:          frames,
		DurationSeconds: durationOf(info, int64(decoded)),
		FrameRate:       fps,
		Stride:          stride,
	}, nil
}

// Duration reports frame count divided by the native frame rate, or 0 when
// the rate cannot be read.
func (s *FrameSampler) Duration(videoPath string) float64 {
	info, err := s.decoder.Inspect(videoPath)
	if err != nil {
		s.logger.Warn("failed to read video duration", "path", videoPath, "error", err)
		return 0
	}
	return durationOf(info, 0)
}

func durationOf(info *VideoInfo, decoded int64) float64 {
	if info.FrameRate <= 0 || math.IsNaN(info.FrameRate) || math.IsInf(info.FrameRate, 0) {
		return 0
	}
	count := info.FrameCount
	if count <= 0 {
		count = decoded
	}
	return float64(count) / info.FrameRate
}

func checkVideoPath(videoPath string) error {
	st, err := os.Stat(videoPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, videoPath)
		}
		return fmt.Errorf("video file not accessible: %w", err)
	}
	if st.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrNotFound, videoPath)
	}
	return nil
}
