package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/kdimtricp/cuetrainer/internal/ai"
	"github.com/kdimtricp/cuetrainer/internal/groundtruth"
	"github.com/kdimtricp/cuetrainer/internal/metrics"
	"github.com/kdimtricp/cuetrainer/internal/models"
)

const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type Sampler interface {
	SampleFrames(videoPath string, interval float64) (*ai.SampleResult, error)
}

type Detector interface {
	Detect(ctx context.Context, frames []ai.Frame, attributes []string) ([]ai.EventCandidate, error)
}

type VideoStore interface {
	UpsertVideo(ctx context.Context, video *models.Video) error
}

type GroundTruthStore interface {
	ReplaceGroundTruth(ctx context.Context, videoID string, events []*models.GroundTruthEvent) (int, error)
}

type Service struct {
	sampler           Sampler
	detector          Detector
	videos            VideoStore
	truth             GroundTruthStore
	metrics           *metrics.Metrics
	logger            *slog.Logger
	frameInterval     float64
	maxAttempts       int
	retryBackoff      time.Duration
	defaultAttributes []string
}

type Config struct {
	FrameInterval     float64
	MaxAttempts       int
	RetryBackoff      time.Duration
	DefaultAttributes []string
}

// NewService wires the analysis pipeline. videos and truth may be nil when
// results are never persisted.
func NewService(
	sampler Sampler,
	detector Detector,
	videos VideoStore,
	truth GroundTruthStore,
	m *metrics.Metrics,
	logger *slog.Logger,
	config Config,
) *Service {
	if config.FrameInterval <= 0 {
		config.FrameInterval = ai.DefaultFrameInterval
	}
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if config.RetryBackoff == 0 {
		config.RetryBackoff = 2 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		sampler:           sampler,
		detector:          detector,
		videos:            videos,
		truth:             truth,
		metrics:           m,
		logger:            logger,
		frameInterval:     config.FrameInterval,
		maxAttempts:       config.MaxAttempts,
		retryBackoff:      config.RetryBackoff,
		defaultAttributes: config.DefaultAttributes,
	}
}

// Result is the ground truth timeline plus run metadata, in the shape the
// analyze endpoint returns.
type Result struct {
	groundtruth.Timeline
	FramesAnalyzed        int     `json:"frames_analyzed"`
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
	AnalysisStatus        string  `json:"analysis_status"`
	DatabaseSaved         *bool   `json:"database_saved,omitempty"`
	EventsSaved           *int    `json:"events_saved,omitempty"`
	DatabaseError         string  `json:"database_error,omitempty"`
}

// VideoID derives the video identifier from a file path: its base name
// without extension.
func VideoID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// AnalyzeVideo samples the video, detects the requested attributes with one
// inference call and assembles the timeline. interval <= 0 uses the
// configured frame interval; an empty attribute list uses the default
// vocabulary.
func (s *Service) AnalyzeVideo(ctx context.Context, path, broadcastStart string, attributes []string, interval float64) (*Result, error) {
	start := time.Now()

	result, err := s.analyze(ctx, path, broadcastStart, attributes, interval)
	if err != nil {
		s.metrics.ObserveAnalysis(StatusFailed, 0)
		s.logger.Error("video analysis failed", "path", path, "error", err)
		return nil, err
	}

	result.ProcessingTimeSeconds = time.Since(start).Seconds()
	result.AnalysisStatus = StatusCompleted
	s.metrics.ObserveAnalysis(StatusCompleted, len(result.Events))

	s.logger.Info("video analysis completed",
		"video_id", result.VideoID,
		"frames", result.FramesAnalyzed,
		"events", len(result.Events),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return result, nil
}

func (s *Service) analyze(ctx context.Context, path, broadcastStart string, attributes []string, interval float64) (*Result, error) {
	// Checked up front so a bad anchor never costs an inference call.
	if _, err := groundtruth.ParseBroadcastStart(broadcastStart); err != nil {
		return nil, err
	}

	if len(attributes) == 0 {
		attributes = s.defaultAttributes
	}
	if len(attributes) == 0 {
		return nil, fmt.Errorf("no attributes requested")
	}
	if interval <= 0 {
		interval = s.frameInterval
	}

	sample, err := s.sampler.SampleFrames(path, interval)
	if err != nil {
		return nil, err
	}
	if len(sample.Frames) == 0 {
		return nil, fmt.Errorf("%w: %s", ai.ErrEmptyResult, path)
	}

	s.logger.Info("frames sampled", "path", path, "frames", len(sample.Frames), "duration", sample.DurationSeconds)

	candidates, err := s.detect(ctx, sample.Frames, attributes)
	if err != nil {
		return nil, err
	}

	timeline, err := groundtruth.Assemble(VideoID(path), broadcastStart, candidates, sample.DurationSeconds)
	if err != nil {
		return nil, err
	}

	return &Result{
		Timeline:       *timeline,
		FramesAnalyzed: len(sample.Frames),
	}, nil
}

// detect retries only inference failures, with an exponential backoff, up
// to the configured number of attempts. Any other error stops at once.
func (s *Service) detect(ctx context.Context, frames []ai.Frame, attributes []string) ([]ai.EventCandidate, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.retryBackoff
	b.MaxElapsedTime = 0

	var (
		events  []ai.EventCandidate
		attempt int
	)
	operation := func() error {
		attempt++
		started := time.Now()
		found, err := s.detector.Detect(ctx, frames, attributes)
		s.metrics.ObserveInference(time.Since(started).Seconds())
		if err != nil {
			if !errors.Is(err, ai.ErrInferenceFailure) {
				return backoff.Permanent(err)
			}
			return err
		}
		events = found
		return nil
	}
	notify := func(err error, wait time.Duration) {
		s.logger.Warn("inference failed, retrying",
			"attempt", attempt,
			"max_attempts", s.maxAttempts,
			"wait", wait.Round(time.Millisecond),
			"error", err,
		)
	}

	policy := backoff.WithMaxRetries(backoff.WithContext(b, ctx), uint64(s.maxAttempts-1))
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, fmt.Errorf("%w: %w", ai.ErrInferenceFailure, ctxErr)
		}
		return nil, err
	}
	return events, nil
}

// Persist stores the video and replaces its ground truth. Storage errors are
// recorded on the result as well as returned, so callers can still hand the
// timeline back.
func (s *Service) Persist(ctx context.Context, result *Result, title, filePath string) error {
	if s.videos == nil || s.truth == nil {
		return fmt.Errorf("persistence is not configured")
	}

	saved := false
	result.DatabaseSaved = &saved

	video := models.NewVideo(result.VideoID, title, filePath, result.DurationSeconds, result.BroadcastStartTime)
	if err := s.videos.UpsertVideo(ctx, video); err != nil {
		result.DatabaseError = err.Error()
		return err
	}

	events := make([]*models.GroundTruthEvent, 0, len(result.Events))
	for _, e := range result.Events {
		events = append(events, models.NewGroundTruthEvent(
			result.VideoID, e.Attribute, e.TimestampSeconds, e.LiveClockTime, e.ClueDescription, e.Confidence,
		))
	}

	n, err := s.truth.ReplaceGroundTruth(ctx, result.VideoID, events)
	if err != nil {
		result.DatabaseError = err.Error()
		return err
	}

	saved = true
	result.EventsSaved = &n
	s.logger.Info("ground truth saved", "video_id", result.VideoID, "events", n)
	return nil
}
