package training

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/kdimtricp/cuetrainer/internal/database"
	"github.com/kdimtricp/cuetrainer/internal/metrics"
	"github.com/kdimtricp/cuetrainer/internal/models"
	"github.com/kdimtricp/cuetrainer/internal/scoring"
)

const (
	DefaultUserEmail          = "guest@example.com"
	DefaultVideoID            = "default_video_1"
	DefaultVideoTitle         = "Default Training Video"
	DefaultVideoFile          = "video.mp4"
	DefaultVideoDuration      = 600.0
	DefaultBroadcastStartTime = "2026-02-11T19:00:00"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidRequest  = errors.New("invalid request")
)

type VideoStore interface {
	UpsertVideo(ctx context.Context, video *models.Video) error
	GetVideoByID(ctx context.Context, id string) (*models.Video, error)
	FirstVideo(ctx context.Context) (*models.Video, error)
}

type GroundTruthStore interface {
	QueryGroundTruth(ctx context.Context, videoID, attribute string) ([]models.GroundTruthEvent, error)
}

type SessionStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetOrCreateUser(ctx context.Context, email, username string) (*models.User, error)
	CreateSession(ctx context.Context, session *models.TrainingSession) error
	GetSession(ctx context.Context, id string) (*models.TrainingSession, error)
	ListSessionsByUser(ctx context.Context, userID string) ([]models.TrainingSession, error)
}

type AttemptStore interface {
	CreateAttempt(ctx context.Context, attempt *models.UserAttempt) (string, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.UserAttempt, error)
}

type Service struct {
	videos   VideoStore
	truth    GroundTruthStore
	sessions SessionStore
	attempts AttemptStore
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewService(videos VideoStore, truth GroundTruthStore, sessions SessionStore, attempts AttemptStore, m *metrics.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		videos:   videos,
		truth:    truth,
		sessions: sessions,
		attempts: attempts,
		metrics:  m,
		logger:   logger,
	}
}

type StartSessionRequest struct {
	VideoFilename string `json:"video_filename"`
	UserEmail     string `json:"user_email"`
	VideoID       string `json:"video_id"`
}

type SessionResponse struct {
	SessionID          string `json:"session_id"`
	VideoID            string `json:"video_id"`
	BroadcastStartTime string `json:"broadcast_start_time"`
	Status             string `json:"status"`
}

// StartSession opens a training session for the user, creating the user on
// first sight. Without a video id the oldest stored video is used. The
// placeholder video stands in when the library is empty or the requested
// video does not exist.
func (s *Service) StartSession(ctx context.Context, req StartSessionRequest) (*SessionResponse, error) {
	email := strings.TrimSpace(req.UserEmail)
	if email == "" {
		email = DefaultUserEmail
	}
	username, _, _ := strings.Cut(email, "@")

	user, err := s.sessions.GetOrCreateUser(ctx, email, username)
	if err != nil {
		return nil, err
	}

	video, err := s.pickVideo(ctx, req)
	if err != nil {
		return nil, err
	}

	session := models.NewTrainingSession(user.ID, video.ID)
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("training session started",
		"session_id", session.ID, "user", user.Username, "video_id", video.ID)

	return &SessionResponse{
		SessionID:          session.ID,
		VideoID:            video.ID,
		BroadcastStartTime: video.BroadcastStartTime,
		Status:             session.Status,
	}, nil
}

func (s *Service) pickVideo(ctx context.Context, req StartSessionRequest) (*models.Video, error) {
	if req.VideoID != "" {
		video, err := s.videos.GetVideoByID(ctx, req.VideoID)
		if err == nil {
			return video, nil
		}
		if !errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
		s.logger.Warn("requested video not found, using placeholder", "video_id", req.VideoID)
		return s.placeholderVideo(ctx, req.VideoFilename)
	}

	video, err := s.videos.FirstVideo(ctx)
	if err == nil {
		return video, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}
	return s.placeholderVideo(ctx, req.VideoFilename)
}

func (s *Service) placeholderVideo(ctx context.Context, filename string) (*models.Video, error) {
	video, err := s.videos.GetVideoByID(ctx, DefaultVideoID)
	if err == nil {
		return video, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	if filename == "" {
		filename = DefaultVideoFile
	}
	video = models.NewVideo(DefaultVideoID, DefaultVideoTitle, filename, DefaultVideoDuration, DefaultBroadcastStartTime)
	if err := s.videos.UpsertVideo(ctx, video); err != nil {
		return nil, err
	}
	s.logger.Info("created placeholder video", "video_id", video.ID)
	return video, nil
}

type LogEventRequest struct {
	SessionID             string  `json:"session_id"`
	Attribute             string  `json:"attribute"`
	UserTimestampSeconds  float64 `json:"user_timestamp_seconds"`
	UserLiveClockTime     string  `json:"user_live_clock_time"`
	VideoTimestampSeconds float64 `json:"video_timestamp_seconds"`
}

type GroundTruthRef struct {
	TimestampSeconds float64 `json:"timestamp_seconds"`
	LiveClockTime    string  `json:"live_clock_time"`
	ClueDescription  string  `json:"clue_description"`
}

type FeedbackResponse struct {
	AttemptID        string          `json:"attempt_id"`
	ClickedAttribute string          `json:"clicked_attribute"`
	UserClickedTime  string          `json:"user_clicked_time"`
	AccuracyLevel    string          `json:"accuracy_level"`
	TimeDifferenceMs float64         `json:"time_difference_ms"`
	GroundTruth      *GroundTruthRef `json:"ground_truth,omitempty"`
	Feedback         string          `json:"ai_feedback"`
	Outcome          string          `json:"outcome"`
}

// LogEvent scores one click against the session video's ground truth and
// records the attempt.
func (s *Service) LogEvent(ctx context.Context, req LogEventRequest) (*FeedbackResponse, error) {
	attribute := strings.TrimSpace(req.Attribute)
	if req.SessionID == "" || attribute == "" {
		return nil, fmt.Errorf("%w: session_id and attribute are required", ErrInvalidRequest)
	}
	if req.UserTimestampSeconds < 0 || math.IsNaN(req.UserTimestampSeconds) || math.IsInf(req.UserTimestampSeconds, 0) {
		return nil, fmt.Errorf("%w: user_timestamp_seconds must be a non-negative number", ErrInvalidRequest)
	}

	session, err := s.sessions.GetSession(ctx, req.SessionID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, req.SessionID)
		}
		return nil, err
	}

	rows, err := s.truth.QueryGroundTruth(ctx, session.VideoID, attribute)
	if err != nil {
		return nil, err
	}

	events := make([]scoring.Event, len(rows))
	for i, r := range rows {
		events[i] = scoring.Event{
			ID:               r.ID,
			Attribute:        r.Attribute,
			TimestampSeconds: r.TimestampSeconds,
			LiveClockTime:    r.LiveClockTime,
			ClueDescription:  r.ClueDescription,
		}
	}

	verdict := scoring.Score(events, attribute, req.UserTimestampSeconds)

	attempt := models.NewUserAttempt(session.ID, attribute, req.UserTimestampSeconds, req.UserLiveClockTime)
	attempt.TimeDifferenceMs = verdict.TimeDifferenceMs
	attempt.AccuracyLevel = string(verdict.Accuracy)
	attempt.Outcome = string(verdict.Outcome)
	attempt.Feedback = verdict.Feedback
	if verdict.Match != nil {
		attempt.GroundTruthEventID = verdict.Match.ID
	}

	id, err := s.attempts.CreateAttempt(ctx, attempt)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveAttempt(attempt.AccuracyLevel)

	s.logger.Debug("attempt scored",
		"session_id", session.ID,
		"attribute", attribute,
		"accuracy", attempt.AccuracyLevel,
		"diff_ms", attempt.TimeDifferenceMs,
	)

	resp := &FeedbackResponse{
		AttemptID:        id,
		ClickedAttribute: attribute,
		UserClickedTime:  req.UserLiveClockTime,
		AccuracyLevel:    attempt.AccuracyLevel,
		TimeDifferenceMs: attempt.TimeDifferenceMs,
		Feedback:         attempt.Feedback,
		Outcome:          attempt.Outcome,
	}
	if m := verdict.Match; m != nil {
		resp.GroundTruth = &GroundTruthRef{
			TimestampSeconds: m.TimestampSeconds,
			LiveClockTime:    m.LiveClockTime,
			ClueDescription:  m.ClueDescription,
		}
	}
	return resp, nil
}

type SessionHistoryItem struct {
	SessionID          string `json:"session_id"`
	CreatedAt          string `json:"created_at"`
	VideoName          string `json:"video_name"`
	TotalEvents        int    `json:"total_events"`
	PerfectCount       int    `json:"perfect_count"`
	GoodCount          int    `json:"good_count"`
	MissedCount        int    `json:"missed_count"`
	WrongCount         int    `json:"wrong_count"`
	AccuracyPercentage int    `json:"accuracy_percentage"`
}

// History summarizes the user's sessions, newest first. Sessions without
// attempts are left out; an unknown user has an empty history.
func (s *Service) History(ctx context.Context, email string) ([]SessionHistoryItem, error) {
	if email == "" {
		email = DefaultUserEmail
	}

	history := []SessionHistoryItem{}

	user, err := s.sessions.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return history, nil
		}
		return nil, err
	}

	sessions, err := s.sessions.ListSessionsByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	titles := map[string]string{}
	for _, session := range sessions {
		attempts, err := s.attempts.ListBySession(ctx, session.ID)
		if err != nil {
			return nil, err
		}
		if len(attempts) == 0 {
			continue
		}

		item := Summarize(attempts)
		item.SessionID = session.ID
		item.CreatedAt = session.StartedAt.Format(time.RFC3339)
		item.VideoName = s.videoTitle(ctx, titles, session.VideoID)
		history = append(history, item)
	}

	return history, nil
}

func (s *Service) videoTitle(ctx context.Context, cache map[string]string, videoID string) string {
	if title, ok := cache[videoID]; ok {
		return title
	}
	title := "Unknown Video"
	if video, err := s.videos.GetVideoByID(ctx, videoID); err == nil {
		title = video.Title
	} else if !errors.Is(err, database.ErrNotFound) {
		s.logger.Warn("failed to load video title", "video_id", videoID, "error", err)
	}
	cache[videoID] = title
	return title
}

// Summarize counts attempts per accuracy tier. Accuracy is the rounded share
// of perfect and acceptable attempts.
func Summarize(attempts []models.UserAttempt) SessionHistoryItem {
	var item SessionHistoryItem
	item.TotalEvents = len(attempts)
	for _, a := range attempts {
		switch scoring.Accuracy(a.AccuracyLevel) {
		case scoring.Perfect:
			item.PerfectCount++
		case scoring.Acceptable:
			item.GoodCount++
		case scoring.Miss:
			item.MissedCount++
		case scoring.FalsePositive:
			item.WrongCount++
		}
	}
	if item.TotalEvents > 0 {
		successful := item.PerfectCount + item.GoodCount
		item.AccuracyPercentage = int(math.RoundToEven(float64(successful) / float64(item.TotalEvents) * 100))
	}
	return item
}
