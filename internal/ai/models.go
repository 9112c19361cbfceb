package ai

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("video not found")
	ErrEmptyResult       = errors.New("no frames decoded")
	ErrMalformedResponse = errors.New("malformed inference response")
	ErrInferenceFailure  = errors.New("inference call failed")
)

const (
	DefaultFrameInterval = 2.0
	DefaultFrameRate     = 30.0
	JPEGQuality          = 85
)

// Frame is one sampled still, timestamped in seconds from the start of the video.
type Frame struct {
	Timestamp float64
	Image     []byte
}

type SampleResult struct {
	Frames          []Frame
	DurationSeconds float64
	FrameRate       float64
	Stride          int
}

// EventCandidate is a single detection reported by the model, resolved
// against the sampled frames. Candidates carry no ordering guarantee.
type EventCandidate struct {
	Attribute        string  `json:"attribute"`
	TimestampSeconds float64 `json:"timestamp_seconds"`
	ClueDescription  string  `json:"clue_description"`
	Confidence       float64 `json:"confidence_score"`
}

// InferenceClient sends one prompt plus an ordered list of JPEG images to a
// multimodal model and returns its raw text answer.
type InferenceClient interface {
	Generate(ctx context.Context, prompt string, images [][]byte) (string, error)
}

type Config struct {
	Provider          string
	OpenAIAPIKey      string
	OpenAIModel       string
	GoogleProject     string
	GoogleLocation    string
	GeminiAPIKey      string
	GeminiModel       string
	FrameInterval     float64
	InferenceTimeout  time.Duration
	InferenceAttempts int
	DefaultAttributes []string
}

func NewConfig() *Config {
	return &Config{
		Provider:          ProviderGemini,
		OpenAIModel:       defaultOpenAIModel,
		GoogleLocation:    "us-central1",
		GeminiModel:       defaultGeminiModel,
		FrameInterval:     DefaultFrameInterval,
		InferenceTimeout:  120 * time.Second,
		InferenceAttempts: 1,
	}
}
