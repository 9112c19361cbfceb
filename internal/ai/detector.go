package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
)

// EventDetector turns a sampled frame sequence into event candidates with a
// single multimodal inference call.
type EventDetector struct {
	client  InferenceClient
	logger  *slog.Logger
	timeout time.Duration
}

func NewEventDetector(client InferenceClient, logger *slog.Logger, timeout time.Duration) *EventDetector {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventDetector{
		client:  client,
		logger:  logger,
		timeout: timeout,
	}
}

func (d *EventDetector) Detect(ctx context.Context, frames []Frame, attributes []string) ([]EventCandidate, error) {
	prompt := BuildPrompt(frames, attributes)

	images := make([][]byte, len(frames))
	for i, f := range frames {
		images[i] = f.Image
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	d.logger.Info("sending frames for event detection",
		"frames", len(frames), "attributes", attributes)

	start := time.Now()
	text, err := d.client.Generate(ctx, prompt, images)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInferenceFailure, err)
	}
	d.logger.Debug("inference finished", "elapsed", time.Since(start), "response_bytes", len(text))

	events, err := ParseDetections(text, frames)
	if err != nil {
		d.logger.Error("failed to parse inference response", "error", err, "raw", text)
		return nil, err
	}

	events = d.restrictToVocabulary(events, attributes)
	d.logger.Info("events detected", "count", len(events))
	return events, nil
}

// restrictToVocabulary keeps only events whose attribute is one of the
// requested labels, rewriting case variants to the caller's spelling.
func (d *EventDetector) restrictToVocabulary(events []EventCandidate, attributes []string) []EventCandidate {
	labels := make(map[string]string, len(attributes))
	for _, a := range attributes {
		labels[strings.ToLower(strings.TrimSpace(a))] = a
	}

	kept := events[:0]
	for _, e := range events {
		label, ok := labels[strings.ToLower(strings.TrimSpace(e.Attribute))]
		if !ok {
			d.logger.Debug("dropping event with unknown attribute", "attribute", e.Attribute)
			continue
		}
		e.Attribute = label
		kept = append(kept, e)
	}
	return kept
}

func BuildPrompt(frames []Frame, attributes []string) string {
	var frameInfo strings.Builder
	for i, f := range frames {
		if i > 0 {
			frameInfo.WriteString("\n")
		}
		fmt.Fprintf(&frameInfo, "Frame %d: %.2fs", i, f.Timestamp)
	}

	lastIndex := len(frames) - 1
	if lastIndex < 0 {
		lastIndex = 0
	}

	return fmt.Sprintf(`
You are an expert EPG analyst for sports broadcasts.

Analyze these %d frames and identify these event types:
%s

Frame timestamps (in seconds):
%s

For each event detected:
1. Specify the frame number (index in the list, 0 to %d)
2. Provide a detailed visual clue description
3. Rate confidence (0.0 to 1.0)

Focus on TRANSITIONS: new elements appearing, graphics changing, or scene shifts.

Output ONLY valid JSON in this exact format, with no text before or after it:
{
  "events": [
    {
      "attribute": "Main Logo",
      "frame_number": 5,
      "clue_description": "Broadcaster watermark appears in top-right",
      "confidence": 0.92
    }
  ]
}
`, len(frames), strings.Join(attributes, ", "), frameInfo.String(), lastIndex)
}

var (
	fenceOpen  = regexp.MustCompile("```(?:json|JSON)?\\s*")
	fenceClose = regexp.MustCompile("```\\s*$")
)

type detectionEnvelope struct {
	Events []json.RawMessage `json:"events"`
}

type detection struct {
	Attribute       string   `json:"attribute"`
	FrameNumber     *int     `json:"frame_number"`
	ClueDescription string   `json:"clue_description"`
	Confidence      *float64 `json:"confidence"`
}

// ParseDetections extracts the JSON object from a model answer and resolves
// each reported event against frames. Entries that do not fit the expected
// shape, or point outside the frame list, are dropped.
func ParseDetections(text string, frames []Frame) ([]EventCandidate, error) {
	clean := fenceOpen.ReplaceAllString(text, "")
	clean = fenceClose.ReplaceAllString(clean, "")

	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)
	}

	var envelope detectionEnvelope
	if err := json.Unmarshal([]byte(clean[start:end+1]), &envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	events := make([]EventCandidate, 0, len(envelope.Events))
	for _, raw := range envelope.Events {
		var det detection
		if err := json.Unmarshal(raw, &det); err != nil {
			continue
		}
		if det.FrameNumber == nil || *det.FrameNumber < 0 || *det.FrameNumber >= len(frames) {
			continue
		}

		confidence := 0.0
		if det.Confidence != nil {
			confidence = *det.Confidence
		}

		events = append(events, EventCandidate{
			Attribute:        det.Attribute,
			TimestampSeconds: frames[*det.FrameNumber].Timestamp,
			ClueDescription:  det.ClueDescription,
			Confidence:       confidence,
		})
	}

	return events, nil
}
