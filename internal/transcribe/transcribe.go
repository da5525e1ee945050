package transcribe

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mgpai22/bilisub/internal/subtitle"
)

// transcription result
type Result struct {
	Segments []subtitle.Segment
	Language string
	Duration time.Duration
}

// Subtitle numbers the recognised segments as subtitle entries.
func (r *Result) Subtitle() *subtitle.Subtitle {
	return subtitle.FromSegments(r.Segments, r.Language)
}

// interface for audio transcription
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*Result, error)
}

// transcription service provider
type Provider string

const (
	ProviderBcut   Provider = "bcut"
	ProviderOpenAI Provider = "openai"
)

// transcription options
type Options struct {
	Language string // source language hint
	Model    string
	Prompt   string
	BaseURL  string

	// bcut polling
	PollInterval time.Duration
	MaxAttempts  int

	HTTPClient *http.Client
}

// creates transcriber based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Transcriber, error) {
	switch provider {
	case ProviderBcut, "":
		return NewBcutTranscriber(opts), nil
	case ProviderOpenAI:
		return NewOpenAITranscriber(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

// segment from second offsets
func subtitleSegment(start, end float64, text string) subtitle.Segment {
	return subtitle.Segment{
		StartTime: time.Duration(start * float64(time.Second)),
		EndTime:   time.Duration(end * float64(time.Second)),
		Text:      text,
	}
}
