package summarize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/abadojack/whatlanggo"
)

// ErrEmptyTranscript is returned when there is no text to summarize.
var ErrEmptyTranscript = errors.New("transcript is empty")

// DefaultSystemPrompt asks for a short summary of the main points.
const DefaultSystemPrompt = "你是一个视频内容总结助手，请简要总结以下视频字幕内容的主要观点："

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 2000
)

// what to summarize
type Request struct {
	Title      string
	Owner      string
	Transcript string
}

// interface for transcript summarization
type Summarizer interface {
	Summarize(ctx context.Context, req Request) (string, error)
}

// StreamSummarizer is a Summarizer that can print the summary while it is
// being generated.
type StreamSummarizer interface {
	Summarizer
	SummarizeStream(ctx context.Context, req Request, w io.Writer) (string, error)
}

// summary service provider
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
)

type Options struct {
	Model    string
	BaseURL  string // OpenAI-compatible or proxy endpoint
	Prompt   string // replaces DefaultSystemPrompt
	Language string // reply language; detected from the transcript when empty
}

// creates Summarizer based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Summarizer, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAISummarizer(ctx, apiKey, opts)
	case ProviderAnthropic:
		return NewAnthropicSummarizer(ctx, apiKey, opts)
	case ProviderGemini:
		return NewGeminiSummarizer(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported summary provider: %s", provider)
	}
}

// system and user message of one summary request
type Prompt struct {
	System string
	User   string
}

// BuildPrompt creates the summary prompt for LLM providers
func BuildPrompt(opts Options, req Request) (Prompt, error) {
	transcript := strings.TrimSpace(req.Transcript)
	if transcript == "" {
		return Prompt{}, ErrEmptyTranscript
	}

	system := opts.Prompt
	if system == "" {
		system = DefaultSystemPrompt
	}

	var sb strings.Builder
	if req.Title != "" {
		fmt.Fprintf(&sb, "Title: %s\n", req.Title)
	}
	if req.Owner != "" {
		fmt.Fprintf(&sb, "Uploader: %s\n", req.Owner)
	}
	if sb.Len() > 0 {
		sb.WriteString("\n")
	}

	sb.WriteString("Subtitles:\n")
	sb.WriteString(transcript)
	sb.WriteString("\n")

	language := opts.Language
	if language == "" {
		language = DetectLanguage(transcript)
	}
	if language != "" {
		fmt.Fprintf(&sb, "\nWrite the summary in %s.", language)
	}

	return Prompt{System: system, User: sb.String()}, nil
}

// DetectLanguage names the dominant language of text, or "" when unsure.
func DetectLanguage(text string) string {
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	if info.Lang == whatlanggo.Cmn {
		return "Chinese"
	}
	return info.Lang.String()
}
