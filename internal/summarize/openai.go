package summarize

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// implements Summarizer using OpenAI Chat Completions or any compatible API
type OpenAISummarizer struct {
	client  openai.Client
	model   string
	options Options
}

func NewOpenAISummarizer(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAISummarizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	model := opts.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &OpenAISummarizer{
		client:  openai.NewClient(reqOpts...),
		model:   model,
		options: opts,
	}, nil
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, req Request) (string, error) {
	prompt, err := BuildPrompt(s.options, req)
	if err != nil {
		return "", err
	}

	completion, err := s.client.Chat.Completions.New(ctx, s.params(prompt))
	if err != nil {
		return "", fmt.Errorf("summary failed: %w", err)
	}

	if completion == nil || len(completion.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}

	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("no text in OpenAI response")
	}
	return text, nil
}

// SummarizeStream writes the summary to w as the chunks arrive and returns
// the complete text.
func (s *OpenAISummarizer) SummarizeStream(
	ctx context.Context,
	req Request,
	w io.Writer,
) (string, error) {
	prompt, err := BuildPrompt(s.options, req)
	if err != nil {
		return "", err
	}

	stream := s.client.Chat.Completions.NewStreaming(ctx, s.params(prompt))
	defer func() { _ = stream.Close() }()

	var sb strings.Builder
	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		sb.WriteString(delta)
		if _, err := io.WriteString(w, delta); err != nil {
			return "", fmt.Errorf("failed to write summary: %w", err)
		}
	}
	if err := stream.Err(); err != nil {
		return "", fmt.Errorf("summary failed: %w", err)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("no text in OpenAI response")
	}
	return text, nil
}

func (s *OpenAISummarizer) params(prompt Prompt) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.User),
		},
		Model:       s.model,
		Temperature: openai.Float(defaultTemperature),
		MaxTokens:   openai.Int(defaultMaxTokens),
	}
}
