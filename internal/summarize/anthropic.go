package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// implements Summarizer using Anthropic Claude
type AnthropicSummarizer struct {
	client  anthropic.Client
	model   anthropic.Model
	options Options
}

func NewAnthropicSummarizer(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*AnthropicSummarizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	model := anthropic.Model(opts.Model)
	if opts.Model == "" {
		model = anthropic.ModelClaudeHaiku4_5
	}

	return &AnthropicSummarizer{
		client:  anthropic.NewClient(reqOpts...),
		model:   model,
		options: opts,
	}, nil
}

func (s *AnthropicSummarizer) Summarize(ctx context.Context, req Request) (string, error) {
	prompt, err := BuildPrompt(s.options, req)
	if err != nil {
		return "", err
	}

	message, err := s.client.Messages.New(
		ctx,
		anthropic.MessageNewParams{
			Model:       s.model,
			MaxTokens:   defaultMaxTokens,
			Temperature: anthropic.Float(defaultTemperature),
			System: []anthropic.TextBlockParam{
				{Text: prompt.System},
			},
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(
					anthropic.NewTextBlock(prompt.User),
				),
			},
		},
	)
	if err != nil {
		return "", fmt.Errorf("summary failed: %w", err)
	}

	if message == nil || len(message.Content) == 0 {
		return "", fmt.Errorf("empty response from Anthropic")
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("no text in Anthropic response")
	}
	return text, nil
}
