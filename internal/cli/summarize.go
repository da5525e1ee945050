package cli

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/mgpai22/bilisub/internal/bilibili"
	"github.com/mgpai22/bilisub/internal/charset"
	"github.com/mgpai22/bilisub/internal/subtitle"
	"github.com/mgpai22/bilisub/internal/summarize"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [bvid|avid|file]",
	Short: "Summarize a video transcript with an LLM",
	Long: `Summarize the main points of a video from its subtitles.

The transcript comes from an ASS/SSA script, from a file written by
"bilisub extract", or from the subtitle track of a bilibili video.
The provider, model and API key are read from the [summary] section of the
config file; OPENAI_API_KEY, ANTHROPIC_API_KEY or GEMINI_API_KEY are used
when no key is configured.

Examples:
  bilisub summarize BV1xx411c7mD
  bilisub summarize xml.ass --provider anthropic
  bilisub summarize xml.txt -o summary.md`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

func init() {
	rootCmd.AddCommand(summarizeCmd)

	summarizeCmd.Flags().
		String("provider", "", "Summary provider (openai, anthropic, gemini)")
	summarizeCmd.Flags().
		String("model", "", "Model to use")
	summarizeCmd.Flags().
		String("summary-lang", "", "Language of the summary; detected from the transcript when empty")
	summarizeCmd.Flags().
		IntP("page", "p", 0, "Page index when summarizing a video")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	target := args[0]

	provider, _ := cmd.Flags().GetString("provider")
	model, _ := cmd.Flags().GetString("model")
	language, _ := cmd.Flags().GetString("summary-lang")
	pageIndex, _ := cmd.Flags().GetInt("page")
	outputPath, _ := cmd.Flags().GetString("output")

	summaryCfg := cfg.Summary
	if provider != "" && !strings.EqualFold(provider, summaryCfg.Provider) {
		summaryCfg.Provider = strings.ToLower(provider)
		summaryCfg.APIKey = providerKeyFromEnv(summaryCfg.Provider)
	}
	if model != "" {
		summaryCfg.Model = model
	}
	if language != "" {
		summaryCfg.Language = language
	}

	req, err := loadSummaryRequest(cmd, target, pageIndex)
	if err != nil {
		return err
	}

	summarizer, err := summarize.Factory(ctx, summarize.Provider(summaryCfg.Provider), summaryCfg.APIKey, summarize.Options{
		Model:    summaryCfg.Model,
		BaseURL:  summaryCfg.BaseURL,
		Prompt:   summaryCfg.Prompt,
		Language: summaryCfg.Language,
	})
	if err != nil {
		return fmt.Errorf("failed to create summarizer: %w", err)
	}

	logger.Infow("Summarizing transcript",
		"provider", summaryCfg.Provider,
		"characters", utf8.RuneCountInString(req.Transcript),
	)

	if streamer, ok := summarizer.(summarize.StreamSummarizer); ok && outputPath == "" {
		if _, err := streamer.SummarizeStream(ctx, req, os.Stdout); err != nil {
			return fmt.Errorf("summary failed: %w", err)
		}
		fmt.Println()
		return nil
	}

	summary, err := summarizer.Summarize(ctx, req)
	if err != nil {
		return fmt.Errorf("summary failed: %w", err)
	}

	if outputPath == "" {
		fmt.Println(summary)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(outputPath, []byte(summary+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	fmt.Printf("Summary saved: %s\n", absPath(outputPath))
	return nil
}

func loadSummaryRequest(cmd *cobra.Command, target string, pageIndex int) (summarize.Request, error) {
	if _, err := os.Stat(target); err == nil {
		transcript, err := transcriptFromFile(target)
		if err != nil {
			return summarize.Request{}, err
		}
		title := strings.TrimSuffix(filepath.Base(target), filepath.Ext(target))
		return summarize.Request{Title: title, Transcript: transcript}, nil
	}

	id, err := bilibili.ParseVideoID(target)
	if err != nil {
		return summarize.Request{}, fmt.Errorf("%s is neither a file nor a video id: %w", target, err)
	}

	client, err := newBilibiliClient()
	if err != nil {
		return summarize.Request{}, err
	}

	logger.Infow("Fetching subtitle", "video", id.String(), "page", pageIndex)
	res, err := client.FetchSubtitle(cmd.Context(), bilibili.SubtitleRequest{ID: id, PageIndex: pageIndex})
	if err != nil {
		return summarize.Request{}, explainBilibiliError(err, cfg.HasCredential())
	}

	return summarize.Request{
		Title:      res.Info.Title,
		Owner:      res.Info.Owner.Name,
		Transcript: res.Subtitle.Text(),
	}, nil
}

// transcriptFromFile reads dialogue text from an ASS/SSA script or from
// start,end,text lines; other text files are used as they are.
func transcriptFromFile(path string) (string, error) {
	if format, ok := subtitle.FormatFromPath(path); ok {
		if format != subtitle.FormatASS {
			return "", fmt.Errorf("unsupported subtitle format %s: use an ass/ssa script or extracted text", format)
		}
		scan, err := subtitle.ReadDialogues(path)
		if err != nil {
			return "", err
		}
		var sb strings.Builder
		for _, line := range scan.Lines {
			sb.WriteString(plainDialogueText(line.Text))
			sb.WriteString("\n")
		}
		return sb.String(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read transcript: %w", err)
	}
	if !utf8.Valid(data) {
		if data, err = charset.ToUTF8(data); err != nil {
			return "", fmt.Errorf("failed to decode transcript: %w", err)
		}
	}

	var sb strings.Builder
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		text := extractedLineText(scanner.Text())
		if text == "" {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read transcript: %w", err)
	}
	return sb.String(), nil
}

// text of a start,end,text record, or the whole line when it is not one
func extractedLineText(line string) string {
	line = strings.TrimSpace(line)
	parts := strings.SplitN(line, ",", 3)
	if len(parts) == 3 {
		_, startErr := subtitle.ParseTimestamp(parts[0])
		_, endErr := subtitle.ParseTimestamp(parts[1])
		if startErr == nil && endErr == nil {
			return plainDialogueText(parts[2])
		}
	}
	return line
}

// drops {\override} blocks and turns \N breaks into spaces
func plainDialogueText(text string) string {
	var sb strings.Builder
	depth := 0
	for _, r := range text {
		switch {
		case r == '{':
			depth++
		case r == '}' && depth > 0:
			depth--
		case depth == 0:
			sb.WriteRune(r)
		}
	}
	out := strings.NewReplacer(`\N`, " ", `\n`, " ", `\h`, " ").Replace(sb.String())
	return strings.TrimSpace(out)
}

func providerKeyFromEnv(provider string) string {
	switch provider {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	case "gemini":
		return os.Getenv("GEMINI_API_KEY")
	default:
		return ""
	}
}
