package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/bilisub/internal/audio"
	"github.com/mgpai22/bilisub/internal/subtitle"
	"github.com/mgpai22/bilisub/internal/transcribe"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe [media_file]",
	Short: "Generate subtitles for a video or audio file without subtitles",
	Long: `Transcribe an audio or video file and write the result as a subtitle
file. The audio is compressed to mono mp3 with ffmpeg first.

Providers:
  bcut    bilibili's free speech recognition service (default, no key needed)
  openai  OpenAI Whisper (needs --api-key or OPENAI_API_KEY)

Examples:
  bilisub transcribe video.mp4
  bilisub transcribe talk.m4a -o talk.srt
  bilisub transcribe video.mp4 --provider openai --lang zh`,
	Args: cobra.ExactArgs(1),
	RunE: runTranscribe,
}

func init() {
	rootCmd.AddCommand(transcribeCmd)

	transcribeCmd.Flags().
		String("provider", string(transcribe.ProviderBcut), "Transcription provider (bcut, openai)")
	transcribeCmd.Flags().
		StringP("api-key", "k", "", "API key for the openai provider (or set OPENAI_API_KEY)")
	transcribeCmd.Flags().
		String("model", "", "Model for the openai provider (default whisper-1)")
	transcribeCmd.Flags().
		StringP("lang", "l", "", "Language of the audio (e.g. zh, en)")
	transcribeCmd.Flags().
		StringP("format", "f", "", "Output subtitle format (ass, srt, vtt); defaults to the output extension or config")
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	mediaPath := args[0]
	ctx := cmd.Context()

	if _, err := os.Stat(mediaPath); err != nil {
		return fmt.Errorf("file not found: %w", err)
	}
	if !audio.IsMediaFile(mediaPath) {
		return fmt.Errorf("unsupported file type: %s (expected audio or video file)", filepath.Ext(mediaPath))
	}

	providerStr, _ := cmd.Flags().GetString("provider")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	language, _ := cmd.Flags().GetString("lang")
	formatStr, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")

	provider := transcribe.Provider(strings.ToLower(strings.TrimSpace(providerStr)))
	if provider == transcribe.ProviderOpenAI && apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	format, err := outputFormat(formatStr, outputPath, cfg.Output.Format)
	if err != nil {
		return err
	}
	if outputPath == "" {
		outputPath = transcribeOutputPath(mediaPath, format)
	}

	opts := transcribe.Options{
		Language: language,
		Model:    model,
	}
	if provider == transcribe.ProviderBcut {
		opts.BaseURL = cfg.Bcut.BaseURL
		opts.PollInterval = time.Duration(cfg.Bcut.PollIntervalSeconds) * time.Second
		opts.MaxAttempts = cfg.Bcut.MaxAttempts
	}

	transcriber, err := transcribe.Factory(ctx, provider, apiKey, opts)
	if err != nil {
		return fmt.Errorf("failed to create transcriber: %w", err)
	}

	tempDir, err := os.MkdirTemp("", "bilisub-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	logger.Infow("Compressing audio for transcription", "input", mediaPath)
	audioPath := filepath.Join(tempDir, "audio.mp3")
	if err := audio.Compress(ctx, mediaPath, audioPath, audio.DefaultCompressionOptions()); err != nil {
		return fmt.Errorf("failed to compress audio: %w", err)
	}

	if duration, err := audio.GetDuration(ctx, audioPath); err != nil {
		logger.Debugw("Could not probe audio duration", "error", err)
	} else {
		logger.Infow("Audio prepared", "duration", duration.String())
	}

	logger.Infow("Transcribing audio", "provider", provider)
	result, err := transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}

	subs := result.Subtitle()
	subs.Format = string(format)
	if len(subs.Entries) == 0 {
		logger.Warnw("No speech recognised")
	}

	subs.Title = strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))
	if err := subtitle.WriteFile(subs, outputPath, format); err != nil {
		return fmt.Errorf("failed to write subtitles: %w", err)
	}

	logger.Infow("Transcription complete",
		"segments", len(subs.Entries),
		"duration", result.Duration.String(),
	)
	fmt.Printf("Subtitles generated successfully: %s\n", absPath(outputPath))

	return nil
}
