package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgpai22/bilisub/internal/subtitle"
)

var extractCmd = &cobra.Command{
	Use:   "extract [subtitle_file]",
	Short: "Reduce an ASS/SSA subtitle to start,end,text lines",
	Long: `Read every "Dialogue:" line of an ASS/SSA script and write its start
time, end time and text as "start,end,text", one record per line, in input
order. Other lines are ignored; dialogue lines with fewer than ten fields are
skipped and counted.

The text is written as-is, so it may itself contain commas.

Examples:
  bilisub extract xml.ass
  bilisub extract xml.ass -o xml.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		outputPath = extractOutputPath(inputPath)
	}
	if samePath(inputPath, outputPath) {
		return fmt.Errorf("output path %s would overwrite the input", outputPath)
	}

	logger.Infow("Extracting dialogue",
		"input", inputPath,
		"output", outputPath,
	)

	stats, err := subtitle.Extract(inputPath, outputPath)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	logExtractStats(stats)
	fmt.Printf("Dialogue extracted: %s\n", absPath(outputPath))

	return nil
}

func logExtractStats(stats subtitle.ExtractStats) {
	if stats.Skipped > 0 {
		logger.Warnw("Skipped malformed dialogue lines", "skipped", stats.Skipped)
	}
	if stats.Written == 0 {
		logger.Warnw("No dialogue lines found")
		return
	}

	start, startErr := stats.First.StartTime()
	end, endErr := stats.Last.EndTime()
	if err := firstError(startErr, endErr); err != nil {
		logger.Warnw("Could not decode dialogue timestamps", "error", err)
		logger.Infow("Extraction complete", "written", stats.Written, "skipped", stats.Skipped)
		return
	}

	logger.Infow("Extraction complete",
		"written", stats.Written,
		"skipped", stats.Skipped,
		"from", start.String(),
		"to", end.String(),
	)
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
