package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgpai22/bilisub/internal/bilibili"
	"github.com/mgpai22/bilisub/internal/subtitle"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [bvid|avid]",
	Short: "Download the subtitle track of a bilibili video",
	Long: `Download a subtitle track of a bilibili video and save it as ASS, SRT
or VTT. The first track of the first page is used unless --page or --lang
select another one. Most tracks, including AI generated ones, are only
served to logged-in sessions.

Examples:
  bilisub fetch BV1xx411c7mD
  bilisub fetch av170001 --page 1 --lang en-US -f srt
  bilisub fetch BV1xx411c7mD --extract`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().
		IntP("page", "p", 0, "Page index of a multi-part video, starting at 0")
	fetchCmd.Flags().
		StringP("lang", "l", "", "Subtitle language code (e.g. zh-CN, ai-zh); first track when empty")
	fetchCmd.Flags().
		StringP("format", "f", "", "Output subtitle format (ass, srt, vtt); defaults to the config value")
	fetchCmd.Flags().
		BoolP("extract", "x", false, "Also write start,end,text lines next to the subtitle")
}

func runFetch(cmd *cobra.Command, args []string) error {
	id, err := bilibili.ParseVideoID(args[0])
	if err != nil {
		return err
	}

	pageIndex, _ := cmd.Flags().GetInt("page")
	lanCode, _ := cmd.Flags().GetString("lang")
	formatStr, _ := cmd.Flags().GetString("format")
	extract, _ := cmd.Flags().GetBool("extract")
	outputPath, _ := cmd.Flags().GetString("output")

	format, err := outputFormat(formatStr, outputPath, cfg.Output.Format)
	if err != nil {
		return err
	}
	if extract && format != subtitle.FormatASS {
		return fmt.Errorf("--extract needs the ass format, got %s", format)
	}

	client, err := newBilibiliClient()
	if err != nil {
		return err
	}

	logger.Infow("Fetching subtitle",
		"video", id.String(),
		"page", pageIndex,
		"lang", lanCode,
		"logged_in", cfg.HasCredential(),
	)

	res, err := client.FetchSubtitle(cmd.Context(), bilibili.SubtitleRequest{
		ID:        id,
		PageIndex: pageIndex,
		LanCode:   lanCode,
	})
	if err != nil {
		return explainBilibiliError(err, cfg.HasCredential())
	}

	bvid := res.Info.BVID
	if bvid == "" {
		bvid = id.String()
	}
	if outputPath == "" {
		outputPath = fetchOutputPath(cfg.Output.Dir, bvid, pageIndex, format)
	}

	res.Subtitle.Title = res.Info.Title
	if err := subtitle.WriteFile(res.Subtitle, outputPath, format); err != nil {
		return fmt.Errorf("failed to write subtitles: %w", err)
	}

	logger.Infow("Subtitle saved",
		"title", res.Info.Title,
		"track", res.Track.Lan,
		"ai_generated", res.Track.AIGenerated(),
		"entries", len(res.Subtitle.Entries),
		"path", outputPath,
	)
	fmt.Printf("Subtitle saved: %s\n", absPath(outputPath))

	if !extract {
		return nil
	}

	textPath := fetchExtractPath(outputPath)
	stats, err := subtitle.Extract(outputPath, textPath)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	logExtractStats(stats)
	fmt.Printf("Dialogue extracted: %s\n", absPath(textPath))

	return nil
}
