package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/bilisub/internal/bilibili"
)

var infoCmd = &cobra.Command{
	Use:   "info [bvid|avid]",
	Short: "List the pages and subtitle tracks of a bilibili video",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	id, err := bilibili.ParseVideoID(args[0])
	if err != nil {
		return err
	}

	client, err := newBilibiliClient()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	info, err := client.VideoInfo(ctx, id)
	if err != nil {
		return explainBilibiliError(err, cfg.HasCredential())
	}

	pages := info.Pages
	if len(pages) == 0 && info.CID > 0 {
		pages = []bilibili.Page{{CID: info.CID, Page: 1, Part: info.Title, Duration: info.Duration}}
	}

	var rows [][]string
	for i, page := range pages {
		tracks, err := client.SubtitleTracks(ctx, id, page.CID)
		if err != nil {
			return explainBilibiliError(err, cfg.HasCredential())
		}
		logger.Debugw("Listed subtitle tracks", "cid", page.CID, "tracks", len(tracks))

		base := []string{
			strconv.Itoa(i),
			page.Part,
			formatSeconds(page.Duration),
		}
		if len(tracks) == 0 {
			rows = append(rows, append(base, "-", "-", ""))
			continue
		}
		for j, track := range tracks {
			if j > 0 {
				base = []string{"", "", ""}
			}
			ai := ""
			if track.AIGenerated() {
				ai = "yes"
			}
			rows = append(rows, append(base, track.Lan, track.LanDoc, ai))
		}
	}

	title := fmt.Sprintf("%s (%s) by %s", info.Title, info.BVID, info.Owner.Name)
	fmt.Println(renderTable(
		title,
		[]string{"Page", "Part", "Duration", "Lang", "Name", "AI"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight},
	))

	if !cfg.HasCredential() {
		logger.Infow("Not logged in; some subtitle tracks may be hidden")
	}
	return nil
}

func formatSeconds(seconds int) string {
	return (time.Duration(seconds) * time.Second).String()
}
