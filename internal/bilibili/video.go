package bilibili

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mgpai22/bilisub/internal/subtitle"
)

// ErrNoSubtitle is returned when a video page has no matching subtitle track.
var ErrNoSubtitle = errors.New("bilibili: no subtitle track available")

// Owner is the uploader of a video.
type Owner struct {
	MID  int64  `json:"mid"`
	Name string `json:"name"`
}

// Page is one part of a multi-part video.
type Page struct {
	CID      int64  `json:"cid"`
	Page     int    `json:"page"`
	Part     string `json:"part"`
	Duration int    `json:"duration"`
}

// Info is the subset of /x/web-interface/view this tool uses.
type Info struct {
	BVID     string `json:"bvid"`
	AID      int64  `json:"aid"`
	CID      int64  `json:"cid"`
	Title    string `json:"title"`
	Duration int    `json:"duration"`
	Owner    Owner  `json:"owner"`
	Pages    []Page `json:"pages"`
}

// SubtitleTrack describes one subtitle language attached to a page.
type SubtitleTrack struct {
	ID          int64  `json:"id"`
	Lan         string `json:"lan"`
	LanDoc      string `json:"lan_doc"`
	SubtitleURL string `json:"subtitle_url"`
	AIType      int    `json:"ai_type"`
}

// AIGenerated reports whether the platform produced the track by ASR.
func (t SubtitleTrack) AIGenerated() bool {
	return strings.HasPrefix(t.Lan, "ai-") || t.AIType > 0
}

// SubtitleRequest selects a track: page by 0-based index, language by code
// (first track when empty).
type SubtitleRequest struct {
	ID        VideoID
	PageIndex int
	LanCode   string
}

// SubtitleResult is a downloaded track with the context it came from.
type SubtitleResult struct {
	Info     *Info
	Page     Page
	Track    SubtitleTrack
	Subtitle *subtitle.Subtitle
}

type subtitleBody struct {
	Body []struct {
		From     float64 `json:"from"`
		To       float64 `json:"to"`
		Location int     `json:"location"`
		Content  string  `json:"content"`
	} `json:"body"`
}

type playerInfo struct {
	Subtitle struct {
		Subtitles []SubtitleTrack `json:"subtitles"`
	} `json:"subtitle"`
}

func videoParams(id VideoID) url.Values {
	params := url.Values{}
	if id.BVID != "" {
		params.Set("bvid", id.BVID)
	}
	if id.AID > 0 {
		params.Set("aid", strconv.FormatInt(id.AID, 10))
	}
	return params
}

// VideoInfo fetches title, owner and page list of a video.
func (c *Client) VideoInfo(ctx context.Context, id VideoID) (*Info, error) {
	var info Info
	if err := c.getData(ctx, "x/web-interface/view", videoParams(id), &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// SubtitleTracks lists the subtitle tracks of one page.
func (c *Client) SubtitleTracks(ctx context.Context, id VideoID, cid int64) ([]SubtitleTrack, error) {
	params := videoParams(id)
	params.Set("cid", strconv.FormatInt(cid, 10))

	var player playerInfo
	if err := c.getData(ctx, "x/player/v2", params, &player); err != nil {
		return nil, err
	}
	return player.Subtitle.Subtitles, nil
}

// FetchSubtitle resolves the requested page and language and downloads the
// track body.
func (c *Client) FetchSubtitle(ctx context.Context, req SubtitleRequest) (*SubtitleResult, error) {
	info, err := c.VideoInfo(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	page, err := info.page(req.PageIndex)
	if err != nil {
		return nil, err
	}

	tracks, err := c.SubtitleTracks(ctx, req.ID, page.CID)
	if err != nil {
		return nil, err
	}

	track, ok := SelectTrack(tracks, req.LanCode)
	if !ok {
		if req.LanCode != "" {
			return nil, fmt.Errorf("%w for language %q", ErrNoSubtitle, req.LanCode)
		}
		return nil, ErrNoSubtitle
	}

	sub, err := c.DownloadTrack(ctx, track)
	if err != nil {
		return nil, err
	}

	return &SubtitleResult{
		Info:     info,
		Page:     page,
		Track:    track,
		Subtitle: sub,
	}, nil
}

func (info *Info) page(index int) (Page, error) {
	if len(info.Pages) == 0 {
		if index == 0 && info.CID > 0 {
			return Page{CID: info.CID, Page: 1, Part: info.Title, Duration: info.Duration}, nil
		}
		return Page{}, fmt.Errorf("bilibili: video %s has no pages", info.BVID)
	}
	if index < 0 || index >= len(info.Pages) {
		return Page{}, fmt.Errorf(
			"bilibili: page index %d out of range (0-%d)",
			index,
			len(info.Pages)-1,
		)
	}
	return info.Pages[index], nil
}

// SelectTrack picks the track whose language code equals lanCode, or the
// first track when lanCode is empty.
func SelectTrack(tracks []SubtitleTrack, lanCode string) (SubtitleTrack, bool) {
	if len(tracks) == 0 {
		return SubtitleTrack{}, false
	}
	if lanCode == "" {
		return tracks[0], tracks[0].SubtitleURL != ""
	}
	for _, t := range tracks {
		if t.Lan == lanCode && t.SubtitleURL != "" {
			return t, true
		}
	}
	return SubtitleTrack{}, false
}

// DownloadTrack fetches and converts a track body. Entries keep body order.
func (c *Client) DownloadTrack(ctx context.Context, track SubtitleTrack) (*subtitle.Subtitle, error) {
	rawURL := track.SubtitleURL
	if strings.HasPrefix(rawURL, "//") {
		rawURL = "https:" + rawURL
	}

	data, err := c.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	var body subtitleBody
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("bilibili: decode subtitle body: %w", err)
	}

	entries := make([]subtitle.Entry, 0, len(body.Body))
	for i, item := range body.Body {
		entries = append(entries, subtitle.Entry{
			Index:     i + 1,
			StartTime: secondsToDuration(item.From),
			EndTime:   secondsToDuration(item.To),
			Text:      item.Content,
		})
	}

	return &subtitle.Subtitle{
		Entries:  entries,
		Language: track.Lan,
		Format:   "bcc",
	}, nil
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(math.Round(seconds*1000)) * time.Millisecond
}
