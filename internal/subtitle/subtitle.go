package subtitle

import (
	"path/filepath"
	"strings"
	"time"
)

// represents single subtitle entry
type Entry struct {
	Index     int
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
}

// represents complete subtitle track
type Subtitle struct {
	Entries  []Entry
	Language string
	Format   string
	// script title for ASS output; the writer's own title when empty
	Title string
}

// Text joins every entry's text, one entry per line.
func (s *Subtitle) Text() string {
	if s == nil {
		return ""
	}
	var sb strings.Builder
	for _, entry := range s.Entries {
		text := strings.TrimSpace(entry.Text)
		if text == "" {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String()
}

// represents supported subtitle formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
	FormatASS Format = "ass"
)

// timed piece of recognised speech
type Segment struct {
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
}

// FromSegments numbers non-empty segments as subtitle entries.
func FromSegments(segments []Segment, language string) *Subtitle {
	entries := make([]Entry, 0, len(segments))
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		entries = append(entries, Entry{
			Index:     len(entries) + 1,
			StartTime: seg.StartTime,
			EndTime:   seg.EndTime,
			Text:      text,
		})
	}
	return &Subtitle{Entries: entries, Language: language}
}

// interface for writing subtitles to files
type Writer interface {
	Write(subtitle *Subtitle, path string) error
}

// subtitle format based on file extension, ok is false for unknown extensions
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".srt":
		return FormatSRT, true
	case ".vtt":
		return FormatVTT, true
	case ".ass", ".ssa":
		return FormatASS, true
	default:
		return "", false
	}
}

// file extension for a format
func ExtensionForFormat(format Format) string {
	switch format {
	case FormatSRT:
		return ".srt"
	case FormatVTT:
		return ".vtt"
	default:
		return ".ass"
	}
}

func ParseFormat(s string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatSRT:
		return FormatSRT, true
	case FormatVTT:
		return FormatVTT, true
	case FormatASS, "ssa":
		return FormatASS, true
	default:
		return "", false
	}
}
