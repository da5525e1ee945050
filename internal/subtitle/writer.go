package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SubRip format
type SRTWriter struct{}

// WebVTT format
type VTTWriter struct{}

// Advanced SubStation Alpha format
type ASSWriter struct {
	Title    string
	FontName string
	FontSize int
	PlayResX int
	PlayResY int
}

func NewWriter(format Format) (Writer, error) {
	switch format {
	case FormatSRT:
		return &SRTWriter{}, nil
	case FormatVTT:
		return &VTTWriter{}, nil
	case FormatASS:
		return NewASSWriter(""), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func NewASSWriter(title string) *ASSWriter {
	if title == "" {
		title = "bilisub"
	}
	return &ASSWriter{
		Title:    title,
		FontName: "Microsoft YaHei",
		FontSize: 48,
		PlayResX: 1920,
		PlayResY: 1080,
	}
}

// WriteFile writes sub to path in format. An empty format is taken from the
// extension of path, falling back to ASS.
func WriteFile(sub *Subtitle, path string, format Format) error {
	if format == "" {
		var ok bool
		if format, ok = FormatFromPath(path); !ok {
			format = FormatASS
		}
	}
	w, err := NewWriter(format)
	if err != nil {
		return err
	}
	return w.Write(sub, path)
}

// writes the subtitle to an SRT file
func (w *SRTWriter) Write(sub *Subtitle, path string) error {
	var sb strings.Builder
	for i, entry := range sub.Entries {
		fmt.Fprintf(&sb, "%d\n", i+1)
		fmt.Fprintf(&sb, "%s --> %s\n",
			formatClock(entry.StartTime, ','),
			formatClock(entry.EndTime, ','))
		sb.WriteString(entry.Text)
		sb.WriteString("\n\n")
	}

	return writeSubtitleFile(path, sb.String())
}

// writes the subtitle to a VTT file
func (w *VTTWriter) Write(sub *Subtitle, path string) error {
	var sb strings.Builder
	sb.WriteString("WEBVTT\n\n")

	for i, entry := range sub.Entries {
		fmt.Fprintf(&sb, "%d\n", i+1)
		fmt.Fprintf(&sb, "%s --> %s\n",
			formatClock(entry.StartTime, '.'),
			formatClock(entry.EndTime, '.'))
		sb.WriteString(entry.Text)
		sb.WriteString("\n\n")
	}

	return writeSubtitleFile(path, sb.String())
}

// writes the subtitle to an ASS file
func (w *ASSWriter) Write(sub *Subtitle, path string) error {
	var sb strings.Builder

	title := w.Title
	if sub.Title != "" {
		title = sub.Title
	}

	sb.WriteString("[Script Info]\n")
	fmt.Fprintf(&sb, "Title: %s\n", title)
	sb.WriteString("ScriptType: v4.00+\n")
	sb.WriteString("Collisions: Normal\n")
	fmt.Fprintf(&sb, "PlayResX: %d\n", w.PlayResX)
	fmt.Fprintf(&sb, "PlayResY: %d\n\n", w.PlayResY)

	sb.WriteString("[V4+ Styles]\n")
	sb.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	fmt.Fprintf(&sb, "Style: Default,%s,%d,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1\n\n",
		w.FontName, w.FontSize)

	sb.WriteString("[Events]\n")
	sb.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")

	for _, entry := range sub.Entries {
		fmt.Fprintf(&sb, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			FormatASSTime(entry.StartTime),
			FormatASSTime(entry.EndTime),
			escapeASSText(entry.Text))
	}

	return writeSubtitleFile(path, sb.String())
}

// HH:MM:SS<sep>mmm as used by SRT (',') and VTT ('.')
func formatClock(d time.Duration, sep byte) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d%c%03d", hours, minutes, seconds, sep, millis)
}

// FormatASSTime renders d as H:MM:SS.cc, the inverse of ParseTimestamp.
func FormatASSTime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	centis := (int(d.Milliseconds()) % 1000) / 10

	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, seconds, centis)
}

func escapeASSText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\n", "\\N")
}

func writeSubtitleFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write subtitle file: %w", err)
	}
	return nil
}
