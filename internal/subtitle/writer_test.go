package subtitle

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func sampleSubtitle() *Subtitle {
	return FromSegments([]Segment{
		{StartTime: 1500 * time.Millisecond, EndTime: 3 * time.Second, Text: "first"},
		{StartTime: 3 * time.Second, EndTime: 4 * time.Second, Text: "  "},
		{StartTime: time.Hour + 5*time.Second + 20*time.Millisecond, EndTime: time.Hour + 6*time.Second, Text: "second"},
	}, "zh")
}

func TestFromSegmentsSkipsEmpty(t *testing.T) {
	sub := sampleSubtitle()
	if len(sub.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(sub.Entries))
	}
	if sub.Entries[1].Index != 2 || sub.Entries[1].Text != "second" {
		t.Errorf("unexpected second entry: %+v", sub.Entries[1])
	}
	if got := sub.Text(); got != "first\nsecond\n" {
		t.Errorf("expected joined text, got %q", got)
	}
}

func TestWriteSRT(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.srt")
	if err := WriteFile(sampleSubtitle(), path, ""); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	got := readFile(t, path)
	want := "1\n00:00:01,500 --> 00:00:03,000\nfirst\n\n" +
		"2\n01:00:05,020 --> 01:00:06,000\nsecond\n\n"
	if got != want {
		t.Errorf("unexpected srt output:\n%q\nwant:\n%q", got, want)
	}
}

func TestWriteVTT(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.vtt")
	if err := WriteFile(sampleSubtitle(), path, ""); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	got := readFile(t, path)
	if !strings.HasPrefix(got, "WEBVTT\n\n") {
		t.Errorf("expected WEBVTT header, got %q", got)
	}
	if !strings.Contains(got, "00:00:01.500 --> 00:00:03.000\nfirst") {
		t.Errorf("expected dotted timestamps, got %q", got)
	}
}

func TestWriteASS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.unknown")
	if err := WriteFile(sampleSubtitle(), path, ""); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	got := readFile(t, path)
	for _, want := range []string{
		"[Script Info]\nTitle: bilisub\n",
		"Style: Default,Microsoft YaHei,48,",
		"Dialogue: 0,0:00:01.50,0:00:03.00,Default,,0,0,0,,first\n",
		"Dialogue: 0,1:00:05.02,1:00:06.00,Default,,0,0,0,,second\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected ass output to contain %q", want)
		}
	}
}

func TestWriteFileExplicitFormatAndTitle(t *testing.T) {
	sub := sampleSubtitle()
	sub.Title = "测试视频"
	path := filepath.Join(t.TempDir(), "out.txt")
	if err := WriteFile(sub, path, FormatASS); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if got := readFile(t, path); !strings.HasPrefix(got, "[Script Info]\nTitle: 测试视频\n") {
		t.Errorf("expected subtitle title in header, got %q", got)
	}

	srtPath := filepath.Join(t.TempDir(), "out.ass")
	if err := WriteFile(sub, srtPath, FormatSRT); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if got := readFile(t, srtPath); !strings.HasPrefix(got, "1\n00:00:01,500 --> ") {
		t.Errorf("expected explicit format to win over extension, got %q", got)
	}

	if err := WriteFile(sub, path, Format("docx")); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestFormatHelpers(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"a.ass", FormatASS, true},
		{"a.SSA", FormatASS, true},
		{"a.srt", FormatSRT, true},
		{"dir/a.vtt", FormatVTT, true},
		{"a.txt", "", false},
	}
	for _, tt := range tests {
		got, ok := FormatFromPath(tt.path)
		if got != tt.want || ok != tt.ok {
			t.Errorf("FormatFromPath(%q) = %q, %v; want %q, %v", tt.path, got, ok, tt.want, tt.ok)
		}
	}

	if f, ok := ParseFormat("ssa"); !ok || f != FormatASS {
		t.Errorf("expected ssa to map to ass, got %q", f)
	}
	if _, ok := ParseFormat("docx"); ok {
		t.Error("expected docx to be rejected")
	}
	if ext := ExtensionForFormat(FormatSRT); ext != ".srt" {
		t.Errorf("expected .srt, got %q", ext)
	}
}
