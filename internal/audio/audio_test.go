package audio

import (
	"testing"
	"time"
)

func TestMediaFileDetection(t *testing.T) {
	tests := []struct {
		path  string
		video bool
		media bool
	}{
		{"clip.MP4", true, true},
		{"dir/talk.flv", true, true},
		{"voice.m4a", false, true},
		{"voice.mp3", false, true},
		{"subs.ass", false, false},
		{"noext", false, false},
	}

	for _, tt := range tests {
		if got := IsVideoFile(tt.path); got != tt.video {
			t.Errorf("IsVideoFile(%q) = %v, want %v", tt.path, got, tt.video)
		}
		if got := IsMediaFile(tt.path); got != tt.media {
			t.Errorf("IsMediaFile(%q) = %v, want %v", tt.path, got, tt.media)
		}
	}
}

func TestCompressionArgs(t *testing.T) {
	args := compressionArgs(DefaultCompressionOptions())
	if args["acodec"] != "libmp3lame" {
		t.Errorf("expected libmp3lame, got %v", args["acodec"])
	}
	if args["ar"] != 16000 || args["ac"] != 1 {
		t.Errorf("expected mono 16kHz, got ar=%v ac=%v", args["ar"], args["ac"])
	}
	if args["b:a"] != "64k" {
		t.Errorf("expected 64k bitrate, got %v", args["b:a"])
	}

	args = compressionArgs(CompressionOptions{Format: "aac"})
	if args["acodec"] != "aac" {
		t.Errorf("expected aac, got %v", args["acodec"])
	}
	if _, ok := args["ar"]; ok {
		t.Error("sample rate should be omitted when zero")
	}
}

func TestParseProbeDuration(t *testing.T) {
	got, err := parseProbeDuration([]byte(`{"format":{"duration":"12.500000"}}`))
	if err != nil {
		t.Fatalf("parseProbeDuration failed: %v", err)
	}
	if got != 12500*time.Millisecond {
		t.Errorf("expected 12.5s, got %v", got)
	}

	if _, err := parseProbeDuration([]byte(`{"format":{}}`)); err == nil {
		t.Error("expected error for missing duration")
	}
}
