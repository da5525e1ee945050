package transcribe

import (
	"context"
	"testing"
	"time"
)

func TestParseWhisperResponse(t *testing.T) {
	tests := []struct {
		name      string
		rawJSON   string
		wantCount int
		wantErr   bool
	}{
		{
			name: "segments",
			rawJSON: `{
				"text": "你好。今天讲字幕。",
				"segments": [
					{"start": 0.0, "end": 1.5, "text": "你好。"},
					{"start": 1.5, "end": 3.0, "text": "今天讲字幕。"}
				],
				"language": "chinese",
				"duration": 3.0
			}`,
			wantCount: 2,
		},
		{
			name: "no segments but has text",
			rawJSON: `{
				"text": "A transcription without segments.",
				"segments": [],
				"duration": 2.5
			}`,
			wantCount: 1,
		},
		{
			name: "null segments",
			rawJSON: `{
				"text": "Transcription text only.",
				"segments": null,
				"duration": 1.0
			}`,
			wantCount: 1,
		},
		{
			name: "empty text segments filtered out",
			rawJSON: `{
				"text": "Hello world",
				"segments": [
					{"start": 0.0, "end": 0.5, "text": ""},
					{"start": 0.5, "end": 1.5, "text": "Hello world"},
					{"start": 1.5, "end": 2.0, "text": "   "}
				],
				"duration": 2.0
			}`,
			wantCount: 1,
		},
		{
			name:    "empty response",
			rawJSON: "",
			wantErr: true,
		},
		{
			name:    "invalid JSON",
			rawJSON: `{"text": "incomplete`,
			wantErr: true,
		},
		{
			name:    "no segments and no text",
			rawJSON: `{"text": "", "segments": [], "duration": 0}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseWhisperResponse(tt.rawJSON)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(result.Segments) != tt.wantCount {
				t.Errorf("got %d segments, want %d", len(result.Segments), tt.wantCount)
			}
			for i, seg := range result.Segments {
				if seg.Text == "" {
					t.Errorf("segment %d has empty text", i)
				}
			}
		})
	}
}

func TestParseWhisperResponseTimestamps(t *testing.T) {
	result, err := parseWhisperResponse(`{
		"text": "Hello world. Goodbye.",
		"segments": [
			{"start": 1.5, "end": 3.0, "text": " Hello world. "},
			{"start": 3.0, "end": 5.5, "text": "Goodbye."}
		],
		"language": "en",
		"duration": 5.5
	}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(result.Segments))
	}
	first := result.Segments[0]
	if first.StartTime != 1500*time.Millisecond || first.EndTime != 3*time.Second {
		t.Errorf("segment 0: unexpected timing %v-%v", first.StartTime, first.EndTime)
	}
	if first.Text != "Hello world." {
		t.Errorf("segment 0 text: got %q, want %q", first.Text, "Hello world.")
	}
	if result.Segments[1].EndTime != 5500*time.Millisecond {
		t.Errorf("segment 1 end time: got %v, want 5.5s", result.Segments[1].EndTime)
	}
	if result.Language != "en" {
		t.Errorf("expected language en, got %q", result.Language)
	}
	if result.Duration != 5500*time.Millisecond {
		t.Errorf("expected duration 5.5s, got %v", result.Duration)
	}
}

func TestFallbackSingleSegment(t *testing.T) {
	result, err := parseWhisperResponse(`{
		"text": "This is a transcription without segments.",
		"duration": 10.5
	}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Segments) != 1 {
		t.Fatalf("expected 1 fallback segment, got %d", len(result.Segments))
	}
	seg := result.Segments[0]
	if seg.StartTime != 0 {
		t.Errorf("fallback segment start time should be 0, got %v", seg.StartTime)
	}
	if seg.EndTime != 10500*time.Millisecond {
		t.Errorf("fallback segment end time: got %v, want 10.5s", seg.EndTime)
	}
}

func TestFactory(t *testing.T) {
	ctx := context.Background()

	tr, err := Factory(ctx, ProviderBcut, "", Options{})
	if err != nil {
		t.Fatalf("bcut factory failed: %v", err)
	}
	if _, ok := tr.(*BcutTranscriber); !ok {
		t.Errorf("expected *BcutTranscriber, got %T", tr)
	}

	if _, err := Factory(ctx, ProviderOpenAI, "", Options{}); err == nil {
		t.Error("expected error for openai without API key")
	}

	tr, err = Factory(ctx, ProviderOpenAI, "sk-test", Options{})
	if err != nil {
		t.Fatalf("openai factory failed: %v", err)
	}
	if ot, ok := tr.(*OpenAITranscriber); !ok || ot.model != "whisper-1" {
		t.Errorf("expected whisper-1 transcriber, got %T", tr)
	}

	if _, err := Factory(ctx, "whisper.cpp", "", Options{}); err == nil {
		t.Error("expected error for unknown provider")
	}
}
