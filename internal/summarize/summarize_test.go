package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func TestFactoryReturnsProviders(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		provider Provider
		check    func(Summarizer) bool
	}{
		{ProviderOpenAI, func(s Summarizer) bool { _, ok := s.(*OpenAISummarizer); return ok }},
		{ProviderAnthropic, func(s Summarizer) bool { _, ok := s.(*AnthropicSummarizer); return ok }},
		{ProviderGemini, func(s Summarizer) bool { _, ok := s.(*GeminiSummarizer); return ok }},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			s, err := Factory(ctx, tt.provider, "fake-key", Options{})
			if err != nil {
				t.Fatalf("Factory(%s) returned error: %v", tt.provider, err)
			}
			if !tt.check(s) {
				t.Errorf("unexpected summarizer type %T", s)
			}

			if _, err := Factory(ctx, tt.provider, "", Options{}); err == nil {
				t.Error("expected error for missing API key")
			}
		})
	}
}

func TestFactoryRejectsUnknownProvider(t *testing.T) {
	_, err := Factory(context.Background(), Provider("qwen"), "fake-key", Options{})
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt, err := BuildPrompt(
		Options{Language: "English"},
		Request{Title: "测试视频", Owner: "uploader", Transcript: "  第一句\n第二句  "},
	)
	if err != nil {
		t.Fatalf("BuildPrompt failed: %v", err)
	}

	if prompt.System != DefaultSystemPrompt {
		t.Errorf("expected default system prompt, got %q", prompt.System)
	}
	for _, want := range []string{
		"Title: 测试视频\n",
		"Uploader: uploader\n",
		"Subtitles:\n第一句\n第二句\n",
		"Write the summary in English.",
	} {
		if !strings.Contains(prompt.User, want) {
			t.Errorf("expected user prompt to contain %q, got %q", want, prompt.User)
		}
	}
}

func TestBuildPromptCustomSystemAndDetectedLanguage(t *testing.T) {
	prompt, err := BuildPrompt(
		Options{Prompt: "List the key points."},
		Request{Transcript: "今天我们来聊一聊如何从视频里提取字幕文本"},
	)
	if err != nil {
		t.Fatalf("BuildPrompt failed: %v", err)
	}
	if prompt.System != "List the key points." {
		t.Errorf("expected custom system prompt, got %q", prompt.System)
	}
	if strings.Contains(prompt.User, "Title:") {
		t.Errorf("title header should be omitted, got %q", prompt.User)
	}
	if !strings.HasSuffix(prompt.User, "Write the summary in Chinese.") {
		t.Errorf("expected detected Chinese hint, got %q", prompt.User)
	}
}

func TestBuildPromptEmptyTranscript(t *testing.T) {
	for _, transcript := range []string{"", "   \n\t"} {
		_, err := BuildPrompt(Options{}, Request{Title: "x", Transcript: transcript})
		if !errors.Is(err, ErrEmptyTranscript) {
			t.Errorf("expected ErrEmptyTranscript for %q, got %v", transcript, err)
		}
	}
}

func TestOpenAISummarizerRequest(t *testing.T) {
	var (
		mu   sync.Mutex
		body map[string]any
		auth string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		mu.Lock()
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"cmpl-1","object":"chat.completion","created":1,"model":"qwen-max-latest",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"  主要观点：提取字幕。  "}}]}`)
	}))
	defer server.Close()

	s, err := NewOpenAISummarizer(context.Background(), "sk-test", Options{
		Model:    "qwen-max-latest",
		BaseURL:  server.URL + "/v1/",
		Language: "Chinese",
	})
	if err != nil {
		t.Fatalf("NewOpenAISummarizer failed: %v", err)
	}

	summary, err := s.Summarize(context.Background(), Request{Transcript: "字幕内容"})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if summary != "主要观点：提取字幕。" {
		t.Errorf("unexpected summary %q", summary)
	}

	mu.Lock()
	defer mu.Unlock()
	if auth != "Bearer sk-test" {
		t.Errorf("expected bearer auth, got %q", auth)
	}
	if body["model"] != "qwen-max-latest" {
		t.Errorf("unexpected model %v", body["model"])
	}
	if body["temperature"] != 0.7 || body["max_tokens"] != float64(2000) {
		t.Errorf("unexpected sampling params: temperature=%v max_tokens=%v", body["temperature"], body["max_tokens"])
	}
	messages, _ := body["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("expected system and user messages, got %v", body["messages"])
	}
	first, _ := messages[0].(map[string]any)
	if first["role"] != "system" || first["content"] != DefaultSystemPrompt {
		t.Errorf("unexpected system message %v", first)
	}
}

func TestOpenAISummarizerStream(t *testing.T) {
	var (
		mu     sync.Mutex
		stream any
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		stream = body["stream"]
		mu.Unlock()

		w.Header().Set("Content-Type", "text/event-stream")
		for _, delta := range []string{"主要", "观点：", "提取字幕。"} {
			fmt.Fprintf(w, "data: {\"id\":\"c1\",\"object\":\"chat.completion.chunk\",\"created\":1,\"model\":\"m\","+
				"\"choices\":[{\"index\":0,\"delta\":{\"content\":%q},\"finish_reason\":null}]}\n\n", delta)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	s, err := NewOpenAISummarizer(context.Background(), "sk-test", Options{BaseURL: server.URL + "/v1/"})
	if err != nil {
		t.Fatalf("NewOpenAISummarizer failed: %v", err)
	}

	var out strings.Builder
	summary, err := s.SummarizeStream(context.Background(), Request{Transcript: "字幕内容"}, &out)
	if err != nil {
		t.Fatalf("SummarizeStream failed: %v", err)
	}
	if summary != "主要观点：提取字幕。" {
		t.Errorf("unexpected summary %q", summary)
	}
	if out.String() != "主要观点：提取字幕。" {
		t.Errorf("expected chunks written as they arrive, got %q", out.String())
	}

	mu.Lock()
	defer mu.Unlock()
	if stream != true {
		t.Errorf("expected stream=true in request, got %v", stream)
	}

	var _ StreamSummarizer = s
}

func TestAnthropicSummarizerRequest(t *testing.T) {
	var (
		mu   sync.Mutex
		body map[string]any
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		mu.Lock()
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-haiku-4-5",
			"content":[{"type":"text","text":"Summary."}],
			"stop_reason":"end_turn","usage":{"input_tokens":10,"output_tokens":2}}`)
	}))
	defer server.Close()

	s, err := NewAnthropicSummarizer(context.Background(), "key", Options{BaseURL: server.URL, Language: "English"})
	if err != nil {
		t.Fatalf("NewAnthropicSummarizer failed: %v", err)
	}

	summary, err := s.Summarize(context.Background(), Request{Transcript: "hello"})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if summary != "Summary." {
		t.Errorf("unexpected summary %q", summary)
	}

	mu.Lock()
	defer mu.Unlock()
	if body["max_tokens"] != float64(2000) {
		t.Errorf("expected max_tokens 2000, got %v", body["max_tokens"])
	}
	system, _ := body["system"].([]any)
	if len(system) != 1 {
		t.Fatalf("expected one system block, got %v", body["system"])
	}
}

func TestSummarizeEmptyTranscriptSkipsRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty transcript")
	}))
	defer server.Close()

	s, err := NewOpenAISummarizer(context.Background(), "sk-test", Options{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewOpenAISummarizer failed: %v", err)
	}
	if _, err := s.Summarize(context.Background(), Request{}); !errors.Is(err, ErrEmptyTranscript) {
		t.Errorf("expected ErrEmptyTranscript, got %v", err)
	}
}
