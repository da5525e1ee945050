package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mgpai22/bilisub/internal/subtitle"
)

const (
	DefaultBcutBaseURL = "https://member.bilibili.com/x/bcut/rubick-interface"

	bcutModelID   = "7"
	bcutUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	defaultPollInterval = 5 * time.Second
	defaultMaxAttempts  = 60
)

// task states reported by task/result
const (
	bcutStateStopped  = 0
	bcutStateRunning  = 1
	bcutStateError    = 3
	bcutStateComplete = 4
)

// ErrTaskTimeout is returned when a recognition task is still running after
// the configured number of polls.
var ErrTaskTimeout = errors.New("bcut: task did not finish in time")

// TaskError reports a task the service marked as failed.
type TaskError struct {
	TaskID string
	Remark string
}

func (e *TaskError) Error() string {
	if e.Remark == "" {
		return fmt.Sprintf("bcut: task %s failed", e.TaskID)
	}
	return fmt.Sprintf("bcut: task %s failed: %s", e.TaskID, e.Remark)
}

// implements Transcriber with the bcut (必剪) speech recognition service
type BcutTranscriber struct {
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration
	maxAttempts  int
	language     string
}

type bcutEnvelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type resourceCreate struct {
	ResourceID string   `json:"resource_id"`
	InBossKey  string   `json:"in_boss_key"`
	UploadID   string   `json:"upload_id"`
	UploadURLs []string `json:"upload_urls"`
	PerSize    int      `json:"per_size"`
}

type resourceComplete struct {
	ResourceID  string `json:"resource_id"`
	DownloadURL string `json:"download_url"`
}

type taskCreate struct {
	TaskID string `json:"task_id"`
}

type taskStatus struct {
	TaskID string `json:"task_id"`
	Result string `json:"result"`
	Remark string `json:"remark"`
	State  int    `json:"state"`
}

type bcutResult struct {
	Utterances []struct {
		StartTime  int64  `json:"start_time"`
		EndTime    int64  `json:"end_time"`
		Transcript string `json:"transcript"`
	} `json:"utterances"`
}

func NewBcutTranscriber(opts Options) *BcutTranscriber {
	t := &BcutTranscriber{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		httpClient:   opts.HTTPClient,
		pollInterval: opts.PollInterval,
		maxAttempts:  opts.MaxAttempts,
		language:     opts.Language,
	}
	if t.baseURL == "" {
		t.baseURL = DefaultBcutBaseURL
	}
	if t.httpClient == nil {
		t.httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if t.pollInterval <= 0 {
		t.pollInterval = defaultPollInterval
	}
	if t.maxAttempts <= 0 {
		t.maxAttempts = defaultMaxAttempts
	}
	if t.language == "" {
		t.language = "zh"
	}
	return t
}

// uploads the audio, starts a recognition task and waits for its result
func (t *BcutTranscriber) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("audio file is empty: %s", audioPath)
	}

	downloadURL, err := t.upload(ctx, data)
	if err != nil {
		return nil, err
	}

	taskID, err := t.createTask(ctx, downloadURL)
	if err != nil {
		return nil, err
	}

	status, err := t.wait(ctx, taskID)
	if err != nil {
		return nil, err
	}

	segments, err := parseBcutResult(status.Result)
	if err != nil {
		return nil, err
	}

	var duration time.Duration
	if n := len(segments); n > 0 {
		duration = segments[n-1].EndTime
	}

	return &Result{
		Segments: segments,
		Language: t.language,
		Duration: duration,
	}, nil
}

func (t *BcutTranscriber) upload(ctx context.Context, data []byte) (string, error) {
	var created resourceCreate
	err := t.postJSON(ctx, "resource/create", map[string]any{
		"type":             2,
		"name":             uuid.NewString() + ".mp3",
		"size":             len(data),
		"ResourceFileType": "mp3",
		"model_id":         bcutModelID,
	}, &created)
	if err != nil {
		return "", fmt.Errorf("bcut: create resource: %w", err)
	}
	if len(created.UploadURLs) == 0 || created.PerSize <= 0 {
		return "", fmt.Errorf("bcut: create resource: no upload slots returned")
	}

	etags := make([]string, 0, len(created.UploadURLs))
	for i, uploadURL := range created.UploadURLs {
		start := i * created.PerSize
		if start >= len(data) {
			break
		}
		end := min(start+created.PerSize, len(data))

		etag, err := t.putChunk(ctx, uploadURL, data[start:end])
		if err != nil {
			return "", fmt.Errorf("bcut: upload chunk %d: %w", i, err)
		}
		etags = append(etags, etag)
	}

	var completed resourceComplete
	err = t.postJSON(ctx, "resource/create/complete", map[string]any{
		"InBossKey":  created.InBossKey,
		"ResourceId": created.ResourceID,
		"Etags":      strings.Join(etags, ","),
		"UploadId":   created.UploadID,
		"model_id":   bcutModelID,
	}, &completed)
	if err != nil {
		return "", fmt.Errorf("bcut: complete upload: %w", err)
	}
	if completed.DownloadURL == "" {
		return "", fmt.Errorf("bcut: complete upload: empty download url")
	}

	return completed.DownloadURL, nil
}

func (t *BcutTranscriber) putChunk(ctx context.Context, uploadURL string, chunk []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(chunk))
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", bcutUserAgent)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("returned status %d", resp.StatusCode)
	}

	etag := resp.Header.Get("Etag")
	if etag == "" {
		return "", fmt.Errorf("missing etag")
	}
	return etag, nil
}

func (t *BcutTranscriber) createTask(ctx context.Context, resource string) (string, error) {
	var task taskCreate
	err := t.postJSON(ctx, "task", map[string]any{
		"resource": resource,
		"model_id": bcutModelID,
	}, &task)
	if err != nil {
		return "", fmt.Errorf("bcut: create task: %w", err)
	}
	if task.TaskID == "" {
		return "", fmt.Errorf("bcut: create task: empty task id")
	}
	return task.TaskID, nil
}

// polls task/result until the task completes, fails or runs out of attempts
func (t *BcutTranscriber) wait(ctx context.Context, taskID string) (*taskStatus, error) {
	params := url.Values{}
	params.Set("model_id", bcutModelID)
	params.Set("task_id", taskID)

	for attempt := 0; attempt < t.maxAttempts; attempt++ {
		var status taskStatus
		if err := t.do(ctx, http.MethodGet, "task/result?"+params.Encode(), nil, &status); err != nil {
			return nil, fmt.Errorf("bcut: query task: %w", err)
		}

		switch status.State {
		case bcutStateComplete:
			return &status, nil
		case bcutStateError:
			return nil, &TaskError{TaskID: taskID, Remark: status.Remark}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(t.pollInterval):
		}
	}

	return nil, fmt.Errorf("%w: %s after %d polls", ErrTaskTimeout, taskID, t.maxAttempts)
}

func (t *BcutTranscriber) postJSON(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return t.do(ctx, http.MethodPost, path, body, v)
}

func (t *BcutTranscriber) do(ctx context.Context, method, path string, body []byte, v any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+"/"+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", bcutUserAgent)
	req.Header.Set("Cache-Control", "no-cache")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("returned status %d", resp.StatusCode)
	}

	var env bcutEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if env.Code != 0 {
		return fmt.Errorf("code %d: %s", env.Code, env.Message)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return fmt.Errorf("response has no data")
	}
	return json.Unmarshal(env.Data, v)
}

func parseBcutResult(raw string) ([]subtitle.Segment, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("bcut: task finished without a result")
	}

	var result bcutResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("bcut: decode result: %w", err)
	}

	segments := make([]subtitle.Segment, 0, len(result.Utterances))
	for _, u := range result.Utterances {
		text := strings.TrimSpace(u.Transcript)
		if text == "" {
			continue
		}
		segments = append(segments, subtitle.Segment{
			StartTime: time.Duration(u.StartTime) * time.Millisecond,
			EndTime:   time.Duration(u.EndTime) * time.Millisecond,
			Text:      text,
		})
	}
	return segments, nil
}
