package bilibili

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://api.bilibili.com"
	defaultUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	defaultReferer     = "https://www.bilibili.com/"
	defaultHTTPTimeout = 30 * time.Second
	maxResponseBytes   = 32 << 20
)

// APIError is a response whose envelope carries a non-zero code.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bilibili: api error %d: %s", e.Code, e.Message)
}

// Config describes the bilibili client configuration.
type Config struct {
	BaseURL    string
	UserAgent  string
	Credential Credential
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client wraps the bilibili web API.
type Client struct {
	baseURL    *url.URL
	userAgent  string
	credential Credential
	http       *http.Client
}

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("bilibili: parse base url: %w", err)
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultHTTPTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		credential: cfg.Credential,
		http:       client,
	}, nil
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// getData calls an API endpoint relative to the base URL and decodes the
// envelope's data field into v.
func (c *Client) getData(ctx context.Context, path string, params url.Values, v any) error {
	endpoint := c.baseURL.JoinPath(path)
	endpoint.RawQuery = params.Encode()

	body, err := c.get(ctx, endpoint.String())
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("bilibili: decode %s: %w", path, err)
	}
	if env.Code != 0 {
		return &APIError{Code: env.Code, Message: env.Message}
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return fmt.Errorf("bilibili: %s returned no data", path)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("bilibili: decode %s data: %w", path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("bilibili: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Referer", defaultReferer)
	req.Header.Set("Accept", "application/json")
	if !c.credential.empty() {
		for _, cookie := range c.credential.Cookies() {
			req.AddCookie(cookie)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bilibili: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("bilibili: read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("bilibili: %s returned status %d", req.URL.Path, resp.StatusCode)
	}
	return body, nil
}

// IsAPIError reports whether err carries the given envelope code.
func IsAPIError(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}
