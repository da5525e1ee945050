package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Credential holds the browser cookies used to authenticate against bilibili.
type Credential struct {
	SESSDATA    string `toml:"sessdata"`
	BiliJct     string `toml:"bili_jct"`
	Buvid3      string `toml:"buvid3"`
	DedeUserID  string `toml:"dedeuserid"`
	ACTimeValue string `toml:"ac_time_value"`
}

// Bilibili contains the platform API connection settings.
type Bilibili struct {
	BaseURL        string `toml:"base_url"`
	UserAgent      string `toml:"user_agent"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Bcut contains settings for the bcut speech recognition service.
type Bcut struct {
	BaseURL             string `toml:"base_url"`
	PollIntervalSeconds int    `toml:"poll_interval_seconds"`
	MaxAttempts         int    `toml:"max_attempts"`
}

// Summary contains LLM settings for subtitle summaries.
type Summary struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
	Prompt   string `toml:"prompt"`
	Language string `toml:"language"`
}

// Output contains defaults for generated files.
type Output struct {
	Dir    string `toml:"dir"`
	Format string `toml:"format"`
}

// Config encapsulates all configuration values for bilisub.
type Config struct {
	Credential Credential `toml:"credential"`
	Bilibili   Bilibili   `toml:"bilibili"`
	Bcut       Bcut       `toml:"bcut"`
	Summary    Summary    `toml:"summary"`
	Output     Output     `toml:"output"`
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/bilisub/config.toml, falling
// back to ~/.config.
func DefaultConfigPath() (string, error) {
	if base, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "bilisub", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "bilisub", "config.toml"), nil
}

// Load reads the configuration at path (or the default location when path
// is empty), applies environment overrides and validates the result. A
// missing file is not an error; the returned bool reports whether one was
// read.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolved := path
	if resolved == "" {
		var err error
		resolved, err = DefaultConfigPath()
		if err != nil {
			return nil, "", false, err
		}
	}

	exists := true
	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if path != "" {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		exists = false
	case err != nil:
		return nil, "", false, fmt.Errorf("open config: %w", err)
	default:
		defer file.Close()
		if err := toml.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.normalize()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolved, exists, nil
}

// environment variables take precedence over the file
func (c *Config) applyEnv() {
	override := func(dst *string, names ...string) {
		for _, name := range names {
			if v := strings.TrimSpace(os.Getenv(name)); v != "" {
				*dst = v
				return
			}
		}
	}

	override(&c.Credential.SESSDATA, "SESSDATA", "sessdata")
	override(&c.Credential.BiliJct, "BILI_JCT", "bili_jct")
	override(&c.Credential.Buvid3, "BUVID3", "buvid3")
	override(&c.Credential.DedeUserID, "DEDEUSERID", "dedeuserid")
	override(&c.Credential.ACTimeValue, "AC_TIME_VALUE", "ac_time_value")

	if c.Summary.APIKey == "" {
		switch c.Summary.Provider {
		case "openai":
			override(&c.Summary.APIKey, "OPENAI_API_KEY")
		case "anthropic":
			override(&c.Summary.APIKey, "ANTHROPIC_API_KEY")
		case "gemini":
			override(&c.Summary.APIKey, "GEMINI_API_KEY")
		}
	}
}

func (c *Config) normalize() {
	trim := func(values ...*string) {
		for _, v := range values {
			*v = strings.TrimSpace(*v)
		}
	}
	trim(
		&c.Credential.SESSDATA,
		&c.Credential.BiliJct,
		&c.Credential.Buvid3,
		&c.Credential.DedeUserID,
		&c.Credential.ACTimeValue,
		&c.Bilibili.BaseURL,
		&c.Bilibili.UserAgent,
		&c.Bcut.BaseURL,
		&c.Summary.Model,
		&c.Summary.APIKey,
		&c.Summary.BaseURL,
		&c.Output.Dir,
	)

	c.Bilibili.BaseURL = strings.TrimRight(c.Bilibili.BaseURL, "/")
	c.Bcut.BaseURL = strings.TrimRight(c.Bcut.BaseURL, "/")
	c.Summary.Provider = strings.ToLower(strings.TrimSpace(c.Summary.Provider))
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))

	if c.Bilibili.BaseURL == "" {
		c.Bilibili.BaseURL = defaultBilibiliBaseURL
	}
	if c.Bilibili.UserAgent == "" {
		c.Bilibili.UserAgent = defaultBilibiliUserAgent
	}
	if c.Bcut.BaseURL == "" {
		c.Bcut.BaseURL = defaultBcutBaseURL
	}
	if c.Summary.Provider == "" {
		c.Summary.Provider = defaultSummaryProvider
	}
	if c.Output.Dir == "" {
		c.Output.Dir = defaultOutputDir
	}
	if c.Output.Format == "" {
		c.Output.Format = defaultOutputFormat
	}
}

// HasCredential reports whether a login session is configured.
func (c *Config) HasCredential() bool {
	return c.Credential.SESSDATA != ""
}
