package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateBilibili(); err != nil {
		return err
	}
	if err := c.validateBcut(); err != nil {
		return err
	}
	if err := c.validateSummary(); err != nil {
		return err
	}
	return c.validateOutput()
}

func (c *Config) validateBilibili() error {
	if err := validateURL("bilibili.base_url", c.Bilibili.BaseURL); err != nil {
		return err
	}
	if c.Bilibili.TimeoutSeconds <= 0 {
		return errors.New("bilibili.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateBcut() error {
	if err := validateURL("bcut.base_url", c.Bcut.BaseURL); err != nil {
		return err
	}
	if c.Bcut.PollIntervalSeconds <= 0 {
		return errors.New("bcut.poll_interval_seconds must be positive")
	}
	if c.Bcut.MaxAttempts <= 0 {
		return errors.New("bcut.max_attempts must be positive")
	}
	return nil
}

func (c *Config) validateSummary() error {
	switch c.Summary.Provider {
	case "openai", "anthropic", "gemini":
	default:
		return fmt.Errorf("summary.provider %q is not supported (openai, anthropic, gemini)", c.Summary.Provider)
	}
	if c.Summary.BaseURL != "" {
		return validateURL("summary.base_url", c.Summary.BaseURL)
	}
	return nil
}

func (c *Config) validateOutput() error {
	switch c.Output.Format {
	case "ass", "ssa", "srt", "vtt":
		return nil
	default:
		return fmt.Errorf("output.format %q is not supported (ass, srt, vtt)", c.Output.Format)
	}
}

func validateURL(key, value string) error {
	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", key, value)
	}
	return nil
}
