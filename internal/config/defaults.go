package config

const (
	defaultBilibiliBaseURL   = "https://api.bilibili.com"
	defaultBilibiliUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	defaultBilibiliTimeout   = 30
	defaultBcutBaseURL       = "https://member.bilibili.com/x/bcut/rubick-interface"
	defaultBcutPollInterval  = 5
	defaultBcutMaxAttempts   = 60
	defaultSummaryProvider   = "openai"
	defaultOutputDir         = "output"
	defaultOutputFormat      = "ass"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Bilibili: Bilibili{
			BaseURL:        defaultBilibiliBaseURL,
			UserAgent:      defaultBilibiliUserAgent,
			TimeoutSeconds: defaultBilibiliTimeout,
		},
		Bcut: Bcut{
			BaseURL:             defaultBcutBaseURL,
			PollIntervalSeconds: defaultBcutPollInterval,
			MaxAttempts:         defaultBcutMaxAttempts,
		},
		Summary: Summary{
			Provider: defaultSummaryProvider,
		},
		Output: Output{
			Dir:    defaultOutputDir,
			Format: defaultOutputFormat,
		},
	}
}
