package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/bilisub/internal/bilibili"
	"github.com/mgpai22/bilisub/internal/config"
	"github.com/mgpai22/bilisub/internal/logging"
)

var (
	verbose    bool
	configPath string
	logger     *logging.Logger
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "bilisub",
	Short: "Fetch, extract and summarize bilibili subtitles",
	Long: `Bilisub downloads subtitle tracks of bilibili videos, reduces ASS/SSA
scripts to plain "start,end,text" lines, transcribes media without
subtitles and summarizes transcripts with an LLM.

Credentials and provider settings are read from
$XDG_CONFIG_HOME/bilisub/config.toml and the environment.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewLogger(verbose)

		loaded, path, found, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		logger.Debugw("Configuration loaded", "path", path, "found", found)
		return nil
	},
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", "", "Config file path (default $XDG_CONFIG_HOME/bilisub/config.toml)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
}

func newBilibiliClient() (*bilibili.Client, error) {
	return bilibili.New(bilibili.Config{
		BaseURL:   cfg.Bilibili.BaseURL,
		UserAgent: cfg.Bilibili.UserAgent,
		Timeout:   time.Duration(cfg.Bilibili.TimeoutSeconds) * time.Second,
		Credential: bilibili.Credential{
			SESSDATA:    cfg.Credential.SESSDATA,
			BiliJct:     cfg.Credential.BiliJct,
			Buvid3:      cfg.Credential.Buvid3,
			DedeUserID:  cfg.Credential.DedeUserID,
			ACTimeValue: cfg.Credential.ACTimeValue,
		},
	})
}

// adds a login hint to errors that usually mean the session is missing
func explainBilibiliError(err error, hasCredential bool) error {
	if hasCredential {
		return err
	}
	if bilibili.IsAPIError(err, -101) || errors.Is(err, bilibili.ErrNoSubtitle) {
		return fmt.Errorf("%w (subtitles usually require a login: set SESSDATA or [credential] in the config file)", err)
	}
	return err
}
