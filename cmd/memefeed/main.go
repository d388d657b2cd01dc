// Command memefeed is the terminal client for the meme-sharing API.
package main

import (
	"fmt"
	"os"

	"memefeed/internal/api"
	"memefeed/internal/config"
	"memefeed/internal/observability"
	"memefeed/internal/session"
	"memefeed/internal/transport"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "memefeed",
	Short: "Terminal client for the meme feed",
	Long: `memefeed browses a meme-sharing service from the terminal.

Sign in once with "memefeed login"; the token is stored locally and reused.

Examples:
  memefeed login --username demo
  memefeed feed
  memefeed post --picture cat.png --description "my cat" --text "WOW:10:20"
  memefeed logout`,
	SilenceUsage: true,
}

// env bundles the loaded config, session store, and API client every
// subcommand needs.
type env struct {
	cfg     *config.Config
	session *session.Store
	api     *api.Client
}

func newEnv() (*env, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	observability.SetLevel(cfg.LogLevel)

	sess, err := session.Open(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}

	return &env{
		cfg:     cfg,
		session: sess,
		api:     api.New(transport.NewClient(cfg.APIBaseURL)),
	}, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
