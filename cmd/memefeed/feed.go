package main

import (
	"context"
	"fmt"
	"time"

	"memefeed/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// expiryCheckInterval is how often the stored token's exp claim is checked
// while the TUI runs.
const expiryCheckInterval = 30 * time.Second

func init() {
	rootCmd.AddCommand(feedCmd)
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Browse the meme feed",
	Long:  "Open the interactive feed. Scrolling near the bottom loads further pages; enter opens a meme's comments.",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}

		program := tea.NewProgram(ui.NewApp(e.api, e.session), tea.WithAltScreen())

		// Sign out mid-session when the token's exp claim passes.
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		go e.session.WatchExpiry(ctx, expiryCheckInterval, func() {
			program.Send(ui.SessionExpired())
		})

		if _, err := program.Run(); err != nil {
			return fmt.Errorf("running feed: %w", err)
		}
		return nil
	},
}
