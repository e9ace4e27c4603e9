package main

import (
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marco/toonboard/internal/tui"
)

var browseDir string

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the dashboard in the terminal",
	Long:  "Opens the genre checklist with a live pie chart. Press d to save the CSV download into --dir.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Log lines would tear the full-screen view.
		var logOut io.Writer = io.Discard
		if verbose {
			logOut = cmd.ErrOrStderr()
		}
		a, err := setup(logOut)
		if err != nil {
			return err
		}
		defer a.close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		dash, err := a.dashboard(ctx, a.dashboardOptions())
		if err != nil {
			return err
		}
		return tui.Run(ctx, dash, tui.Options{Dir: browseDir})
	},
}

func init() {
	browseCmd.Flags().StringVar(&browseDir, "dir", "", "Directory for downloaded files (default current directory)")
}
