// Package cli contains the commands of the reporter binary, built using the
// Cobra library.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "github-reporter",
	Short: "Collects GitHub repository statistics and mails daily reports.",
	Long: `github-reporter tracks GitHub repositories, stores a daily snapshot of
their stars, downloads and open issues, and sends each repository a daily
email report comparing today's numbers with the stored history.`,
	SilenceUsage: true,
}

// Execute runs the root command. Interrupts cancel the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")

	rootCmd.AddCommand(gatherStatsCmd, sendReportsCmd, sendInstantReportCmd, serveCmd, migrateCmd)
}
