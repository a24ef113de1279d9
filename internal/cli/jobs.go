package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Kamar-Folarin/github-reporter/internal/models"
)

var gatherStatsCmd = &cobra.Command{
	Use:   "gather_stats",
	Short: "Stores today's counters for every tracked repository",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		progress, err := a.jobs.GatherStats(cmd.Context())
		return a.finishBatch(progress, err)
	},
}

var sendReportsCmd = &cobra.Command{
	Use:   "send_reports",
	Short: "Sends a report for every repository whose schedule is due",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		progress, err := a.jobs.SendReports(cmd.Context())
		return a.finishBatch(progress, err)
	},
}

var sendInstantReportCmd = &cobra.Command{
	Use:   "send_instant_report <repo_id>",
	Short: "Sends a report for one repository now, leaving its schedule alone",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.jobs.SendInstantReport(cmd.Context(), args[0]); err != nil {
			a.logger.WithError(err).WithField("repo_id", args[0]).Error("Instant report failed")
			return err
		}
		return nil
	},
}

// finishBatch logs per-repository failures and only fails the command when
// the batch could not run at all.
func (a *app) finishBatch(progress *models.BatchProgress, err error) error {
	if progress == nil {
		return err
	}
	if err != nil {
		a.logger.WithError(err).WithFields(logrus.Fields{
			"job":    progress.Job,
			"failed": progress.Failed,
		}).Warn("Some repositories failed")
	}
	return nil
}
