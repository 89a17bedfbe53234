/*
Package cli defines the asxwatch command tree.
*/
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"asxwatch/internal/app"
	"asxwatch/internal/config"
	"asxwatch/internal/logging"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// NewRootCmd builds the command tree. Configuration is loaded once in the
// persistent pre-run and shared by the subcommands.
func NewRootCmd() *cobra.Command {
	var cfgPath string
	var application *app.App

	root := &cobra.Command{
		Use:           "asxwatch",
		Short:         "Scan ASX announcements for bullish surprises",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			logger := logging.NewLogger(cfg.Logging)
			application, err = app.New(cmd.Context(), cfg, logger)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if application == nil {
				return nil
			}
			return application.Close()
		},
	}

	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file")

	scan := &cobra.Command{
		Use:   "scan",
		Short: "Run the morning pipeline: scrape, filter, gate, rank and export",
		RunE: func(cmd *cobra.Command, _ []string) error {
			summary, err := application.Scan(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"scanned %d, admitted %d, passed %d, ranked %d\ncsv: %s\n",
				summary.Scanned, summary.Admitted, summary.Passed, summary.Ranked, summary.CSVPath)
			return nil
		},
	}

	var schedule bool
	analyze := &cobra.Command{
		Use:   "analyze",
		Short: "Assess today's stored candidates with the AI and send the digest",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if schedule {
				return application.Schedule(cmd.Context())
			}
			summary, err := application.Analyze(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"candidates %d, assessed %d, emailed %d\n",
				summary.Candidates, summary.Assessed, summary.Emailed)
			return nil
		},
	}
	analyze.Flags().BoolVar(&schedule, "schedule", false, "run on the configured cron schedule until interrupted")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}

	root.AddCommand(scan, analyze, version)
	return root
}
