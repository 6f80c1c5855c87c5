// File: cmd/run.go
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/voidhawk9x/enroll-cli/internal/config"
	"github.com/voidhawk9x/enroll-cli/internal/desktop"
	"github.com/voidhawk9x/enroll-cli/internal/identity"
	"github.com/voidhawk9x/enroll-cli/internal/mailbox"
	"github.com/voidhawk9x/enroll-cli/internal/observability"
	"github.com/voidhawk9x/enroll-cli/internal/orchestrator"
	"github.com/voidhawk9x/enroll-cli/internal/report"
)

// newRunCmd creates and configures the `run` command.
func newRunCmd() *cobra.Command {
	var dryRun bool

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Executes one unattended enrollment run and writes a step report",
		// Bind flags to their viper keys here so command-line values override
		// the config file and environment with the right precedence.
		PreRunE: func(cmd *cobra.Command, args []string) error {
			bindings := map[string]string{
				"report.output":         "output",
				"report.format":         "format",
				"identity.mail_domain":  "mail-domain",
				"mailbox.max_wait":      "max-wait",
				"mailbox.poll_interval": "poll-interval",
				"browser.headless":      "headless",
			}
			for key, flag := range bindings {
				if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
					return err
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Use the context passed from main.go (signal-aware).
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return fmt.Errorf("resolving configuration: %w", err)
			}

			renderer, err := report.NewRenderer(cfg.Report.Format, cfg.Report.Output)
			if err != nil {
				return fmt.Errorf("preparing report output: %w", err)
			}

			rec := report.NewRecorder(logger)
			gen := identity.NewGenerator(cfg.Identity, gofakeit.New(0))

			backend := desktop.NewUIABackend(cfg.App.Bridge, logger)
			if dryRun {
				logger.Info("Dry run requested; desktop actions will be logged, not performed.")
				backend = desktop.NewNoopBackend(logger)
			}
			driver := desktop.NewDriver(cfg.App, backend, rec, logger)

			factory := func(sctx context.Context) (mailbox.Page, error) {
				sess, err := mailbox.NewChromeSession(sctx, cfg.Browser, logger)
				if err != nil {
					return nil, err
				}
				return sess, nil
			}
			poller := mailbox.NewPoller(cfg.Mailbox, rec, logger, factory)

			orch := orchestrator.New(gen, driver, poller, rec, renderer, cfg.Report.Output, logger)

			start := time.Now()
			if err := orch.Run(ctx); err != nil {
				return err
			}
			logger.Info("Enrollment run complete.",
				zap.String("run_id", rec.RunID()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("report", cfg.Report.Output))
			// Step failures live in the report; only infrastructure errors
			// reach the exit code.
			return nil
		},
	}

	runCmd.Flags().StringP("output", "o", "automation_report.html", "report file path ('-' for stdout)")
	runCmd.Flags().StringP("format", "f", "html", "report format (html or json)")
	runCmd.Flags().String("mail-domain", "mailsac.com", "disposable mailbox domain for generated identities")
	runCmd.Flags().Duration("max-wait", 60*time.Second, "how long to poll the inbox for the verification email")
	runCmd.Flags().Duration("poll-interval", 3*time.Second, "delay between inbox poll attempts")
	runCmd.Flags().Bool("headless", false, "run the browser without a visible window")
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "log desktop actions instead of performing them")

	return runCmd
}
