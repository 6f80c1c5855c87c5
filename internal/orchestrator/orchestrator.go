// File: internal/orchestrator/orchestrator.go
package orchestrator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/voidhawk9x/enroll-cli/internal/desktop"
	"github.com/voidhawk9x/enroll-cli/internal/identity"
	"github.com/voidhawk9x/enroll-cli/internal/mailbox"
	"github.com/voidhawk9x/enroll-cli/internal/report"
)

// IdentitySource produces the throwaway identity an enrollment run signs
// up with.
type IdentitySource interface {
	New() identity.Identity
}

// DesktopDriver covers the native application steps of an enrollment run.
type DesktopDriver interface {
	LaunchAndOpenSignup(ctx context.Context) (*desktop.Handle, error)
	SubmitSignupForm(ctx context.Context, h *desktop.Handle, id identity.Identity) error
	SubmitOTP(ctx context.Context, code string) error
}

// CodeFetcher retrieves the emailed verification code for a mailbox.
type CodeFetcher interface {
	FetchVerificationCode(ctx context.Context, localPart string) (string, mailbox.Page)
}

// Orchestrator walks an enrollment run through its stages. Every stage runs
// regardless of what the previous stages did, except where a stage literally
// cannot proceed (no verification code means nothing to submit). Failures
// land in the recorder as steps; the report is rendered no matter what.
type Orchestrator struct {
	gen        IdentitySource
	driver     DesktopDriver
	poller     CodeFetcher
	rec        *report.Recorder
	renderer   report.Renderer
	reportPath string
	logger     *zap.Logger
}

// New creates an Orchestrator. The renderer is consumed by Run and closed
// there; the caller must not reuse it.
func New(gen IdentitySource, driver DesktopDriver, poller CodeFetcher, rec *report.Recorder, renderer report.Renderer, reportPath string, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		gen:        gen,
		driver:     driver,
		poller:     poller,
		rec:        rec,
		renderer:   renderer,
		reportPath: reportPath,
		logger:     logger.Named("orchestrator"),
	}
}

// Run executes one enrollment attempt end to end. It returns an error only
// when the report itself cannot be written; step failures are recorded and
// logged but never abort the run.
func (o *Orchestrator) Run(ctx context.Context) (err error) {
	var sess mailbox.Page
	defer func() {
		if sess != nil {
			o.checkDialog(ctx, sess)
			if cerr := sess.Close(ctx); cerr != nil {
				o.logger.Warn("Failed to close browser session.", zap.Error(cerr))
			}
		}
		if werr := o.writeReport(); werr != nil && err == nil {
			err = werr
		}
	}()

	o.logger.Info("Starting enrollment run.", zap.String("run_id", o.rec.RunID()))

	id := o.gen.New()
	o.rec.Pass(fmt.Sprintf("Generated identity %s %s <%s>.", id.FirstName, id.LastName, id.Email))

	handle, lerr := o.driver.LaunchAndOpenSignup(ctx)
	if lerr != nil {
		o.logger.Error("Application launch stage failed.", zap.Error(lerr))
	}

	// The form stage runs even after a launch failure; the driver refuses a
	// nil handle and records that refusal as its own step.
	if ferr := o.driver.SubmitSignupForm(ctx, handle, id); ferr != nil {
		o.logger.Error("Signup form stage failed.", zap.Error(ferr))
	}

	var code string
	code, sess = o.poller.FetchVerificationCode(ctx, id.LocalPart)
	if code == "" {
		o.rec.Record("Skipping OTP entry: no verification code available.", report.StatusInfo)
		return nil
	}

	if oerr := o.driver.SubmitOTP(ctx, code); oerr != nil {
		o.logger.Error("OTP entry stage failed.", zap.Error(oerr))
	}
	return nil
}

// checkDialog drains a confirmation dialog the site may have raised after
// the OTP was accepted. A missing dialog is normal.
func (o *Orchestrator) checkDialog(ctx context.Context, sess mailbox.Page) {
	message, accepted, err := sess.AcceptPendingDialog(ctx)
	switch {
	case err != nil:
		o.rec.Record(fmt.Sprintf("Error handling confirmation dialog: %v", err), report.StatusFail)
	case accepted:
		o.rec.Pass(fmt.Sprintf("Accepted confirmation dialog: %s", message))
	default:
		o.rec.Record("No confirmation dialog appeared.", report.StatusInfo)
	}
}

// writeReport renders the step table. The closing step is recorded first so
// the rendered report itself carries the row confirming it was produced.
func (o *Orchestrator) writeReport() error {
	o.rec.Pass(fmt.Sprintf("Automation run finished. Report saved to %s.", o.reportPath))

	run := o.rec.Snapshot()
	if err := o.renderer.Write(run); err != nil {
		o.renderer.Close()
		return fmt.Errorf("writing report: %w", err)
	}
	if err := o.renderer.Close(); err != nil {
		return fmt.Errorf("closing report: %w", err)
	}
	o.logger.Info("Report rendered.",
		zap.String("path", o.reportPath),
		zap.Int("steps", len(run.Steps)))
	return nil
}
