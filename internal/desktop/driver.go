// File: internal/desktop/driver.go

// Package desktop drives the target application's native UI: launching it,
// walking to the signup form, submitting it, and re-entering the recovered
// verification code. Every operation is a blocking locate -> wait -> act
// sequence that records its own step outcome.
package desktop

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"

	"github.com/voidhawk9x/enroll-cli/internal/config"
	"github.com/voidhawk9x/enroll-cli/internal/identity"
	"github.com/voidhawk9x/enroll-cli/internal/report"
)

// Handle is the opaque proof that the signup form was reached. A nil Handle
// means the launch sequence failed and the form was never displayed.
type Handle struct {
	reachedAt time.Time
}

// pasteChord is the SendKeys sequence for a clipboard paste. The code is
// transferred through the clipboard because literal digit keystrokes were
// dropped intermittently by this UI toolkit.
const pasteChord = "^v"

// clipboardPause gives the host clipboard time to settle before pasting.
const clipboardPause = 500 * time.Millisecond

// Driver sequences the desktop-side operations over a Backend.
type Driver struct {
	cfg     config.AppConfig
	backend Backend
	rec     *report.Recorder
	logger  *zap.Logger

	// writeClipboard is swappable in tests; production uses the host clipboard.
	writeClipboard func(string) error
}

// NewDriver creates a Driver. All failures inside operations are recorded as
// FAIL steps and also returned, so the caller decides continuation policy.
func NewDriver(cfg config.AppConfig, backend Backend, rec *report.Recorder, logger *zap.Logger) *Driver {
	return &Driver{
		cfg:            cfg,
		backend:        backend,
		rec:            rec,
		logger:         logger.Named("desktop"),
		writeClipboard: clipboard.WriteAll,
	}
}

// LaunchAndOpenSignup starts the application and clicks through the account
// menu to the signup form. On any control timeout it records one FAIL step
// and returns a nil handle; the run continues in degraded form.
func (d *Driver) LaunchAndOpenSignup(ctx context.Context) (*Handle, error) {
	if err := d.backend.LaunchApp(ctx, d.cfg.LaunchCommand); err != nil {
		return nil, d.fail("Error launching application", err)
	}
	d.rec.Pass("Sent keys to launch the application.")

	if err := d.backend.FocusWindow(ctx, d.cfg.MainWindowTitle, d.cfg.WindowTimeout); err != nil {
		return nil, d.fail("Error launching application", err)
	}
	d.rec.Pass("Focused application main window.")

	if err := d.waitAndClick(ctx, d.cfg.MainWindowTitle, ManageAccountButton); err != nil {
		return nil, d.fail("Error launching application", err)
	}
	d.rec.Pass("Clicked Manage Account button.")

	if err := d.waitAndClick(ctx, d.cfg.MainWindowTitle, CreateAccountButton); err != nil {
		return nil, d.fail("Error launching application", err)
	}
	d.rec.Pass("Clicked Create Account button.")

	return &Handle{reachedAt: time.Now()}, nil
}

// SubmitSignupForm populates the account form and activates the submit
// control, then waits a fixed settle duration for the async navigation that
// follows. Field values are not validated locally; that is the external
// application's job.
func (d *Driver) SubmitSignupForm(ctx context.Context, h *Handle, id identity.Identity) error {
	if h == nil {
		return d.fail("Error filling account form", fmt.Errorf("signup form was never reached"))
	}

	win := d.cfg.AccountWindowTitle
	if err := d.backend.FocusWindow(ctx, win, d.cfg.WindowTimeout); err != nil {
		return d.fail("Error filling account form", err)
	}
	d.rec.Pass("Focused account signup window.")

	// The first field doubles as the readiness signal for the whole form.
	if err := d.backend.WaitReady(ctx, win, FirstNameField, d.cfg.ControlTimeout); err != nil {
		return d.fail("Error filling account form", err)
	}

	fields := []struct {
		control Control
		value   string
	}{
		{FirstNameField, id.FirstName},
		{LastNameField, id.LastName},
		{EmailField, id.Email},
		{PasswordField, id.Password},
	}
	for _, f := range fields {
		if err := d.backend.TypeText(ctx, win, f.control, f.value); err != nil {
			return d.fail("Error filling account form", err)
		}
	}

	if err := d.waitAndClick(ctx, win, SignUpButton); err != nil {
		return d.fail("Error filling account form", err)
	}
	d.rec.Pass("Filled account form and clicked Create button.")

	// The window navigates to the verification flow asynchronously and
	// exposes no readiness signal, so a bounded settle sleep remains.
	return sleepCtx(ctx, d.cfg.SettleWait)
}

// SubmitOTP re-acquires the account window, transfers the code via the host
// clipboard, and activates the verify control.
func (d *Driver) SubmitOTP(ctx context.Context, code string) error {
	win := d.cfg.AccountWindowTitle
	if err := d.backend.FocusWindow(ctx, win, d.cfg.WindowTimeout); err != nil {
		return d.fail("OTP verification failed", err)
	}
	d.rec.Pass("Focused OTP entry screen.")

	if err := d.backend.WaitReady(ctx, win, OTPInput, d.cfg.ControlTimeout); err != nil {
		return d.fail("OTP verification failed", err)
	}

	if err := d.writeClipboard(code); err != nil {
		return d.fail("OTP verification failed", err)
	}
	if err := sleepCtx(ctx, clipboardPause); err != nil {
		return err
	}

	if err := d.backend.Click(ctx, win, OTPInput); err != nil {
		return d.fail("OTP verification failed", err)
	}
	if err := d.backend.SendShortcut(ctx, win, OTPInput, pasteChord); err != nil {
		return d.fail("OTP verification failed", err)
	}
	d.rec.Pass("Pasted verification code from clipboard.")

	if err := d.waitAndClick(ctx, win, OTPSubmitButton); err != nil {
		return d.fail("OTP verification failed", err)
	}
	d.rec.Pass("Clicked Verify button.")

	return sleepCtx(ctx, d.cfg.SettleWait)
}

// waitAndClick is the locate -> wait ready -> click primitive shared by all
// button interactions.
func (d *Driver) waitAndClick(ctx context.Context, win string, c Control) error {
	if err := d.backend.WaitReady(ctx, win, c, d.cfg.ControlTimeout); err != nil {
		return err
	}
	return d.backend.Click(ctx, win, c)
}

// fail collapses every backend error into the single recoverable failure
// class: one FAIL step plus a wrapped error for the caller's policy.
func (d *Driver) fail(what string, err error) error {
	d.rec.Record(fmt.Sprintf("%s: %v", what, err), report.StatusFail)
	d.logger.Warn(what, zap.Error(err))
	return fmt.Errorf("%s: %w", what, err)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
