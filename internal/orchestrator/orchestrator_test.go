// File: internal/orchestrator/orchestrator_test.go
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/voidhawk9x/enroll-cli/internal/desktop"
	"github.com/voidhawk9x/enroll-cli/internal/identity"
	"github.com/voidhawk9x/enroll-cli/internal/mailbox"
	"github.com/voidhawk9x/enroll-cli/internal/report"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeGen struct{ id identity.Identity }

func (f *fakeGen) New() identity.Identity { return f.id }

// fakeDriver records failures into the shared recorder the way the real
// driver does, so the rendered report shape is realistic.
type fakeDriver struct {
	rec *report.Recorder

	failLaunch bool
	failForm   bool
	failOTP    bool

	calls     []string
	submitted identity.Identity
	otpCode   string
}

func (f *fakeDriver) LaunchAndOpenSignup(ctx context.Context) (*desktop.Handle, error) {
	f.calls = append(f.calls, "launch")
	if f.failLaunch {
		err := errors.New("window '.*HP Smart.*' not found")
		f.rec.Record(fmt.Sprintf("Failed to launch application: %v", err), report.StatusFail)
		return nil, err
	}
	return &desktop.Handle{}, nil
}

func (f *fakeDriver) SubmitSignupForm(ctx context.Context, h *desktop.Handle, id identity.Identity) error {
	f.calls = append(f.calls, "form")
	if h == nil {
		err := errors.New("no signup window to fill")
		f.rec.Record(fmt.Sprintf("Failed to submit signup form: %v", err), report.StatusFail)
		return err
	}
	if f.failForm {
		err := errors.New("control 'firstName' never became ready")
		f.rec.Record(fmt.Sprintf("Failed to submit signup form: %v", err), report.StatusFail)
		return err
	}
	f.submitted = id
	f.rec.Pass("Submitted signup form.")
	return nil
}

func (f *fakeDriver) SubmitOTP(ctx context.Context, code string) error {
	f.calls = append(f.calls, "otp")
	if f.failOTP {
		err := errors.New("control 'code' never became ready")
		f.rec.Record(fmt.Sprintf("Failed to enter verification code: %v", err), report.StatusFail)
		return err
	}
	f.otpCode = code
	f.rec.Pass("Entered verification code.")
	return nil
}

type fakeSession struct {
	dialogMessage string
	dialogPending bool
	dialogErr     error
	closeCount    int
}

func (f *fakeSession) Navigate(ctx context.Context, url string) error { return nil }
func (f *fakeSession) WaitVisible(ctx context.Context, sel string, timeout time.Duration) error {
	return nil
}
func (f *fakeSession) SendKeys(ctx context.Context, sel, text string, timeout time.Duration) error {
	return nil
}
func (f *fakeSession) Click(ctx context.Context, sel string, timeout time.Duration) error {
	return nil
}
func (f *fakeSession) Text(ctx context.Context, sel string, timeout time.Duration) (string, error) {
	return "", nil
}

func (f *fakeSession) AcceptPendingDialog(ctx context.Context) (string, bool, error) {
	if f.dialogErr != nil {
		return "", false, f.dialogErr
	}
	if !f.dialogPending {
		return "", false, nil
	}
	f.dialogPending = false
	return f.dialogMessage, true, nil
}

func (f *fakeSession) Close(ctx context.Context) error {
	f.closeCount++
	return nil
}

type fakePoller struct {
	code string
	sess mailbox.Page

	lookedUp string
}

func (f *fakePoller) FetchVerificationCode(ctx context.Context, localPart string) (string, mailbox.Page) {
	f.lookedUp = localPart
	return f.code, f.sess
}

type fakeRenderer struct {
	run      *report.Run
	writes   int
	closes   int
	writeErr error
}

func (f *fakeRenderer) Write(run *report.Run) error {
	f.writes++
	f.run = run
	return f.writeErr
}

func (f *fakeRenderer) Close() error {
	f.closes++
	return nil
}

type fixture struct {
	orch     *Orchestrator
	rec      *report.Recorder
	driver   *fakeDriver
	poller   *fakePoller
	renderer *fakeRenderer
	session  *fakeSession
}

func newFixture() *fixture {
	rec := report.NewRecorder(zap.NewNop())
	driver := &fakeDriver{rec: rec}
	session := &fakeSession{dialogPending: true, dialogMessage: "Account created"}
	poller := &fakePoller{code: "482913", sess: session}
	renderer := &fakeRenderer{}
	gen := &fakeGen{id: identity.Identity{
		Email:     "jane.doe.1234@mailsac.com",
		LocalPart: "jane.doe.1234",
		FirstName: "Jane",
		LastName:  "Doe",
		Password:  "SecurePassword123",
	}}
	orch := New(gen, driver, poller, rec, renderer, "automation_report.html", zap.NewNop())
	return &fixture{orch: orch, rec: rec, driver: driver, poller: poller, renderer: renderer, session: session}
}

func TestRunHappyPath(t *testing.T) {
	f := newFixture()

	err := f.orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"launch", "form", "otp"}, f.driver.calls)
	assert.Equal(t, "jane.doe.1234", f.poller.lookedUp)
	assert.Equal(t, "482913", f.driver.otpCode)
	assert.Equal(t, "jane.doe.1234@mailsac.com", f.driver.submitted.Email)
	assert.Equal(t, 1, f.session.closeCount)
	assert.Equal(t, 1, f.renderer.writes)
	assert.Equal(t, 1, f.renderer.closes)

	require.NotNil(t, f.renderer.run)
	steps := f.renderer.run.Steps
	require.NotEmpty(t, steps)
	assert.Contains(t, steps[len(steps)-1].Description, "Report saved to automation_report.html")

	var dialogStep bool
	for _, s := range steps {
		if s.Description == "Accepted confirmation dialog: Account created" {
			dialogStep = true
			assert.Equal(t, report.StatusPass, s.Status)
		}
	}
	assert.True(t, dialogStep)
}

func TestRunLaunchFailureStillRendersReport(t *testing.T) {
	f := newFixture()
	f.driver.failLaunch = true
	f.poller.code = ""
	f.poller.sess = nil

	err := f.orch.Run(context.Background())
	require.NoError(t, err)

	// The later stages still ran; the form stage refused the nil handle.
	assert.Equal(t, []string{"launch", "form"}, f.driver.calls)

	require.NotNil(t, f.renderer.run)
	steps := f.renderer.run.Steps

	var failures int
	for _, s := range steps {
		if s.Status == report.StatusFail {
			failures++
		}
	}
	assert.GreaterOrEqual(t, failures, 1)
	assert.Contains(t, steps[len(steps)-1].Description, "Report saved to")
}

func TestRunNoCodeSkipsOTP(t *testing.T) {
	f := newFixture()
	f.poller.code = ""
	f.session.dialogPending = false

	err := f.orch.Run(context.Background())
	require.NoError(t, err)

	assert.NotContains(t, f.driver.calls, "otp")
	assert.Equal(t, 1, f.session.closeCount, "a live session is still cleaned up")

	descs := make([]string, 0, len(f.renderer.run.Steps))
	for _, s := range f.renderer.run.Steps {
		descs = append(descs, s.Description)
	}
	assert.Contains(t, descs, "Skipping OTP entry: no verification code available.")
	assert.Contains(t, descs, "No confirmation dialog appeared.")
}

func TestRunDialogErrorRecorded(t *testing.T) {
	f := newFixture()
	f.session.dialogErr = errors.New("dialog vanished mid-accept")

	err := f.orch.Run(context.Background())
	require.NoError(t, err)

	var found bool
	for _, s := range f.renderer.run.Steps {
		if s.Status == report.StatusFail && s.Description == "Error handling confirmation dialog: dialog vanished mid-accept" {
			found = true
		}
	}
	assert.True(t, found)
	assert.Equal(t, 1, f.session.closeCount)
}

func TestRunReportWriteErrorSurfaces(t *testing.T) {
	f := newFixture()
	f.renderer.writeErr = errors.New("disk full")

	err := f.orch.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "writing report")
	assert.Equal(t, 1, f.renderer.closes, "the renderer is still closed on a write failure")
}
