// File: internal/mailbox/poller.go

// Package mailbox retrieves the verification code for a freshly created
// mailbox by driving a browser session against a public mail-viewing site:
// look up the inbox, poll for the first message, open it, and scan the body
// for a numeric code.
package mailbox

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/voidhawk9x/enroll-cli/internal/config"
	"github.com/voidhawk9x/enroll-cli/internal/report"
)

// Fixed element locators on the mail-viewing site. The site is an opaque
// external web UI; these are its only addressable surface.
const (
	mailboxInputSel  = `input[placeholder='mailbox']`
	checkMailBtnSel  = `//button[normalize-space()='Check the mail!']`
	firstInboxRowSel = `//table[contains(@class,'inbox-table')]/tbody/tr[contains(@class,'clickable')][1]`
	emailBodySel     = `#emailBody`
)

// SessionFactory opens a fresh browser session. Injected so tests can hand
// the poller a scripted page instead of a real browser.
type SessionFactory func(ctx context.Context) (Page, error)

// Poller locates a newly arrived message for a mailbox and extracts the
// verification code from its body.
type Poller struct {
	cfg        config.MailboxConfig
	rec        *report.Recorder
	logger     *zap.Logger
	newSession SessionFactory
}

// NewPoller creates a Poller.
func NewPoller(cfg config.MailboxConfig, rec *report.Recorder, logger *zap.Logger, factory SessionFactory) *Poller {
	return &Poller{
		cfg:        cfg,
		rec:        rec,
		logger:     logger.Named("mailbox"),
		newSession: factory,
	}
}

// FetchVerificationCode runs the whole retrieval flow for the given mailbox
// local-part.
//
// Return contract:
//   - (code, session): code extracted; the live session is handed to the
//     caller, who takes over closing it.
//   - ("", session): the message body contained no code; the session is
//     still alive so the caller may inspect it or handle a pending dialog.
//   - ("", nil): any step failed; the session has already been closed here,
//     exactly once, so the caller can never act on a dead session.
func (p *Poller) FetchVerificationCode(ctx context.Context, localPart string) (string, Page) {
	sess, err := p.newSession(ctx)
	if err != nil {
		p.rec.Record(fmt.Sprintf("Error fetching OTP: %v", err), report.StatusFail)
		return "", nil
	}

	code, err := p.fetch(ctx, sess, localPart)
	if err != nil {
		p.rec.Record(fmt.Sprintf("Error fetching OTP: %v", err), report.StatusFail)
		_ = sess.Close(ctx)
		return "", nil
	}
	return code, sess
}

func (p *Poller) fetch(ctx context.Context, sess Page, localPart string) (string, error) {
	if err := sess.Navigate(ctx, p.cfg.URL); err != nil {
		return "", err
	}
	p.rec.Pass("Opened mail viewer website.")

	if err := sess.SendKeys(ctx, mailboxInputSel, localPart, p.cfg.LookupTimeout); err != nil {
		return "", err
	}
	if err := sess.Click(ctx, checkMailBtnSel, p.cfg.LookupTimeout); err != nil {
		return "", err
	}
	p.rec.Pass("Opened mailbox inbox.")

	p.pollForMessage(ctx, sess)

	// The body wait runs even when polling never saw a row: the message may
	// have landed just after the last poll, with its row click still pending.
	if err := sess.WaitVisible(ctx, emailBodySel, p.cfg.BodyTimeout); err != nil {
		return "", err
	}
	body, err := sess.Text(ctx, emailBodySel, p.cfg.BodyTimeout)
	if err != nil {
		return "", err
	}

	code := ExtractCode(body)
	if code == "" {
		p.rec.Record("Verification code not found in message.", report.StatusFail)
		return "", nil
	}
	p.rec.Pass(fmt.Sprintf("Extracted verification code: %s", code))
	return code, nil
}

// pollForMessage repeatedly waits for the first inbox row, re-triggering the
// inbox check between attempts. It gives up once the accumulated elapsed
// time exceeds MaxWait, so it always terminates within roughly
// MaxWait + PollInterval of wall-clock time.
func (p *Poller) pollForMessage(ctx context.Context, sess Page) {
	deadline := time.Now().Add(p.cfg.MaxWait)

	for time.Now().Before(deadline) {
		if err := sess.WaitVisible(ctx, firstInboxRowSel, p.cfg.PollInterval); err == nil {
			if err := sess.Click(ctx, firstInboxRowSel, p.cfg.PollInterval); err == nil {
				p.rec.Pass("Clicked on first inbox message.")
				return
			}
		}

		if ctx.Err() != nil {
			return
		}
		if !time.Now().Before(deadline) {
			break
		}

		// Best effort; the button may be mid-refresh and that is fine.
		_ = sess.Click(ctx, checkMailBtnSel, p.cfg.PollInterval)
		p.rec.Record("Refreshed mailbox inbox.", report.StatusInfo)
	}

	p.logger.Debug("Polling window exhausted without an inbox row.",
		zap.Duration("max_wait", p.cfg.MaxWait))
}
