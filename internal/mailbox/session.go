// File: internal/mailbox/session.go
package mailbox

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voidhawk9x/enroll-cli/internal/config"
)

// navigateTimeout bounds initial page loads; the mail viewer is a light page
// but the browser may still be warming up.
const navigateTimeout = 60 * time.Second

// Page is the browser surface the poller and the orchestrator operate on.
// The chromedp-backed ChromeSession is the production implementation; tests
// use a scripted fake.
type Page interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, sel string, timeout time.Duration) error
	SendKeys(ctx context.Context, sel, text string, timeout time.Duration) error
	Click(ctx context.Context, sel string, timeout time.Duration) error
	Text(ctx context.Context, sel string, timeout time.Duration) (string, error)

	// AcceptPendingDialog reads and accepts a javascript dialog left open by
	// the page, if any. ok is false when no dialog was pending.
	AcceptPendingDialog(ctx context.Context) (message string, ok bool, err error)

	// Close tears down the browser session. Safe to call more than once.
	Close(ctx context.Context) error
}

// ChromeSession is one headless-browser session against the mail viewer.
type ChromeSession struct {
	id     string
	ctx    context.Context
	logger *zap.Logger

	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
	closeOnce     sync.Once

	mu            sync.Mutex
	pendingDialog string
	dialogOpen    bool
}

var _ Page = (*ChromeSession)(nil)

// NewChromeSession launches a fresh browser and connects a tab to it. The
// caller owns the session and must Close it.
func NewChromeSession(parentCtx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*ChromeSession, error) {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	for _, arg := range cfg.Args {
		name, value := splitFlag(arg)
		opts = append(opts, chromedp.Flag(name, value))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parentCtx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	s := &ChromeSession{
		id:            uuid.New().String(),
		ctx:           browserCtx,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
	}
	s.logger = logger.Named("browser").With(zap.String("session_id", s.id))

	// Record any javascript dialog the page throws so the orchestrator can
	// read and dismiss it after the run.
	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		if e, ok := ev.(*page.EventJavascriptDialogOpening); ok {
			s.mu.Lock()
			s.pendingDialog = e.Message
			s.dialogOpen = true
			s.mu.Unlock()
			s.logger.Debug("Javascript dialog opened.", zap.String("message", e.Message))
		}
	})

	// Start the browser eagerly so launch failures surface here, not on the
	// first navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	s.logger.Info("Browser session started.", zap.Bool("headless", cfg.Headless))
	return s, nil
}

// ID returns the session identifier.
func (s *ChromeSession) ID() string {
	return s.id
}

// run executes chromedp actions bounded by both the session lifetime and the
// given per-operation timeout.
func (s *ChromeSession) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	opCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		opCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	runCtx, cancel := combineContext(s.ctx, opCtx)
	defer cancel()

	return chromedp.Run(runCtx, actions...)
}

func (s *ChromeSession) Navigate(ctx context.Context, url string) error {
	s.logger.Debug("Navigating.", zap.String("url", url))
	return s.run(ctx, navigateTimeout, chromedp.Navigate(url))
}

func (s *ChromeSession) WaitVisible(ctx context.Context, sel string, timeout time.Duration) error {
	return s.run(ctx, timeout, chromedp.WaitVisible(sel, queryOption(sel)))
}

func (s *ChromeSession) SendKeys(ctx context.Context, sel, text string, timeout time.Duration) error {
	by := queryOption(sel)
	return s.run(ctx, timeout,
		chromedp.WaitVisible(sel, by),
		chromedp.Clear(sel, by),
		chromedp.SendKeys(sel, text, by),
	)
}

func (s *ChromeSession) Click(ctx context.Context, sel string, timeout time.Duration) error {
	return s.run(ctx, timeout, chromedp.Click(sel, queryOption(sel)))
}

func (s *ChromeSession) Text(ctx context.Context, sel string, timeout time.Duration) (string, error) {
	var out string
	err := s.run(ctx, timeout, chromedp.Text(sel, &out, queryOption(sel)))
	return out, err
}

// AcceptPendingDialog accepts the most recent dialog recorded by the target
// listener. When no dialog is pending it reports ok=false without touching
// the browser.
func (s *ChromeSession) AcceptPendingDialog(ctx context.Context) (string, bool, error) {
	s.mu.Lock()
	open, message := s.dialogOpen, s.pendingDialog
	s.dialogOpen = false
	s.mu.Unlock()

	if !open {
		return "", false, nil
	}

	err := s.run(ctx, 10*time.Second, chromedp.ActionFunc(func(c context.Context) error {
		return page.HandleJavaScriptDialog(true).Do(c)
	}))
	if err != nil {
		return message, true, fmt.Errorf("failed to accept dialog: %w", err)
	}
	return message, true, nil
}

// Close tears down the tab and the browser process. Subsequent calls are
// no-ops.
func (s *ChromeSession) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.logger.Debug("Closing browser session.")
		s.cancelBrowser()
		s.cancelAlloc()
	})
	return nil
}

// queryOption picks the chromedp selector strategy: XPath for expressions,
// CSS for everything else.
func queryOption(sel string) chromedp.QueryOption {
	if strings.HasPrefix(sel, "//") {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

// splitFlag parses a raw "--name=value" browser argument into a chromedp
// flag pair. Bare flags become boolean switches.
func splitFlag(arg string) (string, interface{}) {
	arg = strings.TrimPrefix(arg, "--")
	if name, value, found := strings.Cut(arg, "="); found {
		return name, value
	}
	return arg, true
}
