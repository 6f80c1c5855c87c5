// File: internal/desktop/uia.go
package desktop

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

//go:embed bridge.ps1
var bridgeScript []byte

// uiaBackend drives native controls through a PowerShell UI Automation
// bridge. Each primitive is one bridge invocation; the bridge's exit code is
// the only success signal.
type uiaBackend struct {
	shell  string
	logger *zap.Logger

	scriptOnce sync.Once
	scriptPath string
	scriptErr  error
}

// NewUIABackend returns the production Backend. shell is the PowerShell
// executable to invoke (config app.bridge).
func NewUIABackend(shell string, logger *zap.Logger) Backend {
	return &uiaBackend{
		shell:  shell,
		logger: logger.Named("uia"),
	}
}

// materialize writes the embedded bridge script to a temp file once and
// reuses it for every subsequent invocation in this run.
func (b *uiaBackend) materialize() (string, error) {
	b.scriptOnce.Do(func() {
		path := filepath.Join(os.TempDir(), fmt.Sprintf("enroll-bridge-%d.ps1", os.Getpid()))
		if err := os.WriteFile(path, bridgeScript, 0o600); err != nil {
			b.scriptErr = fmt.Errorf("failed to write bridge script: %w", err)
			return
		}
		b.scriptPath = path
	})
	return b.scriptPath, b.scriptErr
}

// run invokes one bridge action and waits for it to finish.
func (b *uiaBackend) run(ctx context.Context, action string, args map[string]string) error {
	script, err := b.materialize()
	if err != nil {
		return err
	}

	argv := []string{"-NoProfile", "-NonInteractive", "-ExecutionPolicy", "Bypass",
		"-File", script, "-Action", action}
	for k, v := range args {
		argv = append(argv, "-"+k, v)
	}

	cmd := exec.CommandContext(ctx, b.shell, argv...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	b.logger.Debug("Invoking UIA bridge", zap.String("action", action))
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("bridge %s failed: %w (%s)", action, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return nil
}

func (b *uiaBackend) LaunchApp(ctx context.Context, command string) error {
	return b.run(ctx, "launch", map[string]string{"Text": command})
}

func (b *uiaBackend) FocusWindow(ctx context.Context, titlePattern string, timeout time.Duration) error {
	return b.run(ctx, "focus", map[string]string{
		"WindowTitle": titlePattern,
		"TimeoutSec":  seconds(timeout),
	})
}

func (b *uiaBackend) WaitReady(ctx context.Context, titlePattern string, c Control, timeout time.Duration) error {
	return b.run(ctx, "wait-ready", map[string]string{
		"WindowTitle":  titlePattern,
		"AutomationId": c.AutomationID,
		"ControlType":  string(c.Kind),
		"TimeoutSec":   seconds(timeout),
	})
}

func (b *uiaBackend) Click(ctx context.Context, titlePattern string, c Control) error {
	return b.run(ctx, "click", map[string]string{
		"WindowTitle":  titlePattern,
		"AutomationId": c.AutomationID,
		"ControlType":  string(c.Kind),
	})
}

func (b *uiaBackend) TypeText(ctx context.Context, titlePattern string, c Control, text string) error {
	return b.run(ctx, "type", map[string]string{
		"WindowTitle":  titlePattern,
		"AutomationId": c.AutomationID,
		"ControlType":  string(c.Kind),
		"Text":         text,
	})
}

func (b *uiaBackend) SendShortcut(ctx context.Context, titlePattern string, c Control, chord string) error {
	return b.run(ctx, "shortcut", map[string]string{
		"WindowTitle":  titlePattern,
		"AutomationId": c.AutomationID,
		"ControlType":  string(c.Kind),
		"Text":         chord,
	})
}

func seconds(d time.Duration) string {
	s := int(d / time.Second)
	if s < 1 {
		s = 1
	}
	return strconv.Itoa(s)
}
