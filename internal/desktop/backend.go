// File: internal/desktop/backend.go
package desktop

import (
	"context"
	"time"
)

// Backend abstracts the host's UI automation facility. The driver owns all
// sequencing and step recording; a Backend only locates and pokes controls.
// The production implementation shells out to a UI Automation bridge; tests
// substitute a scripted fake.
type Backend interface {
	// LaunchApp starts the target application, typically by replaying a
	// start-menu key sequence.
	LaunchApp(ctx context.Context, command string) error

	// FocusWindow blocks until a window whose title matches the pattern
	// exists and is ready, then gives it keyboard focus.
	FocusWindow(ctx context.Context, titlePattern string, timeout time.Duration) error

	// WaitReady blocks until the control is visible, enabled and ready
	// inside the matched window, bounded by timeout.
	WaitReady(ctx context.Context, titlePattern string, c Control, timeout time.Duration) error

	// Click performs a physical click on the control.
	Click(ctx context.Context, titlePattern string, c Control) error

	// TypeText sends literal keystrokes into the control.
	TypeText(ctx context.Context, titlePattern string, c Control, text string) error

	// SendShortcut sends a modifier chord (e.g. "^v") to the control.
	SendShortcut(ctx context.Context, titlePattern string, c Control, chord string) error
}
