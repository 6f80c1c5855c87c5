// File: internal/desktop/noop.go
package desktop

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// noopBackend pretends every window and control is ready and every action
// lands. It lets a run rehearse everything except the native application.
type noopBackend struct {
	logger *zap.Logger
}

// NewNoopBackend returns a Backend that only logs what it would have done.
func NewNoopBackend(logger *zap.Logger) Backend {
	return &noopBackend{logger: logger.Named("desktop.noop")}
}

func (n *noopBackend) LaunchApp(ctx context.Context, command string) error {
	n.logger.Info("Would launch application.", zap.String("command", command))
	return ctx.Err()
}

func (n *noopBackend) FocusWindow(ctx context.Context, titlePattern string, timeout time.Duration) error {
	n.logger.Info("Would focus window.", zap.String("title", titlePattern))
	return ctx.Err()
}

func (n *noopBackend) WaitReady(ctx context.Context, titlePattern string, c Control, timeout time.Duration) error {
	n.logger.Info("Would wait for control.", zap.String("control", c.Name()))
	return ctx.Err()
}

func (n *noopBackend) Click(ctx context.Context, titlePattern string, c Control) error {
	n.logger.Info("Would click control.", zap.String("control", c.Name()))
	return ctx.Err()
}

func (n *noopBackend) TypeText(ctx context.Context, titlePattern string, c Control, text string) error {
	n.logger.Info("Would type into control.", zap.String("control", c.Name()))
	return ctx.Err()
}

func (n *noopBackend) SendShortcut(ctx context.Context, titlePattern string, c Control, chord string) error {
	n.logger.Info("Would send shortcut.", zap.String("control", c.Name()), zap.String("chord", chord))
	return ctx.Err()
}
