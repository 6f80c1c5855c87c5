// File: internal/mailbox/context.go
package mailbox

import "context"

// combineContext derives a context from master that is additionally canceled
// when op is canceled. chromedp stores its connection state in context
// values, so operations must inherit from the session context (master) while
// still honoring the per-operation deadline carried by op.
func combineContext(master, op context.Context) (context.Context, context.CancelFunc) {
	combined, cancel := context.WithCancel(master)

	go func() {
		select {
		case <-op.Done():
			cancel()
		case <-combined.Done():
		}
	}()

	return combined, cancel
}
