// Package notify dispatches best-effort desktop alerts. Failures are never
// allowed to block ledger commitment.
package notify

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

// Notifier is the fire-and-forget alert collaborator.
type Notifier interface {
	Notify(ctx context.Context, title, subtitle, body string) error
}

// OSANotifier shells out to osascript for a macOS banner notification.
type OSANotifier struct {
	timeout time.Duration
}

func NewOSANotifier(timeout time.Duration) *OSANotifier {
	return &OSANotifier{timeout: timeout}
}

func (n *OSANotifier) Notify(ctx context.Context, title, subtitle, body string) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()
	// %q escapes quotes and control characters into a valid AppleScript
	// string literal.
	script := fmt.Sprintf("display notification %q with title %q subtitle %q", body, title, subtitle)
	if err := exec.CommandContext(ctx, "osascript", "-e", script).Run(); err != nil {
		return fmt.Errorf("osascript: %w", err)
	}
	return nil
}

// Nop discards notifications; used for tests and headless runs.
type Nop struct{}

func (Nop) Notify(ctx context.Context, title, subtitle, body string) error { return nil }
