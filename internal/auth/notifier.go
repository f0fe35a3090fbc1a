package auth

import (
	"context"
	"fmt"
	"io"
)

// Notifier delivers a one-time passcode out-of-band. The flow never hands
// the code back to its caller; the only way to learn it is through the
// delivery channel.
type Notifier interface {
	Deliver(ctx context.Context, email, code string) error
}

// ConsoleNotifier writes passcodes to a writer. It stands in for a real
// mail channel in the demo binary.
type ConsoleNotifier struct {
	W io.Writer
}

// Deliver prints the passcode for email to the configured writer.
func (n ConsoleNotifier) Deliver(_ context.Context, email, code string) error {
	_, err := fmt.Fprintf(n.W, "One-time passcode for %s: %s\n", email, code)
	return err
}
