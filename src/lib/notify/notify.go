// Package notify delivers notification messages.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// Sent is the acknowledgement returned by every sink on delivery.
const Sent = "Notification sent"

// Sink delivers a message to a notification channel.
type Sink interface {
	Send(ctx context.Context, message string) (string, error)
}

// Closer is a Sink holding resources that must be released.
type Closer interface {
	Sink
	Close() error
}

// Stdout writes notifications to a writer, os.Stdout by default.
type Stdout struct {
	// W is the writer to write to. Nil means os.Stdout.
	W io.Writer
}

// Send writes "Notification: <message>" on its own line.
func (s *Stdout) Send(_ context.Context, message string) (string, error) {
	w := s.W
	if w == nil {
		w = os.Stdout
	}
	if _, err := fmt.Fprintf(w, "Notification: %s\n", message); err != nil {
		return "", fmt.Errorf("failed to write notification: %v", err)
	}
	return Sent, nil
}

// Multi delivers to every sink in order, even if an earlier one fails.
type Multi []Sink

// Send sends message to all sinks and joins their errors.
func (m Multi) Send(ctx context.Context, message string) (string, error) {
	var errs []error
	for _, sink := range m {
		if _, err := sink.Send(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return "", err
	}
	return Sent, nil
}
