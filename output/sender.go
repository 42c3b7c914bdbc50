package output

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 2 * time.Second
)

// Message is one outbound delivery.
type Message struct {
	BotToken string
	ChatID   string
	Text     string
}

// Sender posts a message once. Any non-nil error counts as a failed attempt.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// UnexpectedStatusError is returned when the messaging API answers with
// anything other than 200.
type UnexpectedStatusError struct {
	StatusCode int
	Status     string
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("Unexpected response from messaging API: %d - %s", e.StatusCode, e.Status)
}

// ErrDeliveryExhausted is returned once every attempt has failed.
var ErrDeliveryExhausted = errors.New("message delivery failed after all attempts")

// Policy controls the retry loop in Deliver.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	// ShortCircuitAuth stops retrying after a 401 or 403. Off by default,
	// which retries every failure identically.
	ShortCircuitAuth bool
}

func DefaultPolicy() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, Delay: DefaultRetryDelay}
}

// AttemptFunc observes each attempt; err is nil on success.
type AttemptFunc func(attempt int, err error)

// Deliver sends msg, retrying failed attempts after p.Delay. It returns the
// number of attempts made and, when none succeeded, an error wrapping both
// ErrDeliveryExhausted and the last failure.
func Deliver(ctx context.Context, sender Sender, msg Message, p Policy, observe AttemptFunc) (int, error) {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = sender.Send(ctx, msg)
		if observe != nil {
			observe(attempt, lastErr)
		}
		if lastErr == nil {
			return attempt, nil
		}
		if p.ShortCircuitAuth && isAuthFailure(lastErr) {
			return attempt, &DeliveryError{Attempts: attempt, Err: lastErr}
		}
		if attempt == p.MaxAttempts {
			break
		}

		timer := time.NewTimer(p.Delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return attempt, &DeliveryError{Attempts: attempt, Err: ctx.Err()}
		}
	}
	return p.MaxAttempts, &DeliveryError{Attempts: p.MaxAttempts, Err: lastErr}
}

// DeliveryError reports a delivery that never succeeded.
type DeliveryError struct {
	Attempts int
	Err      error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s (%d attempts): %v", ErrDeliveryExhausted, e.Attempts, e.Err)
}

func (e *DeliveryError) Unwrap() []error { return []error{ErrDeliveryExhausted, e.Err} }

func isAuthFailure(err error) bool {
	var statusErr *UnexpectedStatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	return statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden
}
