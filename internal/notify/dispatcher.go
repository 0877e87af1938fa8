// Package notify implements the confirmation email dispatcher.
// It delivers one formatted email per recipient and reports per-recipient
// outcomes; multi-recipient triggers fan out concurrently and join on all
// sends, so one slow or failing delivery never blocks or cancels another.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/mcardoso/planner/backend/internal/metrics"
)

// Email is one fully rendered message addressed to one recipient.
type Email struct {
	RecipientName string // may be empty for invitees who have not confirmed yet
	RecipientAddr string
	Subject       string
	HTML          string
}

// Outcome is the result of a single send attempt.
// Exactly one of MessageID and Err is set.
type Outcome struct {
	Recipient string
	MessageID string
	Err       error
}

// Failed reports whether the send attempt failed.
func (o Outcome) Failed() bool { return o.Err != nil }

// Report aggregates the outcomes of one fan-out. Outcomes are indexed in the
// same order as the input emails; completion order is not represented because
// it carries no meaning.
type Report struct {
	Outcomes []Outcome
}

// Failures returns the failed outcomes only.
func (r Report) Failures() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Failed() {
			failed = append(failed, o)
		}
	}
	return failed
}

// Err combines every per-recipient failure into a single error, or nil when
// all sends succeeded. Intended for logging — workflow actions never propagate
// this as their result.
func (r Report) Err() error {
	var err error
	for _, o := range r.Outcomes {
		if o.Failed() {
			err = multierr.Append(err, o.Err)
		}
	}
	return err
}

// Sender delivers one email over the underlying transport and returns the
// transport's message identifier. Implementations must not retry.
type Sender interface {
	Send(ctx context.Context, email Email) (messageID string, err error)
}

// DefaultSendTimeout bounds a single send so one stalled SMTP conversation
// becomes a reported failure instead of holding the fan-out barrier forever.
const DefaultSendTimeout = 10 * time.Second

// Dispatcher wraps a Sender with logging, metrics, and per-send timeouts.
type Dispatcher struct {
	sender  Sender
	log     *slog.Logger
	timeout time.Duration
}

// NewDispatcher constructs a Dispatcher. A zero timeout falls back to
// DefaultSendTimeout; a nil logger falls back to slog.Default().
func NewDispatcher(sender Sender, log *slog.Logger, timeout time.Duration) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	return &Dispatcher{sender: sender, log: log, timeout: timeout}
}

// Send delivers one email and reports the outcome. Failures are logged and
// counted here, once, so callers can stay fire-and-forget.
func (d *Dispatcher) Send(ctx context.Context, email Email) Outcome {
	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	messageID, err := d.sender.Send(sendCtx, email)
	if err != nil {
		metrics.EmailsFailedTotal.Inc()
		d.log.ErrorContext(ctx, "confirmation email failed",
			"recipient", email.RecipientAddr,
			"subject", email.Subject,
			"error", err,
		)
		return Outcome{
			Recipient: email.RecipientAddr,
			Err:       fmt.Errorf("notify: send to %s: %w", email.RecipientAddr, err),
		}
	}

	metrics.EmailsSentTotal.Inc()
	d.log.InfoContext(ctx, "confirmation email sent",
		"recipient", email.RecipientAddr,
		"message_id", messageID,
	)
	return Outcome{Recipient: email.RecipientAddr, MessageID: messageID}
}

// Broadcast starts every send concurrently and waits for all of them to
// settle. One recipient's failure neither cancels nor delays another's send —
// the WaitGroup is a join-all barrier, not a fail-fast one. Each goroutine
// writes to its own slice index, so no locking is needed.
func (d *Dispatcher) Broadcast(ctx context.Context, emails []Email) Report {
	outcomes := make([]Outcome, len(emails))

	var wg sync.WaitGroup
	for i, email := range emails {
		wg.Add(1)
		go func(i int, email Email) {
			defer wg.Done()
			outcomes[i] = d.Send(ctx, email)
		}(i, email)
	}
	wg.Wait()

	report := Report{Outcomes: outcomes}
	if err := report.Err(); err != nil {
		d.log.WarnContext(ctx, "notification fan-out completed with failures",
			"total", len(emails),
			"failed", len(report.Failures()),
			"error", err,
		)
	}
	return report
}
