package notify_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcardoso/planner/backend/internal/notify"
)

// fakeSender delegates to a function field so each test can script the
// transport's behaviour.
type fakeSender struct {
	fn func(ctx context.Context, email notify.Email) (string, error)
}

func (f *fakeSender) Send(ctx context.Context, email notify.Email) (string, error) {
	return f.fn(ctx, email)
}

// compile-time check: fakeSender must satisfy notify.Sender.
var _ notify.Sender = (*fakeSender)(nil)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func emailTo(addr string) notify.Email {
	return notify.Email{RecipientAddr: addr, Subject: "Confirm your trip", HTML: "<div></div>"}
}

func emails(n int) []notify.Email {
	out := make([]notify.Email, n)
	for i := range out {
		out[i] = emailTo(fmt.Sprintf("p%d@example.com", i))
	}
	return out
}

func TestDispatcher_Send_Success(t *testing.T) {
	sender := &fakeSender{fn: func(_ context.Context, _ notify.Email) (string, error) {
		return "<abc123@mail>", nil
	}}
	d := notify.NewDispatcher(sender, discardLogger(), 0)

	outcome := d.Send(context.Background(), emailTo("alice@example.com"))

	assert.False(t, outcome.Failed())
	assert.Equal(t, "alice@example.com", outcome.Recipient)
	assert.Equal(t, "<abc123@mail>", outcome.MessageID)
}

func TestDispatcher_Send_FailureCarriesRecipientAndCause(t *testing.T) {
	cause := errors.New("connection refused")
	sender := &fakeSender{fn: func(_ context.Context, _ notify.Email) (string, error) {
		return "", cause
	}}
	d := notify.NewDispatcher(sender, discardLogger(), 0)

	outcome := d.Send(context.Background(), emailTo("alice@example.com"))

	require.True(t, outcome.Failed())
	assert.Equal(t, "alice@example.com", outcome.Recipient)
	assert.ErrorIs(t, outcome.Err, cause)
	assert.Contains(t, outcome.Err.Error(), "alice@example.com")
}

func TestDispatcher_Send_StalledSendTimesOut(t *testing.T) {
	sender := &fakeSender{fn: func(ctx context.Context, _ notify.Email) (string, error) {
		// Never settles on its own — only the per-send timeout releases it.
		<-ctx.Done()
		return "", ctx.Err()
	}}
	d := notify.NewDispatcher(sender, discardLogger(), 20*time.Millisecond)

	start := time.Now()
	outcome := d.Send(context.Background(), emailTo("slow@example.com"))

	require.True(t, outcome.Failed())
	assert.ErrorIs(t, outcome.Err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestDispatcher_Broadcast_RunsSendsConcurrently(t *testing.T) {
	const n = 5

	// Every send blocks until all n are in flight. A sequential loop would
	// never get past the first send; the test timeout below catches that.
	var inFlight sync.WaitGroup
	inFlight.Add(n)
	sender := &fakeSender{fn: func(ctx context.Context, _ notify.Email) (string, error) {
		inFlight.Done()
		inFlight.Wait()
		return "ok", nil
	}}
	d := notify.NewDispatcher(sender, discardLogger(), 5*time.Second)

	done := make(chan notify.Report, 1)
	go func() { done <- d.Broadcast(context.Background(), emails(n)) }()

	select {
	case report := <-done:
		assert.Nil(t, report.Err())
		assert.Len(t, report.Outcomes, n)
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast did not run sends concurrently")
	}
}

func TestDispatcher_Broadcast_NoShortCircuitOnFailure(t *testing.T) {
	var attempts atomic.Int32
	sender := &fakeSender{fn: func(_ context.Context, email notify.Email) (string, error) {
		attempts.Add(1)
		// Two specific recipients fail; the rest succeed.
		if email.RecipientAddr == "p0@example.com" || email.RecipientAddr == "p3@example.com" {
			return "", errors.New("mailbox full")
		}
		return "ok", nil
	}}
	d := notify.NewDispatcher(sender, discardLogger(), 0)

	report := d.Broadcast(context.Background(), emails(5))

	assert.EqualValues(t, 5, attempts.Load(), "every send is attempted despite failures")
	require.Len(t, report.Outcomes, 5)
	assert.Len(t, report.Failures(), 2)

	// Outcomes are indexed by input position regardless of completion order.
	assert.True(t, report.Outcomes[0].Failed())
	assert.False(t, report.Outcomes[1].Failed())
	assert.True(t, report.Outcomes[3].Failed())

	err := report.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "p0@example.com")
	assert.Contains(t, err.Error(), "p3@example.com")
}

func TestDispatcher_Broadcast_OneStalledSendOnlyFailsItself(t *testing.T) {
	sender := &fakeSender{fn: func(ctx context.Context, email notify.Email) (string, error) {
		if strings.HasPrefix(email.RecipientAddr, "p1") {
			<-ctx.Done() // stalls until the per-send timeout fires
			return "", ctx.Err()
		}
		return "ok", nil
	}}
	d := notify.NewDispatcher(sender, discardLogger(), 20*time.Millisecond)

	report := d.Broadcast(context.Background(), emails(3))

	require.Len(t, report.Outcomes, 3)
	assert.False(t, report.Outcomes[0].Failed())
	assert.True(t, report.Outcomes[1].Failed(), "the stalled send becomes a reported failure")
	assert.False(t, report.Outcomes[2].Failed())
}

func TestDispatcher_Broadcast_Empty(t *testing.T) {
	sender := &fakeSender{fn: func(_ context.Context, _ notify.Email) (string, error) {
		t.Fatal("no sends expected")
		return "", nil
	}}
	d := notify.NewDispatcher(sender, discardLogger(), 0)

	report := d.Broadcast(context.Background(), nil)

	assert.Empty(t, report.Outcomes)
	assert.NoError(t, report.Err())
}

func TestReport_ErrNilWhenAllSucceed(t *testing.T) {
	report := notify.Report{Outcomes: []notify.Outcome{
		{Recipient: "a@example.com", MessageID: "1"},
		{Recipient: "b@example.com", MessageID: "2"},
	}}
	assert.NoError(t, report.Err())
	assert.Empty(t, report.Failures())
}
