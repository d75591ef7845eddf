package service

import (
	"context"
	"fmt"
	"time"

	"github.com/LeventeLantos/reseller-notifier/internal/client"
	"github.com/LeventeLantos/reseller-notifier/internal/metrics"
	"github.com/LeventeLantos/reseller-notifier/internal/model"
	"github.com/LeventeLantos/reseller-notifier/internal/repo"
)

type Gateway interface {
	SendText(ctx context.Context, instance, number, text string) client.SendResult
}

// Sender sends through the gateway, keeps the log row in step with the outcome and
// spaces consecutive sends by delay.
type Sender struct {
	gateway Gateway
	loop    string
	delay   time.Duration
	now     func() time.Time
}

func NewSender(gateway Gateway, loop string, delay time.Duration, now func() time.Time) *Sender {
	if now == nil {
		now = time.Now
	}
	return &Sender{
		gateway: gateway,
		loop:    loop,
		delay:   delay,
		now:     now,
	}
}

func (s *Sender) Send(ctx context.Context, instance, number, text string) client.SendResult {
	res := s.gateway.SendText(ctx, instance, number, text)
	status := model.Sent
	if !res.Success {
		status = model.Failed
	}
	metrics.MessagesTotal.WithLabelValues(s.loop, string(status)).Inc()
	return res
}

// Deliver writes l as pending, sends it and closes the row as sent or failed.
// An error means the row could not be written; nothing is sent if the insert failed.
func (s *Sender) Deliver(ctx context.Context, logs repo.LogWriter, l *model.NotificationLog, instance string) (client.SendResult, error) {
	l.Status = model.Pending
	if err := logs.Create(ctx, l); err != nil {
		return client.SendResult{}, fmt.Errorf("create %s log: %w", l.Kind, err)
	}

	res := s.Send(ctx, instance, l.Phone, l.Message)
	if res.Success {
		sentAt := s.now()
		l.Status, l.MessageID, l.SentAt = model.Sent, res.MessageID, &sentAt
		if err := logs.MarkSent(ctx, l.ID, res.MessageID, sentAt); err != nil {
			return res, fmt.Errorf("mark %s log %d sent: %w", l.Kind, l.ID, err)
		}
		return res, nil
	}

	l.Status, l.ErrorMessage = model.Failed, res.Error
	if err := logs.MarkFailed(ctx, l.ID, res.Error, l.RetryCount); err != nil {
		return res, fmt.Errorf("mark %s log %d failed: %w", l.Kind, l.ID, err)
	}
	return res, nil
}

// Reject records a send that cannot be attempted. The row is written with the retry
// budget spent so the resend pass leaves it alone.
func (s *Sender) Reject(ctx context.Context, logs repo.LogWriter, l *model.NotificationLog, reason string) error {
	l.Status = model.Failed
	l.ErrorMessage = reason
	l.RetryCount = model.MaxRetries
	metrics.MessagesTotal.WithLabelValues(s.loop, "rejected").Inc()
	if err := logs.Create(ctx, l); err != nil {
		return fmt.Errorf("create %s log: %w", l.Kind, err)
	}
	return nil
}

// Throttle waits the configured delay or until ctx is done.
func (s *Sender) Throttle(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// guard runs one per-item step and turns a panic into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
