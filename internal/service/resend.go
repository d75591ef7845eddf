package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/LeventeLantos/reseller-notifier/internal/client"
	"github.com/LeventeLantos/reseller-notifier/internal/model"
	"github.com/LeventeLantos/reseller-notifier/internal/phone"
	"github.com/LeventeLantos/reseller-notifier/internal/repo"
	"github.com/LeventeLantos/reseller-notifier/internal/schedule"
	"github.com/LeventeLantos/reseller-notifier/internal/scheduler"
)

type ResendResult struct {
	TenantID  string `json:"tenantId"`
	Attempted int    `json:"attempted"`
	Sent      int    `json:"sent"`
	Failed    int    `json:"failed"`
}

// Resender retries today's pending and failed rows for a tenant after its gateway reconnects.
type Resender struct {
	sources []repo.ResendableLogs
	sender  *Sender
	cal     schedule.Calendar
	now     func() time.Time
}

func NewResender(sender *Sender, cal schedule.Calendar, now func() time.Time, sources ...repo.ResendableLogs) *Resender {
	if now == nil {
		now = time.Now
	}
	return &Resender{
		sources: sources,
		sender:  sender,
		cal:     cal,
		now:     now,
	}
}

// Run walks every source. A source that cannot be listed does not stop the others;
// its error is returned alongside the counts.
func (r *Resender) Run(ctx context.Context, tenantID string) (ResendResult, error) {
	log := scheduler.Logger(ctx)
	res := ResendResult{TenantID: tenantID}
	day := r.cal.Day(r.now())
	instance := client.InstanceName(tenantID)

	var errs *multierror.Error
	for _, src := range r.sources {
		rows, err := src.ListResendable(ctx, tenantID, day.Start, day.End)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("list resendable: %w", err))
			continue
		}

		for _, row := range rows {
			if ctx.Err() != nil {
				return res, multierror.Append(errs, ctx.Err()).ErrorOrNil()
			}
			if row.RetryCount >= model.MaxRetries {
				continue
			}
			res.Attempted++
			if err := r.resendOne(ctx, src, row, instance, &res); err != nil {
				errs = multierror.Append(errs, err)
			}
		}
	}

	log.Info("resend pass finished", "tenant", tenantID,
		"attempted", res.Attempted, "sent", res.Sent, "failed", res.Failed)
	return res, errs.ErrorOrNil()
}

func (r *Resender) resendOne(ctx context.Context, src repo.ResendableLogs, row model.NotificationLog, instance string, res *ResendResult) error {
	number, err := phone.NormalizeLenient(row.Phone)
	if err != nil {
		res.Failed++
		if err := src.IncrementRetry(ctx, row.ID, err.Error()); err != nil {
			return fmt.Errorf("%s log %d: %w", row.Kind, row.ID, err)
		}
		return nil
	}

	sendRes := r.sender.Send(ctx, instance, number, row.Message)
	if sendRes.Success {
		res.Sent++
		if err := src.MarkSent(ctx, row.ID, sendRes.MessageID, r.now()); err != nil {
			return fmt.Errorf("%s log %d: %w", row.Kind, row.ID, err)
		}
	} else {
		res.Failed++
		if err := src.IncrementRetry(ctx, row.ID, sendRes.Error); err != nil {
			return fmt.Errorf("%s log %d: %w", row.Kind, row.ID, err)
		}
	}

	_ = r.sender.Throttle(ctx)
	return nil
}
