package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"isdao/payment-portal/payment-portal-backend/internal/requests"
	"isdao/payment-portal/payment-portal-backend/pkg/workflows"
)

// Reminder sweeps the pending queues on a schedule and nudges the approver
// sitting on requests older than the threshold.
type Reminder struct {
	repo     requests.Repository
	notifier *Notifier
	maxAge   time.Duration
	cron     *cron.Cron
	log      *zap.Logger
}

func NewReminder(repo requests.Repository, notifier *Notifier, maxAge time.Duration, log *zap.Logger) *Reminder {
	return &Reminder{
		repo:     repo,
		notifier: notifier,
		maxAge:   maxAge,
		cron:     cron.New(),
		log:      log,
	}
}

// Start schedules the sweep. The default spec runs every morning at 08:00.
func (r *Reminder) Start(spec string) error {
	if spec == "" {
		spec = "0 8 * * *"
	}
	if _, err := r.cron.AddFunc(spec, func() { r.Sweep(context.Background()) }); err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

func (r *Reminder) Stop() {
	r.cron.Stop()
}

// Sweep finds stale pending requests and pushes a reminder to whoever the
// chain is waiting on.
func (r *Reminder) Sweep(ctx context.Context) {
	pending, err := r.repo.List(ctx, requests.Query{Statuses: []workflows.Status{
		workflows.PendingStatus("MANAGER"),
		workflows.PendingStatus("ED"),
	}})
	if err != nil {
		r.log.Error("reminder sweep failed", zap.Error(err))
		return
	}

	cutoff := time.Now().Add(-r.maxAge)
	var stale int
	for i := range pending {
		req := &pending[i]
		if req.UpdatedAt.After(cutoff) {
			continue
		}
		stale++
		subject := fmt.Sprintf("Reminder: payment request %s still awaits a decision", req.ReferenceNumber)
		body := fmt.Sprintf("<p>The payment request for %s (%s %.2f) has been waiting since %s.</p>",
			req.Beneficiary, req.Currency, req.Amount, req.UpdatedAt.Format("2 January 2006"))
		if req.Status == workflows.PendingStatus("MANAGER") {
			r.notifier.deliver(ctx, req.ManagerID, "request.reminder", req, subject, body)
		} else {
			r.notifier.notifyExecutives(ctx, req)
		}
	}
	if stale > 0 {
		r.log.Info("pending request reminders sent", zap.Int("stale", stale))
	}
}
