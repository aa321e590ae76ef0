package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"isdao/payment-portal/payment-portal-backend/internal/identity"
	"isdao/payment-portal/payment-portal-backend/internal/messages"
	"isdao/payment-portal/payment-portal-backend/internal/requests"
	"isdao/payment-portal/payment-portal-backend/pkg/workflows"
)

// Notifier fans workflow events out to the live hub, email and the event
// topic. All deliveries are best-effort: a failed channel is logged and the
// rest still fire.
type Notifier struct {
	hub       *Hub
	mailer    *Mailer
	publisher *Publisher
	users     identity.Repository
	log       *zap.Logger
}

// NewNotifier wires the fan-out. hub, mailer and publisher may each be nil to
// disable that channel.
func NewNotifier(hub *Hub, mailer *Mailer, publisher *Publisher, users identity.Repository, log *zap.Logger) *Notifier {
	return &Notifier{hub: hub, mailer: mailer, publisher: publisher, users: users, log: log}
}

// RequestCreated tells the assigned manager a request is waiting on them.
func (n *Notifier) RequestCreated(ctx context.Context, req *requests.PaymentRequest) {
	subject := fmt.Sprintf("Payment request %s awaits your review", req.ReferenceNumber)
	body := fmt.Sprintf("<p>A payment request of %s %.2f for %s has been submitted and awaits your approval.</p>",
		req.Currency, req.Amount, req.Beneficiary)
	n.deliver(ctx, req.ManagerID, "request.created", req, subject, body)

	if n.publisher != nil {
		n.publisher.PublishLifecycle(ctx, "request.created", req.ReferenceNumber, string(req.Status), req.Amount, req.Currency)
	}
}

// RequestDecided routes a decision to the people it moves work to: the
// requester always hears about it, and an intermediate approval alerts the
// executives now holding the request.
func (n *Notifier) RequestDecided(ctx context.Context, req *requests.PaymentRequest, entry requests.AuditEntry) {
	subject := fmt.Sprintf("Payment request %s: %s", req.ReferenceNumber, entry.Action)
	body := fmt.Sprintf("<p>Your payment request for %s is now <b>%s</b>.</p>", req.Beneficiary, req.Status)
	if entry.Comment != "" {
		body += fmt.Sprintf("<p>Comment: %s</p>", entry.Comment)
	}
	n.deliver(ctx, req.RequesterID, "request.decided", req, subject, body)

	if req.Status == workflows.PendingStatus("ED") {
		n.notifyExecutives(ctx, req)
	}
	if n.publisher != nil {
		n.publisher.PublishLifecycle(ctx, "request.decided", req.ReferenceNumber, string(req.Status), req.Amount, req.Currency)
	}
}

// PushMessage surfaces a mailbox message in the recipient's live session.
func (n *Notifier) PushMessage(userID uuid.UUID, msg *messages.Message) {
	if n.hub != nil {
		n.hub.Push(userID, Event{Type: "message", Payload: msg, CreatedAt: time.Now()})
	}
}

func (n *Notifier) notifyExecutives(ctx context.Context, req *requests.PaymentRequest) {
	execs, err := n.users.ListByRole(ctx, identity.RoleED)
	if err != nil {
		n.log.Warn("could not list executives for notification", zap.Error(err))
		return
	}
	subject := fmt.Sprintf("Payment request %s awaits executive approval", req.ReferenceNumber)
	body := fmt.Sprintf("<p>A payment request of %s %.2f for %s has passed manager review.</p>",
		req.Currency, req.Amount, req.Beneficiary)
	for _, exec := range execs {
		n.deliver(ctx, exec.ID, "request.pending", req, subject, body)
	}
}

func (n *Notifier) deliver(ctx context.Context, userID uuid.UUID, eventType string, req *requests.PaymentRequest, subject, body string) {
	if n.hub != nil {
		n.hub.Push(userID, Event{Type: eventType, Payload: req, CreatedAt: time.Now()})
	}
	if n.mailer == nil {
		return
	}
	user, err := n.users.GetByID(ctx, userID)
	if err != nil || user.Email == "" {
		return
	}
	if err := n.mailer.Send(ctx, user.Email, subject, body); err != nil {
		n.log.Warn("workflow email not delivered",
			zap.String("reference", req.ReferenceNumber),
			zap.String("to", user.Email),
			zap.Error(err))
	}
}
