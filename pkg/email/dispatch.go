package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"garagesite/pkg/models"
)

// ErrSkipped marks the autoresponder when the notification never went out.
var ErrSkipped = errors.New("skipped: business notification failed")

// Outcome summarizes the pair of sends.
type Outcome string

const (
	OutcomeDelivered Outcome = "delivered"
	OutcomePartial   Outcome = "partial"
	OutcomeFailed    Outcome = "failed"
)

// Delivery is the result of one send.
type Delivery struct {
	ID  string
	Err error
}

func (d Delivery) OK() bool { return d.Err == nil }

// Report holds both deliveries of a submission.
type Report struct {
	Notification  Delivery
	Autoresponder Delivery
}

// Outcome is delivered when both went out, partial when only the business
// notification did and failed when the business was not notified.
func (r Report) Outcome() Outcome {
	switch {
	case !r.Notification.OK():
		return OutcomeFailed
	case !r.Autoresponder.OK():
		return OutcomePartial
	default:
		return OutcomeDelivered
	}
}

// Err joins whatever went wrong.
func (r Report) Err() error {
	return errors.Join(r.Notification.Err, r.Autoresponder.Err)
}

// DispatcherConfig carries the addresses and branding of outgoing mail.
type DispatcherConfig struct {
	From          string
	BusinessEmail string
	BusinessName  string
	BusinessPhone string
}

// Dispatcher sends the notification and autoresponder for a lead.
type Dispatcher struct {
	sender   Sender
	renderer *Renderer
	cfg      DispatcherConfig
	logger   *zap.Logger
	now      func() time.Time
}

func NewDispatcher(sender Sender, renderer *Renderer, cfg DispatcherConfig, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{sender: sender, renderer: renderer, cfg: cfg, logger: logger, now: time.Now}
}

// Submission identifies what is being emailed.
type Submission struct {
	LeadID   string
	Source   string
	Lead     models.LeadFormData
	UserInfo *models.UserInfo
}

// Send emails the business, then the customer. Neither send is retried. The
// autoresponder is skipped when the business could not be notified.
func (d *Dispatcher) Send(ctx context.Context, sub Submission) Report {
	data := TemplateData{
		Lead:          sub.Lead,
		UserInfo:      sub.UserInfo,
		LeadID:        sub.LeadID,
		Source:        sub.Source,
		BusinessName:  d.cfg.BusinessName,
		BusinessPhone: d.cfg.BusinessPhone,
		ReceivedAt:    d.now(),
	}

	var report Report
	report.Notification = d.sendNotification(ctx, data)
	if !report.Notification.OK() {
		report.Autoresponder = Delivery{Err: ErrSkipped}
		return report
	}
	report.Autoresponder = d.sendAutoresponder(ctx, data)
	return report
}

func (d *Dispatcher) sendNotification(ctx context.Context, data TemplateData) Delivery {
	if d.sender == nil {
		return Delivery{Err: errors.New("email sender not configured")}
	}
	if d.cfg.BusinessEmail == "" {
		return Delivery{Err: errors.New("business email not configured")}
	}
	subject, html, text, err := d.renderer.Notification(data)
	if err != nil {
		return Delivery{Err: err}
	}
	id, err := d.sender.Send(ctx, Message{
		From:    d.cfg.From,
		To:      []string{d.cfg.BusinessEmail},
		ReplyTo: data.Lead.Email,
		Subject: subject,
		HTML:    html,
		Text:    text,
		Tags:    map[string]string{"category": "lead_notification"},
	})
	if err != nil {
		d.logger.Error("business notification failed", zap.String("lead_id", data.LeadID), zap.Error(err))
		return Delivery{Err: fmt.Errorf("error sending business notification: %w", err)}
	}
	return Delivery{ID: id}
}

func (d *Dispatcher) sendAutoresponder(ctx context.Context, data TemplateData) Delivery {
	subject, html, text, err := d.renderer.Autoresponder(data)
	if err != nil {
		return Delivery{Err: err}
	}
	id, err := d.sender.Send(ctx, Message{
		From:    d.cfg.From,
		To:      []string{data.Lead.Email},
		ReplyTo: d.cfg.BusinessEmail,
		Subject: subject,
		HTML:    html,
		Text:    text,
		Tags:    map[string]string{"category": "autoresponder"},
	})
	if err != nil {
		d.logger.Warn("customer autoresponder failed", zap.String("lead_id", data.LeadID), zap.Error(err))
		return Delivery{Err: fmt.Errorf("error sending autoresponder: %w", err)}
	}
	return Delivery{ID: id}
}
