package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"garagesite/pkg/apperr"
	"garagesite/pkg/email"
	"garagesite/pkg/models"
	"garagesite/pkg/utils"
	"garagesite/pkg/validation"
)

// reCAPTCHA actions the site's forms execute with.
const (
	ActionLeadForm    = "lead_form"
	ActionContactForm = "contact_form"
)

// Sources, as they appear in notification subjects.
const (
	SourceQuoteForm   = "quote request"
	SourceContactForm = "contact form"
)

// LeadService defines the interface for handling form submissions
type LeadService interface {
	SubmitLead(ctx context.Context, req models.LeadRequest, remoteIP string) (*Submission, error)
	SubmitForm(ctx context.Context, req models.SubmitFormRequest, remoteIP string) (*Submission, error)
}

type captchaGuard interface {
	Check(ctx context.Context, token, action, remoteIP string) error
}

type mailer interface {
	Send(ctx context.Context, sub email.Submission) email.Report
}

type leadServiceImpl struct {
	leadGuard captchaGuard
	formGuard captchaGuard
	mailer    mailer
	notifiers []Notifier
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// Deps are the collaborators of the lead service.
type Deps struct {
	// LeadGuard protects /api/lead; FormGuard protects /api/submit-form.
	LeadGuard captchaGuard
	FormGuard captchaGuard
	Mailer    mailer
	Notifiers []Notifier
	Logger    *zap.Logger
}

// NewLeadService creates a new submission service
func NewLeadService(d Deps) LeadService {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &leadServiceImpl{
		leadGuard: d.LeadGuard,
		formGuard: d.FormGuard,
		mailer:    d.Mailer,
		notifiers: d.Notifiers,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// SubmitLead handles the short quote form.
func (s *leadServiceImpl) SubmitLead(ctx context.Context, req models.LeadRequest, remoteIP string) (*Submission, error) {
	if fields := validation.Struct(req); fields != nil {
		return nil, apperr.Validation("Validation failed", fields)
	}

	sub := newSubmission(s.newID(), SourceQuoteForm)
	return sub, s.process(ctx, sub, s.leadGuard, ActionLeadForm, req.RecaptchaToken, remoteIP, req.FormData(), nil)
}

// SubmitForm handles the full contact/booking form.
func (s *leadServiceImpl) SubmitForm(ctx context.Context, req models.SubmitFormRequest, remoteIP string) (*Submission, error) {
	if req.FormData.MissingRequired() {
		return nil, apperr.Validation("Missing required fields", nil)
	}
	if fields := validation.Struct(req); fields != nil {
		return nil, apperr.Validation("Validation failed", fields)
	}

	sub := newSubmission(s.newID(), SourceContactForm)
	return sub, s.process(ctx, sub, s.formGuard, ActionContactForm, req.RecaptchaToken, remoteIP, req.FormData, req.UserInfo)
}

func (s *leadServiceImpl) process(
	ctx context.Context,
	sub *Submission,
	guard captchaGuard,
	action, token, remoteIP string,
	lead models.LeadFormData,
	info *models.UserInfo,
) error {
	log := s.logger.With(
		zap.String("lead_id", sub.LeadID),
		zap.String("source", sub.Source),
		zap.String("contact", utils.ShortHash(lead.Email)),
	)
	if err := sub.advance(StateSubmitting); err != nil {
		return apperr.Unknown("submission already processed", err)
	}
	log.Info("processing submission", zap.Bool("emergency", lead.Emergency))

	fail := func(err error) error {
		sub.Err = err
		_ = sub.advance(StateFailed)
		return err
	}

	if guard != nil {
		if err := guard.Check(ctx, token, action, remoteIP); err != nil {
			return fail(err)
		}
	}

	report := s.mailer.Send(ctx, email.Submission{
		LeadID:   sub.LeadID,
		Source:   sub.Source,
		Lead:     lead,
		UserInfo: info,
	})
	sub.Outcome = report.Outcome()
	switch sub.Outcome {
	case email.OutcomeFailed:
		return fail(apperr.Server("Failed to send your request", report.Err()))
	case email.OutcomePartial:
		log.Warn("business notified but autoresponder failed", zap.Error(report.Autoresponder.Err))
	}

	s.notify(ctx, log, LeadEvent{
		LeadID:     sub.LeadID,
		Source:     sub.Source,
		Lead:       lead,
		UserInfo:   info,
		ReceivedAt: s.now(),
	})

	_ = sub.advance(StateSucceeded)
	log.Info("submission succeeded", zap.String("outcome", string(sub.Outcome)))
	return nil
}

// notify runs every notifier concurrently and waits for them. Failures are
// only logged.
func (s *leadServiceImpl) notify(ctx context.Context, log *zap.Logger, ev LeadEvent) {
	if len(s.notifiers) == 0 {
		return
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, n := range s.notifiers {
		n := n
		g.Go(func() error {
			if err := n.Notify(gctx, ev); err != nil {
				log.Warn("notifier failed", zap.String("notifier", n.Name()), zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()
}
