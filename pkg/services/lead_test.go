package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"garagesite/pkg/apperr"
	"garagesite/pkg/email"
	"garagesite/pkg/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeGuard struct {
	err     error
	actions []string
}

func (g *fakeGuard) Check(_ context.Context, _, action, _ string) error {
	g.actions = append(g.actions, action)
	return g.err
}

type fakeMailer struct {
	report email.Report
	subs   []email.Submission
}

func (m *fakeMailer) Send(_ context.Context, sub email.Submission) email.Report {
	m.subs = append(m.subs, sub)
	return m.report
}

type fakeNotifier struct {
	mu     sync.Mutex
	name   string
	err    error
	events []LeadEvent
}

func (n *fakeNotifier) Name() string { return n.name }

func (n *fakeNotifier) Notify(_ context.Context, ev LeadEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return n.err
}

func newService(g *fakeGuard, m *fakeMailer, notifiers ...Notifier) LeadService {
	s := NewLeadService(Deps{LeadGuard: g, FormGuard: g, Mailer: m, Notifiers: notifiers}).(*leadServiceImpl)
	s.newID = func() string { return "lead-1" }
	return s
}

func validLead() models.LeadRequest {
	return models.LeadRequest{
		Name:           "A Customer",
		Email:          "a@b.com",
		Phone:          "1234567890",
		Issue:          "x",
		ZipCode:        "33101",
		RecaptchaToken: "tok",
	}
}

func TestSubmitLead_Success(t *testing.T) {
	g := &fakeGuard{}
	m := &fakeMailer{}
	sms := &fakeNotifier{name: "sms"}
	crm := &fakeNotifier{name: "crm", err: errors.New("airtable down")}

	sub, err := newService(g, m, sms, crm).SubmitLead(context.Background(), validLead(), "10.0.0.1")

	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, sub.State)
	assert.Equal(t, email.OutcomeDelivered, sub.Outcome)
	assert.Equal(t, "lead-1", sub.LeadID)
	assert.Equal(t, []string{ActionLeadForm}, g.actions)

	require.Len(t, m.subs, 1)
	assert.Equal(t, SourceQuoteForm, m.subs[0].Source)
	assert.Equal(t, "x", m.subs[0].Lead.Message)
	assert.Equal(t, "33101", m.subs[0].Lead.ZipCode)

	assert.Len(t, sms.events, 1)
	assert.Len(t, crm.events, 1, "a failing notifier does not fail the submission")
}

func TestSubmitLead_ValidationErrors(t *testing.T) {
	m := &fakeMailer{}
	req := validLead()
	req.Email = "nope"

	sub, err := newService(&fakeGuard{}, m).SubmitLead(context.Background(), req, "")

	require.Error(t, err)
	assert.Nil(t, sub)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CategoryValidation, ae.Category)
	assert.Equal(t, map[string]any{"validationErrors": map[string]string{"email": "Please enter a valid email address"}}, ae.Details)
	assert.Empty(t, m.subs)
}

func TestSubmitLead_CaptchaRejected(t *testing.T) {
	m := &fakeMailer{}
	g := &fakeGuard{err: apperr.Authorization("reCAPTCHA verification failed", nil)}

	sub, err := newService(g, m).SubmitLead(context.Background(), validLead(), "")

	require.Error(t, err)
	assert.Equal(t, StateFailed, sub.State)
	assert.Equal(t, apperr.CategoryAuthorization, apperr.CategoryOf(err))
	assert.Empty(t, m.subs, "no email is sent for a rejected captcha")
}

func TestSubmitForm_MissingRequired(t *testing.T) {
	m := &fakeMailer{}
	req := models.SubmitFormRequest{FormData: models.LeadFormData{Name: "Ana", Email: "ana@example.com"}}

	_, err := newService(&fakeGuard{}, m).SubmitForm(context.Background(), req, "")

	require.Error(t, err)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "Missing required fields", ae.Message)
	assert.Empty(t, m.subs)
}

func formRequest() models.SubmitFormRequest {
	return models.SubmitFormRequest{
		FormData: models.LeadFormData{
			Name:      "Ana Diaz",
			Email:     "ana@example.com",
			Phone:     "(305) 555-0100",
			Service:   "Opener repair",
			Emergency: true,
		},
		UserInfo: &models.UserInfo{PageURL: "/contact"},
	}
}

func TestSubmitForm_Outcomes(t *testing.T) {
	tests := []struct {
		name      string
		report    email.Report
		wantErr   bool
		wantState State
		partial   bool
		notified  int
	}{
		{name: "delivered", report: email.Report{}, wantState: StateSucceeded, notified: 1},
		{
			name:      "partial",
			report:    email.Report{Autoresponder: email.Delivery{Err: errors.New("bounced")}},
			wantState: StateSucceeded,
			partial:   true,
			notified:  1,
		},
		{
			name: "failed",
			report: email.Report{
				Notification:  email.Delivery{Err: errors.New("provider down")},
				Autoresponder: email.Delivery{Err: email.ErrSkipped},
			},
			wantErr:   true,
			wantState: StateFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &fakeGuard{}
			m := &fakeMailer{report: tt.report}
			n := &fakeNotifier{name: "sms"}

			sub, err := newService(g, m, n).SubmitForm(context.Background(), formRequest(), "")

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperr.CategoryServer, apperr.CategoryOf(err))
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantState, sub.State)
			assert.Equal(t, tt.partial, sub.Partial())
			assert.Len(t, n.events, tt.notified)
			assert.Equal(t, []string{ActionContactForm}, g.actions)
			require.Len(t, m.subs, 1)
			assert.Equal(t, "/contact", m.subs[0].UserInfo.PageURL)
		})
	}
}

func TestSubmission_Transitions(t *testing.T) {
	s := newSubmission("id", SourceContactForm)
	assert.Error(t, s.advance(StateSucceeded))
	require.NoError(t, s.advance(StateSubmitting))
	require.NoError(t, s.advance(StateFailed))
	assert.Error(t, s.advance(StateSubmitting))
}
