package recaptcha

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"garagesite/pkg/apiclient"
	"garagesite/pkg/apperr"
	"garagesite/pkg/retry"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	api := apiclient.New("", apiclient.WithRetryOptions(retry.Options{
		Sleep: func(context.Context, time.Duration) error { return nil },
	}))
	return NewClient("secret", 0.5, WithVerifyURL(srv.URL), WithAPIClient(api))
}

func TestVerify_Success(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "secret", r.PostForm.Get("secret"))
		assert.Equal(t, "tok", r.PostForm.Get("response"))
		assert.Equal(t, "10.0.0.1", r.PostForm.Get("remoteip"))
		_, _ = w.Write([]byte(`{"success":true,"score":0.9,"action":"lead_form"}`))
	})

	v, err := c.Verify(context.Background(), "tok", "lead_form", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, 0.9, v.Score)
}

func TestVerify_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		body   string
		action string
		want   error
	}{
		{name: "rejected", body: `{"success":false,"error-codes":["invalid-input-response"]}`, want: ErrRejected},
		{name: "low_score", body: `{"success":true,"score":0.1,"action":"lead_form"}`, want: ErrLowScore},
		{name: "action", body: `{"success":true,"score":0.9,"action":"login"}`, action: "lead_form", want: ErrActionMismatch},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.Verify(context.Background(), "tok", tt.action, "")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestVerify_MissingTokenAndSecret(t *testing.T) {
	t.Parallel()

	_, err := NewClient("secret", 0.5).Verify(context.Background(), " ", "", "")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = NewClient("", 0.5).Verify(context.Background(), "tok", "", "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestVerify_RetriesTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"score":0.8}`))
	})

	_, err := c.Verify(context.Background(), "tok", "", "")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

type stubClient struct {
	err   error
	calls int
}

func (s *stubClient) Verify(context.Context, string, string, string) (*Verification, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &Verification{Success: true, Score: 0.9}, nil
}

func TestGuard(t *testing.T) {
	t.Parallel()

	failing := errors.New("google unreachable")

	tests := []struct {
		name      string
		policy    Policy
		client    Client
		wantErr   bool
		wantCalls int
	}{
		{name: "skip", policy: PolicySkip, client: &stubClient{err: failing}},
		{name: "open_pass", policy: PolicyFailOpen, client: &stubClient{}, wantCalls: 1},
		{name: "open_fail", policy: PolicyFailOpen, client: &stubClient{err: failing}, wantCalls: 1},
		{name: "closed_pass", policy: PolicyFailClosed, client: &stubClient{}, wantCalls: 1},
		{name: "closed_fail", policy: PolicyFailClosed, client: &stubClient{err: ErrMissingToken}, wantErr: true, wantCalls: 1},
		{name: "closed_unconfigured", policy: PolicyFailClosed, client: nil, wantErr: true},
		{name: "open_unconfigured", policy: PolicyFailOpen, client: nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var c Client
			if tt.client != nil {
				c = tt.client
			}
			err := NewGuard(c, tt.policy, zap.NewNop()).Check(context.Background(), "", "lead", "")
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperr.CategoryAuthorization, apperr.CategoryOf(err))
			} else {
				assert.NoError(t, err)
			}
			if s, ok := tt.client.(*stubClient); ok {
				assert.Equal(t, tt.wantCalls, s.calls)
			}
		})
	}
}

func TestPolicyFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, PolicySkip, PolicyFor("development", true))
	assert.Equal(t, PolicyFailClosed, PolicyFor("production", true))
	assert.Equal(t, PolicyFailOpen, PolicyFor("production", false))
	assert.Equal(t, PolicyFailOpen, PolicyFor("staging", true))
	assert.Equal(t, "fail_closed", PolicyFailClosed.String())
}
