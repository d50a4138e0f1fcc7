package recaptcha

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"garagesite/pkg/apiclient"
)

// VerifyURL is Google's server-side token verification endpoint.
const VerifyURL = "https://www.google.com/recaptcha/api/siteverify"

var (
	ErrMissingToken   = errors.New("recaptcha token missing")
	ErrNotConfigured  = errors.New("recaptcha secret key not configured")
	ErrRejected       = errors.New("recaptcha token rejected")
	ErrLowScore       = errors.New("recaptcha score below threshold")
	ErrActionMismatch = errors.New("recaptcha action mismatch")
)

// Verification is the siteverify response.
type Verification struct {
	Success     bool     `json:"success"`
	Score       float64  `json:"score"`
	Action      string   `json:"action"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
}

// Client defines the interface for verifying reCAPTCHA v3 tokens
type Client interface {
	Verify(ctx context.Context, token, action, remoteIP string) (*Verification, error)
}

type clientImpl struct {
	secret    string
	minScore  float64
	verifyURL string
	api       *apiclient.Client
	logger    *zap.Logger
}

// Option configures the client.
type Option func(*clientImpl)

// WithVerifyURL points the client at another siteverify endpoint.
func WithVerifyURL(u string) Option {
	return func(c *clientImpl) { c.verifyURL = u }
}

// WithAPIClient replaces the HTTP client used to reach Google.
func WithAPIClient(api *apiclient.Client) Option {
	return func(c *clientImpl) { c.api = api }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *clientImpl) { c.logger = l }
}

// NewClient creates a new reCAPTCHA client
func NewClient(secret string, minScore float64, opts ...Option) Client {
	c := &clientImpl{
		secret:    secret,
		minScore:  minScore,
		verifyURL: VerifyURL,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.api == nil {
		c.api = apiclient.New("", apiclient.WithLogger(c.logger))
	}
	return c
}

func (c *clientImpl) Verify(ctx context.Context, token, action, remoteIP string) (*Verification, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingToken
	}
	if c.secret == "" {
		return nil, ErrNotConfigured
	}

	form := url.Values{}
	form.Set("secret", c.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	res := apiclient.PostForm[Verification](ctx, c.api, c.verifyURL, form,
		apiclient.WithMaxRetries(3),
		apiclient.WithRetryDelay(500*time.Millisecond))
	if !res.OK() {
		return nil, fmt.Errorf("error verifying recaptcha token: %s: %s", res.Error.Code, res.Error.Message)
	}

	v := res.Data
	c.logger.Debug("recaptcha verified",
		zap.Bool("success", v.Success),
		zap.Float64("score", v.Score),
		zap.String("action", v.Action),
		zap.Strings("error_codes", v.ErrorCodes))

	if !v.Success {
		return v, fmt.Errorf("%w: %s", ErrRejected, strings.Join(v.ErrorCodes, ","))
	}
	if v.Score < c.minScore {
		return v, fmt.Errorf("%w: %.2f < %.2f", ErrLowScore, v.Score, c.minScore)
	}
	if action != "" && v.Action != "" && v.Action != action {
		return v, fmt.Errorf("%w: got %q want %q", ErrActionMismatch, v.Action, action)
	}
	return v, nil
}
