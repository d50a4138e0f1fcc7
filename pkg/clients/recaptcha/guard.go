package recaptcha

import (
	"context"

	"go.uber.org/zap"

	"garagesite/pkg/apperr"
)

// Policy decides what a failed or impossible verification means.
type Policy int

const (
	// PolicySkip never verifies.
	PolicySkip Policy = iota
	// PolicyFailOpen verifies but lets the submission through on any failure.
	PolicyFailOpen
	// PolicyFailClosed rejects a missing, invalid or unverifiable token.
	PolicyFailClosed
)

func (p Policy) String() string {
	switch p {
	case PolicySkip:
		return "skip"
	case PolicyFailOpen:
		return "fail_open"
	case PolicyFailClosed:
		return "fail_closed"
	default:
		return "unknown"
	}
}

// PolicyFor picks the policy for an environment. Development skips, strict
// routes fail closed in production, everything else fails open.
func PolicyFor(env string, strict bool) Policy {
	switch {
	case env == "development":
		return PolicySkip
	case strict && env == "production":
		return PolicyFailClosed
	default:
		return PolicyFailOpen
	}
}

// Guard applies a Policy to a Client.
type Guard struct {
	client Client
	policy Policy
	logger *zap.Logger
}

func NewGuard(client Client, policy Policy, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{client: client, policy: policy, logger: logger}
}

func (g *Guard) Policy() Policy { return g.policy }

// Check returns nil when the request may proceed. Only PolicyFailClosed ever
// returns an error, and it is an AUTHORIZATION app error.
func (g *Guard) Check(ctx context.Context, token, action, remoteIP string) error {
	if g.policy == PolicySkip {
		return nil
	}
	if g.client == nil {
		return g.fail(action, ErrNotConfigured)
	}

	v, err := g.client.Verify(ctx, token, action, remoteIP)
	if err != nil {
		return g.fail(action, err)
	}
	g.logger.Debug("recaptcha passed", zap.String("action", action), zap.Float64("score", v.Score))
	return nil
}

func (g *Guard) fail(action string, err error) error {
	if g.policy == PolicyFailClosed {
		g.logger.Warn("recaptcha verification failed, rejecting",
			zap.String("action", action), zap.Error(err))
		return apperr.Authorization("reCAPTCHA verification failed", err)
	}
	g.logger.Warn("recaptcha verification failed, continuing without verification",
		zap.String("action", action), zap.Error(err))
	return nil
}
