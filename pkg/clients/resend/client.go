package resend

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	resendgo "github.com/resend/resend-go/v2"
	"go.uber.org/zap"

	"garagesite/pkg/apperr"
	"garagesite/pkg/email"
)

var ErrNoAPIKey = errors.New("resend api key not configured")

type clientImpl struct {
	client *resendgo.Client
	logger *zap.Logger
}

// NewClient creates an email.Sender backed by the Resend API. baseURL may be
// empty to use Resend's production endpoint.
func NewClient(apiKey, baseURL string, logger *zap.Logger) (email.Sender, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := resendgo.NewClient(apiKey)
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("error parsing resend base url: %w", err)
		}
		c.BaseURL = u
	}
	return &clientImpl{client: c, logger: logger}, nil
}

func (c *clientImpl) Send(ctx context.Context, msg email.Message) (string, error) {
	params := &resendgo.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
	}
	for k, v := range msg.Tags {
		params.Tags = append(params.Tags, resendgo.Tag{Name: k, Value: v})
	}

	sent, err := c.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", apperr.Server("error sending email", err)
	}

	c.logger.Info("email sent", zap.String("id", sent.Id), zap.String("subject", msg.Subject))
	return sent.Id, nil
}
