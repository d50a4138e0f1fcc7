package twilio

import (
	"context"
	"fmt"
	"time"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// DefaultTimeout bounds one Messages API call. CreateMessage takes no
// context, so this is what stops a hung connection.
const DefaultTimeout = 10 * time.Second

// Client defines the interface for sending SMS through the Twilio Messaging API
type Client interface {
	SendSMS(ctx context.Context, to, body string) (string, error)
}

type createFunc func(*openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)

type clientImpl struct {
	create createFunc
	from   string
	logger *zap.Logger
}

// NewClient creates a new Twilio client
func NewClient(accountSid, authToken, from string, logger *zap.Logger) Client {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})
	client.SetTimeout(DefaultTimeout)
	if logger == nil {
		logger = zap.NewNop()
	}

	return &clientImpl{
		create: client.Api.CreateMessage,
		from:   from,
		logger: logger,
	}
}

type createResult struct {
	msg *openapi.ApiV2010Message
	err error
}

// SendSMS returns when the message is accepted or ctx is done, whichever
// comes first. A call abandoned on ctx still runs to DefaultTimeout.
func (c *clientImpl) SendSMS(ctx context.Context, to, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(c.from)
	params.SetBody(body)

	done := make(chan createResult, 1)
	go func() {
		msg, err := c.create(params)
		done <- createResult{msg: msg, err: err}
	}()

	var res createResult
	select {
	case res = <-done:
	case <-ctx.Done():
		c.logger.Warn("sms send abandoned", zap.Error(ctx.Err()))
		return "", fmt.Errorf("error sending sms: %w", ctx.Err())
	}
	if res.err != nil {
		return "", fmt.Errorf("error sending sms: %w", res.err)
	}

	sid := ""
	if res.msg.Sid != nil {
		sid = *res.msg.Sid
	}
	status := ""
	if res.msg.Status != nil {
		status = *res.msg.Status
	}
	c.logger.Info("sms sent", zap.String("sid", sid), zap.String("status", status))
	return sid, nil
}
