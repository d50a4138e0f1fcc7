package twilio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

func newTestClient(create createFunc) *clientImpl {
	return &clientImpl{create: create, from: "+13055550000", logger: zap.NewNop()}
}

func TestSendSMS_CanceledContext(t *testing.T) {
	c := NewClient("AC123", "token", "+13055550000", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sid, err := c.SendSMS(ctx, "+13055550100", "hello")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sid)
}

func TestSendSMS_Success(t *testing.T) {
	var got *openapi.CreateMessageParams
	sid, status := "SM123", "queued"
	c := newTestClient(func(p *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error) {
		got = p
		return &openapi.ApiV2010Message{Sid: &sid, Status: &status}, nil
	})

	id, err := c.SendSMS(context.Background(), "+13055550100", "hello")
	require.NoError(t, err)
	assert.Equal(t, "SM123", id)
	require.NotNil(t, got)
	assert.Equal(t, "+13055550100", *got.To)
	assert.Equal(t, "+13055550000", *got.From)
	assert.Equal(t, "hello", *got.Body)
}

func TestSendSMS_APIError(t *testing.T) {
	c := newTestClient(func(*openapi.CreateMessageParams) (*openapi.ApiV2010Message, error) {
		return nil, errors.New("21211 invalid to number")
	})

	_, err := c.SendSMS(context.Background(), "+1", "hello")
	assert.ErrorContains(t, err, "21211")
}

func TestSendSMS_ReturnsAtDeadline(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	c := newTestClient(func(*openapi.CreateMessageParams) (*openapi.ApiV2010Message, error) {
		<-release
		return &openapi.ApiV2010Message{}, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.SendSMS(ctx, "+13055550100", "hello")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}
