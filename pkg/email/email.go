// Package email renders and sends the two messages a lead produces: the
// notification to the business and the autoresponder to the customer.
package email

import "context"

// Message is a provider-neutral email.
type Message struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
	Tags    map[string]string
}

// Sender delivers a message and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}
