package mailer

import (
	"context"
)

// SendGrid dynamic template ids used by the account flows.
const (
	TemplateVerification  = "d-e072524f25744ea3a65cfb1baa794094"
	TemplatePasswordReset = "d-a4f399a537ee49598ca1ebd4a19f527e"
)

// Message is a templated email to deliver. Name and Link are substituted into
// the template.
type Message struct {
	To         string
	TemplateID string
	Name       string
	Link       string
}

// Mailer delivers templated emails. Implementations make exactly one delivery
// attempt per call; there is no retry or queueing. Callers decide policy on
// failure.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
