package mail

import (
	"context"

	"github.com/emsdesk/emsdesk/pkg/slogx"
)

// LogMailer writes messages to the structured log instead of delivering
// them. It is the default when no SMTP host is configured, which keeps
// local development and tests working without a relay.
type LogMailer struct{}

func (LogMailer) SendPasswordResetCode(ctx context.Context, to, firstName, code string) error {
	slogx.FromContext(ctx).Info("mail: password reset code (log only)",
		"to", to, "code", code)
	return nil
}

func (LogMailer) SendWelcome(ctx context.Context, to, firstName, username string) error {
	slogx.FromContext(ctx).Info("mail: welcome (log only)",
		"to", to, "username", username)
	return nil
}
