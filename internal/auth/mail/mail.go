// Package mail sends transactional email for the auth flows. Delivery is
// best effort: callers fire sends in a goroutine and log failures rather
// than surfacing them to the client.
package mail

import (
	"context"
	"fmt"
)

// Mailer delivers the auth-related messages.
type Mailer interface {
	// SendPasswordResetCode delivers the numeric reset code.
	SendPasswordResetCode(ctx context.Context, to, firstName, code string) error

	// SendWelcome greets a freshly registered account.
	SendWelcome(ctx context.Context, to, firstName, username string) error
}

func passwordResetBody(firstName, code string) (subject, body string) {
	subject = "Your password reset code"
	body = fmt.Sprintf(
		"Hi %s,\r\n\r\n"+
			"Your password reset code is: %s\r\n\r\n"+
			"The code expires in 10 minutes. If you did not request a reset,\r\n"+
			"you can ignore this message.\r\n",
		firstName, code)
	return subject, body
}

func welcomeBody(firstName, username string) (subject, body string) {
	subject = "Welcome to EMSDesk"
	body = fmt.Sprintf(
		"Hi %s,\r\n\r\n"+
			"Your account has been created. You can sign in with the username\r\n"+
			"%q or your email address.\r\n",
		firstName, username)
	return subject, body
}
