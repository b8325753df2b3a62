package mail

import (
	"context"
	"fmt"
)

const passwordResetSubject = "Password Reset Request"

type PasswordResetMailer struct {
	sender Sender
}

func NewPasswordResetMailer(sender Sender) *PasswordResetMailer {
	return &PasswordResetMailer{sender: sender}
}

func (m *PasswordResetMailer) SendPasswordReset(ctx context.Context, email, link string) error {
	if m == nil || m.sender == nil {
		return ErrNotConfigured
	}
	return m.sender.Send(ctx, PasswordResetMessage(email, link))
}

func PasswordResetMessage(email, link string) Message {
	body := fmt.Sprintf("Click the link to reset your password: %s\n\nThe link can be used once. If you did not request this, ignore this email.", link)
	return Message{To: email, Subject: passwordResetSubject, Body: body}
}
