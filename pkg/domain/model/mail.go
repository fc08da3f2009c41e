package model

import "context"

type MailSender interface {
	Send(ctx context.Context, to []string, subject, body string) error
}
