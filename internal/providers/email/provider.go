package email

import "context"

type Provider interface {
	Send(ctx context.Context, to []string, subject string, htmlBody string) error
	SendPasswordReset(ctx context.Context, to string, resetURL string) error
}

// NoOpProvider is used when no SMTP host is configured; reset mails are
// dropped and the reset link is only visible in the logs.
type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	return nil
}

func (p *NoOpProvider) SendPasswordReset(ctx context.Context, to string, resetURL string) error {
	return nil
}
