package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/ryucoder/crown-backend/internal/config"
)

type Service interface {
	SendSignupVerification(ctx context.Context, to, token string) error
	SendPasswordReset(ctx context.Context, to, token string) error
	SendOwnerInvite(ctx context.Context, to, businessName string) error
	SendCustom(ctx context.Context, to, subject, content string) error
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
	domain string
}

func NewSMTPService(cfg config.SMTPConfig, domain string) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		domain: domain,
	}
}

func (s *smtpService) SendSignupVerification(ctx context.Context, to, token string) error {
	link := fmt.Sprintf("%s/verify-signup?email=%s&token=%s", s.domain, to, token)
	content := fmt.Sprintf("Welcome to Crown. Verify your email within 15 minutes: %s", link)
	return s.SendCustom(ctx, to, "Verify your Crown account", content)
}

func (s *smtpService) SendPasswordReset(ctx context.Context, to, token string) error {
	link := fmt.Sprintf("%s/reset-password?email=%s&token=%s", s.domain, to, token)
	content := fmt.Sprintf("A password reset was requested for your account. The link expires in 15 minutes: %s", link)
	return s.SendCustom(ctx, to, "Reset your Crown password", content)
}

func (s *smtpService) SendOwnerInvite(ctx context.Context, to, businessName string) error {
	content := fmt.Sprintf("A profile for %s was created on Crown on your behalf. Sign in with this email address to claim it.", businessName)
	return s.SendCustom(ctx, to, "Your business was added to Crown", content)
}

func (s *smtpService) SendCustom(_ context.Context, to, subject, content string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", content)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
