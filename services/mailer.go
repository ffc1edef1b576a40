package services

import (
	"fmt"
	"moldcare-backend/models"
	"moldcare-backend/utils/logger"

	gomail "gopkg.in/gomail.v2"
)

// MailSender delivers transactional email
type MailSender interface {
	SendOTP(to, code string, purpose models.OTPPurpose) error
}

// SMTPMailer sends mail through the configured SMTP relay
type SMTPMailer struct {
	config *models.Config
	logger logger.Logger
}

// NewSMTPMailer creates a mailer from SMTP config
func NewSMTPMailer(cfg *models.Config, log logger.Logger) *SMTPMailer {
	return &SMTPMailer{
		config: cfg,
		logger: log,
	}
}

func (m *SMTPMailer) SendOTP(to, code string, purpose models.OTPPurpose) error {
	subject := "Your verification code"
	intro := "Use this code to verify your email address."
	if purpose == models.OTPPurposePasswordReset {
		subject = "Your password reset code"
		intro = "Use this code to reset your password."
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.config.SMTPFrom)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", fmt.Sprintf(
		"<p>%s</p><p style=\"font-size:24px;letter-spacing:4px\"><b>%s</b></p><p>The code expires in %d minutes.</p>",
		intro, code, m.config.OTPExpiryMinutes))

	dialer := gomail.NewDialer(m.config.SMTPHost, m.config.SMTPPort, m.config.SMTPUser, m.config.SMTPPassword)
	if err := dialer.DialAndSend(msg); err != nil {
		m.logger.Errorf("Failed to send OTP email to %s: %v", to, err)
		return err
	}

	m.logger.Infof("OTP email sent to %s", to)
	return nil
}
