// Package notify sends the analysis-started email through an SMTP relay.
package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// Sender delivers the analysis-started notification.
type Sender interface {
	SendAnalysisStarted(ctx context.Context, resumeCount int) error
}

// SMTPMailer sends mail through the relay configured via environment.
type SMTPMailer struct {
	Server    string
	Port      int
	Username  string
	Password  string
	UseSSL    bool
	UseTLS    bool
	Sender    string
	Recipient string
}

// SendAnalysisStarted sends the fixed-template notification with the number
// of resumes the run was started for.
func (m *SMTPMailer) SendAnalysisStarted(ctx context.Context, resumeCount int) error {
	msg := mail.NewMsg()
	if err := msg.From(m.Sender); err != nil {
		return fmt.Errorf("sender address: %w", err)
	}
	if err := msg.To(m.Recipient); err != nil {
		return fmt.Errorf("recipient address: %w", err)
	}
	msg.Subject(fmt.Sprintf("Resume Analysis Started - %d Resume(s) Processed", resumeCount))
	msg.SetBodyString(mail.TypeTextPlain, plainBody(resumeCount))
	msg.AddAlternativeString(mail.TypeTextHTML, htmlBody(resumeCount))

	opts := []mail.Option{
		mail.WithPort(m.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.Username),
		mail.WithPassword(m.Password),
	}
	switch {
	case m.UseSSL:
		opts = append(opts, mail.WithSSL())
	case m.UseTLS:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	client, err := mail.NewClient(m.Server, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

func plainBody(resumeCount int) string {
	return fmt.Sprintf(`Resume Analysis Notification

Hello,

A new resume analysis has been initiated through the AI Recruiter system.

Number of Resumes Triggered: %d

This is an automated notification from the AI Recruiter system.
`, resumeCount)
}

func htmlBody(resumeCount int) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #1a73e8;">Resume Analysis Notification</h2>
  <p>Hello,</p>
  <p>A new resume analysis has been initiated through the AI Recruiter system.</p>
  <div style="background-color: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
    <p style="margin: 0; font-size: 16px;"><strong>Number of Resumes Triggered:</strong> <span style="color: #1a73e8; font-size: 18px;">%d</span></p>
  </div>
  <p>This is an automated notification from the AI Recruiter system.</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #666; font-size: 12px;">This email was sent automatically. Please do not reply to this email.</p>
</div>`, resumeCount)
}
