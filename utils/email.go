package utils

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer sends transactional mail through SendGrid
type Mailer struct {
	apiKey   string
	fromName string
	from     string
	logger   *slog.Logger
}

func NewMailer(apiKey, fromName, from string, logger *slog.Logger) *Mailer {
	return &Mailer{apiKey: apiKey, fromName: fromName, from: from, logger: logger}
}

// SendEmail sends an email using SendGrid
func (m *Mailer) SendEmail(ctx context.Context, toName, toEmail, subject, textContent, htmlContent string) error {
	if m.apiKey == "" {
		return fmt.Errorf("SENDGRID_API_KEY is not set in environment variables")
	}

	from := mail.NewEmail(m.fromName, m.from)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, textContent, htmlContent)
	client := sendgrid.NewSendClient(m.apiKey)

	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		m.logger.Error("sending email failed", "to", toEmail, "error", err)
		return err
	}

	if response.StatusCode >= 400 {
		m.logger.Error("sendgrid api error", "status", response.StatusCode, "body", response.Body)
		return fmt.Errorf("failed to send email, status code: %d", response.StatusCode)
	}

	m.logger.Info("email sent", "to", toEmail, "status", response.StatusCode)
	return nil
}
