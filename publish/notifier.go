package publish

import (
	"context"
	"fmt"

	"github.com/raushankrgupta/product-page-generator/models"
)

// Notifier is told about every product pushed to the store
type Notifier interface {
	Published(ctx context.Context, entry models.PublishedProduct) error
}

// EmailSender is the subset of utils.Mailer the notifier needs
type EmailSender interface {
	SendEmail(ctx context.Context, toName, toEmail, subject, textContent, htmlContent string) error
}

// EmailNotifier mails a short summary of each publish to one address
type EmailNotifier struct {
	sender EmailSender
	to     string
}

func NewEmailNotifier(sender EmailSender, to string) *EmailNotifier {
	return &EmailNotifier{sender: sender, to: to}
}

func (n *EmailNotifier) Published(ctx context.Context, entry models.PublishedProduct) error {
	subject := fmt.Sprintf("Draft created: %s", entry.Title)
	text := fmt.Sprintf("%s was pushed to Shopify as a draft.\nReview it at %s", entry.Title, entry.AdminURL)
	body := fmt.Sprintf(`<p><strong>%s</strong> was pushed to Shopify as a draft.</p><p><a href="%s">Review it in the admin</a></p>`,
		entry.Title, entry.AdminURL)
	return n.sender.SendEmail(ctx, "", n.to, subject, text, body)
}
