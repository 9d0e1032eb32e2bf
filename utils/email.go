package utils

import (
	"context"
	"fmt"

	"helmet-store/models"

	"github.com/keighl/postmark"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer delivers transactional email
type Mailer interface {
	SendEmail(ctx context.Context, toEmail, subject, htmlContent string) error
}

// NewMailer returns the mailer for provider ("postmark", "sendgrid"), or a
// no-op mailer when provider is empty or "none".
func NewMailer(provider, postmarkToken, sendgridKey, sender string) (Mailer, error) {
	switch provider {
	case "", "none":
		return NoopMailer{}, nil
	case "postmark":
		if postmarkToken == "" {
			return nil, fmt.Errorf("POSTMARK_API_TOKEN is required for the postmark provider")
		}
		return &PostmarkMailer{client: postmark.NewClient(postmarkToken, ""), sender: sender}, nil
	case "sendgrid":
		if sendgridKey == "" {
			return nil, fmt.Errorf("SENDGRID_API_KEY is required for the sendgrid provider")
		}
		return &SendgridMailer{client: sendgrid.NewSendClient(sendgridKey), sender: sender}, nil
	}
	return nil, fmt.Errorf("unknown email provider %q", provider)
}

// PostmarkMailer sends emails using Postmark
type PostmarkMailer struct {
	client *postmark.Client
	sender string
}

func (pm *PostmarkMailer) SendEmail(_ context.Context, toEmail, subject, htmlContent string) error {
	_, err := pm.client.SendEmail(postmark.Email{
		From:     pm.sender,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: htmlContent,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendgridMailer sends emails using SendGrid
type SendgridMailer struct {
	client *sendgrid.Client
	sender string
}

func (sm *SendgridMailer) SendEmail(_ context.Context, toEmail, subject, htmlContent string) error {
	message := mail.NewSingleEmail(mail.NewEmail("", sm.sender), subject, mail.NewEmail("", toEmail), htmlContent, htmlContent)
	resp, err := sm.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("failed to send email: sendgrid returned %d", resp.StatusCode)
	}
	return nil
}

type NoopMailer struct{}

func (NoopMailer) SendEmail(context.Context, string, string, string) error { return nil }

// OrderConfirmationEmail renders the confirmation sent when an order is placed
func OrderConfirmationEmail(order *models.Order) (string, string) {
	subject := fmt.Sprintf("Order Confirmation %s", order.OrderID)
	htmlContent := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Thank you for your purchase! Your order (ID: %s) has been placed successfully.<br><br>Total Amount: <strong>%.0f</strong><br>Payment Method: <strong>%s</strong><br><br>Thank you for shopping with us!",
		order.CustomerInfo.FullName,
		order.OrderID,
		order.TotalAmount,
		order.PaymentMethod,
	)
	return subject, htmlContent
}

// StatusUpdateEmail renders the notice sent when an admin moves an order
func StatusUpdateEmail(order *models.Order) (string, string) {
	subject := fmt.Sprintf("Order %s is now %s", order.OrderID, order.Status)
	htmlContent := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>The status of your order (ID: %s) has been updated to <strong>%s</strong>.<br><br>Thank you for shopping with us!",
		order.CustomerInfo.FullName,
		order.OrderID,
		order.Status,
	)
	return subject, htmlContent
}
