package mail

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Mailer delivers transactional mail.
type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// SendGridMailer implements Mailer via the SendGrid v3 API.
type SendGridMailer struct {
	apiKey   string
	fromName string
	logger   *zap.Logger
}

func NewSendGridMailer(apiKey, fromName string, logger *zap.Logger) *SendGridMailer {
	return &SendGridMailer{apiKey: apiKey, fromName: fromName, logger: logger}
}

func (m *SendGridMailer) Send(ctx context.Context, from, to, subject, body string) error {
	if m.apiKey == "" {
		return fmt.Errorf("sendgrid api key is empty")
	}
	if from == "" {
		return fmt.Errorf("from address is empty")
	}
	if to == "" {
		return fmt.Errorf("to address is empty")
	}

	message := mail.NewSingleEmail(
		mail.NewEmail(m.fromName, from),
		subject,
		mail.NewEmail("", to),
		body,
		fmt.Sprintf("<pre>%s</pre>", body),
	)

	client := sendgrid.NewSendClient(m.apiKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if response.StatusCode >= 400 {
		m.logger.Error("sendgrid rejected mail",
			zap.Int("status", response.StatusCode),
			zap.String("body", response.Body))
		return fmt.Errorf("sendgrid send failed: status=%d", response.StatusCode)
	}

	m.logger.Info("mail sent",
		zap.Int("status", response.StatusCode),
		zap.String("to", to),
		zap.String("subject", subject))
	return nil
}
