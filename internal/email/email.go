package email

import (
	"context"
	"fmt"
	"time"

	"eugenestrat/internal/config"
	"eugenestrat/internal/logger"
	"eugenestrat/internal/models"

	"github.com/mailgun/mailgun-go/v5"
)

type Service struct {
	client      mailgun.Mailgun
	domain      string
	senderEmail string
	senderName  string
	baseURL     string
	enabled     bool
}

func NewService(cfg *config.Config) *Service {
	enabled := cfg.Mailgun.Domain != "" && cfg.Mailgun.APIKey != ""

	var client mailgun.Mailgun
	if enabled {
		client = mailgun.NewMailgun(cfg.Mailgun.APIKey)
	}

	return &Service{
		client:      client,
		domain:      cfg.Mailgun.Domain,
		senderEmail: cfg.Mailgun.SenderEmail,
		senderName:  cfg.Mailgun.SenderName,
		baseURL:     cfg.Mailgun.BaseURL,
		enabled:     enabled,
	}
}

func (s *Service) IsEnabled() bool {
	return s.enabled
}

// SendActivationEmail delivers the account activation link created at
// registration time.
func (s *Service) SendActivationEmail(user *models.User, activationToken string) error {
	if !s.enabled {
		return fmt.Errorf("email service is not configured")
	}

	subject := fmt.Sprintf("Welcome to Eugene Strat, %s!", user.Username)
	htmlBody := s.generateActivationHTML(user, activationToken)
	textBody := s.generateActivationText(user, activationToken)

	message := mailgun.NewMessage(
		s.domain,
		fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail),
		subject,
		textBody,
		user.Email,
	)
	message.SetHTML(htmlBody)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := s.client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send activation email to %s: %w", user.Email, err)
	}

	logger.Info("Activation email sent",
		"email", user.Email,
		"message_id", resp)
	return nil
}
