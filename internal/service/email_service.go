package service

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"famledger/internal/config"
)

// EmailService sends invitation emails through SES. When no sender address is
// configured the service logs and drops mail instead of failing the caller;
// invitations still work, members just have to be told the join code directly.
type EmailService struct {
	client    *sesv2.Client
	fromEmail string
	fromName  string
	baseURL   string
}

// NewEmailService creates an email service from config. Returns a disabled
// service when SES_FROM_EMAIL is not set.
func NewEmailService(cfg *config.Config) (*EmailService, error) {
	svc := &EmailService{
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		baseURL:   cfg.AppBaseURL,
	}
	if cfg.FromEmail == "" {
		return svc, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	svc.client = sesv2.NewFromConfig(awsCfg)
	return svc, nil
}

// Enabled reports whether outbound mail is configured
func (s *EmailService) Enabled() bool {
	return s.client != nil
}

// SendFamilyInvitation emails a join invitation. The message carries the
// family name and join code only; the join password travels out of band.
func (s *EmailService) SendFamilyInvitation(ctx context.Context, toEmail, familyName, joinCode string) error {
	if !s.Enabled() {
		log.Printf("Email disabled, skipping invitation to %s for family %q", toEmail, familyName)
		return nil
	}

	subject := fmt.Sprintf("You are invited to join %s", familyName)
	body := fmt.Sprintf(
		"You have been invited to join the family %q.\n\n"+
			"Open %s and join with code %s. Ask the person who invited you for the join password.\n",
		familyName, s.baseURL, joinCode)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send invitation email: %w", err)
	}
	return nil
}
