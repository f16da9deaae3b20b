package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pawws/pawws/internal/model"
	"github.com/resend/resend-go/v2"
)

type EmailService struct {
	client    *resend.Client
	fromEmail string
	isDev     bool
	appURL    string
	appName   string
}

func NewEmailService(apiKey, fromEmail, appURL, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		isDev:     isDev,
		appURL:    appURL,
		appName:   appName,
	}
}

func (s *EmailService) SendWelcomeEmail(ctx context.Context, email string) error {
	animalsURL := fmt.Sprintf("%s/animals", s.appURL)
	subject, body := welcomeEmailTemplate(animalsURL, s.appName)
	return s.send(ctx, "welcome", email, subject, body)
}

// SendDonationDecision tells a donor their donation was approved or rejected.
func (s *EmailService) SendDonationDecision(ctx context.Context, email string, donation *model.Donation, milestone *model.Milestone) error {
	donationsURL := fmt.Sprintf("%s/donations/my", s.appURL)

	var subject, body string
	if donation.Status == model.DonationStatusApproved {
		subject, body = donationApprovedTemplate(donation.Amount, milestone, donationsURL, s.appName)
	} else {
		subject, body = donationRejectedTemplate(donation.Amount, milestone, donationsURL, s.appName)
	}

	return s.send(ctx, "donation_"+string(donation.Status), email, subject, body)
}

func (s *EmailService) send(ctx context.Context, kind, to, subject, body string) error {
	if s.isDev {
		slog.Info("email sent (dev mode)", "type", kind, "to", to, "subject", subject)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err == nil {
		slog.Info("email sent", "type", kind, "to", to)
	}
	return err
}
