// Package notify delivers checklist reminders by e-mail through Amazon SES.
package notify

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/cradlehq/backend/internal/dates"
	"github.com/cradlehq/backend/internal/logger"
	"github.com/cradlehq/backend/internal/models"
	"github.com/cradlehq/backend/pkg/supabase"
)

// DefaultLeadDays is how close a due date must be for an immediate e-mail
const DefaultLeadDays = 3

// sesAPI is the part of the SES client the sink uses
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// UserDirectory resolves account ids to e-mail addresses
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (*supabase.User, error)
}

// EmailConfig configures the SES reminder sink
type EmailConfig struct {
	Region     string
	FromEmail  string
	FromName   string
	AppBaseURL string
	LeadDays   int
}

// EmailSink e-mails reminders for items that are due soon. Items further
// out are left to the scheduled push reminders.
type EmailSink struct {
	client     sesAPI
	users      UserDirectory
	fromEmail  string
	fromName   string
	appBaseURL string
	leadDays   int
	enabled    bool
	now        func() time.Time
}

// NewEmailSink creates the SES sink. An empty FromEmail yields a disabled
// sink that accepts and drops every reminder.
func NewEmailSink(ctx context.Context, cfg EmailConfig, users UserDirectory) (*EmailSink, error) {
	sink := &EmailSink{
		users:      users,
		fromEmail:  cfg.FromEmail,
		fromName:   cfg.FromName,
		appBaseURL: cfg.AppBaseURL,
		leadDays:   cfg.LeadDays,
		now:        time.Now,
	}
	if sink.leadDays <= 0 {
		sink.leadDays = DefaultLeadDays
	}

	if cfg.FromEmail == "" || users == nil {
		logger.Info("email reminders disabled: notifications.email.from_email not configured")
		return sink, nil
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	sink.client = sesv2.NewFromConfig(awsCfg)
	sink.enabled = true
	logger.Info("email reminders enabled",
		logger.String("from", cfg.FromEmail),
		logger.String("region", cfg.Region),
	)
	return sink, nil
}

// Name implements the reminder sink contract
func (s *EmailSink) Name() string { return "email" }

// IsEnabled returns whether the sink sends anything
func (s *EmailSink) IsEnabled() bool { return s.enabled }

// Schedule sends the reminder now if the item falls due within the lead window
func (s *EmailSink) Schedule(ctx context.Context, reminder models.Reminder) error {
	if !s.enabled || !s.dueSoon(reminder.DueDate) {
		return nil
	}

	user, err := s.users.GetUser(ctx, reminder.UserID)
	if err != nil {
		return fmt.Errorf("failed to look up recipient: %w", err)
	}
	if user.Email == "" {
		logger.Ctx(ctx).Debug("skipping reminder e-mail: user has no address",
			logger.String("item_id", reminder.ItemID),
		)
		return nil
	}

	subject, htmlBody, textBody := s.render(reminder)
	return s.send(ctx, user.Email, subject, htmlBody, textBody)
}

// dueSoon reports whether due is today or within the next leadDays days
func (s *EmailSink) dueSoon(due time.Time) bool {
	now := s.now().In(due.Location())
	today := dates.StartOfDay(now)
	return !due.Before(today) && !due.After(dates.AddDays(today, s.leadDays))
}

func (s *EmailSink) render(r models.Reminder) (subject, htmlBody, textBody string) {
	due := r.DueDate.Format("Monday 2 January 2006")
	link := fmt.Sprintf("%s/children/%s/checklist", s.appBaseURL, r.ChildID)
	subject = fmt.Sprintf("Coming up: %s", r.Title)

	htmlBody = fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<h2>%s</h2>
	<p>Due %s.</p>
	<p>%s</p>
	<p><a href="%s">Open your checklist</a></p>
	<p style="font-size: 12px; color: #666;">This is an automated reminder. Please do not reply.</p>
</body>
</html>
`, html.EscapeString(r.Title), due, html.EscapeString(r.Description), link)

	textBody = fmt.Sprintf(`%s

Due %s.

%s

Open your checklist: %s

---
This is an automated reminder. Please do not reply.
`, r.Title, due, r.Description, link)

	return subject, htmlBody, textBody
}

func (s *EmailSink) send(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	fields := []logger.Field{logger.String("subject", subject)}
	if result.MessageId != nil {
		fields = append(fields, logger.String("message_id", *result.MessageId))
	}
	logger.Ctx(ctx).Info("reminder e-mail sent", fields...)
	return nil
}
