package notifications

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"
)

// SESClient is the subset of the SES v2 API the mailer calls.
type SESClient interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Mailer sends workflow emails through SES.
type Mailer struct {
	client SESClient
	from   string
	log    *zap.Logger
}

func NewMailer(client SESClient, from string, log *zap.Logger) *Mailer {
	return &Mailer{client: client, from: from, log: log}
}

func (m *Mailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	_, err := m.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.from),
		Destination: &sestypes.Destination{
			ToAddresses: []string{to},
		},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(subject)},
				Body: &sestypes.Body{
					Html: &sestypes.Content{Data: aws.String(htmlBody)},
				},
			},
		},
	})
	if err != nil {
		m.log.Error("email delivery failed", zap.String("to", to), zap.Error(err))
		return err
	}
	return nil
}
