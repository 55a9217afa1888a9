package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/cultivo/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// SESAPI is the subset of the SESv2 client used by SESTransport
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESTransport sends messages through Amazon SES (v2 API)
type SESTransport struct {
	client           SESAPI
	from             string
	configurationSet string
	logger           *zap.Logger
}

// NewSESTransport builds the SES client from the mail configuration. Without
// static keys the default AWS credential chain (instance role) is used.
func NewSESTransport(ctx context.Context, cfg config.MailConfig, logger *zap.Logger) (*SESTransport, error) {
	if cfg.From == "" {
		return nil, errors.New("mail from address is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	return NewSESTransportWithClient(sesv2.NewFromConfig(awsCfg), cfg.From, cfg.ConfigurationSet, logger), nil
}

// NewSESTransportWithClient wraps an existing client
func NewSESTransportWithClient(client SESAPI, from, configurationSet string, logger *zap.Logger) *SESTransport {
	return &SESTransport{client: client, from: from, configurationSet: configurationSet, logger: logger}
}

// Deliver sends the message as a simple HTML + text email
func (t *SESTransport) Deliver(ctx context.Context, msg Message) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(t.from),
		Destination:      &sestypes.Destination{ToAddresses: []string{msg.To}},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body: &sestypes.Body{
					Html: &sestypes.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")},
					Text: &sestypes.Content{Data: aws.String(msg.Text), Charset: aws.String("UTF-8")},
				},
			},
		},
	}
	if t.configurationSet != "" {
		input.ConfigurationSetName = aws.String(t.configurationSet)
	}

	out, err := t.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	t.logger.Debug("email sent", zap.String("subject", msg.Subject), zap.String("message_id", aws.ToString(out.MessageId)))
	return nil
}
