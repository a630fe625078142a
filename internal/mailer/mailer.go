// Package mailer delivers account notices: through Amazon SES when a sender
// address is configured, otherwise into the process log.
package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/sirupsen/logrus"
)

const warningSubject = "A note from the BiteBalance moderators"

type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SES struct {
	client sesAPI
	from   string
}

func NewSES(ctx context.Context, region string, from string) (*SES, error) {
	options := make([]func(*config.LoadOptions) error, 0, 1)
	if strings.TrimSpace(region) != "" {
		options = append(options, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SES{client: ses.NewFromConfig(cfg), from: from}, nil
}

func (mailer *SES) SendWarning(ctx context.Context, to string, name string, message string) error {
	_, err := mailer.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{ToAddresses: []string{to}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(warningSubject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(warningBody(name, message))},
			},
		},
		Source: aws.String(mailer.from),
	})
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	return nil
}

// Log stands in for SES in development and tests.
type Log struct {
	log logrus.FieldLogger
}

func NewLog(log logrus.FieldLogger) *Log {
	return &Log{log: log}
}

func (mailer *Log) SendWarning(_ context.Context, to string, name string, message string) error {
	mailer.log.WithFields(logrus.Fields{
		"to":      to,
		"subject": warningSubject,
	}).Info(warningBody(name, message))
	return nil
}

func warningBody(name string, message string) string {
	greeting := "Hello"
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		greeting = "Hello " + trimmed
	}
	return fmt.Sprintf("%s,\n\nA moderator has sent you a warning:\n\n%s\n\nRepeated violations of the community guidelines may lead to account removal.", greeting, message)
}
