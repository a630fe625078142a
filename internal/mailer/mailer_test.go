package mailer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (fake *fakeSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	fake.input = params
	return &ses.SendEmailOutput{}, fake.err
}

func TestSESSendWarningBuildsMessage(t *testing.T) {
	fake := &fakeSES{}
	mailer := &SES{client: fake, from: "no-reply@bitebalance.test"}

	if err := mailer.SendWarning(context.Background(), "maria@example.com", "Maria", "Please stay on topic."); err != nil {
		t.Fatalf("SendWarning() unexpected error: %v", err)
	}
	if got := fake.input.Destination.ToAddresses; len(got) != 1 || got[0] != "maria@example.com" {
		t.Fatalf("unexpected destination %v", got)
	}
	if aws.ToString(fake.input.Source) != "no-reply@bitebalance.test" {
		t.Fatalf("unexpected source %q", aws.ToString(fake.input.Source))
	}
	body := aws.ToString(fake.input.Message.Body.Text.Data)
	if !strings.HasPrefix(body, "Hello Maria,") || !strings.Contains(body, "Please stay on topic.") {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestSESSendWarningWrapsErrors(t *testing.T) {
	mailer := &SES{client: &fakeSES{err: errors.New("throttled")}, from: "x@example.com"}
	if err := mailer.SendWarning(context.Background(), "a@example.com", "", "hi"); err == nil || !strings.Contains(err.Error(), "throttled") {
		t.Fatalf("expected wrapped ses error, got %v", err)
	}
}

func TestLogMailerWritesEntry(t *testing.T) {
	log, hook := test.NewNullLogger()
	mailer := NewLog(log)

	if err := mailer.SendWarning(context.Background(), "maria@example.com", "", "Be kind."); err != nil {
		t.Fatalf("SendWarning() unexpected error: %v", err)
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.InfoLevel {
		t.Fatalf("expected one info entry, got %+v", entry)
	}
	if entry.Data["to"] != "maria@example.com" || !strings.HasPrefix(entry.Message, "Hello,") {
		t.Fatalf("unexpected entry %+v", entry)
	}
}
