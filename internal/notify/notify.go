// Package notify sends generation failures to an SNS topic.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// DefaultSubject is the message subject used when none is configured.
const DefaultSubject = "AWS managed services versions: generation failed"

// maxSubjectLen is the SNS limit on subjects.
const maxSubjectLen = 100

// SNSAPI is the subset of the SNS client used here.
type SNSAPI interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Notifier reports failures.
type Notifier interface {
	NotifyFailure(ctx context.Context, cause error) error
}

// SNSNotifier publishes failure messages to a topic.
type SNSNotifier struct {
	client   SNSAPI
	topicARN string
	subject  string
	logger   *slog.Logger
}

// NewSNSNotifier creates an [SNSNotifier]. An empty subject selects
// [DefaultSubject]; a nil logger selects [slog.Default].
func NewSNSNotifier(client SNSAPI, topicARN, subject string, logger *slog.Logger) (*SNSNotifier, error) {
	if client == nil {
		return nil, errors.New("sns client is required")
	}
	if topicARN == "" {
		return nil, errors.New("topic ARN is required")
	}
	if subject == "" {
		subject = DefaultSubject
	}
	if len(subject) > maxSubjectLen {
		subject = subject[:maxSubjectLen]
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SNSNotifier{client: client, topicARN: topicARN, subject: subject, logger: logger}, nil
}

// Message returns the notification body for cause.
func Message(cause error) string {
	return fmt.Sprintf("Error has occurred:\n\n%v", cause)
}

// NotifyFailure publishes cause to the topic.
func (n *SNSNotifier) NotifyFailure(ctx context.Context, cause error) error {
	out, err := n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String(n.subject),
		Message:  aws.String(Message(cause)),
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", n.topicARN, err)
	}
	n.logger.Info("failure notification sent", "topic", n.topicARN, "message_id", aws.ToString(out.MessageId))
	return nil
}

// Nop is a [Notifier] that does nothing. Used when no topic is configured.
type Nop struct{}

// NotifyFailure implements [Notifier].
func (Nop) NotifyFailure(context.Context, error) error { return nil }
