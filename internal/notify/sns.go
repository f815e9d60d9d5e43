package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// PublishAPI is the slice of the SNS client the notifier uses.
type PublishAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSNotifier publishes workflow summaries to an SNS topic.
type SNSNotifier struct {
	client PublishAPI
	topic  string
}

// NewSNSNotifier creates a notifier for the given topic ARN. profile and
// region are optional and fall through to the SDK defaults when empty.
func NewSNSNotifier(ctx context.Context, topicARN, profile, region string) (*SNSNotifier, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SNS: %w", err)
	}
	return &SNSNotifier{client: sns.NewFromConfig(cfg), topic: topicARN}, nil
}

// NewSNSNotifierWithClient wires an existing client, for tests.
func NewSNSNotifierWithClient(client PublishAPI, topicARN string) *SNSNotifier {
	return &SNSNotifier{client: client, topic: topicARN}
}

// NotifyWorkflowResult publishes one summary message.
func (n *SNSNotifier) NotifyWorkflowResult(s Summary) error {
	status := "succeeded"
	if s.Err != nil {
		status = "failed"
	}
	subject := fmt.Sprintf("drop2s3 workflow %s: %s", status, s.Target)

	body := fmt.Sprintf("Run ID: %s\nBucket: %s\nTarget: %s\nFiles moved: %d\nFiles uploaded: %d\n",
		s.RunID, s.Bucket, s.Target, s.Moved, s.Uploaded)
	if s.Err != nil {
		body += fmt.Sprintf("Error: %s\n", s.Err)
	}

	_, err := n.client.Publish(context.Background(), &sns.PublishInput{
		TopicArn: aws.String(n.topic),
		Subject:  aws.String(subject),
		Message:  aws.String(body),
	})
	if err != nil {
		return fmt.Errorf("publishing workflow notification: %w", err)
	}
	return nil
}

// Compile-time check that SNSNotifier implements Notifier.
var _ Notifier = (*SNSNotifier)(nil)
