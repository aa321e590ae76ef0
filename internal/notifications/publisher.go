package notifications

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/zap"
)

// SNSClient is the subset of the SNS API the publisher calls.
type SNSClient interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Publisher emits workflow lifecycle events onto an SNS topic so downstream
// systems (the finance ledger, reporting) can follow request state.
type Publisher struct {
	client   SNSClient
	topicARN string
	log      *zap.Logger
}

func NewPublisher(client SNSClient, topicARN string, log *zap.Logger) *Publisher {
	return &Publisher{client: client, topicARN: topicARN, log: log}
}

type lifecycleEvent struct {
	Event           string    `json:"event"`
	ReferenceNumber string    `json:"reference_number"`
	Status          string    `json:"status"`
	Amount          float64   `json:"amount"`
	Currency        string    `json:"currency"`
	OccurredAt      time.Time `json:"occurred_at"`
}

func (p *Publisher) PublishLifecycle(ctx context.Context, event, reference, status string, amount float64, currency string) {
	body, err := json.Marshal(lifecycleEvent{
		Event:           event,
		ReferenceNumber: reference,
		Status:          status,
		Amount:          amount,
		Currency:        currency,
		OccurredAt:      time.Now().UTC(),
	})
	if err != nil {
		return
	}
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Subject:  aws.String(event),
		Message:  aws.String(string(body)),
	})
	if err != nil {
		p.log.Error("lifecycle event publish failed",
			zap.String("event", event),
			zap.String("reference", reference),
			zap.Error(err))
	}
}
