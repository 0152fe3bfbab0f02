package events

import (
	"context"
	"encoding/json"

	"socialcast/domain/repository"
	"socialcast/infrastructure/logger"

	"cloud.google.com/go/pubsub"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
)

// Publisher fans publish lifecycle events out to the configured brokers.
// Either broker may be absent; a broker failure is logged, never fatal.
type Publisher struct {
	pubsubClient *pubsub.Client
	topic        string
	sbClient     *azservicebus.Client
	queue        string
}

func NewPubSub(ctx context.Context, projectID string) (*pubsub.Client, error) {
	return pubsub.NewClient(ctx, projectID)
}

func NewServiceBus(namespace string) (*azservicebus.Client, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, err
	}
	return azservicebus.NewClient(namespace, cred, nil)
}

func NewPublisher(pubsubClient *pubsub.Client, topic string, sbClient *azservicebus.Client, queue string) *Publisher {
	if topic == "" {
		topic = "publish-events"
	}
	if queue == "" {
		queue = "publish-events"
	}
	return &Publisher{pubsubClient: pubsubClient, topic: topic, sbClient: sbClient, queue: queue}
}

func (p *Publisher) PublishEvent(ctx context.Context, evt *repository.PublishEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	if p.pubsubClient != nil {
		topic := p.pubsubClient.Topic(p.topic)
		if _, err := topic.Publish(ctx, &pubsub.Message{Data: payload}).Get(ctx); err != nil {
			logger.GetLogger().WithField("error", err).Warn("pubsub publish failed")
		}
	}
	if p.sbClient != nil {
		sender, err := p.sbClient.NewSender(p.queue, nil)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("service bus sender failed")
			return nil
		}
		defer func() { _ = sender.Close(ctx) }()
		if err := sender.SendMessage(ctx, &azservicebus.Message{Body: payload}, nil); err != nil {
			logger.GetLogger().WithField("error", err).Warn("service bus send failed")
		}
	}
	return nil
}
