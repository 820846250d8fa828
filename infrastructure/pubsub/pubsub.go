package pubsub

import (
	"context"
	"encoding/json"
	"errors"

	"reelshare/domain/model"
	"reelshare/domain/repository"
	"reelshare/infrastructure/logger"

	"cloud.google.com/go/pubsub"
)

func NewPubSub(ctx context.Context, projectID string) (*pubsub.Client, error) {
	if projectID == "" {
		return nil, errors.New("pubsub project id is empty")
	}
	return pubsub.NewClient(ctx, projectID)
}

type ReelEventPublisher struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

// NewReelEventPublisher publishes resolution events to topicID, creating the topic if needed.
func NewReelEventPublisher(ctx context.Context, client *pubsub.Client, topicID string) (repository.IReelEventPublisher, error) {
	if client == nil {
		return nil, errors.New("pubsub client is nil")
	}
	topic := client.Topic(topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		logger.GetLogger().WithField("topic", topicID).Info("Topic doesn't exist - creating it")
		if topic, err = client.CreateTopic(ctx, topicID); err != nil {
			return nil, err
		}
	}
	return &ReelEventPublisher{client: client, topic: topic}, nil
}

func (p *ReelEventPublisher) Publish(ctx context.Context, event model.ReelEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	serverID, err := p.topic.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"type":   event.Type,
			"status": string(event.Status),
		},
	}).Get(ctx)
	if err != nil {
		return err
	}
	logger.GetLogger().WithField("server ID", serverID).WithField("reelId", event.ReelID).Debug("Reel event published")
	return nil
}

// Close flushes pending messages and releases the client.
func (p *ReelEventPublisher) Close() error {
	p.topic.Stop()
	return p.client.Close()
}
