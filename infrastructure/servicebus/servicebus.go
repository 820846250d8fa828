package servicebus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"reelshare/domain/model"
	"reelshare/domain/repository"
	"reelshare/infrastructure/logger"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
)

// NewServiceBus prefers a connection string and falls back to the default
// Azure credential chain against namespace.
func NewServiceBus(namespace, connectionString string) (*azservicebus.Client, error) {
	if connectionString != "" {
		return azservicebus.NewClientFromConnectionString(connectionString, nil)
	}
	if namespace == "" {
		return nil, errors.New("service bus namespace is empty")
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, err
	}
	return azservicebus.NewClient(namespace, cred, nil)
}

type messageSender interface {
	SendMessage(ctx context.Context, message *azservicebus.Message, options *azservicebus.SendMessageOptions) error
	Close(ctx context.Context) error
}

type ReelEventPublisher struct {
	sender messageSender
	client *azservicebus.Client
}

func NewReelEventPublisher(client *azservicebus.Client, queueOrTopic string) (repository.IReelEventPublisher, error) {
	if client == nil {
		return nil, errors.New("service bus client is nil")
	}
	sender, err := client.NewSender(queueOrTopic, nil)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while making new sender service bus.")
		return nil, err
	}
	return &ReelEventPublisher{sender: sender, client: client}, nil
}

func (p *ReelEventPublisher) Publish(ctx context.Context, event model.ReelEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	contentType := "application/json"
	subject := event.Type
	// a retried reel may fail again; attempts keeps its events distinct for duplicate detection
	messageID := fmt.Sprintf("%s:%s:%d", event.ReelID, event.Status, event.Attempts)
	err = p.sender.SendMessage(ctx, &azservicebus.Message{
		Body:        body,
		ContentType: &contentType,
		Subject:     &subject,
		MessageID:   &messageID,
		ApplicationProperties: map[string]any{
			"status":    string(event.Status),
			"shortcode": event.Shortcode,
		},
	}, nil)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while sending message.")
		return err
	}
	return nil
}

func (p *ReelEventPublisher) Close() error {
	ctx := context.Background()
	err := p.sender.Close(ctx)
	if p.client != nil {
		if cerr := p.client.Close(ctx); err == nil {
			err = cerr
		}
	}
	return err
}
