package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"

	"github.com/bazzarna/storefront/internal/platform/config"
	"github.com/bazzarna/storefront/internal/services"
)

// EventStoreDeleted is the type attribute carried by store deletion messages.
const EventStoreDeleted = "store.deleted"

// PubSubStoreEventPublisher publishes store lifecycle events to a Pub/Sub topic.
type PubSubStoreEventPublisher struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
}

// NewPubSubStoreEventPublisher constructs a Pub/Sub backed store event publisher.
func NewPubSubStoreEventPublisher(topic *pubsub.Topic) (*PubSubStoreEventPublisher, error) {
	if topic == nil {
		return nil, errors.New("pubsub store event publisher: topic is required")
	}
	return &PubSubStoreEventPublisher{
		topic:   topic,
		marshal: json.Marshal,
	}, nil
}

// DialStoreEvents opens a Pub/Sub client for cfg and returns the configured topic handle.
// The caller owns the client and must close it on shutdown.
func DialStoreEvents(ctx context.Context, cfg config.EventsConfig, opts ...option.ClientOption) (*pubsub.Client, *pubsub.Topic, error) {
	project := strings.TrimSpace(cfg.ProjectID)
	if project == "" {
		return nil, nil, errors.New("pubsub store event publisher: project id is required")
	}
	topicID := strings.TrimSpace(cfg.StoreEventTopic)
	if topicID == "" {
		return nil, nil, errors.New("pubsub store event publisher: topic is required")
	}
	client, err := pubsub.NewClient(ctx, project, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("pubsub store event publisher: new client: %w", err)
	}
	return client, client.Topic(topicID), nil
}

// PublishStoreDeleted emits a store.deleted message and waits for the server-assigned id.
func (p *PubSubStoreEventPublisher) PublishStoreDeleted(ctx context.Context, event services.StoreDeletedEvent) (string, error) {
	if p == nil || p.topic == nil {
		return "", errors.New("pubsub store event publisher: not initialised")
	}

	data, err := p.marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal store event: %w", err)
	}

	attrs := map[string]string{"type": EventStoreDeleted}
	setAttr(attrs, "operationId", event.OperationID)
	setAttr(attrs, "ownerId", event.OwnerID)
	setAttr(attrs, "storeId", event.StoreID)

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attrs,
	})

	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish store event: %w", err)
	}
	return id, nil
}

func setAttr(attrs map[string]string, key string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		attrs[key] = v
	}
}
