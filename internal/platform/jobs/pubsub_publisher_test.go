package jobs

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/bazzarna/storefront/internal/platform/config"
	"github.com/bazzarna/storefront/internal/services"
)

func emulatorOptions(srv *pstest.Server) []option.ClientOption {
	return []option.ClientOption{
		option.WithEndpoint(srv.Addr),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	}
}

func TestPubSubStoreEventPublisherPublishesMessage(t *testing.T) {
	ctx := context.Background()
	srv := pstest.NewServer()
	defer srv.Close()

	client, err := pubsub.NewClient(ctx, "test-project", emulatorOptions(srv)...)
	if err != nil {
		t.Fatalf("pubsub.NewClient: %v", err)
	}
	defer func() {
		_ = client.Close()
	}()

	topic, err := client.CreateTopic(ctx, "store-events")
	if err != nil {
		t.Fatalf("CreateTopic: %v", err)
	}

	publisher, err := NewPubSubStoreEventPublisher(topic)
	if err != nil {
		t.Fatalf("NewPubSubStoreEventPublisher: %v", err)
	}

	event := services.StoreDeletedEvent{
		OperationID: "01J9Z3V6Q8K2M4N6P8R0T2V4X6",
		OwnerID:     "owner-1",
		StoreID:     "",
		DeletedAt:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	if _, err := publisher.PublishStoreDeleted(ctx, event); err != nil {
		t.Fatalf("PublishStoreDeleted: %v", err)
	}

	messages := srv.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}

	var payload services.StoreDeletedEvent
	if err := json.Unmarshal(messages[0].Data, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.OperationID != event.OperationID || payload.OwnerID != event.OwnerID {
		t.Fatalf("unexpected payload %#v", payload)
	}
	attrs := messages[0].Attributes
	if attrs["type"] != EventStoreDeleted || attrs["ownerId"] != "owner-1" {
		t.Fatalf("unexpected attributes %#v", attrs)
	}
	if _, ok := attrs["storeId"]; ok {
		t.Fatalf("blank store id should not be an attribute")
	}
}

func TestDialStoreEventsUsesConfiguredTopic(t *testing.T) {
	ctx := context.Background()
	srv := pstest.NewServer()
	defer srv.Close()

	cfg := config.EventsConfig{ProjectID: "test-project", StoreEventTopic: "store-events", Enabled: true}
	client, topic, err := DialStoreEvents(ctx, cfg, emulatorOptions(srv)...)
	if err != nil {
		t.Fatalf("DialStoreEvents: %v", err)
	}
	defer func() {
		_ = client.Close()
	}()
	if topic.ID() != "store-events" {
		t.Fatalf("expected store-events topic, got %q", topic.ID())
	}

	if _, _, err := DialStoreEvents(ctx, config.EventsConfig{ProjectID: "p"}); err == nil {
		t.Fatalf("expected error for missing topic")
	}
}

func TestNewPubSubStoreEventPublisherRequiresTopic(t *testing.T) {
	if _, err := NewPubSubStoreEventPublisher(nil); err == nil {
		t.Fatalf("expected error for nil topic")
	}
}
