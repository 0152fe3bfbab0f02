package persistence

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// WebhookArchiveRepository keeps raw inbound callback payloads append-only in
// MongoDB for debugging. Best effort: a nil client disables archiving.
type WebhookArchiveRepository struct{ client *mongo.Client }

func NewWebhookArchiveRepository(client *mongo.Client) *WebhookArchiveRepository {
	return &WebhookArchiveRepository{client: client}
}

func (r *WebhookArchiveRepository) Archive(ctx context.Context, source string, payload []byte) error {
	if r.client == nil {
		return nil
	}
	collection := r.client.Database("socialcast").Collection("webhook_payloads")
	_, err := collection.InsertOne(ctx, bson.M{
		"source":      source,
		"payload":     string(payload),
		"received_at": time.Now().UTC(),
	})
	return err
}
