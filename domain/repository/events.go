package repository

import (
	"context"

	"socialcast/domain/model"
)

// PublishEvent is emitted on the event bus whenever a platform's upload state
// or the aggregate status changes.
type PublishEvent struct {
	VideoIdeaID string                `json:"video_idea_id"`
	UserID      string                `json:"user_id"`
	Platform    model.Platform        `json:"platform,omitempty"`
	State       model.UploadState     `json:"state,omitempty"`
	Aggregate   model.VideoIdeaStatus `json:"aggregate,omitempty"`
	Error       string                `json:"error,omitempty"`
}

// IEventPublisher fans publish lifecycle events out to whatever brokers are
// configured. Implementations must be safe to call with partial failures.
type IEventPublisher interface {
	PublishEvent(ctx context.Context, evt *PublishEvent) error
}

// IWebhookArchive stores raw inbound callback payloads append-only for
// debugging; best effort, failures are logged and ignored.
type IWebhookArchive interface {
	Archive(ctx context.Context, source string, payload []byte) error
}
