package repository

import (
	"context"

	"socialcast/domain/model"
)

// IVideoIdea persists video ideas and their per-platform upload bookkeeping.
// SetPlatformUpload performs a keyed merge of a single platform's entry so
// that concurrent platform jobs never overwrite each other's state.
type IVideoIdea interface {
	Create(ctx context.Context, idea *model.VideoIdea) error
	GetByID(ctx context.Context, id string) (*model.VideoIdea, error)
	ListByUser(ctx context.Context, userID string) ([]*model.VideoIdea, error)
	// UpdateWorkflow writes both status axes and the optional rejection reason.
	UpdateWorkflow(ctx context.Context, id string, status model.VideoIdeaStatus, approval model.ApprovalStatus, reason string) error
	// SetGenerated records the rendered video (and metadata) from the pipeline.
	SetGenerated(ctx context.Context, id string, videoURL, previewURL string, cb GeneratedMetadata) error
	// InitUploads resets the upload map to pending/0 for the given platforms
	// in a single write.
	InitUploads(ctx context.Context, id string, platforms []model.Platform) error
	// SetPlatformUpload merges one platform's upload entry. Writes that would
	// move the platform's state backwards are rejected.
	SetPlatformUpload(ctx context.Context, id string, platform model.Platform, up model.PlatformUpload) error
}

// GeneratedMetadata is the metadata subset a generation callback may refresh.
type GeneratedMetadata struct {
	Caption           string
	YouTubeTitle      string
	TikTokTitle       string
	InstagramTitle    string
	EnvironmentPrompt string
	SoundPrompt       string
}
