package repository

import (
	"context"

	"socialcast/domain/model"
)

// UploadSource is the video being published. Bytes is used by byte-upload
// protocols (YouTube, TikTok); URL by platforms that fetch the video
// themselves (Instagram).
type UploadSource struct {
	URL         string
	Bytes       []byte
	ContentType string
}

// UploadMetadata is the platform-agnostic publish metadata. Tier is carried
// so adapters can enforce their own gate as defense in depth.
type UploadMetadata struct {
	Title   string
	Caption string
	Tier    model.Tier
}

// UploadResult is the uniform outcome of a successful platform upload.
type UploadResult struct {
	PlatformVideoID string
	PublicURL       string
}

// IPlatformUploader implements one platform's upload protocol behind the
// uniform contract the orchestrator fans out to.
type IPlatformUploader interface {
	Platform() model.Platform
	Upload(ctx context.Context, video UploadSource, meta UploadMetadata, cred *model.Credential) (*UploadResult, error)
}
