package repository

import (
	"context"

	"socialcast/domain/model"
)

// GenerationRequest is the outbound payload to the generation pipeline.
type GenerationRequest struct {
	Phase             string           `json:"phase"` // preview | publish
	VideoIdeaID       string           `json:"video_idea_id"`
	VideoIdea         *model.VideoIdea `json:"video_idea"`
	SelectedPlatforms []model.Platform `json:"selected_platforms"`
	SocialAccounts    []model.Platform `json:"social_accounts"`
	UseAIVoice        bool             `json:"use_ai_voice"`
	VoiceFileURL      string           `json:"voice_file_url,omitempty"`
}

// GenerationResponse is what the pipeline may return synchronously; most
// fields arrive later via the video-ready callback instead.
type GenerationResponse struct {
	VideoFile       string `json:"video_file,omitempty"`
	PreviewVideoURL string `json:"preview_video_url,omitempty"`
	YouTubeLink     string `json:"youtube_link,omitempty"`
	InstagramLink   string `json:"instagram_link,omitempty"`
	TikTokLink      string `json:"tiktok_link,omitempty"`
}

// IGenerationPipeline is the external AI generation webhook boundary.
type IGenerationPipeline interface {
	Generate(ctx context.Context, req *GenerationRequest) (*GenerationResponse, error)
}
