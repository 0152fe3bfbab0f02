package dto

// SubmitVideoIdeaRequest creates a new video idea and triggers generation.
type SubmitVideoIdeaRequest struct {
	Idea              string   `json:"idea" binding:"required"`
	Caption           string   `json:"caption"`
	YouTubeTitle      string   `json:"youtube_title"`
	TikTokTitle       string   `json:"tiktok_title"`
	InstagramTitle    string   `json:"instagram_title"`
	EnvironmentPrompt string   `json:"environment_prompt"`
	SoundPrompt       string   `json:"sound_prompt"`
	SelectedPlatforms []string `json:"selected_platforms" binding:"required"`
	UseAIVoice        bool     `json:"use_ai_voice"`
	VoiceFileURL      string   `json:"voice_file_url"`
	Phase             string   `json:"phase"` // preview | publish (defaults to publish)
}

// RejectVideoIdeaRequest carries an optional free-text rejection reason.
type RejectVideoIdeaRequest struct {
	Reason string `json:"reason"`
}

// RetryPublishRequest re-runs publishing for a subset of platforms, typically
// the ones that failed. Empty means all previously failed platforms.
type RetryPublishRequest struct {
	Platforms []string `json:"platforms"`
}

// PlatformResult is one platform's outcome within a publish call.
type PlatformResult struct {
	Platform string `json:"platform"`
	State    string `json:"state"`
	Link     string `json:"link,omitempty"`
	MediaID  string `json:"media_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

// PublishResponse is the aggregate outcome of one publish call.
type PublishResponse struct {
	VideoIdeaID string           `json:"video_idea_id"`
	Status      string           `json:"status"`
	Results     []PlatformResult `json:"results"`
}
