package dto

// VideoReadyCallback is the inbound callback from the generation pipeline.
// FinalOutput carries the rendered video URL for the full-completion variant;
// PreviewVideoURL carries only a preview for the older workflow variant.
type VideoReadyCallback struct {
	VideoIdeaID       string `json:"video_idea_id"`
	Idea              string `json:"idea"`
	Caption           string `json:"caption"`
	FinalOutput       string `json:"final_output"`
	PreviewVideoURL   string `json:"preview_video_url"`
	YouTubeTitle      string `json:"youtube_title"`
	TikTokTitle       string `json:"tiktok_title"`
	InstagramTitle    string `json:"instagram_title"`
	EnvironmentPrompt string `json:"environment_prompt"`
	SoundPrompt       string `json:"sound_prompt"`
}

// PaymentCallback is the boundary contract with the payment processor: a
// successful payment credits the user's balance. Signature verification is
// the processor's concern, not ours.
type PaymentCallback struct {
	UserID  string `json:"user_id"`
	Credits int    `json:"credits"`
	Status  string `json:"status"`
}
