package model

import "time"

// VideoIdeaStatus is the coarse processing phase shown on dashboards.
type VideoIdeaStatus string

const (
	StatusPending        VideoIdeaStatus = "pending"
	StatusProcessing     VideoIdeaStatus = "processing"
	StatusPreviewReady   VideoIdeaStatus = "preview_ready"
	StatusCompleted      VideoIdeaStatus = "completed"
	StatusPublishing     VideoIdeaStatus = "publishing"
	StatusPublished      VideoIdeaStatus = "published"
	StatusPartialSuccess VideoIdeaStatus = "partial_success"
	StatusFailed         VideoIdeaStatus = "failed"
	StatusRejected       VideoIdeaStatus = "rejected"
)

// ApprovalStatus is the human-review lifecycle axis.
type ApprovalStatus string

const (
	ApprovalPending          ApprovalStatus = "pending"
	ApprovalPreviewReady     ApprovalStatus = "preview_ready"
	ApprovalReadyForApproval ApprovalStatus = "ready_for_approval"
	ApprovalApproved         ApprovalStatus = "approved"
	ApprovalRejected         ApprovalStatus = "rejected"
	ApprovalPublished        ApprovalStatus = "published"
	ApprovalFailed           ApprovalStatus = "failed"
)

// approvalTransitions enumerates every legal approval_status transition.
// Rejected and published are terminal; a rejected or failed idea is never
// resurrected, a new submission is required.
var approvalTransitions = map[ApprovalStatus][]ApprovalStatus{
	ApprovalPending:          {ApprovalPreviewReady, ApprovalReadyForApproval, ApprovalFailed},
	ApprovalPreviewReady:     {ApprovalReadyForApproval, ApprovalApproved, ApprovalRejected},
	ApprovalReadyForApproval: {ApprovalApproved, ApprovalRejected},
	ApprovalApproved:         {ApprovalPublished, ApprovalFailed},
	ApprovalRejected:         {},
	ApprovalPublished:        {},
	ApprovalFailed:           {},
}

// CanTransition reports whether moving from one approval state to another is
// legal.
func CanTransition(from, to ApprovalStatus) bool {
	for _, next := range approvalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// UploadState tracks one platform's progress within a publish call. The
// sequence is monotonic per platform: pending -> uploading -> completed|failed.
type UploadState string

const (
	UploadPending   UploadState = "pending"
	UploadUploading UploadState = "uploading"
	UploadCompleted UploadState = "completed"
	UploadFailed    UploadState = "failed"
)

var uploadRank = map[UploadState]int{
	UploadPending:   0,
	UploadUploading: 1,
	UploadCompleted: 2,
	UploadFailed:    2,
}

// UploadStateAdvances reports whether moving from one upload state to another
// goes forward; reversals are rejected by the persistence layer.
func UploadStateAdvances(from, to UploadState) bool {
	return uploadRank[to] > uploadRank[from]
}

// PlatformUpload is the per-platform publish bookkeeping record.
type PlatformUpload struct {
	State    UploadState `json:"state"`
	Progress int         `json:"progress"`
	Error    string      `json:"error,omitempty"`
	Link     string      `json:"link,omitempty"`
	MediaID  string      `json:"media_id,omitempty"`
}

// VideoIdea is one video generation + publish lifecycle, exclusively owned by
// the submitting user.
type VideoIdea struct {
	ID                string                      `json:"id"`
	UserID            string                      `json:"user_id"`
	Idea              string                      `json:"idea"`
	Caption           string                      `json:"caption"`
	YouTubeTitle      string                      `json:"youtube_title,omitempty"`
	TikTokTitle       string                      `json:"tiktok_title,omitempty"`
	InstagramTitle    string                      `json:"instagram_title,omitempty"`
	EnvironmentPrompt string                      `json:"environment_prompt,omitempty"`
	SoundPrompt       string                      `json:"sound_prompt,omitempty"`
	SelectedPlatforms []Platform                  `json:"selected_platforms"`
	VideoURL          string                      `json:"video_url,omitempty"`
	PreviewURL        string                      `json:"preview_url,omitempty"`
	Status            VideoIdeaStatus             `json:"status"`
	ApprovalStatus    ApprovalStatus              `json:"approval_status"`
	RejectionReason   string                      `json:"rejection_reason,omitempty"`
	Uploads           map[Platform]PlatformUpload `json:"uploads"`
	CreatedAt         time.Time                   `json:"created_at"`
	UpdatedAt         time.Time                   `json:"updated_at"`
}

// HasPlatform reports whether p is one of the idea's selected platforms.
func (v *VideoIdea) HasPlatform(p Platform) bool {
	for _, sp := range v.SelectedPlatforms {
		if sp == p {
			return true
		}
	}
	return false
}

// AggregateStatus derives the overall outcome from per-platform results.
func AggregateStatus(succeeded, total int) VideoIdeaStatus {
	switch {
	case succeeded == 0:
		return StatusFailed
	case succeeded < total:
		return StatusPartialSuccess
	default:
		return StatusPublished
	}
}

// ApprovalForAggregate maps the aggregate publish outcome onto the approval
// axis, keeping the two axes consistent.
func ApprovalForAggregate(s VideoIdeaStatus) ApprovalStatus {
	if s == StatusFailed {
		return ApprovalFailed
	}
	return ApprovalPublished
}
