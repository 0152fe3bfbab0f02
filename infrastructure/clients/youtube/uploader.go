package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"socialcast/domain/model"
	"socialcast/domain/repository"
	"socialcast/infrastructure/logger"

	yt "google.golang.org/api/youtube/v3"
)

const (
	defaultUploadURL = "https://www.googleapis.com/upload/youtube/v3/videos"
	maxTitleRunes    = 100
)

// Uploader publishes videos through the YouTube Data API resumable upload
// protocol: initiate a session, then transfer the bytes to the session URL.
type Uploader struct {
	httpClient *http.Client
	uploadURL  string
}

func NewUploader() *Uploader {
	return &Uploader{
		httpClient: &http.Client{Timeout: 10 * time.Minute},
		uploadURL:  defaultUploadURL,
	}
}

// NewUploaderWithBase is used by tests to point at a local server.
func NewUploaderWithBase(client *http.Client, uploadURL string) *Uploader {
	return &Uploader{httpClient: client, uploadURL: uploadURL}
}

func (u *Uploader) Platform() model.Platform { return model.PlatformYouTube }

func (u *Uploader) Upload(ctx context.Context, video repository.UploadSource, meta repository.UploadMetadata, cred *model.Credential) (*repository.UploadResult, error) {
	if len(video.Bytes) == 0 {
		return nil, &model.UploadError{Platform: model.PlatformYouTube, Step: "init", Err: fmt.Errorf("no video bytes")}
	}

	sessionURL, err := u.initiate(ctx, video, meta, cred)
	if err != nil {
		return nil, err
	}

	videoID, err := u.transfer(ctx, sessionURL, video)
	if err != nil {
		return nil, err
	}

	logger.GetLogger().WithField("video_id", videoID).Info("youtube upload complete")
	return &repository.UploadResult{
		PlatformVideoID: videoID,
		PublicURL:       fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID),
	}, nil
}

func (u *Uploader) initiate(ctx context.Context, video repository.UploadSource, meta repository.UploadMetadata, cred *model.Credential) (string, error) {
	body := &yt.Video{
		Snippet: &yt.VideoSnippet{
			Title:       truncateTitle(meta.Title),
			Description: meta.Caption,
			CategoryId:  "22",
		},
		Status: &yt.VideoStatus{
			PrivacyStatus:           "public",
			SelfDeclaredMadeForKids: false,
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", &model.UploadError{Platform: model.PlatformYouTube, Step: "init", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		u.uploadURL+"?uploadType=resumable&part=snippet,status", bytes.NewReader(payload))
	if err != nil {
		return "", &model.UploadError{Platform: model.PlatformYouTube, Step: "init", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("X-Upload-Content-Length", strconv.Itoa(len(video.Bytes)))
	req.Header.Set("X-Upload-Content-Type", contentType(video))

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", &model.UploadError{Platform: model.PlatformYouTube, Step: "init", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", &model.UploadError{Platform: model.PlatformYouTube, Step: "init",
			Err: fmt.Errorf("session init returned %d: %s", resp.StatusCode, string(raw))}
	}
	sessionURL := resp.Header.Get("Location")
	if sessionURL == "" {
		return "", &model.UploadError{Platform: model.PlatformYouTube, Step: "init",
			Err: fmt.Errorf("no session location in response")}
	}
	return sessionURL, nil
}

func (u *Uploader) transfer(ctx context.Context, sessionURL string, video repository.UploadSource) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, sessionURL, bytes.NewReader(video.Bytes))
	if err != nil {
		return "", &model.UploadError{Platform: model.PlatformYouTube, Step: "transfer", Err: err}
	}
	req.Header.Set("Content-Type", contentType(video))
	req.ContentLength = int64(len(video.Bytes))

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", &model.UploadError{Platform: model.PlatformYouTube, Step: "transfer", Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", &model.UploadError{Platform: model.PlatformYouTube, Step: "transfer",
			Err: fmt.Errorf("byte transfer returned %d: %s", resp.StatusCode, string(raw))}
	}

	var uploaded struct {
		Id string `json:"id"`
	}
	if err := json.Unmarshal(raw, &uploaded); err != nil || uploaded.Id == "" {
		return "", &model.UploadError{Platform: model.PlatformYouTube, Step: "transfer",
			Err: fmt.Errorf("missing video id in upload response")}
	}
	return uploaded.Id, nil
}

func contentType(video repository.UploadSource) string {
	if video.ContentType != "" {
		return video.ContentType
	}
	return "video/mp4"
}

// truncateTitle bounds the title by rune count, not bytes, so multibyte
// titles are not split mid-character.
func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= maxTitleRunes {
		return title
	}
	return string(runes[:maxTitleRunes])
}
