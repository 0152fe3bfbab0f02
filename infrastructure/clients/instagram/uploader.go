package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"socialcast/domain/model"
	"socialcast/domain/repository"
	"socialcast/infrastructure/logger"

	"github.com/google/go-querystring/query"
)

const (
	defaultGraphURL = "https://graph.facebook.com/v21.0"

	pollInterval = 10 * time.Second
	maxPolls     = 30
)

// Uploader publishes Reels through the Instagram Graph API container flow:
// create a media container pointing at the hosted video, poll until Meta has
// ingested it, then publish the container.
type Uploader struct {
	httpClient *http.Client
	graphURL   string
	interval   time.Duration
	maxPolls   int
}

func NewUploader() *Uploader {
	return &Uploader{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		graphURL:   defaultGraphURL,
		interval:   pollInterval,
		maxPolls:   maxPolls,
	}
}

// NewUploaderWithBase is used by tests to point at a local server and tighten
// the poll schedule.
func NewUploaderWithBase(client *http.Client, graphURL string, interval time.Duration, maxPolls int) *Uploader {
	return &Uploader{httpClient: client, graphURL: graphURL, interval: interval, maxPolls: maxPolls}
}

func (u *Uploader) Platform() model.Platform { return model.PlatformInstagram }

type containerParams struct {
	MediaType   string `url:"media_type"`
	VideoURL    string `url:"video_url"`
	Caption     string `url:"caption"`
	AccessToken string `url:"access_token"`
}

type publishParams struct {
	CreationID  string `url:"creation_id"`
	AccessToken string `url:"access_token"`
}

func (u *Uploader) Upload(ctx context.Context, video repository.UploadSource, meta repository.UploadMetadata, cred *model.Credential) (*repository.UploadResult, error) {
	if !model.CanAccess(meta.Tier, model.PlatformInstagram) {
		return nil, &model.UploadError{Platform: model.PlatformInstagram, Step: "container",
			Err: fmt.Errorf("tier %s cannot publish to instagram", meta.Tier)}
	}
	if video.URL == "" {
		return nil, &model.UploadError{Platform: model.PlatformInstagram, Step: "container",
			Err: fmt.Errorf("no hosted video url")}
	}
	if cred.ExternalID == "" {
		return nil, &model.UploadError{Platform: model.PlatformInstagram, Step: "container",
			Err: fmt.Errorf("credential has no business account id")}
	}

	containerID, err := u.createContainer(ctx, video, meta, cred)
	if err != nil {
		return nil, err
	}
	if err := u.awaitContainer(ctx, containerID, cred); err != nil {
		return nil, err
	}
	mediaID, err := u.publish(ctx, containerID, cred)
	if err != nil {
		return nil, err
	}

	permalink := u.permalink(ctx, mediaID, cred)
	logger.GetLogger().WithField("media_id", mediaID).Info("instagram publish complete")
	return &repository.UploadResult{PlatformVideoID: mediaID, PublicURL: permalink}, nil
}

func (u *Uploader) createContainer(ctx context.Context, video repository.UploadSource, meta repository.UploadMetadata, cred *model.Credential) (string, error) {
	params, err := query.Values(containerParams{
		MediaType:   "REELS",
		VideoURL:    video.URL,
		Caption:     meta.Caption,
		AccessToken: cred.AccessToken,
	})
	if err != nil {
		return "", &model.UploadError{Platform: model.PlatformInstagram, Step: "container", Err: err}
	}

	endpoint := fmt.Sprintf("%s/%s/media", u.graphURL, cred.ExternalID)
	raw, err := u.postForm(ctx, endpoint, params.Encode())
	if err != nil {
		return "", &model.UploadError{Platform: model.PlatformInstagram, Step: "container", Err: err}
	}

	var parsed struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil || parsed.ID == "" {
		return "", &model.UploadError{Platform: model.PlatformInstagram, Step: "container",
			Err: fmt.Errorf("no container id in response: %s", string(raw))}
	}
	return parsed.ID, nil
}

// awaitContainer polls until Meta finishes ingesting the hosted video. The
// loop is bounded and honors cancellation between polls.
func (u *Uploader) awaitContainer(ctx context.Context, containerID string, cred *model.Credential) error {
	endpoint := fmt.Sprintf("%s/%s?fields=status_code&access_token=%s", u.graphURL, containerID, cred.AccessToken)

	for attempt := 0; attempt < u.maxPolls; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(u.interval):
			case <-ctx.Done():
				return &model.UploadError{Platform: model.PlatformInstagram, Step: "poll", Err: ctx.Err()}
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return &model.UploadError{Platform: model.PlatformInstagram, Step: "poll", Err: err}
		}
		resp, err := u.httpClient.Do(req)
		if err != nil {
			return &model.UploadError{Platform: model.PlatformInstagram, Step: "poll", Err: err}
		}
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		var parsed struct {
			StatusCode string `json:"status_code"`
		}
		_ = json.Unmarshal(raw, &parsed)

		switch parsed.StatusCode {
		case "FINISHED":
			return nil
		case "ERROR":
			return &model.UploadError{Platform: model.PlatformInstagram, Step: "poll",
				Err: fmt.Errorf("media container processing failed")}
		}
	}
	return &model.UploadError{Platform: model.PlatformInstagram, Step: "poll",
		Err: fmt.Errorf("media container not ready after %d polls", u.maxPolls)}
}

func (u *Uploader) publish(ctx context.Context, containerID string, cred *model.Credential) (string, error) {
	params, err := query.Values(publishParams{CreationID: containerID, AccessToken: cred.AccessToken})
	if err != nil {
		return "", &model.UploadError{Platform: model.PlatformInstagram, Step: "publish", Err: err}
	}

	endpoint := fmt.Sprintf("%s/%s/media_publish", u.graphURL, cred.ExternalID)
	raw, err := u.postForm(ctx, endpoint, params.Encode())
	if err != nil {
		return "", &model.UploadError{Platform: model.PlatformInstagram, Step: "publish", Err: err}
	}

	var parsed struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil || parsed.ID == "" {
		return "", &model.UploadError{Platform: model.PlatformInstagram, Step: "publish",
			Err: fmt.Errorf("no media id in publish response: %s", string(raw))}
	}
	return parsed.ID, nil
}

// permalink is best effort; the media id alone is enough to consider the
// publish successful.
func (u *Uploader) permalink(ctx context.Context, mediaID string, cred *model.Credential) string {
	endpoint := fmt.Sprintf("%s/%s?fields=permalink&access_token=%s", u.graphURL, mediaID, cred.AccessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ""
	}
	resp, err := u.httpClient.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	var parsed struct {
		Permalink string `json:"permalink"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return ""
	}
	return parsed.Permalink
}

func (u *Uploader) postForm(ctx context.Context, endpoint, form string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("graph api returned %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}
