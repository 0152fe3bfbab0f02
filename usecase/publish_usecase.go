package usecase

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"socialcast/domain/dto"
	"socialcast/domain/model"
	"socialcast/domain/repository"
	"socialcast/infrastructure/logger"

	"golang.org/x/sync/errgroup"
)

// IPublishUsecase orchestrates concurrent fan-out publishing of an approved
// video across the selected platforms.
type IPublishUsecase interface {
	Publish(ctx context.Context, userID, videoIdeaID string) (*dto.PublishResponse, error)
	Retry(ctx context.Context, userID, videoIdeaID string, platforms []string) (*dto.PublishResponse, error)
}

// StatusBroadcaster pushes a publish event to connected dashboard streams.
type StatusBroadcaster interface {
	Broadcast(evt *repository.PublishEvent)
}

// StatusInvalidator drops a cached status snapshot after a write.
type StatusInvalidator interface {
	Invalidate(ctx context.Context, videoIdeaID string)
}

type PublishUsecase struct {
	videoIdeas repository.IVideoIdea
	users      repository.IUser
	creds      repository.ICredential
	refresher  ITokenRefresher
	uploaders  map[model.Platform]repository.IPlatformUploader
	events     repository.IEventPublisher
	hub        StatusBroadcaster
	cache      StatusInvalidator
	httpClient *http.Client
}

func NewPublishUsecase(
	videoIdeas repository.IVideoIdea,
	users repository.IUser,
	creds repository.ICredential,
	refresher ITokenRefresher,
	uploaders []repository.IPlatformUploader,
	events repository.IEventPublisher,
	hub StatusBroadcaster,
	cache StatusInvalidator,
) IPublishUsecase {
	byPlatform := make(map[model.Platform]repository.IPlatformUploader, len(uploaders))
	for _, u := range uploaders {
		byPlatform[u.Platform()] = u
	}
	return &PublishUsecase{
		videoIdeas: videoIdeas,
		users:      users,
		creds:      creds,
		refresher:  refresher,
		uploaders:  byPlatform,
		events:     events,
		hub:        hub,
		cache:      cache,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

func (uc *PublishUsecase) Publish(ctx context.Context, userID, videoIdeaID string) (*dto.PublishResponse, error) {
	idea, err := uc.ownedIdea(ctx, userID, videoIdeaID)
	if err != nil {
		return nil, err
	}
	return uc.run(ctx, userID, idea, idea.SelectedPlatforms)
}

// Retry re-runs the failed subset. An explicit platform list narrows it
// further; platforms that already completed are skipped.
func (uc *PublishUsecase) Retry(ctx context.Context, userID, videoIdeaID string, platformNames []string) (*dto.PublishResponse, error) {
	idea, err := uc.ownedIdea(ctx, userID, videoIdeaID)
	if err != nil {
		return nil, err
	}

	var targets []model.Platform
	if len(platformNames) > 0 {
		targets, err = model.ParsePlatforms(platformNames)
		if err != nil {
			return nil, &model.PreconditionError{Reason: err.Error()}
		}
	} else {
		for _, p := range idea.SelectedPlatforms {
			if up, ok := idea.Uploads[p]; ok && up.State == model.UploadFailed {
				targets = append(targets, p)
			}
		}
	}

	retry := targets[:0]
	for _, p := range targets {
		if up, ok := idea.Uploads[p]; ok && up.State == model.UploadCompleted {
			continue
		}
		retry = append(retry, p)
	}
	if len(retry) == 0 {
		return nil, &model.PreconditionError{Reason: "nothing to retry"}
	}
	return uc.run(ctx, userID, idea, retry)
}

func (uc *PublishUsecase) ownedIdea(ctx context.Context, userID, videoIdeaID string) (*model.VideoIdea, error) {
	idea, err := uc.videoIdeas.GetByID(ctx, videoIdeaID)
	if err != nil {
		return nil, err
	}
	// Ownership mismatch reads as not-found so ids cannot be probed.
	if idea.UserID != userID {
		return nil, model.ErrVideoIdeaNotFound
	}
	return idea, nil
}

// run checks every precondition, then fans the upload out. Preconditions are
// all-or-nothing: a single failing platform blocks the whole call before any
// network traffic.
func (uc *PublishUsecase) run(ctx context.Context, userID string, idea *model.VideoIdea, targets []model.Platform) (*dto.PublishResponse, error) {
	// Publishing requires a cleared review: approved for the first run,
	// published or failed for retries. Anything earlier in the lifecycle
	// (pending, preview_ready, ready_for_approval, rejected) cannot publish.
	switch idea.ApprovalStatus {
	case model.ApprovalApproved, model.ApprovalPublished, model.ApprovalFailed:
	default:
		return nil, &model.InvalidTransitionError{From: idea.ApprovalStatus, To: model.ApprovalPublished}
	}

	user, err := uc.users.GetByUserName(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, p := range targets {
		if !idea.HasPlatform(p) {
			return nil, &model.PreconditionError{Reason: "platform was not selected for this video", Platforms: []model.Platform{p}}
		}
	}
	if idea.VideoURL == "" {
		return nil, &model.PreconditionError{Reason: "video has not been generated yet"}
	}

	var blocked, unsupported, disconnected []model.Platform
	for _, p := range targets {
		if !model.CanAccess(user.Tier, p) {
			blocked = append(blocked, p)
			continue
		}
		if _, ok := uc.uploaders[p]; !ok {
			unsupported = append(unsupported, p)
			continue
		}
		if cred, err := uc.creds.Get(ctx, userID, p); err != nil || cred.AccessToken == "" {
			disconnected = append(disconnected, p)
		}
	}
	if len(blocked) > 0 {
		return nil, &model.PreconditionError{Reason: fmt.Sprintf("tier %s does not allow", user.Tier), Platforms: blocked}
	}
	if len(unsupported) > 0 {
		return nil, &model.PreconditionError{Reason: "publishing not supported for", Platforms: unsupported}
	}
	if len(disconnected) > 0 {
		return nil, &model.PreconditionError{Reason: "account not connected for", Platforms: disconnected}
	}

	video, err := uc.fetchVideo(ctx, idea, targets)
	if err != nil {
		return nil, err
	}

	if err := uc.videoIdeas.InitUploads(ctx, idea.ID, targets); err != nil {
		return nil, err
	}
	if err := uc.videoIdeas.UpdateWorkflow(ctx, idea.ID, model.StatusPublishing, idea.ApprovalStatus, idea.RejectionReason); err != nil {
		return nil, err
	}
	uc.invalidate(ctx, idea.ID)

	results := uc.fanOut(ctx, user, idea, targets, video)

	succeeded := 0
	for _, res := range results {
		if res.State == string(model.UploadCompleted) {
			succeeded++
		}
	}
	// Platforms outside this run (earlier completed uploads) count toward the
	// aggregate so a successful retry flips partial_success to published.
	total := len(idea.SelectedPlatforms)
	for _, p := range idea.SelectedPlatforms {
		if uc.inTargets(p, targets) {
			continue
		}
		if up, ok := idea.Uploads[p]; ok && up.State == model.UploadCompleted {
			succeeded++
		}
	}

	aggregate := model.AggregateStatus(succeeded, total)
	approval := model.ApprovalForAggregate(aggregate)
	if err := uc.videoIdeas.UpdateWorkflow(ctx, idea.ID, aggregate, approval, idea.RejectionReason); err != nil {
		uc.invalidate(ctx, idea.ID)
		return nil, fmt.Errorf("recording aggregate publish status: %w", err)
	}
	uc.invalidate(ctx, idea.ID)
	uc.emit(ctx, &repository.PublishEvent{
		VideoIdeaID: idea.ID,
		UserID:      userID,
		Aggregate:   aggregate,
	})

	return &dto.PublishResponse{
		VideoIdeaID: idea.ID,
		Status:      string(aggregate),
		Results:     results,
	}, nil
}

// fanOut runs every platform upload concurrently. Goroutines never return an
// error so one platform's failure cannot cancel its siblings; failures become
// failed result entries instead.
func (uc *PublishUsecase) fanOut(ctx context.Context, user model.User, idea *model.VideoIdea, targets []model.Platform, video repository.UploadSource) []dto.PlatformResult {
	results := make([]dto.PlatformResult, len(targets))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, platform := range targets {
		i, platform := i, platform
		g.Go(func() error {
			res := uc.uploadOne(gctx, user, idea, platform, video)
			mu.Lock()
			results[i] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (uc *PublishUsecase) uploadOne(ctx context.Context, user model.User, idea *model.VideoIdea, platform model.Platform, video repository.UploadSource) dto.PlatformResult {
	mark := func(up model.PlatformUpload) {
		if err := uc.videoIdeas.SetPlatformUpload(ctx, idea.ID, platform, up); err != nil {
			logger.GetLogger().WithField("error", err).WithField("platform", platform).Error("recording upload state")
		}
		uc.emit(ctx, &repository.PublishEvent{
			VideoIdeaID: idea.ID,
			UserID:      idea.UserID,
			Platform:    platform,
			State:       up.State,
			Error:       up.Error,
		})
	}

	mark(model.PlatformUpload{State: model.UploadUploading, Progress: 10})

	fail := func(err error) dto.PlatformResult {
		logger.GetLogger().WithField("platform", platform).WithField("error", err).Warn("platform upload failed")
		mark(model.PlatformUpload{State: model.UploadFailed, Progress: 100, Error: err.Error()})
		return dto.PlatformResult{Platform: string(platform), State: string(model.UploadFailed), Error: err.Error()}
	}

	cred, err := uc.refresher.EnsureFresh(ctx, idea.UserID, platform)
	if err != nil {
		return fail(err)
	}

	meta := repository.UploadMetadata{
		Title:   uc.titleFor(idea, platform),
		Caption: idea.Caption,
		Tier:    user.Tier,
	}
	result, err := uc.uploaders[platform].Upload(ctx, video, meta, cred)
	if err != nil {
		return fail(err)
	}

	mark(model.PlatformUpload{
		State:    model.UploadCompleted,
		Progress: 100,
		Link:     result.PublicURL,
		MediaID:  result.PlatformVideoID,
	})
	return dto.PlatformResult{
		Platform: string(platform),
		State:    string(model.UploadCompleted),
		Link:     result.PublicURL,
		MediaID:  result.PlatformVideoID,
	}
}

func (uc *PublishUsecase) titleFor(idea *model.VideoIdea, platform model.Platform) string {
	var title string
	switch platform {
	case model.PlatformYouTube:
		title = idea.YouTubeTitle
	case model.PlatformTikTok:
		title = idea.TikTokTitle
	case model.PlatformInstagram:
		title = idea.InstagramTitle
	}
	if title == "" {
		title = idea.Idea
	}
	return title
}

// fetchVideo downloads the rendered video once when any target uses a
// byte-upload protocol. URL-pull platforms reuse the hosted URL directly.
func (uc *PublishUsecase) fetchVideo(ctx context.Context, idea *model.VideoIdea, targets []model.Platform) (repository.UploadSource, error) {
	source := repository.UploadSource{URL: idea.VideoURL}

	needsBytes := false
	for _, p := range targets {
		if p == model.PlatformYouTube || p == model.PlatformTikTok {
			needsBytes = true
			break
		}
	}
	if !needsBytes {
		return source, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, idea.VideoURL, nil)
	if err != nil {
		return source, &model.PreconditionError{Reason: "rendered video url is invalid"}
	}
	resp, err := uc.httpClient.Do(req)
	if err != nil {
		return source, fmt.Errorf("downloading rendered video: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return source, fmt.Errorf("downloading rendered video: status %d", resp.StatusCode)
	}
	source.Bytes, err = io.ReadAll(resp.Body)
	if err != nil {
		return source, fmt.Errorf("downloading rendered video: %w", err)
	}
	source.ContentType = resp.Header.Get("Content-Type")
	return source, nil
}

func (uc *PublishUsecase) inTargets(p model.Platform, targets []model.Platform) bool {
	for _, t := range targets {
		if t == p {
			return true
		}
	}
	return false
}

func (uc *PublishUsecase) invalidate(ctx context.Context, id string) {
	if uc.cache != nil {
		uc.cache.Invalidate(ctx, id)
	}
}

func (uc *PublishUsecase) emit(ctx context.Context, evt *repository.PublishEvent) {
	if uc.events != nil {
		if err := uc.events.PublishEvent(ctx, evt); err != nil {
			logger.GetLogger().WithField("error", err).Warn("emitting publish event")
		}
	}
	if uc.hub != nil {
		uc.hub.Broadcast(evt)
	}
}
