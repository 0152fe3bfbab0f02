package usecase

import (
	"context"
	"fmt"
	"time"

	"socialcast/domain/dto"
	"socialcast/domain/model"
	"socialcast/domain/repository"
	"socialcast/infrastructure/logger"

	"github.com/google/uuid"
)

// submissionCost is the credit price of one generation run.
const submissionCost = 1

// IVideoIdeaUsecase owns the video idea lifecycle up to approval: submission,
// generation dispatch, the video-ready callback, and dashboard reads.
type IVideoIdeaUsecase interface {
	Submit(ctx context.Context, userID string, req *dto.SubmitVideoIdeaRequest) (*model.VideoIdea, error)
	Get(ctx context.Context, userID, videoIdeaID string) (*model.VideoIdea, error)
	List(ctx context.Context, userID string) ([]*model.VideoIdea, error)
	HandleVideoReady(ctx context.Context, cb *dto.VideoReadyCallback) error
}

// StatusCacher is the read-path cache used by Get.
type StatusCacher interface {
	Get(ctx context.Context, videoIdeaID string) (*model.VideoIdea, bool)
	Set(ctx context.Context, idea *model.VideoIdea)
	Invalidate(ctx context.Context, videoIdeaID string)
}

type VideoIdeaUsecase struct {
	videoIdeas repository.IVideoIdea
	users      repository.IUser
	creds      repository.ICredential
	pipeline   repository.IGenerationPipeline
	cache      StatusCacher
	hub        StatusBroadcaster
}

func NewVideoIdeaUsecase(
	videoIdeas repository.IVideoIdea,
	users repository.IUser,
	creds repository.ICredential,
	pipeline repository.IGenerationPipeline,
	cache StatusCacher,
	hub StatusBroadcaster,
) IVideoIdeaUsecase {
	return &VideoIdeaUsecase{
		videoIdeas: videoIdeas,
		users:      users,
		creds:      creds,
		pipeline:   pipeline,
		cache:      cache,
		hub:        hub,
	}
}

// Submit validates the request, debits one credit, stores the idea and
// dispatches generation. The debit happens before dispatch; a dispatch
// failure refunds it.
func (uc *VideoIdeaUsecase) Submit(ctx context.Context, userID string, req *dto.SubmitVideoIdeaRequest) (*model.VideoIdea, error) {
	platforms, err := model.ParsePlatforms(req.SelectedPlatforms)
	if err != nil {
		return nil, &model.PreconditionError{Reason: err.Error()}
	}
	if len(platforms) == 0 {
		return nil, &model.PreconditionError{Reason: "at least one platform must be selected"}
	}

	user, err := uc.users.GetByUserName(ctx, userID)
	if err != nil {
		return nil, err
	}
	var blocked []model.Platform
	for _, p := range platforms {
		if !model.CanAccess(user.Tier, p) {
			blocked = append(blocked, p)
		}
	}
	if len(blocked) > 0 {
		return nil, &model.PreconditionError{Reason: fmt.Sprintf("tier %s does not allow", user.Tier), Platforms: blocked}
	}

	if _, err := uc.users.AdjustCredits(ctx, userID, -submissionCost); err != nil {
		return nil, err
	}

	idea := &model.VideoIdea{
		ID:                uuid.NewString(),
		UserID:            userID,
		Idea:              req.Idea,
		Caption:           req.Caption,
		YouTubeTitle:      req.YouTubeTitle,
		TikTokTitle:       req.TikTokTitle,
		InstagramTitle:    req.InstagramTitle,
		EnvironmentPrompt: req.EnvironmentPrompt,
		SoundPrompt:       req.SoundPrompt,
		SelectedPlatforms: platforms,
		Status:            model.StatusPending,
		ApprovalStatus:    model.ApprovalPending,
	}
	if err := uc.videoIdeas.Create(ctx, idea); err != nil {
		uc.refund(ctx, userID)
		return nil, err
	}

	connected := uc.connectedPlatforms(ctx, userID)
	phase := req.Phase
	if phase == "" {
		phase = "publish"
	}
	genReq := &repository.GenerationRequest{
		Phase:             phase,
		VideoIdeaID:       idea.ID,
		VideoIdea:         idea,
		SelectedPlatforms: platforms,
		SocialAccounts:    connected,
		UseAIVoice:        req.UseAIVoice,
		VoiceFileURL:      req.VoiceFileURL,
	}

	if err := uc.videoIdeas.UpdateWorkflow(ctx, idea.ID, model.StatusProcessing, model.ApprovalPending, ""); err != nil {
		logger.GetLogger().WithField("error", err).Error("marking idea processing")
	}
	idea.Status = model.StatusProcessing

	// Generation runs for minutes; dispatch is detached from the request.
	go uc.dispatch(idea.ID, userID, genReq)

	return idea, nil
}

func (uc *VideoIdeaUsecase) dispatch(videoIdeaID, userID string, req *repository.GenerationRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	if _, err := uc.pipeline.Generate(ctx, req); err != nil {
		logger.GetLogger().
			WithField("video_idea_id", videoIdeaID).
			WithField("error", err).
			Error("generation dispatch failed")
		if err := uc.videoIdeas.UpdateWorkflow(ctx, videoIdeaID, model.StatusFailed, model.ApprovalFailed, ""); err != nil {
			logger.GetLogger().WithField("error", err).Error("marking idea failed")
		}
		uc.refund(ctx, userID)
		uc.cache.Invalidate(ctx, videoIdeaID)
	}
}

func (uc *VideoIdeaUsecase) refund(ctx context.Context, userID string) {
	if _, err := uc.users.AdjustCredits(ctx, userID, submissionCost); err != nil {
		logger.GetLogger().WithField("user_id", userID).WithField("error", err).Error("refunding credit")
	}
}

func (uc *VideoIdeaUsecase) connectedPlatforms(ctx context.Context, userID string) []model.Platform {
	creds, err := uc.creds.ListByUser(ctx, userID)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("listing connected accounts")
		return nil
	}
	out := make([]model.Platform, 0, len(creds))
	for _, c := range creds {
		out = append(out, c.Platform)
	}
	return out
}

func (uc *VideoIdeaUsecase) Get(ctx context.Context, userID, videoIdeaID string) (*model.VideoIdea, error) {
	if cached, ok := uc.cache.Get(ctx, videoIdeaID); ok {
		if cached.UserID != userID {
			return nil, model.ErrVideoIdeaNotFound
		}
		return cached, nil
	}
	idea, err := uc.videoIdeas.GetByID(ctx, videoIdeaID)
	if err != nil {
		return nil, err
	}
	if idea.UserID != userID {
		return nil, model.ErrVideoIdeaNotFound
	}
	uc.cache.Set(ctx, idea)
	return idea, nil
}

func (uc *VideoIdeaUsecase) List(ctx context.Context, userID string) ([]*model.VideoIdea, error) {
	return uc.videoIdeas.ListByUser(ctx, userID)
}

// HandleVideoReady ingests the pipeline's callback. A final output moves the
// idea to ready_for_approval; a preview-only callback parks it at
// preview_ready. Late or duplicate callbacks on settled ideas are ignored.
func (uc *VideoIdeaUsecase) HandleVideoReady(ctx context.Context, cb *dto.VideoReadyCallback) error {
	idea, err := uc.videoIdeas.GetByID(ctx, cb.VideoIdeaID)
	if err != nil {
		return err
	}

	target := model.ApprovalReadyForApproval
	status := model.StatusCompleted
	if cb.FinalOutput == "" && cb.PreviewVideoURL != "" {
		target = model.ApprovalPreviewReady
		status = model.StatusPreviewReady
	}

	if !model.CanTransition(idea.ApprovalStatus, target) {
		logger.GetLogger().
			WithField("video_idea_id", cb.VideoIdeaID).
			WithField("from", idea.ApprovalStatus).
			WithField("to", target).
			Warn("ignoring late generation callback")
		return nil
	}

	meta := repository.GeneratedMetadata{
		Caption:           cb.Caption,
		YouTubeTitle:      cb.YouTubeTitle,
		TikTokTitle:       cb.TikTokTitle,
		InstagramTitle:    cb.InstagramTitle,
		EnvironmentPrompt: cb.EnvironmentPrompt,
		SoundPrompt:       cb.SoundPrompt,
	}
	if err := uc.videoIdeas.SetGenerated(ctx, cb.VideoIdeaID, cb.FinalOutput, cb.PreviewVideoURL, meta); err != nil {
		return err
	}
	if err := uc.videoIdeas.UpdateWorkflow(ctx, cb.VideoIdeaID, status, target, ""); err != nil {
		return err
	}
	uc.cache.Invalidate(ctx, cb.VideoIdeaID)
	if uc.hub != nil {
		uc.hub.Broadcast(&repository.PublishEvent{
			VideoIdeaID: cb.VideoIdeaID,
			UserID:      idea.UserID,
			Aggregate:   status,
		})
	}
	logger.GetLogger().
		WithField("video_idea_id", cb.VideoIdeaID).
		WithField("status", status).
		Info("generation callback processed")
	return nil
}
