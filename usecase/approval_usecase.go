package usecase

import (
	"context"

	"socialcast/domain/dto"
	"socialcast/domain/model"
	"socialcast/domain/repository"
	"socialcast/infrastructure/logger"
)

// IApprovalUsecase drives the human-review state machine. Approving a video
// immediately triggers publishing; rejecting is terminal.
type IApprovalUsecase interface {
	Approve(ctx context.Context, userID, videoIdeaID string) (*dto.PublishResponse, error)
	Reject(ctx context.Context, userID, videoIdeaID, reason string) error
}

type ApprovalUsecase struct {
	videoIdeas repository.IVideoIdea
	publisher  IPublishUsecase
	cache      StatusInvalidator
}

func NewApprovalUsecase(videoIdeas repository.IVideoIdea, publisher IPublishUsecase, cache StatusInvalidator) IApprovalUsecase {
	return &ApprovalUsecase{videoIdeas: videoIdeas, publisher: publisher, cache: cache}
}

func (uc *ApprovalUsecase) Approve(ctx context.Context, userID, videoIdeaID string) (*dto.PublishResponse, error) {
	idea, err := uc.owned(ctx, userID, videoIdeaID)
	if err != nil {
		return nil, err
	}
	if !model.CanTransition(idea.ApprovalStatus, model.ApprovalApproved) {
		return nil, &model.InvalidTransitionError{From: idea.ApprovalStatus, To: model.ApprovalApproved}
	}
	if err := uc.videoIdeas.UpdateWorkflow(ctx, idea.ID, model.StatusCompleted, model.ApprovalApproved, ""); err != nil {
		return nil, err
	}
	uc.invalidate(ctx, idea.ID)
	logger.GetLogger().
		WithField("video_idea_id", idea.ID).
		WithField("user_id", userID).
		Info("video approved, publishing")

	return uc.publisher.Publish(ctx, userID, idea.ID)
}

func (uc *ApprovalUsecase) Reject(ctx context.Context, userID, videoIdeaID, reason string) error {
	idea, err := uc.owned(ctx, userID, videoIdeaID)
	if err != nil {
		return err
	}
	if !model.CanTransition(idea.ApprovalStatus, model.ApprovalRejected) {
		return &model.InvalidTransitionError{From: idea.ApprovalStatus, To: model.ApprovalRejected}
	}
	if err := uc.videoIdeas.UpdateWorkflow(ctx, idea.ID, model.StatusRejected, model.ApprovalRejected, reason); err != nil {
		return err
	}
	uc.invalidate(ctx, idea.ID)
	logger.GetLogger().
		WithField("video_idea_id", idea.ID).
		WithField("user_id", userID).
		Info("video rejected")
	return nil
}

func (uc *ApprovalUsecase) owned(ctx context.Context, userID, videoIdeaID string) (*model.VideoIdea, error) {
	idea, err := uc.videoIdeas.GetByID(ctx, videoIdeaID)
	if err != nil {
		return nil, err
	}
	if idea.UserID != userID {
		return nil, model.ErrVideoIdeaNotFound
	}
	return idea, nil
}

func (uc *ApprovalUsecase) invalidate(ctx context.Context, id string) {
	if uc.cache != nil {
		uc.cache.Invalidate(ctx, id)
	}
}
