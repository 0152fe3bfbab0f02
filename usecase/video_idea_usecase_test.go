package usecase

import (
	"context"
	"testing"

	"socialcast/domain/dto"
	"socialcast/domain/model"
	"socialcast/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newVideoIdeaFixture() (*mockVideoIdeaRepo, *mockUserRepo, *mockCredentialRepo, *mockPipeline, IVideoIdeaUsecase) {
	ideas := new(mockVideoIdeaRepo)
	users := new(mockUserRepo)
	creds := new(mockCredentialRepo)
	pipe := new(mockPipeline)
	uc := NewVideoIdeaUsecase(ideas, users, creds, pipe, noopCache{}, nil)
	return ideas, users, creds, pipe, uc
}

func TestSubmitDebitsOneCredit(t *testing.T) {
	ideas, users, creds, pipe, uc := newVideoIdeaFixture()

	users.On("GetByUserName", mock.Anything, "alice").Return(model.User{UserName: "alice", Tier: model.TierPremium, Credits: 3}, nil)
	users.On("AdjustCredits", mock.Anything, "alice", -1).Return(2, nil)
	creds.On("ListByUser", mock.Anything, "alice").Return([]*model.Credential{{Platform: model.PlatformYouTube}}, nil)
	ideas.On("Create", mock.Anything, mock.Anything).Return(nil)
	ideas.On("UpdateWorkflow", mock.Anything, mock.Anything, model.StatusProcessing, model.ApprovalPending, "").Return(nil)
	pipe.On("Generate", mock.Anything, mock.Anything).Return(&repository.GenerationResponse{}, nil).Maybe()

	idea, err := uc.Submit(context.Background(), "alice", &dto.SubmitVideoIdeaRequest{
		Idea:              "gopher dance",
		SelectedPlatforms: []string{"youtube", "tiktok"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, idea.ID)
	assert.Equal(t, model.StatusProcessing, idea.Status)
	assert.Equal(t, []model.Platform{model.PlatformYouTube, model.PlatformTikTok}, idea.SelectedPlatforms)
	users.AssertCalled(t, "AdjustCredits", mock.Anything, "alice", -1)
}

func TestSubmitInsufficientCredits(t *testing.T) {
	ideas, users, _, _, uc := newVideoIdeaFixture()

	users.On("GetByUserName", mock.Anything, "alice").Return(model.User{UserName: "alice", Tier: model.TierPro}, nil)
	users.On("AdjustCredits", mock.Anything, "alice", -1).Return(0, model.ErrInsufficientCredits)

	_, err := uc.Submit(context.Background(), "alice", &dto.SubmitVideoIdeaRequest{
		Idea:              "gopher dance",
		SelectedPlatforms: []string{"youtube"},
	})
	assert.ErrorIs(t, err, model.ErrInsufficientCredits)
	ideas.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmitTierGate(t *testing.T) {
	_, users, _, _, uc := newVideoIdeaFixture()
	users.On("GetByUserName", mock.Anything, "alice").Return(model.User{UserName: "alice", Tier: model.TierFree}, nil)

	_, err := uc.Submit(context.Background(), "alice", &dto.SubmitVideoIdeaRequest{
		Idea:              "gopher dance",
		SelectedPlatforms: []string{"youtube", "instagram"},
	})
	var precondition *model.PreconditionError
	require.ErrorAs(t, err, &precondition)
	assert.Equal(t, []model.Platform{model.PlatformInstagram}, precondition.Platforms)
	users.AssertNotCalled(t, "AdjustCredits", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitUnknownPlatform(t *testing.T) {
	_, _, _, _, uc := newVideoIdeaFixture()
	_, err := uc.Submit(context.Background(), "alice", &dto.SubmitVideoIdeaRequest{
		Idea:              "gopher dance",
		SelectedPlatforms: []string{"vimeo"},
	})
	var precondition *model.PreconditionError
	assert.ErrorAs(t, err, &precondition)
}

func TestHandleVideoReadyFinalOutput(t *testing.T) {
	ideas, _, _, _, uc := newVideoIdeaFixture()

	ideas.On("GetByID", mock.Anything, "idea-1").Return(&model.VideoIdea{
		ID: "idea-1", UserID: "alice",
		Status: model.StatusProcessing, ApprovalStatus: model.ApprovalPending,
	}, nil)
	ideas.On("SetGenerated", mock.Anything, "idea-1", "https://cdn/final.mp4", "", mock.Anything).Return(nil)
	ideas.On("UpdateWorkflow", mock.Anything, "idea-1", model.StatusCompleted, model.ApprovalReadyForApproval, "").Return(nil)

	err := uc.HandleVideoReady(context.Background(), &dto.VideoReadyCallback{
		VideoIdeaID: "idea-1",
		FinalOutput: "https://cdn/final.mp4",
		Caption:     "fresh caption",
	})
	require.NoError(t, err)
	ideas.AssertExpectations(t)
}

func TestHandleVideoReadyPreviewOnly(t *testing.T) {
	ideas, _, _, _, uc := newVideoIdeaFixture()

	ideas.On("GetByID", mock.Anything, "idea-1").Return(&model.VideoIdea{
		ID: "idea-1", UserID: "alice",
		Status: model.StatusProcessing, ApprovalStatus: model.ApprovalPending,
	}, nil)
	ideas.On("SetGenerated", mock.Anything, "idea-1", "", "https://cdn/preview.mp4", mock.Anything).Return(nil)
	ideas.On("UpdateWorkflow", mock.Anything, "idea-1", model.StatusPreviewReady, model.ApprovalPreviewReady, "").Return(nil)

	err := uc.HandleVideoReady(context.Background(), &dto.VideoReadyCallback{
		VideoIdeaID:     "idea-1",
		PreviewVideoURL: "https://cdn/preview.mp4",
	})
	require.NoError(t, err)
	ideas.AssertExpectations(t)
}

func TestHandleVideoReadyLateCallbackIgnored(t *testing.T) {
	ideas, _, _, _, uc := newVideoIdeaFixture()

	ideas.On("GetByID", mock.Anything, "idea-1").Return(&model.VideoIdea{
		ID: "idea-1", UserID: "alice",
		Status: model.StatusPublished, ApprovalStatus: model.ApprovalPublished,
	}, nil)

	err := uc.HandleVideoReady(context.Background(), &dto.VideoReadyCallback{
		VideoIdeaID: "idea-1",
		FinalOutput: "https://cdn/final.mp4",
	})
	require.NoError(t, err)
	ideas.AssertNotCalled(t, "SetGenerated", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	ideas.AssertNotCalled(t, "UpdateWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleVideoReadyUnknownIdea(t *testing.T) {
	ideas, _, _, _, uc := newVideoIdeaFixture()
	ideas.On("GetByID", mock.Anything, "missing").Return(nil, model.ErrVideoIdeaNotFound)

	err := uc.HandleVideoReady(context.Background(), &dto.VideoReadyCallback{VideoIdeaID: "missing", FinalOutput: "x"})
	assert.ErrorIs(t, err, model.ErrVideoIdeaNotFound)
}

func TestGetEnforcesOwnership(t *testing.T) {
	ideas, _, _, _, uc := newVideoIdeaFixture()
	ideas.On("GetByID", mock.Anything, "idea-1").Return(&model.VideoIdea{ID: "idea-1", UserID: "alice"}, nil)

	_, err := uc.Get(context.Background(), "mallory", "idea-1")
	assert.ErrorIs(t, err, model.ErrVideoIdeaNotFound)
}
