package usecase

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"socialcast/domain/model"
	"socialcast/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func videoServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write([]byte("fake video bytes"))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func baseIdea(videoURL string, platforms ...model.Platform) *model.VideoIdea {
	return &model.VideoIdea{
		ID:                "idea-1",
		UserID:            "alice",
		Idea:              "a video about gophers",
		Caption:           "gophers!",
		SelectedPlatforms: platforms,
		VideoURL:          videoURL,
		Status:            model.StatusCompleted,
		ApprovalStatus:    model.ApprovalApproved,
		Uploads:           map[model.Platform]model.PlatformUpload{},
	}
}

func newPublishFixture(user model.User, idea *model.VideoIdea, uploaders ...repository.IPlatformUploader) (*mockVideoIdeaRepo, *mockUserRepo, *mockCredentialRepo, *mockRefresher, IPublishUsecase) {
	ideas := new(mockVideoIdeaRepo)
	users := new(mockUserRepo)
	creds := new(mockCredentialRepo)
	refresher := new(mockRefresher)

	ideas.On("GetByID", mock.Anything, idea.ID).Return(idea, nil)
	users.On("GetByUserName", mock.Anything, idea.UserID).Return(user, nil)

	uc := NewPublishUsecase(ideas, users, creds, refresher, uploaders, nil, nil, nil)
	return ideas, users, creds, refresher, uc
}

func TestPublishTierGateBlocksWholeCall(t *testing.T) {
	idea := baseIdea("http://example.com/v.mp4", model.PlatformYouTube, model.PlatformTikTok)
	ytUploader := &fakeUploader{platform: model.PlatformYouTube, result: &repository.UploadResult{}}
	ttUploader := &fakeUploader{platform: model.PlatformTikTok, result: &repository.UploadResult{}}

	ideas, _, creds, _, uc := newPublishFixture(model.User{UserName: "alice", Tier: model.TierFree}, idea, ytUploader, ttUploader)
	creds.On("Get", mock.Anything, "alice", model.PlatformYouTube).Return(&model.Credential{AccessToken: "tok"}, nil)

	_, err := uc.Publish(context.Background(), "alice", "idea-1")

	var precondition *model.PreconditionError
	require.ErrorAs(t, err, &precondition)
	assert.Contains(t, precondition.Platforms, model.PlatformTikTok)
	assert.Zero(t, ytUploader.calls, "no upload may start when any precondition fails")
	assert.Zero(t, ttUploader.calls)
	ideas.AssertNotCalled(t, "InitUploads", mock.Anything, mock.Anything, mock.Anything)
}

func TestPublishMissingCredentialBlocksWholeCall(t *testing.T) {
	idea := baseIdea("http://example.com/v.mp4", model.PlatformYouTube, model.PlatformTikTok)
	ytUploader := &fakeUploader{platform: model.PlatformYouTube, result: &repository.UploadResult{}}
	ttUploader := &fakeUploader{platform: model.PlatformTikTok, result: &repository.UploadResult{}}

	_, _, creds, _, uc := newPublishFixture(model.User{UserName: "alice", Tier: model.TierPro}, idea, ytUploader, ttUploader)
	creds.On("Get", mock.Anything, "alice", model.PlatformYouTube).Return(&model.Credential{AccessToken: "tok"}, nil)
	creds.On("Get", mock.Anything, "alice", model.PlatformTikTok).Return(nil, model.ErrCredentialNotFound)

	_, err := uc.Publish(context.Background(), "alice", "idea-1")

	var precondition *model.PreconditionError
	require.ErrorAs(t, err, &precondition)
	assert.Equal(t, []model.Platform{model.PlatformTikTok}, precondition.Platforms)
	assert.Zero(t, ytUploader.calls)
}

func TestPublishRequiresClearedReview(t *testing.T) {
	for _, state := range []model.ApprovalStatus{
		model.ApprovalPending,
		model.ApprovalPreviewReady,
		model.ApprovalReadyForApproval,
		model.ApprovalRejected,
	} {
		t.Run(string(state), func(t *testing.T) {
			idea := baseIdea("http://example.com/v.mp4", model.PlatformYouTube)
			idea.ApprovalStatus = state
			uploader := &fakeUploader{platform: model.PlatformYouTube, result: &repository.UploadResult{}}

			ideas, _, _, _, uc := newPublishFixture(model.User{UserName: "alice", Tier: model.TierPro}, idea, uploader)

			_, err := uc.Publish(context.Background(), "alice", "idea-1")

			var transition *model.InvalidTransitionError
			require.ErrorAs(t, err, &transition)
			assert.Equal(t, state, transition.From)
			assert.Zero(t, uploader.calls, "no upload may start before approval")
			ideas.AssertNotCalled(t, "InitUploads", mock.Anything, mock.Anything, mock.Anything)
			ideas.AssertNotCalled(t, "UpdateWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestPublishEmptyAccessTokenBlocksWholeCall(t *testing.T) {
	idea := baseIdea("http://example.com/v.mp4", model.PlatformYouTube, model.PlatformInstagram)
	ytUploader := &fakeUploader{platform: model.PlatformYouTube, result: &repository.UploadResult{}}
	igUploader := &fakeUploader{platform: model.PlatformInstagram, result: &repository.UploadResult{}}

	ideas, _, creds, _, uc := newPublishFixture(model.User{UserName: "alice", Tier: model.TierPro}, idea, ytUploader, igUploader)
	creds.On("Get", mock.Anything, "alice", model.PlatformYouTube).Return(&model.Credential{AccessToken: "tok"}, nil)
	// A row without an access token counts as disconnected.
	creds.On("Get", mock.Anything, "alice", model.PlatformInstagram).Return(&model.Credential{}, nil)

	_, err := uc.Publish(context.Background(), "alice", "idea-1")

	var precondition *model.PreconditionError
	require.ErrorAs(t, err, &precondition)
	assert.Equal(t, []model.Platform{model.PlatformInstagram}, precondition.Platforms)
	assert.Zero(t, ytUploader.calls)
	assert.Zero(t, igUploader.calls)
	ideas.AssertNotCalled(t, "InitUploads", mock.Anything, mock.Anything, mock.Anything)
}

func TestPublishWithoutRenderedVideo(t *testing.T) {
	idea := baseIdea("", model.PlatformYouTube)
	uploader := &fakeUploader{platform: model.PlatformYouTube, result: &repository.UploadResult{}}

	_, _, _, _, uc := newPublishFixture(model.User{UserName: "alice", Tier: model.TierPro}, idea, uploader)

	_, err := uc.Publish(context.Background(), "alice", "idea-1")
	var precondition *model.PreconditionError
	require.ErrorAs(t, err, &precondition)
	assert.Zero(t, uploader.calls)
}

func TestPublishOwnershipMismatchReadsAsNotFound(t *testing.T) {
	idea := baseIdea("http://example.com/v.mp4", model.PlatformYouTube)
	_, _, _, _, uc := newPublishFixture(model.User{UserName: "alice", Tier: model.TierPro}, idea)

	_, err := uc.Publish(context.Background(), "mallory", "idea-1")
	assert.ErrorIs(t, err, model.ErrVideoIdeaNotFound)
}

func TestPublishPartialSuccess(t *testing.T) {
	ts := videoServer(t)
	idea := baseIdea(ts.URL, model.PlatformYouTube, model.PlatformInstagram)
	ytUploader := &fakeUploader{platform: model.PlatformYouTube, result: &repository.UploadResult{
		PlatformVideoID: "yt-123",
		PublicURL:       "https://www.youtube.com/watch?v=yt-123",
	}}
	igUploader := &fakeUploader{platform: model.PlatformInstagram, err: errors.New("container processing failed")}

	ideas, _, creds, refresher, uc := newPublishFixture(model.User{UserName: "alice", Tier: model.TierPro}, idea, ytUploader, igUploader)
	creds.On("Get", mock.Anything, "alice", mock.Anything).Return(&model.Credential{AccessToken: "tok"}, nil)
	refresher.On("EnsureFresh", mock.Anything, "alice", mock.Anything).Return(&model.Credential{AccessToken: "tok"}, nil)
	ideas.On("InitUploads", mock.Anything, "idea-1", mock.Anything).Return(nil)
	ideas.On("UpdateWorkflow", mock.Anything, "idea-1", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ideas.On("SetPlatformUpload", mock.Anything, "idea-1", mock.Anything, mock.Anything).Return(nil)

	resp, err := uc.Publish(context.Background(), "alice", "idea-1")
	require.NoError(t, err)

	assert.Equal(t, string(model.StatusPartialSuccess), resp.Status)
	require.Len(t, resp.Results, 2)
	byPlatform := map[string]string{}
	for _, r := range resp.Results {
		byPlatform[r.Platform] = r.State
	}
	assert.Equal(t, string(model.UploadCompleted), byPlatform["youtube"])
	assert.Equal(t, string(model.UploadFailed), byPlatform["instagram"])
	assert.Equal(t, 1, ytUploader.calls)
	assert.Equal(t, 1, igUploader.calls)

	ideas.AssertCalled(t, "UpdateWorkflow", mock.Anything, "idea-1",
		model.StatusPartialSuccess, model.ApprovalPublished, mock.Anything)
}

func TestPublishAllFail(t *testing.T) {
	ts := videoServer(t)
	idea := baseIdea(ts.URL, model.PlatformYouTube)
	uploader := &fakeUploader{platform: model.PlatformYouTube, err: errors.New("quota exceeded")}

	ideas, _, creds, refresher, uc := newPublishFixture(model.User{UserName: "alice", Tier: model.TierPro}, idea, uploader)
	creds.On("Get", mock.Anything, "alice", mock.Anything).Return(&model.Credential{AccessToken: "tok"}, nil)
	refresher.On("EnsureFresh", mock.Anything, "alice", mock.Anything).Return(&model.Credential{}, nil)
	ideas.On("InitUploads", mock.Anything, "idea-1", mock.Anything).Return(nil)
	ideas.On("UpdateWorkflow", mock.Anything, "idea-1", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ideas.On("SetPlatformUpload", mock.Anything, "idea-1", mock.Anything, mock.Anything).Return(nil)

	resp, err := uc.Publish(context.Background(), "alice", "idea-1")
	require.NoError(t, err)

	assert.Equal(t, string(model.StatusFailed), resp.Status)
	ideas.AssertCalled(t, "UpdateWorkflow", mock.Anything, "idea-1",
		model.StatusFailed, model.ApprovalFailed, mock.Anything)
}

func TestPublishAggregateWriteFailureIsFatal(t *testing.T) {
	ts := videoServer(t)
	idea := baseIdea(ts.URL, model.PlatformYouTube)
	uploader := &fakeUploader{platform: model.PlatformYouTube, result: &repository.UploadResult{PlatformVideoID: "yt-1"}}

	ideas, _, creds, refresher, uc := newPublishFixture(model.User{UserName: "alice", Tier: model.TierPro}, idea, uploader)
	creds.On("Get", mock.Anything, "alice", mock.Anything).Return(&model.Credential{AccessToken: "tok"}, nil)
	refresher.On("EnsureFresh", mock.Anything, "alice", mock.Anything).Return(&model.Credential{AccessToken: "tok"}, nil)
	ideas.On("InitUploads", mock.Anything, "idea-1", mock.Anything).Return(nil)
	ideas.On("SetPlatformUpload", mock.Anything, "idea-1", mock.Anything, mock.Anything).Return(nil)
	ideas.On("UpdateWorkflow", mock.Anything, "idea-1", model.StatusPublishing, mock.Anything, mock.Anything).Return(nil)
	dbErr := errors.New("connection reset")
	ideas.On("UpdateWorkflow", mock.Anything, "idea-1", model.StatusPublished, model.ApprovalPublished, mock.Anything).Return(dbErr)

	resp, err := uc.Publish(context.Background(), "alice", "idea-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	assert.Nil(t, resp)
	assert.Equal(t, 1, uploader.calls, "the upload itself completed before the write failed")
}

func TestPublishReauthRequiredFailsThatPlatformOnly(t *testing.T) {
	ts := videoServer(t)
	idea := baseIdea(ts.URL, model.PlatformYouTube, model.PlatformInstagram)
	ytUploader := &fakeUploader{platform: model.PlatformYouTube, result: &repository.UploadResult{PlatformVideoID: "yt-1"}}
	igUploader := &fakeUploader{platform: model.PlatformInstagram, result: &repository.UploadResult{PlatformVideoID: "ig-1"}}

	ideas, _, creds, refresher, uc := newPublishFixture(model.User{UserName: "alice", Tier: model.TierPro}, idea, ytUploader, igUploader)
	creds.On("Get", mock.Anything, "alice", mock.Anything).Return(&model.Credential{AccessToken: "tok"}, nil)
	refresher.On("EnsureFresh", mock.Anything, "alice", model.PlatformYouTube).Return(nil, model.ErrReauthRequired)
	refresher.On("EnsureFresh", mock.Anything, "alice", model.PlatformInstagram).Return(&model.Credential{}, nil)
	ideas.On("InitUploads", mock.Anything, "idea-1", mock.Anything).Return(nil)
	ideas.On("UpdateWorkflow", mock.Anything, "idea-1", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ideas.On("SetPlatformUpload", mock.Anything, "idea-1", mock.Anything, mock.Anything).Return(nil)

	resp, err := uc.Publish(context.Background(), "alice", "idea-1")
	require.NoError(t, err)

	assert.Equal(t, string(model.StatusPartialSuccess), resp.Status)
	assert.Zero(t, ytUploader.calls, "upload must not run without a fresh token")
	assert.Equal(t, 1, igUploader.calls)
}

func TestRetryRerunsOnlyFailedPlatforms(t *testing.T) {
	ts := videoServer(t)
	idea := baseIdea(ts.URL, model.PlatformYouTube, model.PlatformInstagram)
	idea.Uploads = map[model.Platform]model.PlatformUpload{
		model.PlatformYouTube:   {State: model.UploadCompleted, Link: "https://www.youtube.com/watch?v=yt-1"},
		model.PlatformInstagram: {State: model.UploadFailed, Error: "timeout"},
	}
	ytUploader := &fakeUploader{platform: model.PlatformYouTube, result: &repository.UploadResult{}}
	igUploader := &fakeUploader{platform: model.PlatformInstagram, result: &repository.UploadResult{PlatformVideoID: "ig-2"}}

	ideas, _, creds, refresher, uc := newPublishFixture(model.User{UserName: "alice", Tier: model.TierPro}, idea, ytUploader, igUploader)
	creds.On("Get", mock.Anything, "alice", model.PlatformInstagram).Return(&model.Credential{AccessToken: "tok"}, nil)
	refresher.On("EnsureFresh", mock.Anything, "alice", model.PlatformInstagram).Return(&model.Credential{}, nil)
	ideas.On("InitUploads", mock.Anything, "idea-1", []model.Platform{model.PlatformInstagram}).Return(nil)
	ideas.On("UpdateWorkflow", mock.Anything, "idea-1", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ideas.On("SetPlatformUpload", mock.Anything, "idea-1", model.PlatformInstagram, mock.Anything).Return(nil)

	resp, err := uc.Retry(context.Background(), "alice", "idea-1", nil)
	require.NoError(t, err)

	assert.Zero(t, ytUploader.calls, "completed platform must not be re-uploaded")
	assert.Equal(t, 1, igUploader.calls)
	assert.Equal(t, string(model.StatusPublished), resp.Status, "a successful retry completes the publish")
}

func TestRetryWithNothingFailed(t *testing.T) {
	idea := baseIdea("http://example.com/v.mp4", model.PlatformYouTube)
	idea.Uploads = map[model.Platform]model.PlatformUpload{
		model.PlatformYouTube: {State: model.UploadCompleted},
	}
	_, _, _, _, uc := newPublishFixture(model.User{UserName: "alice", Tier: model.TierPro}, idea)

	_, err := uc.Retry(context.Background(), "alice", "idea-1", nil)
	var precondition *model.PreconditionError
	assert.ErrorAs(t, err, &precondition)
}
