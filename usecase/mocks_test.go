package usecase

import (
	"context"

	"socialcast/domain/dto"
	"socialcast/domain/model"
	"socialcast/domain/repository"

	"github.com/stretchr/testify/mock"
)

type mockVideoIdeaRepo struct{ mock.Mock }

func (m *mockVideoIdeaRepo) Create(ctx context.Context, idea *model.VideoIdea) error {
	return m.Called(ctx, idea).Error(0)
}

func (m *mockVideoIdeaRepo) GetByID(ctx context.Context, id string) (*model.VideoIdea, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VideoIdea), args.Error(1)
}

func (m *mockVideoIdeaRepo) ListByUser(ctx context.Context, userID string) ([]*model.VideoIdea, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.VideoIdea), args.Error(1)
}

func (m *mockVideoIdeaRepo) UpdateWorkflow(ctx context.Context, id string, status model.VideoIdeaStatus, approval model.ApprovalStatus, reason string) error {
	return m.Called(ctx, id, status, approval, reason).Error(0)
}

func (m *mockVideoIdeaRepo) SetGenerated(ctx context.Context, id string, videoURL, previewURL string, meta repository.GeneratedMetadata) error {
	return m.Called(ctx, id, videoURL, previewURL, meta).Error(0)
}

func (m *mockVideoIdeaRepo) InitUploads(ctx context.Context, id string, platforms []model.Platform) error {
	return m.Called(ctx, id, platforms).Error(0)
}

func (m *mockVideoIdeaRepo) SetPlatformUpload(ctx context.Context, id string, platform model.Platform, up model.PlatformUpload) error {
	return m.Called(ctx, id, platform, up).Error(0)
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) GetById(ctx context.Context, id int64) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockUserRepo) GetByUserName(ctx context.Context, userName string) (model.User, error) {
	args := m.Called(ctx, userName)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockUserRepo) CreateUser(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) AdjustCredits(ctx context.Context, userID string, delta int) (int, error) {
	args := m.Called(ctx, userID, delta)
	return args.Int(0), args.Error(1)
}

type mockCredentialRepo struct{ mock.Mock }

func (m *mockCredentialRepo) Get(ctx context.Context, userID string, platform model.Platform) (*model.Credential, error) {
	args := m.Called(ctx, userID, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Credential), args.Error(1)
}

func (m *mockCredentialRepo) Upsert(ctx context.Context, cred *model.Credential) error {
	return m.Called(ctx, cred).Error(0)
}

func (m *mockCredentialRepo) Delete(ctx context.Context, userID string, platform model.Platform) error {
	return m.Called(ctx, userID, platform).Error(0)
}

func (m *mockCredentialRepo) ListByUser(ctx context.Context, userID string) ([]*model.Credential, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Credential), args.Error(1)
}

type mockRefresher struct{ mock.Mock }

func (m *mockRefresher) EnsureFresh(ctx context.Context, userID string, platform model.Platform) (*model.Credential, error) {
	args := m.Called(ctx, userID, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Credential), args.Error(1)
}

// fakeUploader returns a canned result or error and counts invocations.
type fakeUploader struct {
	platform model.Platform
	result   *repository.UploadResult
	err      error
	calls    int
}

func (f *fakeUploader) Platform() model.Platform { return f.platform }

func (f *fakeUploader) Upload(ctx context.Context, video repository.UploadSource, meta repository.UploadMetadata, cred *model.Credential) (*repository.UploadResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type mockEventPublisher struct{ mock.Mock }

func (m *mockEventPublisher) PublishEvent(ctx context.Context, evt *repository.PublishEvent) error {
	return m.Called(ctx, evt).Error(0)
}

type mockPipeline struct{ mock.Mock }

func (m *mockPipeline) Generate(ctx context.Context, req *repository.GenerationRequest) (*repository.GenerationResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.GenerationResponse), args.Error(1)
}

type mockPublishUsecase struct{ mock.Mock }

func (m *mockPublishUsecase) Publish(ctx context.Context, userID, videoIdeaID string) (*dto.PublishResponse, error) {
	args := m.Called(ctx, userID, videoIdeaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PublishResponse), args.Error(1)
}

func (m *mockPublishUsecase) Retry(ctx context.Context, userID, videoIdeaID string, platforms []string) (*dto.PublishResponse, error) {
	args := m.Called(ctx, userID, videoIdeaID, platforms)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PublishResponse), args.Error(1)
}

// noopCache satisfies the cache interfaces without a backing store.
type noopCache struct{}

func (noopCache) Get(ctx context.Context, id string) (*model.VideoIdea, bool) { return nil, false }
func (noopCache) Set(ctx context.Context, idea *model.VideoIdea)              {}
func (noopCache) Invalidate(ctx context.Context, id string)                   {}
