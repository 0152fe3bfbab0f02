package persistence

import (
	"context"
	"testing"
	"time"

	"socialcast/domain/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var credentialColumns = []string{"id", "user_id", "platform", "access_token", "refresh_token", "expires_at", "scopes", "external_id", "account_name", "created_at", "updated_at"}

func TestCredentialUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewCredentialRepository(db)

	mock.ExpectExec("INSERT INTO credentials").
		WithArgs("alice", model.PlatformYouTube, "access", "refresh", sqlmock.AnyArg(), "", "chan-1", "Alice Channel", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	expiry := time.Now().Add(time.Hour)
	err = repo.Upsert(context.Background(), &model.Credential{
		UserID:       "alice",
		Platform:     model.PlatformYouTube,
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    &expiry,
		ExternalID:   "chan-1",
		AccountName:  "Alice Channel",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewCredentialRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(credentialColumns).
		AddRow(int64(7), "alice", "youtube", "access", "refresh", now.Add(time.Hour), "upload", "chan-1", "Alice Channel", now, now)
	mock.ExpectQuery("SELECT (.+) FROM credentials WHERE user_id=\\$1 AND platform=\\$2").
		WithArgs("alice", model.PlatformYouTube).
		WillReturnRows(rows)

	cred, err := repo.Get(context.Background(), "alice", model.PlatformYouTube)
	require.NoError(t, err)
	assert.Equal(t, int64(7), cred.ID)
	assert.Equal(t, "refresh", cred.RefreshToken)
	require.NotNil(t, cred.ExpiresAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewCredentialRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM credentials").
		WithArgs("alice", model.PlatformTikTok).
		WillReturnRows(sqlmock.NewRows(credentialColumns))

	_, err = repo.Get(context.Background(), "alice", model.PlatformTikTok)
	assert.ErrorIs(t, err, model.ErrCredentialNotFound)
}

func TestCredentialGetNullableColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewCredentialRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(credentialColumns).
		AddRow(int64(8), "alice", "tiktok", "access", nil, nil, nil, nil, nil, now, now)
	mock.ExpectQuery("SELECT (.+) FROM credentials").
		WithArgs("alice", model.PlatformTikTok).
		WillReturnRows(rows)

	cred, err := repo.Get(context.Background(), "alice", model.PlatformTikTok)
	require.NoError(t, err)
	assert.Empty(t, cred.RefreshToken)
	assert.Nil(t, cred.ExpiresAt)
}

func TestCredentialDeleteIdempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewCredentialRepository(db)

	mock.ExpectExec("DELETE FROM credentials").
		WithArgs("alice", model.PlatformYouTube).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Delete(context.Background(), "alice", model.PlatformYouTube))
}

func TestCredentialListByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewCredentialRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(credentialColumns).
		AddRow(int64(1), "alice", "tiktok", "a", nil, nil, nil, nil, nil, now, now).
		AddRow(int64(2), "alice", "youtube", "b", "r", nil, nil, nil, nil, now, now)
	mock.ExpectQuery("SELECT (.+) FROM credentials WHERE user_id=\\$1").
		WithArgs("alice").
		WillReturnRows(rows)

	list, err := repo.ListByUser(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, model.PlatformTikTok, list[0].Platform)
	assert.Equal(t, model.PlatformYouTube, list[1].Platform)
}
