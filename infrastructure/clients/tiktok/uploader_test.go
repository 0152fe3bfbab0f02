package tiktok

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"socialcast/domain/model"
	"socialcast/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadSingleChunkFlow(t *testing.T) {
	var initBody initRequest
	var transferred []byte
	var rangeHeader string

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/post/publish/video/init/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &initBody))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]string{
				"publish_id": "pub-1",
				"upload_url": server.URL + "/upload",
			},
		})
	})
	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		rangeHeader = r.Header.Get("Content-Range")
		transferred, _ = io.ReadAll(r.Body)
	})
	mux.HandleFunc("/post/publish/status/fetch/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]string{"status": "PUBLISH_COMPLETE", "share_url": "https://www.tiktok.com/@alice/video/1"},
		})
	})

	u := NewUploaderWithBase(server.Client(), server.URL)
	payload := []byte("tiktok video payload")
	result, err := u.Upload(context.Background(),
		repository.UploadSource{Bytes: payload},
		repository.UploadMetadata{Title: "dance", Tier: model.TierPremium},
		&model.Credential{AccessToken: "tok", AccountName: "alice"})

	require.NoError(t, err)
	assert.Equal(t, "pub-1", result.PlatformVideoID)
	assert.Equal(t, "https://www.tiktok.com/@alice/video/1", result.PublicURL)

	// Whole video declared as one chunk
	assert.Equal(t, len(payload), initBody.SourceInfo.VideoSize)
	assert.Equal(t, len(payload), initBody.SourceInfo.ChunkSize)
	assert.Equal(t, 1, initBody.SourceInfo.TotalChunkCount)
	assert.Equal(t, fmt.Sprintf("bytes 0-%d/%d", len(payload)-1, len(payload)), rangeHeader)
	assert.Equal(t, payload, transferred)
}

func TestUploadRejectsFreeTier(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request may reach the platform for a blocked tier")
	}))
	defer server.Close()

	u := NewUploaderWithBase(server.Client(), server.URL)
	_, err := u.Upload(context.Background(),
		repository.UploadSource{Bytes: []byte("v")},
		repository.UploadMetadata{Title: "t", Tier: model.TierFree},
		&model.Credential{AccessToken: "tok"})

	var uploadErr *model.UploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Equal(t, "init", uploadErr.Step)
}

func TestUploadInitError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"code": "spam_risk_too_many_posts", "message": "daily post cap"},
		})
	}))
	defer server.Close()

	u := NewUploaderWithBase(server.Client(), server.URL)
	_, err := u.Upload(context.Background(),
		repository.UploadSource{Bytes: []byte("v")},
		repository.UploadMetadata{Title: "t", Tier: model.TierPro},
		&model.Credential{AccessToken: "tok"})

	var uploadErr *model.UploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Equal(t, model.PlatformTikTok, uploadErr.Platform)
	assert.Contains(t, uploadErr.Error(), "spam_risk_too_many_posts")
}

func TestUploadFallsBackToProfileLink(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/post/publish/video/init/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]string{"publish_id": "pub-2", "upload_url": server.URL + "/upload"},
		})
	})
	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/post/publish/status/fetch/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]string{"status": "PROCESSING_DOWNLOAD"},
		})
	})

	u := NewUploaderWithBase(server.Client(), server.URL)
	result, err := u.Upload(context.Background(),
		repository.UploadSource{Bytes: []byte("v")},
		repository.UploadMetadata{Title: "t", Tier: model.TierPremium},
		&model.Credential{AccessToken: "tok", AccountName: "alice"})

	require.NoError(t, err)
	assert.Equal(t, "https://www.tiktok.com/@alice", result.PublicURL)
}
