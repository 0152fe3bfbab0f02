package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"socialcast/domain/model"
	"socialcast/domain/repository"
	"socialcast/infrastructure/logger"

	"golang.org/x/oauth2"
)

// expirySkew is the window before the recorded expiry in which a token is
// treated as stale, absorbing clock drift and in-flight upload time.
const expirySkew = 5 * time.Minute

// ITokenRefresher hands out access tokens that are guaranteed usable for the
// next few minutes, refreshing transparently when the platform supports it.
type ITokenRefresher interface {
	EnsureFresh(ctx context.Context, userID string, platform model.Platform) (*model.Credential, error)
}

type TokenRefresher struct {
	creds   repository.ICredential
	configs map[model.Platform]*oauth2.Config
	now     func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewTokenRefresher(creds repository.ICredential, configs map[model.Platform]*oauth2.Config) *TokenRefresher {
	return &TokenRefresher{
		creds:   creds,
		configs: configs,
		now:     time.Now,
		locks:   make(map[string]*sync.Mutex),
	}
}

// lockFor serializes refreshes per (user, platform) so concurrent publishes
// perform at most one token-endpoint round trip.
func (r *TokenRefresher) lockFor(userID string, platform model.Platform) *sync.Mutex {
	key := userID + ":" + string(platform)
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[key]
	if !ok {
		l = &sync.Mutex{}
		r.locks[key] = l
	}
	return l
}

func (r *TokenRefresher) EnsureFresh(ctx context.Context, userID string, platform model.Platform) (*model.Credential, error) {
	cred, err := r.creds.Get(ctx, userID, platform)
	if err != nil {
		return nil, err
	}
	if !cred.ExpiresWithin(expirySkew, r.now()) {
		return cred, nil
	}

	l := r.lockFor(userID, platform)
	l.Lock()
	defer l.Unlock()

	// Another goroutine may have refreshed while we waited on the lock.
	cred, err = r.creds.Get(ctx, userID, platform)
	if err != nil {
		return nil, err
	}
	if !cred.ExpiresWithin(expirySkew, r.now()) {
		return cred, nil
	}

	if !cred.Refreshable() {
		return nil, fmt.Errorf("%s token expired and cannot be refreshed: %w", platform, model.ErrReauthRequired)
	}

	conf, ok := r.configs[platform]
	if !ok || conf == nil {
		return nil, fmt.Errorf("no oauth client configured for %s: %w", platform, model.ErrRefreshFailed)
	}

	tok, err := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: cred.RefreshToken}).Token()
	if err != nil {
		return nil, r.classifyRefreshError(ctx, cred, err)
	}

	cred.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		cred.RefreshToken = tok.RefreshToken
	}
	if !tok.Expiry.IsZero() {
		expiry := tok.Expiry
		cred.ExpiresAt = &expiry
	}
	cred.UpdatedAt = r.now()
	if err := r.creds.Upsert(ctx, cred); err != nil {
		return nil, fmt.Errorf("persisting refreshed token: %w", err)
	}

	logger.GetLogger().
		WithField("user_id", userID).
		WithField("platform", platform).
		Info("access token refreshed")
	return cred, nil
}

// classifyRefreshError separates a revoked grant (re-auth, credential purged)
// from a transient token-endpoint failure (retry later, credential kept).
func (r *TokenRefresher) classifyRefreshError(ctx context.Context, cred *model.Credential, err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		revoked := strings.Contains(string(rerr.Body), "invalid_grant")
		if rerr.Response != nil && rerr.Response.StatusCode == 400 {
			revoked = true
		}
		if revoked {
			if delErr := r.creds.Delete(ctx, cred.UserID, cred.Platform); delErr != nil {
				logger.GetLogger().WithField("error", delErr).Error("deleting revoked credential")
			}
			logger.GetLogger().
				WithField("user_id", cred.UserID).
				WithField("platform", cred.Platform).
				Warn("refresh token rejected, credential removed")
			return fmt.Errorf("%s grant revoked: %w", cred.Platform, model.ErrReauthRequired)
		}
	}
	return fmt.Errorf("%s token refresh: %v: %w", cred.Platform, err, model.ErrRefreshFailed)
}
