package usecase

import (
	"context"
	"errors"
	"time"

	"socialcast/domain/model"
	"socialcast/domain/repository"
	"socialcast/infrastructure/logger"

	"golang.org/x/oauth2"
)

// ConnectionStatus is one platform's row in the connected-accounts view.
type ConnectionStatus struct {
	Platform    model.Platform `json:"platform"`
	Connected   bool           `json:"connected"`
	AccountName string         `json:"account_name,omitempty"`
	ExpiresAt   *time.Time     `json:"expires_at,omitempty"`
	MinimumTier model.Tier     `json:"minimum_tier"`
	TierAllowed bool           `json:"tier_allowed"`
}

// ICredentialUsecase manages stored OAuth grants from the connect and
// disconnect flows.
type ICredentialUsecase interface {
	Connect(ctx context.Context, userID string, platform model.Platform, token *oauth2.Token, externalID, accountName string) error
	Disconnect(ctx context.Context, userID string, platform model.Platform) error
	Status(ctx context.Context, userID string) ([]ConnectionStatus, error)
}

type CredentialUsecase struct {
	creds repository.ICredential
	users repository.IUser
}

func NewCredentialUsecase(creds repository.ICredential, users repository.IUser) ICredentialUsecase {
	return &CredentialUsecase{creds: creds, users: users}
}

func (uc *CredentialUsecase) Connect(ctx context.Context, userID string, platform model.Platform, token *oauth2.Token, externalID, accountName string) error {
	cred := &model.Credential{
		UserID:       userID,
		Platform:     platform,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExternalID:   externalID,
		AccountName:  accountName,
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		cred.ExpiresAt = &expiry
	}
	if err := uc.creds.Upsert(ctx, cred); err != nil {
		return err
	}
	logger.GetLogger().
		WithField("user_id", userID).
		WithField("platform", platform).
		Info("platform account connected")
	return nil
}

func (uc *CredentialUsecase) Disconnect(ctx context.Context, userID string, platform model.Platform) error {
	if err := uc.creds.Delete(ctx, userID, platform); err != nil {
		return err
	}
	logger.GetLogger().
		WithField("user_id", userID).
		WithField("platform", platform).
		Info("platform account disconnected")
	return nil
}

func (uc *CredentialUsecase) Status(ctx context.Context, userID string) ([]ConnectionStatus, error) {
	user, err := uc.users.GetByUserName(ctx, userID)
	if err != nil {
		return nil, err
	}
	connected := map[model.Platform]*model.Credential{}
	creds, err := uc.creds.ListByUser(ctx, userID)
	if err != nil && !errors.Is(err, model.ErrCredentialNotFound) {
		return nil, err
	}
	for _, c := range creds {
		connected[c.Platform] = c
	}

	ordered := []model.Platform{model.PlatformYouTube, model.PlatformTikTok, model.PlatformInstagram, model.PlatformFacebook}
	out := make([]ConnectionStatus, 0, len(ordered))
	for _, p := range ordered {
		capability := model.PlatformCapabilities[p]
		status := ConnectionStatus{
			Platform:    p,
			MinimumTier: capability.MinimumTier,
			TierAllowed: model.CanAccess(user.Tier, p),
		}
		if c, ok := connected[p]; ok {
			status.Connected = true
			status.AccountName = c.AccountName
			status.ExpiresAt = c.ExpiresAt
		}
		out = append(out, status)
	}
	return out, nil
}
