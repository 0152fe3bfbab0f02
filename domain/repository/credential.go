package repository

import (
	"context"

	"socialcast/domain/model"
)

// ICredential is the credential store: one OAuth grant per (user, platform).
type ICredential interface {
	// Get returns model.ErrCredentialNotFound when no row exists.
	Get(ctx context.Context, userID string, platform model.Platform) (*model.Credential, error)
	// Upsert overwrites on conflict of (user, platform).
	Upsert(ctx context.Context, cred *model.Credential) error
	// Delete is idempotent; deleting a missing credential is not an error.
	Delete(ctx context.Context, userID string, platform model.Platform) error
	ListByUser(ctx context.Context, userID string) ([]*model.Credential, error)
}
