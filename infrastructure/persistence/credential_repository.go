package persistence

import (
	"context"
	"database/sql"
	"time"

	"socialcast/domain/model"
)

// CredentialRepository stores OAuth credentials in PostgreSQL with composite
// uniqueness on (user_id, platform).
type CredentialRepository struct{ db *sql.DB }

func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

func (r *CredentialRepository) Upsert(ctx context.Context, c *model.Credential) error {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	q := `INSERT INTO credentials (user_id, platform, access_token, refresh_token, expires_at, scopes, external_id, account_name, created_at, updated_at)
		  VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		  ON CONFLICT (user_id, platform) DO UPDATE SET
			access_token=EXCLUDED.access_token,
			refresh_token=EXCLUDED.refresh_token,
			expires_at=EXCLUDED.expires_at,
			scopes=EXCLUDED.scopes,
			external_id=EXCLUDED.external_id,
			account_name=EXCLUDED.account_name,
			updated_at=EXCLUDED.updated_at`
	_, err := r.db.ExecContext(ctx, q, c.UserID, c.Platform, c.AccessToken, c.RefreshToken, c.ExpiresAt, c.Scopes, c.ExternalID, c.AccountName, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *CredentialRepository) Get(ctx context.Context, userID string, platform model.Platform) (*model.Credential, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, user_id, platform, access_token, refresh_token, expires_at, scopes, external_id, account_name, created_at, updated_at FROM credentials WHERE user_id=$1 AND platform=$2`, userID, platform)
	cred, err := scanCredential(row)
	if err == sql.ErrNoRows {
		return nil, model.ErrCredentialNotFound
	}
	return cred, err
}

func (r *CredentialRepository) Delete(ctx context.Context, userID string, platform model.Platform) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM credentials WHERE user_id=$1 AND platform=$2`, userID, platform)
	return err
}

func (r *CredentialRepository) ListByUser(ctx context.Context, userID string) ([]*model.Credential, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, platform, access_token, refresh_token, expires_at, scopes, external_id, account_name, created_at, updated_at FROM credentials WHERE user_id=$1 ORDER BY platform`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*model.Credential
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, cred)
	}
	return list, rows.Err()
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanCredential(row rowScanner) (*model.Credential, error) {
	cred := &model.Credential{}
	var exp sql.NullTime
	var refresh, scopes, externalID, accountName sql.NullString
	if err := row.Scan(&cred.ID, &cred.UserID, &cred.Platform, &cred.AccessToken, &refresh, &exp, &scopes, &externalID, &accountName, &cred.CreatedAt, &cred.UpdatedAt); err != nil {
		return nil, err
	}
	if exp.Valid {
		t := exp.Time
		cred.ExpiresAt = &t
	}
	cred.RefreshToken = refresh.String
	cred.Scopes = scopes.String
	cred.ExternalID = externalID.String
	cred.AccountName = accountName.String
	return cred, nil
}
