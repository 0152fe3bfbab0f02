package persistence

import (
	"context"
	"database/sql"
	"time"

	"socialcast/domain/model"
)

// CredentialRepositoryMSSQL is the Azure SQL variant of the credential store
// used on the production path.
type CredentialRepositoryMSSQL struct{ db *sql.DB }

func NewCredentialRepositoryMSSQL(db *sql.DB) *CredentialRepositoryMSSQL {
	return &CredentialRepositoryMSSQL{db: db}
}

func (r *CredentialRepositoryMSSQL) Upsert(ctx context.Context, c *model.Credential) error {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	q := `MERGE credentials AS target
		  USING (SELECT @p1 AS user_id, @p2 AS platform) AS src
		  ON target.user_id = src.user_id AND target.platform = src.platform
		  WHEN MATCHED THEN UPDATE SET
			access_token=@p3, refresh_token=@p4, expires_at=@p5, scopes=@p6,
			external_id=@p7, account_name=@p8, updated_at=@p10
		  WHEN NOT MATCHED THEN INSERT (user_id, platform, access_token, refresh_token, expires_at, scopes, external_id, account_name, created_at, updated_at)
			VALUES (@p1,@p2,@p3,@p4,@p5,@p6,@p7,@p8,@p9,@p10);`
	_, err := r.db.ExecContext(ctx, q, c.UserID, string(c.Platform), c.AccessToken, c.RefreshToken, c.ExpiresAt, c.Scopes, c.ExternalID, c.AccountName, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *CredentialRepositoryMSSQL) Get(ctx context.Context, userID string, platform model.Platform) (*model.Credential, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, user_id, platform, access_token, refresh_token, expires_at, scopes, external_id, account_name, created_at, updated_at FROM credentials WHERE user_id=@p1 AND platform=@p2`, userID, string(platform))
	cred, err := scanCredential(row)
	if err == sql.ErrNoRows {
		return nil, model.ErrCredentialNotFound
	}
	return cred, err
}

func (r *CredentialRepositoryMSSQL) Delete(ctx context.Context, userID string, platform model.Platform) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM credentials WHERE user_id=@p1 AND platform=@p2`, userID, string(platform))
	return err
}

func (r *CredentialRepositoryMSSQL) ListByUser(ctx context.Context, userID string) ([]*model.Credential, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, platform, access_token, refresh_token, expires_at, scopes, external_id, account_name, created_at, updated_at FROM credentials WHERE user_id=@p1 ORDER BY platform`, userID)
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
