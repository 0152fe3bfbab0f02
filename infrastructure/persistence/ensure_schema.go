package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// EnsureOrchestratorSchema creates the credential and video idea tables when
// they are missing. Safe to call at startup.
func EnsureOrchestratorSchema(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS credentials (
			id BIGSERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			platform TEXT NOT NULL,
			access_token TEXT NOT NULL,
			refresh_token TEXT,
			expires_at TIMESTAMPTZ,
			scopes TEXT,
			external_id TEXT,
			account_name TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			UNIQUE (user_id, platform)
		)`,
		`CREATE TABLE IF NOT EXISTS video_ideas (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			idea TEXT NOT NULL,
			caption TEXT NOT NULL DEFAULT '',
			youtube_title TEXT NOT NULL DEFAULT '',
			tiktok_title TEXT NOT NULL DEFAULT '',
			instagram_title TEXT NOT NULL DEFAULT '',
			environment_prompt TEXT NOT NULL DEFAULT '',
			sound_prompt TEXT NOT NULL DEFAULT '',
			selected_platforms JSONB NOT NULL,
			video_url TEXT,
			preview_url TEXT,
			status TEXT NOT NULL,
			approval_status TEXT NOT NULL,
			rejection_reason TEXT,
			uploads JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_video_ideas_user ON video_ideas (user_id, created_at DESC)`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("ensuring orchestrator schema: %w", err)
		}
	}
	return nil
}
