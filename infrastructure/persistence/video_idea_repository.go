package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"socialcast/domain/model"
	"socialcast/domain/repository"
)

// VideoIdeaRepository persists video ideas in PostgreSQL. The per-platform
// upload map lives in a jsonb column and is merged key-by-key with jsonb_set
// so concurrent platform jobs never clobber each other (no read-modify-write).
type VideoIdeaRepository struct{ db *sql.DB }

func NewVideoIdeaRepository(db *sql.DB) *VideoIdeaRepository {
	return &VideoIdeaRepository{db: db}
}

const videoIdeaColumns = `id, user_id, idea, caption, youtube_title, tiktok_title, instagram_title,
	environment_prompt, sound_prompt, selected_platforms, video_url, preview_url,
	status, approval_status, rejection_reason, uploads, created_at, updated_at`

func (r *VideoIdeaRepository) Create(ctx context.Context, v *model.VideoIdea) error {
	now := time.Now().UTC()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	v.UpdatedAt = now
	platforms, err := json.Marshal(v.SelectedPlatforms)
	if err != nil {
		return err
	}
	if v.Uploads == nil {
		v.Uploads = map[model.Platform]model.PlatformUpload{}
	}
	uploads, err := json.Marshal(v.Uploads)
	if err != nil {
		return err
	}
	q := `INSERT INTO video_ideas (` + videoIdeaColumns + `)
		  VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`
	_, err = r.db.ExecContext(ctx, q,
		v.ID, v.UserID, v.Idea, v.Caption, v.YouTubeTitle, v.TikTokTitle, v.InstagramTitle,
		v.EnvironmentPrompt, v.SoundPrompt, platforms, v.VideoURL, v.PreviewURL,
		v.Status, v.ApprovalStatus, v.RejectionReason, uploads, v.CreatedAt, v.UpdatedAt)
	return err
}

func (r *VideoIdeaRepository) GetByID(ctx context.Context, id string) (*model.VideoIdea, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+videoIdeaColumns+` FROM video_ideas WHERE id=$1`, id)
	v, err := scanVideoIdea(row)
	if err == sql.ErrNoRows {
		return nil, model.ErrVideoIdeaNotFound
	}
	return v, err
}

func (r *VideoIdeaRepository) ListByUser(ctx context.Context, userID string) ([]*model.VideoIdea, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+videoIdeaColumns+` FROM video_ideas WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*model.VideoIdea
	for rows.Next() {
		v, err := scanVideoIdea(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

func (r *VideoIdeaRepository) UpdateWorkflow(ctx context.Context, id string, status model.VideoIdeaStatus, approval model.ApprovalStatus, reason string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE video_ideas SET status=$1, approval_status=$2, rejection_reason=NULLIF($3,''), updated_at=$4 WHERE id=$5`,
		status, approval, reason, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrVideoIdeaNotFound
	}
	return nil
}

func (r *VideoIdeaRepository) SetGenerated(ctx context.Context, id string, videoURL, previewURL string, meta repository.GeneratedMetadata) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE video_ideas SET
			video_url=COALESCE(NULLIF($1,''), video_url),
			preview_url=COALESCE(NULLIF($2,''), preview_url),
			caption=COALESCE(NULLIF($3,''), caption),
			youtube_title=COALESCE(NULLIF($4,''), youtube_title),
			tiktok_title=COALESCE(NULLIF($5,''), tiktok_title),
			instagram_title=COALESCE(NULLIF($6,''), instagram_title),
			environment_prompt=COALESCE(NULLIF($7,''), environment_prompt),
			sound_prompt=COALESCE(NULLIF($8,''), sound_prompt),
			updated_at=$9
		 WHERE id=$10`,
		videoURL, previewURL, meta.Caption, meta.YouTubeTitle, meta.TikTokTitle,
		meta.InstagramTitle, meta.EnvironmentPrompt, meta.SoundPrompt, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrVideoIdeaNotFound
	}
	return nil
}

func (r *VideoIdeaRepository) InitUploads(ctx context.Context, id string, platforms []model.Platform) error {
	uploads := make(map[model.Platform]model.PlatformUpload, len(platforms))
	for _, p := range platforms {
		uploads[p] = model.PlatformUpload{State: model.UploadPending, Progress: 0}
	}
	blob, err := json.Marshal(uploads)
	if err != nil {
		return err
	}
	// Merge over the existing map so a retry of a platform subset keeps the
	// completed entries of earlier runs.
	_, err = r.db.ExecContext(ctx,
		`UPDATE video_ideas SET uploads=COALESCE(uploads,'{}'::jsonb) || $1::jsonb, updated_at=$2 WHERE id=$3`,
		blob, time.Now().UTC(), id)
	return err
}

func (r *VideoIdeaRepository) SetPlatformUpload(ctx context.Context, id string, platform model.Platform, up model.PlatformUpload) error {
	entry, err := json.Marshal(up)
	if err != nil {
		return err
	}
	// Keyed jsonb merge; the WHERE guard keeps each platform's state
	// monotonic even under concurrent writers.
	q := `UPDATE video_ideas
		  SET uploads = jsonb_set(COALESCE(uploads,'{}'::jsonb), ARRAY[$1::text], $2::jsonb, true), updated_at=$3
		  WHERE id=$4 AND COALESCE(uploads#>>ARRAY[$1::text,'state'], 'pending') NOT IN ('completed','failed')`
	_, err = r.db.ExecContext(ctx, q, string(platform), entry, time.Now().UTC(), id)
	return err
}

func scanVideoIdea(row rowScanner) (*model.VideoIdea, error) {
	v := &model.VideoIdea{}
	var platforms, uploads []byte
	var videoURL, previewURL, rejection sql.NullString
	if err := row.Scan(&v.ID, &v.UserID, &v.Idea, &v.Caption, &v.YouTubeTitle, &v.TikTokTitle, &v.InstagramTitle,
		&v.EnvironmentPrompt, &v.SoundPrompt, &platforms, &videoURL, &previewURL,
		&v.Status, &v.ApprovalStatus, &rejection, &uploads, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	v.VideoURL = videoURL.String
	v.PreviewURL = previewURL.String
	v.RejectionReason = rejection.String
	if len(platforms) > 0 {
		if err := json.Unmarshal(platforms, &v.SelectedPlatforms); err != nil {
			return nil, err
		}
	}
	v.Uploads = map[model.Platform]model.PlatformUpload{}
	if len(uploads) > 0 {
		if err := json.Unmarshal(uploads, &v.Uploads); err != nil {
			return nil, err
		}
	}
	return v, nil
}
