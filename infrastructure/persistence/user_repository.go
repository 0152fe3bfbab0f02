package persistence

import (
	"context"
	"fmt"

	"socialcast/domain/model"

	"gorm.io/gorm"
)

// UserRepository stores account profiles (tier, credits) via GORM.
type UserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) *UserRepository { return &UserRepository{db: db} }

func (r *UserRepository) GetById(ctx context.Context, id int64) (model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	return user, err
}

func (r *UserRepository) GetByUserName(ctx context.Context, userName string) (model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("user_name = ?", userName).First(&user).Error
	return user, err
}

func (r *UserRepository) CreateUser(ctx context.Context, user *model.User) error {
	if user.Tier == "" {
		user.Tier = model.TierFree
	}
	return r.db.WithContext(ctx).Create(user).Error
}

// AdjustCredits applies delta atomically and never lets the balance go
// negative; a debit against an exhausted balance affects zero rows.
func (r *UserRepository) AdjustCredits(ctx context.Context, userID string, delta int) (int, error) {
	tx := r.db.WithContext(ctx).Model(&model.User{}).
		Where("user_name = ? AND credits + ? >= 0", userID, delta).
		UpdateColumn("credits", gorm.Expr("credits + ?", delta))
	if tx.Error != nil {
		return 0, tx.Error
	}
	if tx.RowsAffected == 0 {
		return 0, fmt.Errorf("user %s: %w", userID, model.ErrInsufficientCredits)
	}
	var user model.User
	if err := r.db.WithContext(ctx).Where("user_name = ?", userID).First(&user).Error; err != nil {
		return 0, err
	}
	return user.Credits, nil
}
