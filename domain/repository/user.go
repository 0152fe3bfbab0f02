package repository

import (
	"context"

	"socialcast/domain/model"
)

type IUser interface {
	GetById(ctx context.Context, id int64) (model.User, error)
	GetByUserName(ctx context.Context, userName string) (model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
	// AdjustCredits adds delta (may be negative) and returns the new balance.
	// Implementations must not let the balance go below zero.
	AdjustCredits(ctx context.Context, userID string, delta int) (int, error)
}
