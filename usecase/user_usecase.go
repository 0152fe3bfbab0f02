package usecase

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"socialcast/domain/model"
	"socialcast/domain/repository"
	"socialcast/infrastructure/configuration"
	"socialcast/infrastructure/logger"

	"github.com/golang-jwt/jwt"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type IUserUsecase interface {
	Login(ctx context.Context, req *model.ReqLogin) (string, error)
	Register(ctx context.Context, req *model.ReqRegister) error
	Profile(ctx context.Context, userName string) (model.User, error)
	// ApplyPayment credits the balance on a successful payment callback and
	// returns the new balance.
	ApplyPayment(ctx context.Context, userID string, credits int) (int, error)
}

type UserUsecase struct {
	users repository.IUser
}

func NewUserUsecase(users repository.IUser) IUserUsecase {
	return &UserUsecase{users: users}
}

func (uc *UserUsecase) Login(ctx context.Context, req *model.ReqLogin) (string, error) {
	user, err := uc.users.GetByUserName(ctx, req.UserName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if user.Password != hashPassword(req.Password) {
		return "", ErrInvalidCredentials
	}

	claims := model.UserClaims{
		UserName: user.UserName,
		StandardClaims: jwt.StandardClaims{
			Issuer:    user.UserName,
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(24 * time.Hour).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(configuration.C.App.SecretKey))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	logger.GetLogger().WithField("user_name", user.UserName).Info("user logged in")
	return signed, nil
}

func (uc *UserUsecase) Register(ctx context.Context, req *model.ReqRegister) error {
	_, err := uc.users.GetByUserName(ctx, req.UserName)
	if err == nil {
		return fmt.Errorf("username %s already taken", req.UserName)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	user := &model.User{
		Name:     req.Name,
		UserName: req.UserName,
		Password: hashPassword(req.Password),
		Tier:     model.TierFree,
	}
	if err := uc.users.CreateUser(ctx, user); err != nil {
		return err
	}
	logger.GetLogger().WithField("user_name", req.UserName).Info("user registered")
	return nil
}

func (uc *UserUsecase) Profile(ctx context.Context, userName string) (model.User, error) {
	return uc.users.GetByUserName(ctx, userName)
}

func (uc *UserUsecase) ApplyPayment(ctx context.Context, userID string, credits int) (int, error) {
	if credits <= 0 {
		return 0, fmt.Errorf("payment credits must be positive")
	}
	balance, err := uc.users.AdjustCredits(ctx, userID, credits)
	if err != nil {
		return 0, err
	}
	logger.GetLogger().
		WithField("user_id", userID).
		WithField("credits", credits).
		Info("payment applied")
	return balance, nil
}

func hashPassword(password string) string {
	sum := md5.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}
