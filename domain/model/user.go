package model

import (
	"time"

	"github.com/golang-jwt/jwt"
)

// User is an account profile. Tier gates platform access; Credits are spent
// on generation submissions and topped up by payment callbacks.
type User struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name"`
	UserName  string    `json:"user_name" gorm:"uniqueIndex;column:user_name"`
	Password  string    `json:"-"`
	Tier      Tier      `json:"tier" gorm:"default:free"`
	Credits   int       `json:"credits" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (User) TableName() string { return "users" }

type ReqLogin struct {
	UserName string `json:"user_name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ReqRegister struct {
	Name     string `json:"name" binding:"required"`
	UserName string `json:"user_name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserClaims struct {
	UserName string `json:"user_name"`
	jwt.StandardClaims
}
