package persistence

import (
	"fmt"

	"socialcast/domain/model"
	"socialcast/infrastructure/configuration"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// NewUserDB opens the account-profile database (MySQL via GORM) and keeps
// the users table migrated.
func NewUserDB() (*gorm.DB, error) {
	cfg := configuration.C.Database.MySql
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&model.User{}); err != nil {
		return nil, err
	}
	return db, nil
}
