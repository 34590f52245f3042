package main

import (
	"time"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// 写入本地开发用的演示账号
func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	users := []struct {
		Email    string
		Password string
		Nickname string
		Locale   string
	}{
		{Email: "demo@example.com", Password: "Demo-Pass-2024!", Nickname: "Demo", Locale: "en-US"},
		{Email: "tester@example.com", Password: "Tester-Pass-2024!", Nickname: "测试账号", Locale: "zh-CN"},
	}

	now := time.Now()
	for _, seed := range users {
		var existing models.User
		if err := models.DB.Where("email = ?", seed.Email).First(&existing).Error; err == nil {
			stdLog.Printf("User already exists: %s", seed.Email)
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
		if err != nil {
			stdLog.Fatalf("Failed to hash password for %s: %v", seed.Email, err)
		}
		verifiedAt := now
		user := models.User{
			Email:           seed.Email,
			PasswordHash:    string(hash),
			DisplayName:     seed.Nickname,
			Locale:          seed.Locale,
			Status:          constants.UserStatusActive,
			EmailVerifiedAt: &verifiedAt,
		}
		if err := models.DB.Create(&user).Error; err != nil {
			stdLog.Printf("Failed to create user %s: %v", seed.Email, err)
			continue
		}
		stdLog.Printf("Created user: %s", seed.Email)
	}

	stdLog.Printf("Seed finished")
}
