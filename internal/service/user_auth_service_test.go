package service

import (
	"errors"
	"testing"
	"time"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newAuthTestService(t *testing.T, emailEnabled bool) (*UserAuthService, repository.EmailVerifyCodeRepository) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.EmailVerifyCode{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.UserJWT.SecretKey = "test-secret-key-for-auth-tests"
	cfg.UserJWT.ExpireHours = 1
	cfg.Email.Enabled = emailEnabled
	cfg.Security.PasswordPolicy.MinLength = 8

	userRepo := repository.NewUserRepository(db)
	codeRepo := repository.NewEmailVerifyCodeRepository(db)
	emailService := NewEmailService(&cfg.Email)
	return NewUserAuthService(cfg, userRepo, codeRepo, emailService, nil), codeRepo
}

func TestRegisterWithoutEmailVerification(t *testing.T) {
	svc, _ := newAuthTestService(t, false)

	user, token, expiresAt, err := svc.Register("New.User@Example.com", "password123", "", true)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Email != "new.user@example.com" {
		t.Fatalf("expected normalized email, got %s", user.Email)
	}
	if user.DisplayName != "new.user" {
		t.Fatalf("expected nickname from email, got %s", user.DisplayName)
	}
	if user.EmailVerifiedAt == nil {
		t.Fatalf("expected email auto-verified when email service disabled")
	}
	if token == "" || expiresAt.Before(time.Now()) {
		t.Fatalf("expected a valid token")
	}

	claims, err := svc.ParseUserJWT(token)
	if err != nil {
		t.Fatalf("parse jwt failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != user.Email {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestRegisterRequiresAgreement(t *testing.T) {
	svc, _ := newAuthTestService(t, false)

	if _, _, _, err := svc.Register("a@example.com", "password123", "", false); !errors.Is(err, ErrAgreementRequired) {
		t.Fatalf("expected ErrAgreementRequired, got %v", err)
	}
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	svc, _ := newAuthTestService(t, false)

	if _, _, _, err := svc.Register("a@example.com", "short", "", true); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthTestService(t, false)

	if _, _, _, err := svc.Register("dup@example.com", "password123", "", true); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, _, _, err := svc.Register("dup@example.com", "password123", "", true); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestLoginSuccessAndFailure(t *testing.T) {
	svc, _ := newAuthTestService(t, false)

	if _, _, _, err := svc.Register("login@example.com", "password123", "", true); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	user, token, _, err := svc.Login("login@example.com", "password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user == nil || token == "" {
		t.Fatalf("expected user and token")
	}

	if _, _, _, err := svc.Login("login@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, _, err := svc.Login("missing@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestResetPasswordWithCode(t *testing.T) {
	svc, codeRepo := newAuthTestService(t, true)

	// 直接落库用户,绕过注册验证码流程
	now := time.Now()
	user := &models.User{
		Email:           "reset@example.com",
		PasswordHash:    "$2a$10$invalidhashinvalidhashinvalidhashinvalidhashinvalid",
		Status:          constants.UserStatusActive,
		EmailVerifiedAt: &now,
	}
	if _, _, _, err := svc.Login("reset@example.com", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected unknown user before seed, got %v", err)
	}
	if err := svc.userRepo.Create(user); err != nil {
		t.Fatalf("seed user failed: %v", err)
	}

	record := &models.EmailVerifyCode{
		Email:     "reset@example.com",
		Purpose:   constants.VerifyPurposeReset,
		Code:      "654321",
		ExpiresAt: now.Add(10 * time.Minute),
		SentAt:    now,
	}
	if err := codeRepo.Create(record); err != nil {
		t.Fatalf("seed verify code failed: %v", err)
	}

	if err := svc.ResetPassword("reset@example.com", "000000", "newpassword1"); !errors.Is(err, ErrVerifyCodeInvalid) {
		t.Fatalf("expected ErrVerifyCodeInvalid for wrong code, got %v", err)
	}
	if err := svc.ResetPassword("reset@example.com", "654321", "newpassword1"); err != nil {
		t.Fatalf("reset password failed: %v", err)
	}

	if _, _, _, err := svc.Login("reset@example.com", "newpassword1"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}

	// 验证码一次性使用
	if err := svc.ResetPassword("reset@example.com", "654321", "anotherpass1"); !errors.Is(err, ErrVerifyCodeInvalid) {
		t.Fatalf("expected code to be consumed, got %v", err)
	}
}

func TestLogoutBumpsTokenVersion(t *testing.T) {
	svc, _ := newAuthTestService(t, false)

	user, _, _, err := svc.Register("logout@example.com", "password123", "", true)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	before := user.TokenVersion

	if err := svc.Logout(user.ID); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	updated, err := svc.GetUserByID(user.ID)
	if err != nil {
		t.Fatalf("get user failed: %v", err)
	}
	if updated.TokenVersion != before+1 {
		t.Fatalf("expected token version bump, got %d -> %d", before, updated.TokenVersion)
	}
	if updated.TokenInvalidBefore == nil {
		t.Fatalf("expected token invalidation timestamp")
	}
}

func TestSendVerifyCodeRejectsUnknownPurpose(t *testing.T) {
	svc, _ := newAuthTestService(t, true)

	if err := svc.SendVerifyCode("a@example.com", "unknown", ""); !errors.Is(err, ErrInvalidVerifyPurpose) {
		t.Fatalf("expected ErrInvalidVerifyPurpose, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newAuthTestService(t, false)

	user, _, _, err := svc.Register("profile@example.com", "password123", "", true)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	nickname := "New Name"
	locale := "en-US"
	updated, err := svc.UpdateProfile(user.ID, &nickname, &locale)
	if err != nil {
		t.Fatalf("update profile failed: %v", err)
	}
	if updated.DisplayName != "New Name" || updated.Locale != "en-US" {
		t.Fatalf("unexpected profile: %+v", updated)
	}

	if _, err := svc.UpdateProfile(user.ID, nil, nil); !errors.Is(err, ErrProfileEmpty) {
		t.Fatalf("expected ErrProfileEmpty, got %v", err)
	}
}
