package service

import (
	"context"
	"strings"
	"time"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// FederatedAuthService 联邦登录服务,校验身份提供方签发的 ID Token 并换发本地会话
type FederatedAuthService struct {
	cfg        *config.Config
	userRepo   repository.UserRepository
	authSvc    *UserAuthService
	authClient *firebaseauth.Client
}

// NewFederatedAuthService 创建联邦登录服务,未启用或初始化失败时返回降级实例
func NewFederatedAuthService(cfg *config.Config, userRepo repository.UserRepository, authSvc *UserAuthService) *FederatedAuthService {
	svc := &FederatedAuthService{
		cfg:      cfg,
		userRepo: userRepo,
		authSvc:  authSvc,
	}
	if !cfg.FederatedAuth.Enabled {
		return svc
	}

	ctx := context.Background()
	var opts []option.ClientOption
	if file := strings.TrimSpace(cfg.FederatedAuth.CredentialsFile); file != "" {
		opts = append(opts, option.WithCredentialsFile(file))
	}
	fbCfg := &firebase.Config{ProjectID: cfg.FederatedAuth.ProjectID}
	app, err := firebase.NewApp(ctx, fbCfg, opts...)
	if err != nil {
		logger.Warnw("federated_auth_init_failed", "error", err)
		return svc
	}
	client, err := app.Auth(ctx)
	if err != nil {
		logger.Warnw("federated_auth_client_failed", "error", err)
		return svc
	}
	svc.authClient = client
	return svc
}

// Enabled 判断联邦登录是否可用
func (s *FederatedAuthService) Enabled() bool {
	return s != nil && s.cfg.FederatedAuth.Enabled && s.authClient != nil
}

// Login 校验 ID Token,按邮箱匹配或创建本地用户并签发本地 JWT
func (s *FederatedAuthService) Login(ctx context.Context, idToken string) (*models.User, string, time.Time, error) {
	if !s.Enabled() {
		return nil, "", time.Time{}, ErrFederatedDisabled
	}
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return nil, "", time.Time{}, ErrFederatedTokenInvalid
	}

	token, err := s.authClient.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, "", time.Time{}, ErrFederatedTokenInvalid
	}

	user, err := s.resolveUser(token)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if strings.ToLower(user.Status) != constants.UserStatusActive {
		return nil, "", time.Time{}, ErrUserDisabled
	}

	jwtToken, expiresAt, err := s.authSvc.GenerateUserJWT(user, 0)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, "", time.Time{}, err
	}
	_ = cache.SetUserAuthState(ctx, cache.BuildUserAuthState(user))

	return user, jwtToken, expiresAt, nil
}

func (s *FederatedAuthService) resolveUser(token *firebaseauth.Token) (*models.User, error) {
	if user, err := s.userRepo.GetByFederatedUID(token.UID); err != nil {
		return nil, err
	} else if user != nil {
		return user, nil
	}

	email, _ := token.Claims["email"].(string)
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrFederatedTokenInvalid
	}

	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if user != nil {
		// 既有账号首次联邦登录,补绑 UID
		user.FederatedUID = token.UID
		user.UpdatedAt = now
		if user.EmailVerifiedAt == nil {
			user.EmailVerifiedAt = &now
		}
		if err := s.userRepo.Update(user); err != nil {
			return nil, err
		}
		return user, nil
	}

	displayName, _ := token.Claims["name"].(string)
	if strings.TrimSpace(displayName) == "" {
		displayName = resolveNicknameFromEmail(normalized)
	}
	photoURL, _ := token.Claims["picture"].(string)

	user = &models.User{
		Email:           normalized,
		DisplayName:     displayName,
		PhotoURL:        photoURL,
		FederatedUID:    token.UID,
		Status:          constants.UserStatusActive,
		EmailVerifiedAt: &now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}
