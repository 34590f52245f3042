package service

import (
	"errors"
	"testing"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
)

func TestCaptchaSceneDisabledSkipsVerification(t *testing.T) {
	svc := NewCaptchaService(config.CaptchaConfig{Enabled: true})

	if err := svc.Verify(constants.CaptchaSceneLogin, CaptchaVerifyPayload{}); err != nil {
		t.Fatalf("disabled scene must not require captcha, got %v", err)
	}
}

func TestCaptchaRequiredWhenSceneEnabled(t *testing.T) {
	cfg := config.CaptchaConfig{Enabled: true}
	cfg.Scenes.Login = true
	svc := NewCaptchaService(cfg)

	if err := svc.Verify(constants.CaptchaSceneLogin, CaptchaVerifyPayload{}); !errors.Is(err, ErrCaptchaRequired) {
		t.Fatalf("expected ErrCaptchaRequired, got %v", err)
	}
	if err := svc.Verify(constants.CaptchaSceneLogin, CaptchaVerifyPayload{CaptchaID: "x", CaptchaCode: "bad"}); !errors.Is(err, ErrCaptchaInvalid) {
		t.Fatalf("expected ErrCaptchaInvalid, got %v", err)
	}
}

func TestCaptchaGenerateChallenge(t *testing.T) {
	cfg := config.CaptchaConfig{Enabled: true}
	cfg.Scenes.Login = true
	svc := NewCaptchaService(cfg)

	challenge, err := svc.GenerateImageChallenge()
	if err != nil {
		t.Fatalf("generate challenge failed: %v", err)
	}
	if challenge.CaptchaID == "" || challenge.ImageBase64 == "" {
		t.Fatalf("expected challenge id and image, got %+v", challenge)
	}
}

func TestCaptchaDisabledCannotGenerate(t *testing.T) {
	svc := NewCaptchaService(config.CaptchaConfig{Enabled: false})

	if _, err := svc.GenerateImageChallenge(); !errors.Is(err, ErrCaptchaConfigInvalid) {
		t.Fatalf("expected ErrCaptchaConfigInvalid, got %v", err)
	}
}
