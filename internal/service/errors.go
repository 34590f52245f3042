package service

import "errors"

// 服务层哨兵错误,处理层据此映射响应码与多语言消息
var (
	ErrNotFound           = errors.New("记录不存在")
	ErrInvalidEmail       = errors.New("邮箱格式无效")
	ErrEmailExists        = errors.New("邮箱已注册")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrInvalidPassword    = errors.New("原密码错误")
	ErrUserDisabled       = errors.New("账号已禁用")
	ErrEmailNotVerified   = errors.New("邮箱未验证")
	ErrAgreementRequired  = errors.New("需同意用户协议")
	ErrWeakPassword       = errors.New("密码不符合安全要求")
	ErrProfileEmpty       = errors.New("没有可更新的资料")

	ErrInvalidVerifyPurpose       = errors.New("验证码用途无效")
	ErrVerifyCodeInvalid          = errors.New("验证码错误")
	ErrVerifyCodeExpired          = errors.New("验证码已过期")
	ErrVerifyCodeTooFrequent      = errors.New("验证码发送过于频繁")
	ErrVerifyCodeAttemptsExceeded = errors.New("验证码尝试次数超限")

	ErrEmailServiceDisabled      = errors.New("邮件服务未启用")
	ErrEmailServiceNotConfigured = errors.New("邮件服务未配置")

	ErrCaptchaRequired      = errors.New("需要验证码")
	ErrCaptchaInvalid       = errors.New("验证码校验失败")
	ErrCaptchaConfigInvalid = errors.New("验证码配置无效")
	ErrCaptchaVerifyFailed  = errors.New("验证码服务异常")

	ErrFederatedDisabled     = errors.New("联邦登录未启用")
	ErrFederatedTokenInvalid = errors.New("联邦登录凭证无效")

	ErrContentUnavailable = errors.New("内容源不可用")
	ErrProductNotFound    = errors.New("产品不存在")
	ErrCategoryNotFound   = errors.New("分类不存在")

	ErrCartItemInvalid = errors.New("购物车条目无效")
)
