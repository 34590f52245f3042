package constants

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 邮箱验证码用途常量
const (
	VerifyPurposeRegister = "register"
	VerifyPurposeReset    = "reset"
)

// 验证码场景常量
const (
	CaptchaSceneLogin            = "login"
	CaptchaSceneRegisterSendCode = "register_send_code"
	CaptchaSceneResetSendCode    = "reset_send_code"
)

// 队列名称常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 队列任务类型常量
const (
	TaskVerifyCodeEmail   = "email:verify_code"
	TaskPasswordResetDone = "email:password_reset_done"
)

// 内容库文档路径前缀
const (
	ContentPrefixProducts   = "products/"
	ContentPrefixCategories = "category/"
)

// 内容版本常量（published/draft）
const (
	ContentVersionPublished = "published"
	ContentVersionDraft     = "draft"
)

// 站点货币默认值
const SiteCurrencyDefault = "USD"
