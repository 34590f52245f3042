package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// 支持的语言常量
const (
	LocaleCN = "zh-CN"
	LocaleTW = "zh-TW"
	LocaleEN = "en-US"
)

// DefaultLocale 默认语言
const DefaultLocale = LocaleCN

// ResolveLocale 解析请求语言
// 优先级：query 参数 locale > Accept-Language 头 > 默认语言
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return DefaultLocale
	}
	if locale := Normalize(c.Query("locale")); locale != "" {
		return locale
	}
	header := c.GetHeader("Accept-Language")
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if locale := Normalize(tag); locale != "" {
			return locale
		}
	}
	return DefaultLocale
}

// Normalize 归一化语言标签，未识别时返回空串
func Normalize(locale string) string {
	tag := strings.ToLower(strings.TrimSpace(locale))
	switch {
	case tag == "":
		return ""
	case strings.HasPrefix(tag, "zh-tw"), strings.HasPrefix(tag, "zh-hant"), strings.HasPrefix(tag, "zh-hk"):
		return LocaleTW
	case strings.HasPrefix(tag, "zh"):
		return LocaleCN
	case strings.HasPrefix(tag, "en"):
		return LocaleEN
	default:
		return ""
	}
}

// T 按语言翻译消息 key，缺失时依次回退 zh-CN、key 本身
func T(locale, key string) string {
	normalized := Normalize(locale)
	if normalized == "" {
		normalized = DefaultLocale
	}
	if table, ok := messages[normalized]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if normalized == LocaleTW {
		if msg, ok := messages[LocaleCN][key]; ok {
			return msg
		}
	}
	if msg, ok := messages[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 翻译带格式参数的消息 key
func Sprintf(locale, key string, args ...interface{}) string {
	format := T(locale, key)
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

var messages = map[string]map[string]string{
	LocaleCN: {
		"error.bad_request":             "请求参数错误",
		"error.unauthorized":            "未登录或登录已过期",
		"error.not_found":               "资源不存在",
		"error.internal":                "服务器内部错误",
		"error.auth_header_missing":     "缺少认证头",
		"error.auth_header_invalid":     "认证头格式错误",
		"error.jwt_secret_missing":      "服务端未配置 JWT 密钥",
		"error.token_invalid":           "登录凭证无效",
		"error.token_revoked":           "登录凭证已失效，请重新登录",
		"error.email_invalid":           "邮箱格式不正确",
		"error.email_exists":            "该邮箱已注册",
		"error.invalid_credentials":     "邮箱或密码错误",
		"error.user_disabled":           "账号已被禁用",
		"error.email_not_verified":      "邮箱尚未验证",
		"error.password_policy":         "密码不满足安全策略",
		"error.agreement_required":      "请先同意用户协议",
		"error.verify_code_invalid":     "验证码错误",
		"error.verify_code_expired":     "验证码已过期",
		"error.verify_code_attempts":    "验证码尝试次数过多",
		"error.verify_code_too_frequent": "验证码发送过于频繁，请稍后再试",
		"error.verify_purpose_invalid":  "验证码用途不支持",
		"error.email_send_failed":       "邮件发送失败",
		"error.email_service_disabled":  "邮件服务未启用",
		"error.captcha_required":        "请先完成验证码",
		"error.captcha_invalid":         "验证码校验失败",
		"error.login_too_many":          "登录尝试过于频繁，请 %d 秒后再试",
		"error.rate_limited":            "请求过于频繁，请 %d 秒后再试",
		"error.rate_limit_unavailable":  "限流服务不可用",
		"error.federated_disabled":      "第三方登录未启用",
		"error.federated_token_invalid": "第三方登录凭证无效",
		"error.content_fetch_failed":    "内容加载失败",
		"error.product_not_found":       "商品不存在",
		"error.category_not_found":      "分类不存在",
		"error.cart_item_invalid":       "购物车商品参数错误",
		"error.cart_profile_invalid":    "购物车会话无效",
		"error.config_fetch_failed":     "配置加载失败",
		"error.user_not_found":          "用户不存在",
		"error.register_failed":         "注册失败",
		"error.login_failed":            "登录失败",
		"error.reset_failed":            "重置密码失败",
		"error.logout_failed":           "退出登录失败",
		"error.user_fetch_failed":       "用户信息加载失败",
		"error.user_update_failed":      "用户信息更新失败",
		"error.password_change_failed":  "修改密码失败",
		"error.password_old_invalid":    "原密码错误",
		"error.profile_empty":           "没有可更新的资料",
		"error.send_verify_code_failed": "验证码发送失败",
		"error.captcha_unavailable":     "验证码服务未启用",
		"error.captcha_generate_failed": "验证码生成失败",
		"error.captcha_config_invalid":  "验证码配置无效",
		"error.captcha_verify_failed":   "验证码服务异常",
		"error.cart_update_failed":      "购物车更新失败",
		"error.password_min_length":     "密码长度不能少于 %d 位",
		"error.password_require_upper":  "密码需包含大写字母",
		"error.password_require_lower":  "密码需包含小写字母",
		"error.password_require_number": "密码需包含数字",
		"error.password_require_special": "密码需包含特殊字符",
		"error.user_id_invalid":          "用户标识缺失",
		"error.user_id_type_invalid":     "用户标识类型错误",
	},
	LocaleTW: {
		"error.bad_request":         "請求參數錯誤",
		"error.unauthorized":        "未登入或登入已過期",
		"error.not_found":           "資源不存在",
		"error.internal":            "伺服器內部錯誤",
		"error.invalid_credentials": "郵箱或密碼錯誤",
		"error.content_fetch_failed": "內容載入失敗",
		"error.product_not_found":   "商品不存在",
		"error.category_not_found":  "分類不存在",
	},
	LocaleEN: {
		"error.bad_request":             "Invalid request",
		"error.unauthorized":            "Not signed in or session expired",
		"error.not_found":               "Resource not found",
		"error.internal":                "Internal server error",
		"error.auth_header_missing":     "Missing authorization header",
		"error.auth_header_invalid":     "Malformed authorization header",
		"error.jwt_secret_missing":      "JWT secret not configured",
		"error.token_invalid":           "Invalid session token",
		"error.token_revoked":           "Session revoked, please sign in again",
		"error.email_invalid":           "Invalid email address",
		"error.email_exists":            "Email already registered",
		"error.invalid_credentials":     "Incorrect email or password",
		"error.user_disabled":           "Account disabled",
		"error.email_not_verified":      "Email not verified",
		"error.password_policy":         "Password does not meet the policy",
		"error.agreement_required":      "Please accept the user agreement",
		"error.verify_code_invalid":     "Incorrect verification code",
		"error.verify_code_expired":     "Verification code expired",
		"error.verify_code_attempts":    "Too many verification attempts",
		"error.verify_code_too_frequent": "Verification code requested too frequently",
		"error.verify_purpose_invalid":  "Unsupported verification purpose",
		"error.email_send_failed":       "Failed to send email",
		"error.email_service_disabled":  "Email service disabled",
		"error.captcha_required":        "Captcha required",
		"error.captcha_invalid":         "Captcha verification failed",
		"error.login_too_many":          "Too many login attempts, try again in %d seconds",
		"error.rate_limited":            "Too many requests, try again in %d seconds",
		"error.rate_limit_unavailable":  "Rate limiter unavailable",
		"error.federated_disabled":      "Federated sign-in disabled",
		"error.federated_token_invalid": "Invalid federated sign-in token",
		"error.content_fetch_failed":    "Failed to load content",
		"error.product_not_found":       "Product not found",
		"error.category_not_found":      "Category not found",
		"error.cart_item_invalid":       "Invalid cart item",
		"error.cart_profile_invalid":    "Invalid cart session",
		"error.config_fetch_failed":     "Failed to load configuration",
		"error.user_not_found":          "User not found",
		"error.register_failed":         "Registration failed",
		"error.login_failed":            "Sign-in failed",
		"error.reset_failed":            "Password reset failed",
		"error.logout_failed":           "Sign-out failed",
		"error.user_fetch_failed":       "Failed to load user profile",
		"error.user_update_failed":      "Failed to update user profile",
		"error.password_change_failed":  "Failed to change password",
		"error.password_old_invalid":    "Current password incorrect",
		"error.profile_empty":           "Nothing to update",
		"error.send_verify_code_failed": "Failed to send verification code",
		"error.captcha_unavailable":     "Captcha service not available",
		"error.captcha_generate_failed": "Failed to generate captcha",
		"error.captcha_config_invalid":  "Invalid captcha configuration",
		"error.captcha_verify_failed":   "Captcha service error",
		"error.cart_update_failed":      "Failed to update cart",
		"error.password_min_length":     "Password must be at least %d characters",
		"error.password_require_upper":  "Password must contain an uppercase letter",
		"error.password_require_lower":  "Password must contain a lowercase letter",
		"error.password_require_number": "Password must contain a digit",
		"error.password_require_special": "Password must contain a special character",
		"error.user_id_invalid":          "Missing user identity",
		"error.user_id_type_invalid":     "Malformed user identity",
	},
}
