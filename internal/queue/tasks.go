package queue

import (
	"encoding/json"

	"github.com/storefront-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskVerifyCodeEmail 邮箱验证码邮件任务
	TaskVerifyCodeEmail = constants.TaskVerifyCodeEmail
	// TaskPasswordResetDone 密码重置完成通知任务
	TaskPasswordResetDone = constants.TaskPasswordResetDone
)

// VerifyCodeEmailPayload 验证码邮件任务载荷
type VerifyCodeEmailPayload struct {
	Email   string `json:"email"`
	Code    string `json:"code"`
	Purpose string `json:"purpose"`
	Locale  string `json:"locale"`
}

// PasswordResetDonePayload 密码重置通知任务载荷
type PasswordResetDonePayload struct {
	Email  string `json:"email"`
	Locale string `json:"locale"`
}

// NewVerifyCodeEmailTask 创建验证码邮件任务
func NewVerifyCodeEmailTask(payload VerifyCodeEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskVerifyCodeEmail, body), nil
}

// NewPasswordResetDoneTask 创建密码重置通知任务
func NewPasswordResetDoneTask(payload PasswordResetDonePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPasswordResetDone, body), nil
}
