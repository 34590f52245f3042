package worker

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/provider"
	"github.com/storefront-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskVerifyCodeEmail, c.handleVerifyCodeEmail)
	mux.HandleFunc(queue.TaskPasswordResetDone, c.handlePasswordResetDone)
}

func (c *Consumer) handleVerifyCodeEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.VerifyCodeEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_verify_code_email_unmarshal_failed", "error", err)
		return err
	}
	email := strings.TrimSpace(payload.Email)
	if email == "" || strings.TrimSpace(payload.Code) == "" {
		logger.Debugw("worker_verify_code_email_skip_invalid_payload", "email", email)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_verify_code_email_skip_email_service_nil", "email", email)
		return nil
	}
	if err := c.EmailService.SendVerifyCode(email, payload.Code, payload.Purpose, payload.Locale); err != nil {
		logger.Warnw("worker_verify_code_email_send_failed", "email", email, "error", err)
		return err
	}
	logger.Infow("worker_verify_code_email_sent", "email", email, "purpose", payload.Purpose)
	return nil
}

func (c *Consumer) handlePasswordResetDone(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.PasswordResetDonePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_password_reset_done_unmarshal_failed", "error", err)
		return err
	}
	email := strings.TrimSpace(payload.Email)
	if email == "" {
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_password_reset_done_skip_email_service_nil", "email", email)
		return nil
	}
	if err := c.EmailService.SendPasswordResetNotice(email, payload.Locale); err != nil {
		// 通知类邮件失败不重试
		logger.Warnw("worker_password_reset_done_send_failed", "email", email, "error", err)
	}
	return nil
}
