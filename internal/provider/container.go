package provider

import (
	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/content"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/queue"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo            repository.UserRepository
	EmailVerifyCodeRepo repository.EmailVerifyCodeRepository

	// 内容源与购物车
	ContentClient *content.Client
	CartManager   *cart.Manager

	// Services
	UserAuthService      *service.UserAuthService
	FederatedAuthService *service.FederatedAuthService
	EmailService         *service.EmailService
	CaptchaService       *service.CaptchaService
	ProductService       *service.ProductService
	CategoryService      *service.CategoryService
	CartService          *service.CartService
	CheckoutService      *service.CheckoutService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.EmailVerifyCodeRepo = repository.NewEmailVerifyCodeRepository(db)
}

func (c *Container) initServices() {
	c.ContentClient = content.NewClient(c.Config.Content)

	var snap cart.Snapshotter
	if cache.Enabled() {
		snap = cart.NewRedisSnapshotter()
	} else {
		// 无 Redis 时购物车仅存活于进程内
		snap = cart.NewMemorySnapshotter()
	}
	c.CartManager = cart.NewManager(snap)

	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo, c.EmailVerifyCodeRepo, c.EmailService, c.QueueClient)
	c.FederatedAuthService = service.NewFederatedAuthService(c.Config, c.UserRepo, c.UserAuthService)

	c.ProductService = service.NewProductService(c.ContentClient)
	c.CategoryService = service.NewCategoryService(c.ContentClient)
	c.CheckoutService = service.NewCheckoutService(c.Config.Checkout)
	c.CartService = service.NewCartService(c.CartManager, c.CheckoutService)
}

// Close 释放容器资源
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			logger.Warnw("provider_close_queue_client_failed", "error", err)
		}
	}
}
