package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shoutly/server/internal/module/auth"
	"github.com/shoutly/server/internal/module/notification"
	"github.com/shoutly/server/internal/module/order"
	"github.com/shoutly/server/internal/module/payment"
	paymentprovider "github.com/shoutly/server/internal/module/payment/provider"
	"github.com/shoutly/server/internal/module/storage"
	"github.com/shoutly/server/internal/module/user"
	sharedcache "github.com/shoutly/server/internal/shared/cache"
	"github.com/shoutly/server/internal/shared/config"
	"github.com/shoutly/server/internal/shared/database"
	"github.com/shoutly/server/internal/shared/logger"
	"github.com/shoutly/server/internal/shared/metrics"
	"github.com/shoutly/server/internal/shared/middleware"
)

// App wires configuration, storage, providers, and HTTP handlers together.
type App struct {
	config  *config.Config
	db      *gorm.DB
	redis   redis.UniversalClient
	router  *gin.Engine
	logger  *zap.Logger
	metrics *metrics.Metrics

	rateLimiter *sharedcache.RateLimiter

	authService    *auth.Service
	authHandler    *auth.Handler
	uploadHandler  *storage.Handler
	orderHandler   *order.Handler
	orderAdmin     *order.AdminHandler
	paymentHandler *payment.Handler
	webhookHandler *payment.WebhookHandler
}

// New builds the application from configuration.
func New(cfg *config.Config) (*App, error) {
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	app := &App{
		config:  cfg,
		logger:  log,
		metrics: metrics.New("shoutly"),
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	app.db = db

	if err := db.AutoMigrate(
		&user.User{},
		&auth.Admin{},
		&order.Order{},
		&notification.Record{},
		&payment.Session{},
		&payment.WebhookEventRecord{},
	); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	// Redis is optional; rate limiting and idempotency degrade to no-ops
	// without it.
	if cfg.Redis.Address != "" {
		redisClient, err := sharedcache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Warn("redis connection failed, rate limiting disabled", zap.Error(err))
		} else {
			app.redis = redisClient
			app.rateLimiter = sharedcache.NewRateLimiter(redisClient)
		}
	}

	if err := app.initModules(); err != nil {
		return nil, fmt.Errorf("init modules: %w", err)
	}

	app.router = app.setupRouter()
	app.registerRoutes()

	return app, nil
}

func (a *App) initModules() error {
	cfg := a.config

	videoStore, err := storage.NewClient(&storage.Config{
		Endpoint:        cfg.Storage.Endpoint,
		Region:          cfg.Storage.Region,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		Bucket:          cfg.Storage.Bucket,
		UploadURLTTL:    cfg.Storage.UploadURLTTL,
		DownloadURLTTL:  cfg.Storage.DownloadURLTTL,
	})
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	a.uploadHandler = storage.NewHandler(videoStore, a.logger)

	sender := notification.NewSMTPSender(&notification.SMTPConfig{
		Host:        cfg.SMTP.Host,
		Port:        cfg.SMTP.Port,
		User:        cfg.SMTP.User,
		Password:    cfg.SMTP.Password,
		FromAddress: cfg.SMTP.FromAddress,
		FromName:    cfg.SMTP.FromName,
	}, a.logger)
	notifier := notification.NewService(
		sender,
		notification.NewRepository(a.db),
		a.metrics,
		a.logger,
		cfg.SMTP.AlertAddress,
	)

	userRepo := user.NewRepository(a.db)

	orderService := order.NewService(
		order.NewRepository(a.db),
		userRepo,
		videoStore,
		notifier,
		a.metrics,
		a.logger,
	)
	a.orderHandler = order.NewHandler(orderService)
	a.orderAdmin = order.NewAdminHandler(orderService)

	a.authService = auth.NewService(
		auth.NewRepository(a.db),
		auth.NewJWTManager(&auth.JWTConfig{
			Secret:      cfg.Auth.JWTSecret,
			TokenExpiry: cfg.Auth.TokenExpiry,
			Issuer:      "shoutly",
		}),
		a.metrics,
		a.logger,
	)
	a.authHandler = auth.NewHandler(a.authService)
	if err := a.authService.EnsureDefaultAdmin(context.Background(), cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		return fmt.Errorf("seed admin account: %w", err)
	}

	registry := payment.NewProviderRegistry()
	if cfg.Stripe.APIKey != "" {
		stripe := paymentprovider.NewStripeProvider(&paymentprovider.StripeConfig{
			APIKey:        cfg.Stripe.APIKey,
			WebhookSecret: cfg.Stripe.WebhookSecret,
		})
		registry.Register(paymentprovider.WithBreaker(stripe, a.metrics, a.logger))
	}
	if cfg.PayPal.ClientID != "" {
		paypal, err := paymentprovider.NewPayPalProvider(&paymentprovider.PayPalConfig{
			ClientID:      cfg.PayPal.ClientID,
			Secret:        cfg.PayPal.Secret,
			WebhookSecret: cfg.PayPal.WebhookSecret,
			IsProd:        cfg.PayPal.IsProd,
			BrandName:     cfg.PayPal.BrandName,
		})
		if err != nil {
			return fmt.Errorf("init paypal provider: %w", err)
		}
		registry.Register(paymentprovider.WithBreaker(paypal, a.metrics, a.logger))
	}
	a.logger.Info("payment providers registered", zap.Strings("providers", registry.List()))

	paymentService := payment.NewService(
		orderService,
		registry,
		payment.NewRepository(a.db),
		payment.Config{
			SuccessURL: cfg.Server.FrontendURL + "/order/success",
			CancelURL:  cfg.Server.FrontendURL + "/order/cancel",
			Currency:   "usd",
		},
		a.metrics,
		a.logger,
	)
	a.paymentHandler = payment.NewHandler(paymentService)
	a.webhookHandler = payment.NewWebhookHandler(paymentService, a.logger)

	return nil
}

func (a *App) setupRouter() *gin.Engine {
	if a.config.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(a.logger))
	r.Use(middleware.CORS(a.corsConfig()))
	r.Use(middleware.Metrics(a.metrics))

	r.GET("/healthz", a.healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func (a *App) corsConfig() middleware.CORSConfig {
	cfg := middleware.DefaultCORSConfig()
	if len(a.config.Server.CORSOrigins) > 0 {
		cfg.AllowOrigins = a.config.Server.CORSOrigins
		cfg.AllowCredentials = true
	}
	return cfg
}

func (a *App) registerRoutes() {
	api := a.router.Group("/api/v1")

	if a.redis != nil {
		api.Use(middleware.Idempotency(a.redis, middleware.DefaultIdempotencyConfig()))
	}
	if a.rateLimiter != nil {
		api.Use(middleware.RateLimitByIP(a.rateLimiter, 120, time.Minute))
	}

	a.uploadHandler.RegisterRoutes(api)
	a.orderHandler.RegisterRoutes(api)
	a.paymentHandler.RegisterRoutes(api)

	admin := api.Group("/admin")
	login := admin.Group("")
	if a.rateLimiter != nil && a.config.Auth.LoginRPM > 0 {
		login.Use(middleware.RateLimitByIP(a.rateLimiter, a.config.Auth.LoginRPM, time.Minute))
	}
	a.authHandler.RegisterRoutes(login)

	protected := admin.Group("")
	protected.Use(auth.RequireAdmin(a.authService))
	a.orderAdmin.RegisterRoutes(protected)

	// Webhooks sit outside /api/v1 so body-buffering middleware never runs
	// before signature verification.
	webhooks := a.router.Group("/webhooks")
	a.webhookHandler.RegisterRoutes(webhooks)
}

func (a *App) healthz(c *gin.Context) {
	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(503, gin.H{"status": "degraded", "database": "down"})
		return
	}
	c.JSON(200, gin.H{"status": "ok"})
}

// Router returns the HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Stop releases connections held by the application.
func (a *App) Stop() {
	if a.redis != nil {
		if err := sharedcache.Close(a.redis); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if err := database.Close(a.db); err != nil {
		a.logger.Warn("failed to close database", zap.Error(err))
	}
	_ = a.logger.Sync()
}
