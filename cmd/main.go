package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-account-core/config"
	"github.com/oksasatya/go-account-core/internal/application"
	"github.com/oksasatya/go-account-core/internal/container"
	"github.com/oksasatya/go-account-core/internal/domain/repository"
	"github.com/oksasatya/go-account-core/internal/infrastructure/cache"
	"github.com/oksasatya/go-account-core/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/go-account-core/internal/infrastructure/postgres"
	"github.com/oksasatya/go-account-core/internal/infrastructure/search"
	"github.com/oksasatya/go-account-core/internal/infrastructure/storage"
	"github.com/oksasatya/go-account-core/internal/interface/middleware"
	"github.com/oksasatya/go-account-core/internal/router"
	"github.com/oksasatya/go-account-core/pkg/helpers"
	"github.com/oksasatya/go-account-core/pkg/mailer"
	"github.com/oksasatya/go-account-core/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()
	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	// Credential store
	var repo repository.UserRepository
	switch cfg.StoreDriver {
	case "memory":
		logger.Warn("STORE_DRIVER=memory; accounts are lost on restart")
		repo = memory.NewUserRepository()
	default:
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
			MaxConns:    cfg.DBMaxConns,
			MinConns:    cfg.DBMinConns,
			MaxConnLife: cfg.DBMaxConnLife,
		})
		if err != nil {
			logger.Fatalf("failed to connect to postgres: %v", err)
		}
		closers = append(closers, pool.Close)
		if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			logger.Fatalf("migration failed: %v", err)
		}
		repo = pginfra.NewUserRepository(pool)
	}

	// Redis read-through cache for session lookups
	if cfg.RedisAddr != "" {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatalf("failed to connect to redis: %v", err)
		}
		closers = append(closers, func() { _ = rdb.Close() })
		repo = cache.NewUserRepository(repo, rdb, cfg.UserCacheTTL, logger)
	}

	// Avatar assets
	var assets application.AssetStore
	if cfg.AvatarBackend == "gcs" {
		gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			logger.Fatalf("failed to init GCS client: %v", err)
		}
		closers = append(closers, func() { _ = gcsClient.Close() })
		assets = storage.NewGCSStore(gcsClient, cfg.GCSBucket, application.AvatarDir)
	} else {
		local, err := storage.NewLocalStore(filepath.Join(cfg.PublicDir, application.AvatarDir))
		if err != nil {
			logger.Fatalf("failed to init avatar dir: %v", err)
		}
		assets = local
	}
	if err := os.MkdirAll(cfg.TempDir, 0o755); err != nil {
		logger.Fatalf("failed to create temp dir: %v", err)
	}

	// Elasticsearch user directory
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.Fatalf("failed to init elasticsearch: %v", err)
		}
		container.SetIndexer(search.NewUserIndexer(es, cfg.ESUsersIndex))
	}

	// Email transport
	dispatcher := mailer.NewDispatcher(buildSender(cfg, logger, &closers), logger, cfg.MailWorkerTimeout)

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetUserRepo(repo)
	container.SetAssets(assets)
	container.SetDispatcher(dispatcher)
	container.SetJWT(helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL))
	container.SetHasher(helpers.NewHasher(cfg.BcryptCost))

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowAllOrigins:  len(cfg.CORSOrigins()) == 0,
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:           12 * time.Hour,
	}))
	if cfg.HTTPLogEnabled {
		r.Use(middleware.AccessLog(logger))
	}

	reg := router.NewRegistry(r)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
	}
	dispatcher.Wait()
	logger.Info("server exited properly")
}

// buildSender picks the email transport. Any cleanup is appended to closers.
func buildSender(cfg *config.Config, logger *logrus.Logger, closers *[]func()) mailer.Sender {
	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; emails are logged, not sent")
		return mailer.NewLogSender(logger)
	}
	if cfg.MailTransport == "rabbitmq" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.Fatalf("failed to connect to rabbitmq: %v", err)
		}
		*closers = append(*closers, pub.Close)
		return mailer.NewQueueSender(pub)
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logger.Fatal("Mailgun not configured")
	}
	return mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
}
