package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/YouSangSon/tour-service/internal/application/usecase"
	"github.com/YouSangSon/tour-service/internal/config"
	"github.com/YouSangSon/tour-service/internal/domain/event"
	"github.com/YouSangSon/tour-service/internal/domain/repository"
	"github.com/YouSangSon/tour-service/internal/infrastructure/cache"
	"github.com/YouSangSon/tour-service/internal/infrastructure/mail"
	"github.com/YouSangSon/tour-service/internal/infrastructure/messaging/kafka"
	"github.com/YouSangSon/tour-service/internal/infrastructure/payment"
	"github.com/YouSangSon/tour-service/internal/infrastructure/persistence/mongodb"
	"github.com/YouSangSon/tour-service/internal/infrastructure/storage"
	grpcServer "github.com/YouSangSon/tour-service/internal/interfaces/grpc/server"
	httpHandler "github.com/YouSangSon/tour-service/internal/interfaces/http/handler"
	"github.com/YouSangSon/tour-service/internal/interfaces/http/router"
	"github.com/YouSangSon/tour-service/internal/interfaces/http/views"
	"github.com/YouSangSon/tour-service/internal/pkg/logger"
	"github.com/YouSangSon/tour-service/internal/pkg/metrics"
	"github.com/YouSangSon/tour-service/internal/pkg/security"
	"github.com/YouSangSon/tour-service/internal/pkg/tracing"
	"github.com/YouSangSon/tour-service/internal/pkg/vault"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// ============================================
	// 1. Configuration
	// ============================================
	cfg, err := config.LoadConfig("./configs", "config")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// ============================================
	// 2. Logger Initialization
	// ============================================
	if err := logger.Init(logger.Config{
		Environment: cfg.App.Environment,
		Level:       cfg.Observability.Logging.Level,
		Format:      cfg.Observability.Logging.Format,
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()
	logger.Info(ctx, "starting tour service",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
		zap.String("go_version", runtime.Version()),
	)

	// ============================================
	// 3. Vault Secrets (Optional)
	// ============================================
	var vaultClient *vault.Client
	if cfg.Vault.Enabled {
		vaultClient, err = vault.NewClient(ctx, &vault.Config{
			Address:      cfg.Vault.Address,
			Token:        cfg.Vault.Token,
			AuthMethod:   cfg.Vault.AuthMethod,
			RoleID:       cfg.Vault.RoleID,
			SecretID:     cfg.Vault.SecretID,
			K8sRole:      cfg.Vault.K8sRole,
			Namespace:    cfg.Vault.Namespace,
			SecretsPath:  cfg.Vault.SecretsPath,
			Timeout:      cfg.Vault.Timeout,
			CacheEnabled: true,
			CacheTTL:     5 * time.Minute,
		})
		if err != nil {
			logger.Fatal(ctx, "failed to initialize vault client", zap.Error(err))
		}
		defer vaultClient.Close()

		secrets, err := vaultClient.AppSecrets(ctx)
		if err != nil {
			logger.Fatal(ctx, "failed to load secrets from vault", zap.Error(err))
		}
		cfg.ApplySecrets(secrets)
		logger.Info(ctx, "vault secrets applied", logger.Count(len(secrets)))
	}

	if err := cfg.ValidateSecrets(); err != nil {
		logger.Fatal(ctx, "invalid secrets configuration", zap.Error(err))
	}

	// ============================================
	// 4. Metrics & Tracing
	// ============================================
	var m *metrics.Metrics
	if cfg.Observability.Metrics.Enabled {
		m = metrics.Init(cfg.Observability.Metrics.Namespace)
		logger.Info(ctx, "metrics initialized", zap.String("path", cfg.Observability.Metrics.Path))
	}

	if cfg.Observability.Tracing.Enabled {
		tracingShutdown, err := tracing.Init(&tracing.Config{
			ServiceName:    cfg.Observability.Tracing.ServiceName,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Environment,
			JaegerEndpoint: cfg.Observability.Tracing.JaegerEndpoint,
			SamplingRate:   cfg.Observability.Tracing.SamplingRate,
			Enabled:        true,
		})
		if err != nil {
			logger.Fatal(ctx, "failed to initialize tracing", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracingShutdown(shutdownCtx); err != nil {
				logger.Error(ctx, "failed to shutdown tracing", zap.Error(err))
			}
		}()
		logger.Info(ctx, "tracing initialized", zap.String("jaeger_endpoint", cfg.Observability.Tracing.JaegerEndpoint))
	}

	// ============================================
	// 5. MongoDB
	// ============================================
	mongoClient, err := mongodb.NewClient(ctx, &mongodb.Config{
		URI:            cfg.MongoDB.URI,
		Database:       cfg.MongoDB.Database,
		Username:       cfg.MongoDB.Username,
		Password:       cfg.MongoDB.Password,
		MaxPoolSize:    cfg.MongoDB.MaxPoolSize,
		MinPoolSize:    cfg.MongoDB.MinPoolSize,
		MaxConnecting:  cfg.MongoDB.MaxConnecting,
		ConnectTimeout: cfg.MongoDB.ConnectTimeout,
		Timeout:        cfg.MongoDB.Timeout,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to connect to mongodb", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Close(closeCtx); err != nil {
			logger.Error(ctx, "failed to close mongodb connection", zap.Error(err))
		}
	}()

	db := mongoClient.Database()
	if cfg.MongoDB.EnsureIndexes {
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			logger.Fatal(ctx, "failed to ensure mongodb indexes", zap.Error(err))
		}
	}
	logger.Info(ctx, "mongodb initialized", zap.String("database", cfg.MongoDB.Database))

	tourRepo := mongodb.NewTourRepository(db)
	userRepo := mongodb.NewUserRepository(db)
	reviewRepo := mongodb.NewReviewRepository(db)
	bookingRepo := mongodb.NewBookingRepository(db)

	// ============================================
	// 6. Redis (Optional)
	// ============================================
	var (
		redisClient *redis.Client
		redisStore  *cache.Store
		cacheStore  repository.CacheRepository
		rateLimiter repository.RateLimiter
	)
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewClient(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal(ctx, "failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()

		redisStore = cache.NewStore(redisClient, cfg.App.Name)
		cacheStore = redisStore
		rateLimiter = cache.NewRateLimiter(redisClient, cfg.App.Name)
		logger.Info(ctx, "redis initialized", zap.String("addr", cfg.Redis.Addr()))
	}

	// ============================================
	// 7. Kafka Producer (Optional)
	// ============================================
	var publisher event.Publisher = event.Nop{}
	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			logger.Warn(ctx, "failed to initialize kafka producer, events are dropped", zap.Error(err))
		} else {
			defer producer.Close()
			publisher = producer
		}
	}

	// ============================================
	// 8. Mail, Storage, Payment
	// ============================================
	mailer := mail.New(cfg.Mail)

	var images repository.ImageStore = storage.NewLocalStore(cfg.Storage.LocalDir)
	if cfg.Storage.Enabled {
		s3Client, err := storage.NewS3Client(cfg.Storage)
		if err != nil {
			logger.Fatal(ctx, "failed to initialize s3 client", zap.Error(err))
		}
		images = storage.NewS3Store(s3Client, cfg.Storage.Bucket)
		logger.Info(ctx, "s3 image storage initialized", zap.String("bucket", cfg.Storage.Bucket))
	}

	var gateway repository.PaymentGateway
	if cfg.Payment.Enabled {
		gateway = payment.New(cfg.Payment)
		logger.Info(ctx, "stripe checkout enabled", zap.String("currency", cfg.Payment.Currency))
	}

	// ============================================
	// 9. UseCase Layer
	// ============================================
	tours := usecase.NewTourUseCase(tourRepo, cacheStore, cfg.Cache.StatsTTL, images)
	users := usecase.NewUserUseCase(userRepo, images, publisher)
	reviews := usecase.NewReviewUseCase(reviewRepo, tourRepo, publisher, tours.InvalidateStats)
	bookings := usecase.NewBookingUseCase(bookingRepo, tourRepo, userRepo, gateway, publisher)
	auth := usecase.NewAuthUseCase(usecase.AuthDeps{
		Users:     userRepo,
		Tokens:    security.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiresIn),
		Hasher:    security.NewPasswordHasher(cfg.Auth.BcryptCost),
		Mailer:    mailer,
		Publisher: publisher,
		ResetTTL:  cfg.Auth.ResetTokenTTL,
	})

	// ============================================
	// 10. Health Checks
	// ============================================
	deps := []httpHandler.Dependency{
		{Name: "mongodb", Check: mongoClient.HealthCheck, Critical: true},
	}
	if redisStore != nil {
		deps = append(deps, httpHandler.Dependency{Name: "redis", Check: redisStore.Ping})
	}
	if cfg.Kafka.Enabled {
		deps = append(deps, httpHandler.Dependency{Name: "kafka", Check: kafka.HealthCheck(cfg.Kafka)})
	}
	if vaultClient != nil {
		deps = append(deps, httpHandler.Dependency{Name: "vault", Check: vaultClient.HealthCheck})
	}
	health := httpHandler.NewHealthHandler(cfg.App.Version, deps...)

	// ============================================
	// 11. Router
	// ============================================
	templates, err := views.Templates()
	if err != nil {
		logger.Fatal(ctx, "failed to parse page templates", zap.Error(err))
	}

	r := router.SetupRouter(router.Deps{
		Config:      cfg,
		Auth:        auth,
		Users:       users,
		Tours:       tours,
		Reviews:     reviews,
		Bookings:    bookings,
		Health:      health,
		RateLimiter: rateLimiter,
		Metrics:     m,
		Templates:   templates,
	})

	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%d", cfg.Server.HTTP.Host, cfg.Server.HTTP.Port),
		Handler:        r,
		ReadTimeout:    cfg.Server.HTTP.ReadTimeout,
		WriteTimeout:   cfg.Server.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
		IdleTimeout:    120 * time.Second,
	}

	go func() {
		logger.Info(ctx, "starting HTTP server",
			zap.String("addr", srv.Addr),
			zap.String("environment", cfg.App.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx, "failed to start HTTP server", zap.Error(err))
		}
	}()

	// ============================================
	// 12. gRPC Health Server (Optional)
	// ============================================
	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()

	var grpcSrv *grpcServer.Server
	if cfg.Server.GRPC.Enabled {
		grpcSrv = grpcServer.New(grpcServer.Config{
			Address:          fmt.Sprintf("%s:%d", cfg.Server.GRPC.Host, cfg.Server.GRPC.Port),
			ProbeInterval:    cfg.Server.GRPC.ProbeInterval,
			EnableReflection: cfg.Server.GRPC.EnableReflection,
		}, health, m)

		go grpcSrv.Watch(watchCtx)
		go func() {
			if err := grpcSrv.Serve(); err != nil {
				logger.Error(ctx, "gRPC health server stopped", zap.Error(err))
			}
		}()
	}

	// ============================================
	// 13. Graceful Shutdown
	// ============================================
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.HTTP.ShutdownTimeout)
	defer cancel()

	stopWatch()
	if grpcSrv != nil {
		grpcSrv.Shutdown(shutdownCtx)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "server forced to shutdown", zap.Error(err))
	}

	logger.Info(ctx, "server exited successfully")
}
