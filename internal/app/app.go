package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/blob"
	blobs3 "github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/blob/s3"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/catalog"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/config"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/httpserver"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/httpserver/deps"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/logger"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/redis"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/scheduler"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/seed"
	redisstore "github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/store/redis"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	core        *catalog.Service
	reconciler  *scheduler.Reconciler
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Redis initialized successfully")

	catalogStore := redisstore.NewCatalog(redisClient)
	accountStore := redisstore.NewAccounts(redisClient)
	registryStore := redisstore.NewSNRegistry(redisClient)

	// Seed empty stores so a fresh deployment has a usable login
	if cfg.SeedFile != "" {
		f, err := seed.NewLoader(cfg.SeedFile).Load()
		if err != nil {
			loggerClient.Errorf("Failed to load seed file %s: %v", cfg.SeedFile, err)
			os.Exit(1)
		}
		if err := seed.Apply(context.Background(), f, catalogStore, accountStore, registryStore, loggerClient); err != nil {
			loggerClient.Errorf("Failed to apply seed data: %v", err)
			os.Exit(1)
		}
	}

	core := catalog.New(catalogStore, accountStore, registryStore, loggerClient)

	reconciler := scheduler.NewReconciler(core, loggerClient, cfg.ReconcileInterval)

	// Artifact storage is optional; without a bucket the upload endpoint
	// answers 503 and entries must carry external download URLs.
	var uploader blob.Uploader
	if cfg.S3Bucket != "" {
		s3Store, err := blobs3.New(context.Background(), blobs3.Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3Secret,
			PathStyle:       cfg.S3PathStyle,
		})
		if err != nil {
			loggerClient.Errorf("Failed to initialize artifact storage: %v", err)
			os.Exit(1)
		}
		uploader = s3Store
		loggerClient.Info("artifact storage initialized",
			logger.String("bucket", cfg.S3Bucket))
	} else {
		loggerClient.Info("artifact storage not configured, uploads disabled")
	}

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:         loggerClient,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		TimeNow:        time.Now,
		AllowedHosts:   cfg.AllowedHosts,
		AllowedCIDRS:   cfg.AllowedCIDRS,
		TrustProxy:     cfg.TrustProxy,
		Core:           core,
		Uploader:       uploader,
		PublicDomain:   cfg.PublicDomain,
		DefaultIconURL: cfg.DefaultIconURL,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		core:        core,
		reconciler:  reconciler,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting appstore v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("appstore %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start quota reconciler (runs one recount immediately)
	if err := a.reconciler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start quota reconciler: %w", err)
	}
	a.logger.Info("quota reconciler started",
		logger.Duration("interval", a.cfg.ReconcileInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.reconciler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ appstore stopped cleanly")
	return nil
}
