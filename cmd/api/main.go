// @title        Video platform account service
// @version      1.0
// @description  Registration, sessions and profile management for platform users.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/videotube/account-service/internal/api"
	"github.com/videotube/account-service/internal/api/handler"
	"github.com/videotube/account-service/internal/core/ports"
	"github.com/videotube/account-service/internal/core/service"
	"github.com/videotube/account-service/internal/infrastructure/db/mongo"
	"github.com/videotube/account-service/internal/infrastructure/db/redis"
	"github.com/videotube/account-service/internal/infrastructure/media"
	"github.com/videotube/account-service/internal/infrastructure/queue"
	"github.com/videotube/account-service/internal/infrastructure/security"
	"github.com/videotube/account-service/internal/pkg/config"
	"github.com/videotube/account-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "account-service",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "account-service",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect mongodb")
	}

	repo := mongo.NewUserRepository(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure user indexes")
	}

	checks := map[string]handler.Check{"mongodb": handler.MongoCheck(db)}

	// Activity events go to Redis when configured; otherwise they are dropped
	// at the source.
	var (
		activity    ports.ActivityRecorder
		dispatcher  *queue.Dispatcher
		redisClient *goredis.Client
	)
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	if cfg.Redis.Addr != "" {
		redisClient, err = redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect redis")
		}
		checks["redis"] = handler.RedisCheck(redisClient)

		dispatcher = queue.NewDispatcher(cfg.Activity.Workers, redis.NewActivityStream(redisClient, cfg.Activity.Stream), log)
		dispatcher.Start(workerCtx)
		activity = dispatcher
	} else {
		log.Warn().Msg("REDIS_ADDR not set, account activity stream disabled")
	}

	uploader, err := media.New(ctx, media.Config{
		Provider:  cfg.Media.Provider,
		Endpoint:  cfg.Media.Endpoint,
		AccessKey: cfg.Media.AccessKey,
		SecretKey: cfg.Media.SecretKey,
		Bucket:    cfg.Media.Bucket,
		Region:    cfg.Media.Region,
		PublicURL: cfg.Media.PublicURL,
		UseSSL:    cfg.Media.UseSSL,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init media uploader")
	}
	if err := uploader.EnsureBucket(ctx); err != nil {
		log.Warn().Err(err).Msg("ensure media bucket failed")
	}

	tokens := security.NewJWTIssuer(security.TokenConfig{
		AccessSecret:  cfg.Auth.AccessSecret,
		AccessTTL:     cfg.Auth.AccessTTL,
		RefreshSecret: cfg.Auth.RefreshSecret,
		RefreshTTL:    cfg.Auth.RefreshTTL,
	})

	users := service.NewUserService(
		repo,
		security.NewBcryptHasher(cfg.Auth.BcryptCost),
		tokens,
		uploader,
		activity,
		log,
	)

	e := api.NewRouter(api.Deps{
		Users:  users,
		Tokens: tokens,
		Checks: checks,
		Handler: handler.Options{
			UploadDir:     cfg.UploadDir,
			SecureCookies: cfg.Auth.CookieSecure,
			AccessTTL:     cfg.Auth.AccessTTL,
			RefreshTTL:    cfg.Auth.RefreshTTL,
		},
		Log:        log,
		CORSOrigin: cfg.CORSOrigin,
		BodyLimit:  cfg.BodyLimit,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdown(log, e.Shutdown, dispatcher, stopWorkers, client, redisClient)
}

func shutdown(
	log zerolog.Logger,
	stopHTTP func(context.Context) error,
	dispatcher *queue.Dispatcher,
	stopWorkers context.CancelFunc,
	client *mongodriver.Client,
	redisClient *goredis.Client,
) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := stopHTTP(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	// Requests are done; let the workers flush what they still hold.
	stopWorkers()
	if dispatcher != nil {
		dispatcher.Wait()
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error().Err(err).Msg("redis close error")
		}
	}
	if err := mongo.Disconnect(client, shutdownTimeout); err != nil {
		log.Error().Err(err).Msg("mongodb disconnect error")
	}

	log.Info().Msg("server exited cleanly")
}
