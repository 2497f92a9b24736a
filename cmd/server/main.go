package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"anoa.com/rickmortyapi/internal/bootstrap"
	"anoa.com/rickmortyapi/internal/config"
	"anoa.com/rickmortyapi/internal/jobs"
	searchService "anoa.com/rickmortyapi/internal/modules/search/service"
	"anoa.com/rickmortyapi/internal/server"
	"anoa.com/rickmortyapi/pkg/database"
	"anoa.com/rickmortyapi/pkg/logger"
	"anoa.com/rickmortyapi/pkg/storage"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	gormLevel := gormlogger.Warn
	if cfg.IsDevelopment() {
		gormLevel = gormlogger.Info
	}
	db, err := database.Open(database.Options{
		URL:             cfg.DatabaseURL,
		SQLitePath:      cfg.SQLitePath,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		LogLevel:        gormLevel,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := bootstrap.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}

	if cfg.IsDevelopment() {
		if err := bootstrap.SeedAdminUser(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logger.Fatal().Err(err).Msg("failed to seed admin user")
		}
		if err := bootstrap.SeedCatalog(db); err != nil {
			logger.Fatal().Err(err).Msg("failed to seed catalog")
		}
	}

	redisClient := connectRedis(cfg.RedisURL)
	meili := connectMeili(cfg.MeiliSearchHost, cfg.MeiliMasterKey)
	images := connectCloudinary(cfg)

	srv := server.NewServer(server.Deps{
		Config: cfg,
		DB:     db,
		Redis:  redisClient,
		Meili:  meili,
		Images: images,
	})

	scheduler := jobs.NewScheduler()
	if meili != nil {
		if err := scheduler.Register(jobs.NewReindexJob(srv.SearchService(), cfg.SearchReindexCron)); err != nil {
			logger.Error().Err(err).Msg("search reindex job disabled")
		}
	}
	scheduler.Start()

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal().Err(err).Msg("server exited with error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}
	scheduler.Stop(ctx)

	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info().Msg("server stopped")
}

func connectRedis(url string) *redis.Client {
	if url == "" {
		logger.Warn().Msg("REDIS_URL not set, login throttling and favorite events are disabled")
		return nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid REDIS_URL")
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msg("redis is not reachable yet")
	}
	return client
}

func connectMeili(host, key string) searchService.MeiliSearchService {
	if host == "" {
		logger.Warn().Msg("MEILISEARCH_HOST not set, search falls back to the database")
		return nil
	}
	if !strings.HasPrefix(host, "http") {
		host = "http://" + host
	}

	client := meilisearch.New(host, meilisearch.WithAPIKey(key))
	return searchService.NewMeiliSearchService(client)
}

func connectCloudinary(cfg *config.Config) storage.ImageStorage {
	if !cfg.CloudinaryConfigured() {
		logger.Warn().Msg("cloudinary is not configured, character image uploads are disabled")
		return nil
	}

	images, err := storage.NewCloudinaryStorage(storage.CloudinaryOptions{
		URL:       cfg.CloudinaryURL,
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize cloudinary storage")
	}
	return images
}
