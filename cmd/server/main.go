package main

import (
	"context"
	"os"
	"strings"
	"time"

	"anoa.com/itemprofile/internal/bootstrap"
	"anoa.com/itemprofile/internal/config"
	"anoa.com/itemprofile/internal/server"
	"anoa.com/itemprofile/pkg/database"
	"anoa.com/itemprofile/pkg/logger"
	"anoa.com/itemprofile/pkg/storage"
	"anoa.com/itemprofile/pkg/token"
	"anoa.com/itemprofile/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := validator.RegisterCustom(); err != nil {
		log.Fatalf("failed to register validators: %v", err)
	}

	db, err := database.Connect(database.Options{
		Driver:       cfg.DBDriver,
		DSN:          cfg.DatabaseURL,
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
		LogLevel:     cfg.LogLevel,
	}, log)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := bootstrap.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if err := bootstrap.SeedRoles(db); err != nil {
		log.Fatalf("failed to seed roles: %v", err)
	}

	if cfg.AppEnv == "development" {
		seed := bootstrap.AdminSeed{
			Username: os.Getenv("ADMIN_USERNAME"),
			Email:    os.Getenv("ADMIN_EMAIL"),
			Password: os.Getenv("ADMIN_PASSWORD"),
		}
		if seed.Email == "" {
			seed.Email = seed.Username + "@localhost"
		}
		if seed.Username != "" && seed.Password != "" {
			if err := bootstrap.SeedAdminUser(db, seed, log); err != nil {
				log.Fatalf("failed to seed admin user: %v", err)
			}
		}
	}

	deps := server.Deps{
		Config: cfg,
		DB:     db,
		Tokens: token.NewJWTService(cfg.JWTSecret, cfg.JWTTTL),
		Log:    log,
	}

	if cfg.RedisURL != "" {
		if rdb := connectRedis(cfg.RedisURL, log); rdb != nil {
			deps.Redis = rdb
			defer rdb.Close()
		}
	} else {
		log.Info("REDIS_URL not set, login rate limiting disabled")
	}

	if cfg.MeiliSearchHost != "" {
		host := cfg.MeiliSearchHost
		if !strings.HasPrefix(host, "http") {
			host = "http://" + host + ":7700"
		}
		deps.Meili = meilisearch.New(host, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	} else {
		log.Info("MEILISEARCH_HOST not set, item search uses the database")
	}

	if cfg.Cloudinary.Configured() {
		imageStorage, err := storage.NewCloudinaryStorage(cfg.Cloudinary)
		if err != nil {
			log.Fatalf("failed to initialize cloudinary storage: %v", err)
		}
		deps.ImageStorage = imageStorage
	} else {
		log.Info("cloudinary not configured, avatar uploads disabled")
	}

	srv := server.NewServer(deps)
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func connectRedis(url string, log logrus.FieldLogger) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.WithError(err).Warn("invalid REDIS_URL, continuing without redis")
		return nil
	}

	rdb := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.WithError(err).Warn("redis unreachable, continuing without redis")
		_ = rdb.Close()
		return nil
	}
	return rdb
}
