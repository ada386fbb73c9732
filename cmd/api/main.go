package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pairusuo/blog-backend/internal/common"
	"github.com/pairusuo/blog-backend/internal/config"
	"github.com/pairusuo/blog-backend/internal/handler"
	"github.com/pairusuo/blog-backend/internal/middleware"
	"github.com/pairusuo/blog-backend/internal/repository"
	"github.com/pairusuo/blog-backend/internal/routes"
	"github.com/pairusuo/blog-backend/internal/service"
	pkgcache "github.com/pairusuo/blog-backend/pkg/cache"
	pkgelastic "github.com/pairusuo/blog-backend/pkg/elasticsearch"
	pkglogger "github.com/pairusuo/blog-backend/pkg/logger"
	pkgredis "github.com/pairusuo/blog-backend/pkg/redis"
	pkgstorage "github.com/pairusuo/blog-backend/pkg/storage"
)

// @title           Blog Backend API
// @version         1.0
// @description     Content API for a bilingual personal blog: admin writes, public reads, feeds
//
// @license.name    MIT
//
// @host            localhost:8080
// @BasePath        /api
//
// @securityDefinitions.apikey AdminToken
// @in header
// @name X-Admin-Token
// @description Shared admin secret (ADMIN_TOKEN). "Authorization: Bearer {token}" is accepted too.

func main() {
	dotenvFiles := config.LoadDotEnv(".")

	configPath := config.Path()
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pkglogger.InitStructured(cfg.Server.Env)
	pkglogger.SetLevel(cfg.Server.LogLevel)
	logger := pkglogger.GetLogger()
	logger.Info().
		Str("config", configPath).
		Strs("env_files", dotenvFiles).
		Str("storage", cfg.Storage.Driver).
		Str("cache", cfg.Cache.Driver).
		Msg("configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc := cfg.Site.Location()
	ttl := cfg.Cache.TTL()

	// Post storage
	store, err := pkgstorage.New(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}

	// Redis (cache and rate limit)
	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("continuing without Redis")
			redisClient = nil
		} else {
			logger.Info().Str("addr", cfg.Redis.Addr()).Msg("connected to Redis")
			defer redisClient.Close()
		}
	}

	// Read cache
	var cacheStore pkgcache.Store
	switch cfg.Cache.Driver {
	case config.CacheRedis:
		if redisClient != nil {
			cacheStore = pkgcache.NewRedisStore(redisClient)
		} else {
			logger.Warn().Msg("redis cache unavailable, using in-process cache")
			cacheStore = pkgcache.NewMemoryStore()
		}
	case config.CacheMemory:
		cacheStore = pkgcache.NewMemoryStore()
	}

	// Audit database
	var auditRepo repository.AuditRepository
	db, err := initDB(cfg.Database, loc)
	switch {
	case err != nil:
		logger.Warn().Err(err).Msg("continuing without audit log")
	case db != nil:
		auditRepo, err = repository.NewAuditRepository(db)
		if err != nil {
			logger.Warn().Err(err).Msg("audit log migration failed, continuing without audit log")
			auditRepo = nil
		}
	}
	auditService := service.NewAuditService(auditRepo)
	defer auditService.Close()

	postRepo := repository.NewPostRepository(store, loc)

	// Search: Elasticsearch when configured, listing scan otherwise
	var searchService service.SearchService
	if cfg.Search.Enabled() {
		esClient, esErr := pkgelastic.NewClient(cfg.Search)
		if esErr != nil {
			logger.Warn().Err(esErr).Msg("Elasticsearch unavailable, using listing search")
		} else {
			logger.Info().Strs("addresses", cfg.Search.Addresses).Msg("connected to Elasticsearch")
			searchService = service.NewElasticSearchService(ctx, esClient, postRepo)
		}
	}
	if searchService == nil {
		searchService = service.NewListingSearchService(postRepo, cacheStore, ttl)
	}

	// Uploads
	var uploadPrimary service.PublicStore
	if up := cfg.Uploads.S3; up.Configured() && up.CDNURL != "" {
		if up.AccountID != "" {
			up = up.R2()
		}
		s3Store, s3Err := pkgstorage.NewS3Storage(up)
		if s3Err != nil {
			logger.Warn().Err(s3Err).Msg("upload bucket unavailable, storing uploads locally")
		} else {
			uploadPrimary = s3Store
		}
	}
	if err := os.MkdirAll(cfg.Uploads.LocalDir, 0o755); err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.Uploads.LocalDir).Msg("failed to create upload directory")
	}
	uploadLocal, err := pkgstorage.NewFileStorage(cfg.Uploads.LocalDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize upload directory")
	}

	// Services
	postService := service.NewPostService(postRepo, cacheStore, searchService, loc, ttl)
	publicService := service.NewPublicService(postRepo, cacheStore, ttl)
	feedService := service.NewFeedService(publicService, service.SiteInfo{
		URL:         cfg.Site.URL,
		Title:       cfg.Site.Title,
		Description: cfg.Site.Description,
		Author:      cfg.Site.Author,
	}, loc)
	uploadService := service.NewUploadService(uploadPrimary, uploadLocal, cfg.Uploads.MaxSizeBytes())

	// Router
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	router := gin.New()
	router.MaxMultipartMemory = cfg.Uploads.MaxSizeBytes()

	allowOrigins := cfg.Server.CORSOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"http://localhost:3000"}
	}
	router.Use(
		gin.Recovery(),
		middleware.RequestLogger(),
		middleware.Metrics(),
		middleware.SecurityHeaders(),
		cors.New(cors.Config{
			AllowOrigins:     allowOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.AdminTokenHeader, "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	routes.Setup(router, cfg, redisClient, auditService,
		handler.NewAdminHandler(postService),
		handler.NewUploadHandler(uploadService),
		handler.NewAuditHandler(auditService),
		handler.NewPostHandler(publicService),
		handler.NewSearchHandler(searchService),
		handler.NewFeedHandler(feedService),
	)

	router.NoRoute(func(c *gin.Context) {
		common.ErrorResponse(c, http.StatusNotFound, "Not found")
	})

	if cfg.Admin.Token == "" {
		logger.Warn().Msg("ADMIN_TOKEN is not set; admin API will answer 500")
	}

	// Serve until signalled
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// initDB opens the audit database. It returns nil when no driver is configured.
func initDB(cfg config.DatabaseConfig, loc *time.Location) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}

	switch cfg.Driver {
	case config.DBSQLite:
		if dir := filepath.Dir(cfg.DSN); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
		return gorm.Open(sqlite.Open(cfg.DSN), gormCfg)

	case config.DBMySQL:
		mysqlCfg, err := mysqldriver.ParseDSN(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("parse DSN: %w", err)
		}
		mysqlCfg.ParseTime = true
		mysqlCfg.Loc = loc
		if mysqlCfg.Params == nil {
			mysqlCfg.Params = map[string]string{}
		}
		mysqlCfg.Params["charset"] = "utf8mb4"

		db, err := gorm.Open(mysql.Open(mysqlCfg.FormatDSN()), gormCfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxIdleConns(2)
		sqlDB.SetMaxOpenConns(5)
		sqlDB.SetConnMaxLifetime(time.Hour)
		return db, nil
	}
	return nil, nil
}
