package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/pairusuo/blog-backend/internal/config"
	"github.com/pairusuo/blog-backend/internal/handler"
	"github.com/pairusuo/blog-backend/internal/middleware"
)

// Setup configures all API routes
func Setup(
	router *gin.Engine,
	cfg *config.Config,
	redisClient *redis.Client,
	auditRecorder middleware.AuditRecorder,
	adminHandler *handler.AdminHandler,
	uploadHandler *handler.UploadHandler,
	auditHandler *handler.AuditHandler,
	postHandler *handler.PostHandler,
	searchHandler *handler.SearchHandler,
	feedHandler *handler.FeedHandler,
) {
	handler.RegisterValidators()

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Feeds
	router.GET("/rss.xml", feedHandler.RSS)
	router.GET("/sitemap.xml", feedHandler.Sitemap)
	router.GET("/robots.txt", feedHandler.Robots)

	// Locally stored uploads
	if cfg.Uploads.LocalDir != "" {
		router.Static("/uploads", cfg.Uploads.LocalDir)
	}

	// Public read API
	public := router.Group("/api", middleware.I18n(), middleware.InputSanitizer())
	public.GET("/posts", postHandler.ListPosts)
	public.GET("/posts/:locale/*slug", postHandler.GetPost)
	public.GET("/search", searchHandler.Search)

	// Admin API
	limit := middleware.DefaultRateLimitConfig()
	limit.Requests = cfg.Admin.RateLimit
	limit.Window = cfg.Admin.RateWindow()

	admin := router.Group("/api/admin",
		middleware.Audit(auditRecorder),
		middleware.AdminToken(cfg.Admin.Token),
		middleware.RateLimit(redisClient, limit),
	)
	admin.POST("/publish", adminHandler.Publish)
	admin.GET("/drafts", adminHandler.GetDrafts)
	admin.PUT("/drafts", adminHandler.UpdateDraft)
	admin.POST("/drafts", adminHandler.DraftAction)
	admin.DELETE("/drafts", adminHandler.DeleteDraft)
	admin.GET("/posts", adminHandler.ListPosts)
	admin.DELETE("/posts", adminHandler.DeletePost)
	admin.POST("/upload", uploadHandler.Upload)
	admin.GET("/audit", auditHandler.List)
}
