package server

import (
	"context"
	"net/http"
	"time"

	"anoa.com/itemprofile/internal/config"
	"anoa.com/itemprofile/internal/middleware"
	"anoa.com/itemprofile/pkg/metrics"
	"anoa.com/itemprofile/pkg/ratelimiter"
	"anoa.com/itemprofile/pkg/storage"
	"anoa.com/itemprofile/pkg/token"

	itemHttp "anoa.com/itemprofile/internal/modules/item/delivery/http"
	itemRepo "anoa.com/itemprofile/internal/modules/item/repository"
	itemService "anoa.com/itemprofile/internal/modules/item/service"

	profileHttp "anoa.com/itemprofile/internal/modules/profile/delivery/http"
	profileRepo "anoa.com/itemprofile/internal/modules/profile/repository"
	profileService "anoa.com/itemprofile/internal/modules/profile/service"

	searchService "anoa.com/itemprofile/internal/modules/search/service"

	userHttp "anoa.com/itemprofile/internal/modules/user/delivery/http"
	userRepo "anoa.com/itemprofile/internal/modules/user/repository"
	userService "anoa.com/itemprofile/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps are the collaborators built by main. Redis, Meili and ImageStorage are
// optional; a nil value turns the matching feature off.
type Deps struct {
	Config       *config.Config
	DB           *gorm.DB
	Redis        *redis.Client
	Meili        meilisearch.ServiceManager
	ImageStorage storage.ImageStorage
	Tokens       token.Service
	Log          logrus.FieldLogger
}

type Server struct {
	engine *gin.Engine
	db     *gorm.DB
	log    logrus.FieldLogger
}

func NewServer(d Deps) *Server {
	cfg := d.Config

	var itemIndex searchService.ItemIndex
	if d.Meili != nil {
		itemIndex = searchService.NewMeiliItemIndex(d.Meili, d.Log)
	}

	limiter := ratelimiter.New(d.Redis, "itemprofile")

	users := userRepo.NewUserRepository(d.DB, cfg.DefaultRole)
	authSvc := userService.NewAuthService(users, d.Tokens, limiter, userService.LoginThrottle{
		Window:      cfg.RateLimitLogin,
		MaxFailures: int64(cfg.LoginMaxFailures),
	}, d.Log)
	authHandler := userHttp.NewAuthHandler(authSvc)

	itemSvc := itemService.NewItemService(itemRepo.NewItemRepository(d.DB), itemIndex, d.Log)
	itemHandler := itemHttp.NewItemHandler(itemSvc)

	profileSvc := profileService.NewProfileService(profileRepo.NewProfileRepository(d.DB), d.ImageStorage, cfg.CloudinaryUploadFolder, d.Log)
	profileHandler := profileHttp.NewProfileHandler(profileSvc)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(middleware.AccessLog(d.Log, "/healthz", "/metrics"))
	router.Use(metrics.Middleware())

	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	s := &Server{
		engine: router,
		db:     d.DB,
		log:    d.Log,
	}

	router.GET("/healthz", s.health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}
	api.GET("/test/public", publicCheck)

	// Protected routes
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/auth/validate", authHandler.Validate)
		protected.GET("/test/protected", protectedCheck)

		items := protected.Group("/items")
		{
			items.POST("", itemHandler.CreateItem)
			items.GET("", itemHandler.GetItems)
			items.GET("/search", itemHandler.SearchItems)
			items.GET("/:id", itemHandler.GetItem)
			items.PUT("/:id", itemHandler.UpdateItem)
			items.DELETE("/:id", itemHandler.DeleteItem)
		}

		profile := protected.Group("/profile")
		{
			profile.GET("", profileHandler.GetProfile)
			profile.POST("", profileHandler.CreateOrUpdateProfile)
			profile.DELETE("", profileHandler.DeleteProfile)
			profile.POST("/avatar", profileHandler.UploadAvatar)
		}
	}

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Run(addr string) error {
	s.log.WithField("addr", addr).Info("http server listening")
	return s.engine.Run(addr)
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		s.log.WithError(err).Warn("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
