package server

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Oceanbluesol/cmhindia/config"
	"github.com/Oceanbluesol/cmhindia/internal/cache"
	"github.com/Oceanbluesol/cmhindia/internal/handlers"
	"github.com/Oceanbluesol/cmhindia/internal/logger"
	"github.com/Oceanbluesol/cmhindia/internal/middleware"
	"github.com/Oceanbluesol/cmhindia/internal/storage"
)

func Start() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	if err := logger.Init(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	redisClient := config.InitRedis(cfg)
	viewCache := cache.New(redisClient, cfg.Redis.CacheTTL)
	store := storage.NewDiskStore(cfg.Storage.RootDir, cfg.Storage.PublicPrefix)

	r := gin.Default()

	setupRoutes(r, cfg, db, viewCache, store)

	return r.Run(":" + cfg.Server.Port)
}

func setupRoutes(r *gin.Engine, cfg *config.Config, db *gorm.DB, viewCache *cache.Cache, store storage.Store) {
	r.Use(middleware.ConfigMiddleware(cfg))
	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.CacheMiddleware(viewCache))
	r.Use(middleware.StorageMiddleware(store))

	// Poster and avatar blobs are public objects served straight off the store.
	r.Static(cfg.Storage.PublicPrefix, cfg.Storage.RootDir)

	public := r.Group("/")
	{
		public.POST("/auth/register", handlers.Register)
		public.POST("/auth/login", handlers.Login)
		public.POST("/auth/logout", handlers.Logout)

		eventPublic := public.Group("/events")
		{
			eventPublic.GET("", handlers.ListEvents)
			eventPublic.GET("/featured", handlers.FeaturedEvents)
			eventPublic.GET("/:id", handlers.GetEvent)
			eventPublic.POST("/:id/rsvp", handlers.SubmitRSVP)
		}
	}

	protected := r.Group("/")
	protected.Use(middleware.AuthRequired(cfg.Auth.JWTSecret))
	{
		protected.GET("/account", handlers.GetProfile)
		protected.POST("/account", handlers.UpdateProfile)

		dashboard := protected.Group("/dashboard")
		{
			dashboard.GET("/events", handlers.MyEvents)
			dashboard.POST("/events", handlers.CreateEvent)
			dashboard.POST("/events/:id", handlers.UpdateEvent)
			dashboard.POST("/events/:id/delete", handlers.DeleteEvent)
			dashboard.GET("/rsvps", handlers.MyEventRSVPs)
		}
	}

	admin := r.Group("/admin")
	admin.Use(middleware.AuthRequired(cfg.Auth.JWTSecret), middleware.AdminRequired())
	{
		admin.GET("", handlers.Overview)
		admin.GET("/events", handlers.AdminListEvents)
		admin.GET("/events/:id", handlers.AdminGetEvent)
		admin.POST("/events/new", handlers.AdminCreateEvent)
		admin.POST("/events/approve", handlers.ApproveEvent)
		admin.POST("/events/reject", handlers.RejectEvent)
		admin.POST("/events/pending", handlers.PendingEvent)
		admin.POST("/events/feature", handlers.FeatureEvent)
		admin.POST("/events/update", handlers.AdminUpdateEvent)
		admin.POST("/events/delete", handlers.AdminDeleteEvent)
	}
}
