package middleware

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Oceanbluesol/cmhindia/config"
	"github.com/Oceanbluesol/cmhindia/internal/cache"
	"github.com/Oceanbluesol/cmhindia/internal/storage"
)

func DatabaseMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("db", db)
		c.Next()
	}
}

func GetDB(c *gin.Context) *gorm.DB {
	db, exists := c.Get("db")
	if !exists {
		return nil
	}
	return db.(*gorm.DB)
}

func CacheMiddleware(viewCache *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("view_cache", viewCache)
		c.Next()
	}
}

func GetCache(c *gin.Context) *cache.Cache {
	viewCache, exists := c.Get("view_cache")
	if !exists {
		return nil
	}
	return viewCache.(*cache.Cache)
}

func StorageMiddleware(store storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("object_store", store)
		c.Next()
	}
}

func GetStore(c *gin.Context) storage.Store {
	store, exists := c.Get("object_store")
	if !exists {
		return nil
	}
	return store.(storage.Store)
}

func ConfigMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("cfg", cfg)
		c.Next()
	}
}

func GetConfig(c *gin.Context) *config.Config {
	cfg, exists := c.Get("cfg")
	if !exists {
		return nil
	}
	return cfg.(*config.Config)
}
