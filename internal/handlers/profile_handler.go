package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Oceanbluesol/cmhindia/internal/helpers"
	"github.com/Oceanbluesol/cmhindia/internal/logger"
	"github.com/Oceanbluesol/cmhindia/internal/middleware"
	"github.com/Oceanbluesol/cmhindia/internal/models"
	"github.com/Oceanbluesol/cmhindia/internal/storage"
)

func GetProfile(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.Redirect(c, "/auth/login")
		return
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var profile models.Profile
	if err := gormDB.Where("id = ?", userID).First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Profile not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving profile.")
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile saves the self-service fields and optionally replaces the
// avatar. The old avatar blob is removed best-effort after the new one is in
// place; the role column is never touched from here.
func UpdateProfile(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		helpers.Redirect(c, "/auth/login")
		return
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RedirectWithError(c, "/account", "Database connection not found.")
		return
	}

	var profile models.Profile
	if err := gormDB.Where("id = ?", userID).First(&profile).Error; err != nil {
		helpers.RedirectWithError(c, "/account", "Profile not found.")
		return
	}

	profile.FullName = helpers.TrimOrNil(c.PostForm("full_name"))
	profile.Phone = helpers.TrimOrNil(c.PostForm("phone"))
	profile.Bio = helpers.TrimOrNil(c.PostForm("bio"))
	if displayName := helpers.TrimOrNil(c.PostForm("display_name")); displayName != nil {
		profile.DisplayName = *displayName
	}

	if avatarFile, err := c.FormFile("avatar"); err == nil {
		store := middleware.GetStore(c)
		oldURL := profile.AvatarURL

		avatarURL, upErr := storage.UploadImage(store, avatarFile, storage.BucketAvatars, userID)
		if upErr != nil {
			helpers.RedirectWithError(c, "/account", upErr.Error())
			return
		}
		profile.AvatarURL = &avatarURL

		if oldURL != nil {
			if key, ok := store.KeyFromURL(*oldURL); ok {
				if rmErr := store.Remove(key); rmErr != nil {
					logger.L().Warn("avatar blob cleanup failed",
						zap.String("key", key),
						zap.Error(rmErr),
					)
				}
			}
		}
	}

	if err := gormDB.Save(&profile).Error; err != nil {
		helpers.RedirectWithError(c, "/account", err.Error())
		return
	}

	helpers.RedirectWithSuccess(c, "/account", "updated")
}
