package handlers

import (
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Oceanbluesol/cmhindia/internal/helpers"
	"github.com/Oceanbluesol/cmhindia/internal/logger"
	"github.com/Oceanbluesol/cmhindia/internal/middleware"
	"github.com/Oceanbluesol/cmhindia/internal/models"
	"github.com/Oceanbluesol/cmhindia/internal/storage"
)

// replacePoster uploads a new poster under the owner's namespace, points the
// event at its URL and then tries to remove the previous blob. Removal is
// best-effort: a failure leaks the old blob rather than blocking the update.
// On upload failure the request is aborted with a redirect to errPath.
func replacePoster(c *gin.Context, event *models.Event, posterFile *multipart.FileHeader, owner, errPath string) {
	store := middleware.GetStore(c)

	oldURL := event.PosterURL
	posterURL, err := storage.UploadImage(store, posterFile, storage.BucketEventPosters, owner)
	if err != nil {
		helpers.RedirectWithError(c, errPath, "Poster upload failed: "+err.Error())
		return
	}
	event.PosterURL = &posterURL

	removePosterBlob(c, oldURL)
}

// removePosterBlob deletes the blob behind a poster URL if it lives in our
// store. Fire-and-forget: failures are logged, never surfaced.
func removePosterBlob(c *gin.Context, posterURL *string) {
	if posterURL == nil {
		return
	}
	store := middleware.GetStore(c)
	if store == nil {
		return
	}
	key, ok := store.KeyFromURL(*posterURL)
	if !ok {
		return
	}
	if err := store.Remove(key); err != nil {
		logger.L().Warn("poster blob cleanup failed",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

func mustParseUUID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}
