package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/Oceanbluesol/cmhindia/internal/cache"
	"github.com/Oceanbluesol/cmhindia/internal/helpers"
	"github.com/Oceanbluesol/cmhindia/internal/middleware"
	"github.com/Oceanbluesol/cmhindia/internal/models"
	"github.com/Oceanbluesol/cmhindia/internal/storage"
)

type OverviewResponse struct {
	Total         int64          `json:"total"`
	Pending       int64          `json:"pending"`
	Approved      int64          `json:"approved"`
	Rejected      int64          `json:"rejected"`
	RecentPending []models.Event `json:"recent_pending"`
}

// Overview renders the admin landing stats. The four counts are independent,
// so they fan out concurrently and the handler waits for all of them.
func Overview(c *gin.Context) {
	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	viewCache := middleware.GetCache(c)
	var cached OverviewResponse
	if viewCache.GetJSON(c.Request.Context(), cache.KeyAdminOverview, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	var resp OverviewResponse
	g, ctx := errgroup.WithContext(c.Request.Context())
	countByStatus := func(dest *int64, status models.Status) func() error {
		return func() error {
			query := gormDB.WithContext(ctx).Model(&models.Event{})
			if status != "" {
				query = query.Where("status = ?", status)
			}
			return query.Count(dest).Error
		}
	}
	g.Go(countByStatus(&resp.Total, ""))
	g.Go(countByStatus(&resp.Pending, models.StatusPending))
	g.Go(countByStatus(&resp.Approved, models.StatusApproved))
	g.Go(countByStatus(&resp.Rejected, models.StatusRejected))
	if err := g.Wait(); err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error counting events.")
		return
	}

	err := gormDB.Model(&models.Event{}).
		Where("status = ?", models.StatusPending).
		Order("created_at DESC").
		Limit(8).
		Find(&resp.RecentPending).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving pending events.")
		return
	}

	viewCache.SetJSON(c.Request.Context(), cache.KeyAdminOverview, resp)
	c.JSON(http.StatusOK, resp)
}

// AdminListEvents is the moderation queue: every status, with the tab filter
// and a wider search than the public listing (organization and organiser
// email included).
func AdminListEvents(c *gin.Context) {
	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	query := gormDB.Model(&models.Event{})
	if status := models.Status(c.Query("status")); status.Valid() {
		query = query.Where("status = ?", status)
	}
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(location) LIKE ? OR LOWER(organization_name) LIKE ? OR LOWER(organiser_email) LIKE ?",
			like, like, like, like, like,
		)
	}

	var events []models.Event
	if err := query.Order("created_at DESC").Find(&events).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving events.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// AdminGetEvent shows one event to a moderator regardless of status.
func AdminGetEvent(c *gin.Context) {
	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var event models.Event
	if err := gormDB.Where("id = ?", c.Param("id")).First(&event).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}
	c.JSON(http.StatusOK, event)
}

// setStatus overwrites the status column. Any of the three values is
// reachable from any other; there is no optimistic-concurrency check, so
// concurrent moderators race with last-write-wins.
func setStatus(c *gin.Context, requested models.Status) {
	id := c.PostForm("id")
	if id == "" {
		helpers.RedirectWithError(c, "/admin/events", "missing_id")
		return
	}
	eventPath := "/admin/events/" + id

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RedirectWithError(c, eventPath, "Database connection not found.")
		return
	}

	var event models.Event
	if err := gormDB.Where("id = ?", id).First(&event).Error; err != nil {
		helpers.RedirectWithError(c, eventPath, "not_found")
		return
	}

	newStatus, err := models.Transition(event.Status, requested)
	if err != nil {
		helpers.RedirectWithError(c, eventPath, err.Error())
		return
	}

	if err := gormDB.Model(&models.Event{}).Where("id = ?", id).Update("status", newStatus).Error; err != nil {
		helpers.RedirectWithError(c, eventPath, err.Error())
		return
	}

	middleware.GetCache(c).InvalidateEvent(c.Request.Context(), id)
	helpers.Redirect(c, eventPath)
}

func ApproveEvent(c *gin.Context) {
	setStatus(c, models.StatusApproved)
}

func RejectEvent(c *gin.Context) {
	setStatus(c, models.StatusRejected)
}

func PendingEvent(c *gin.Context) {
	setStatus(c, models.StatusPending)
}

// FeatureEvent writes the negation of the CALLER'S copy of the flag, carried
// in a hidden form field. If that copy is stale the write restores rather
// than flips the authoritative value; concurrent moderators can drift the
// flag. Kept as documented behavior.
func FeatureEvent(c *gin.Context) {
	id := c.PostForm("id")
	if id == "" {
		helpers.RedirectWithError(c, "/admin/events", "missing_id")
		return
	}
	eventPath := "/admin/events/" + id
	current := c.PostForm("is_featured") == "true"

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RedirectWithError(c, eventPath, "Database connection not found.")
		return
	}

	if err := gormDB.Model(&models.Event{}).Where("id = ?", id).Update("is_featured", !current).Error; err != nil {
		helpers.RedirectWithError(c, eventPath, err.Error())
		return
	}

	middleware.GetCache(c).InvalidateEvent(c.Request.Context(), id)
	helpers.Redirect(c, eventPath)
}

// AdminCreateEvent creates an event on behalf of the admin. Only the name is
// required here; like any other submission it starts out pending.
func AdminCreateEvent(c *gin.Context) {
	adminID := c.GetString("user_id")

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		helpers.RedirectWithError(c, "/admin/events/new", "missing_name")
		return
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RedirectWithError(c, "/admin/events/new", "Database connection not found.")
		return
	}

	var posterURL *string
	if posterFile, err := c.FormFile("poster"); err == nil {
		url, upErr := storage.UploadImage(middleware.GetStore(c), posterFile, storage.BucketEventPosters, adminID)
		if upErr != nil {
			helpers.RedirectWithError(c, "/admin/events/new", upErr.Error())
			return
		}
		posterURL = &url
	}

	feeType, feeAmount := models.DeriveFee(c.PostForm("registration_fee_type"), c.PostForm("registration_fee_amount"))
	memberLimit, isUnlimited := models.DeriveCapacity(c.PostForm("member_limit"))

	event := models.Event{
		UserID:                mustParseUUID(adminID),
		Name:                  name,
		OrganizationName:      helpers.TrimOrNil(c.PostForm("organization_name")),
		Description:           helpers.TrimOrNil(c.PostForm("description")),
		Category:              models.ParseCategories(c.PostForm("category")),
		Location:              helpers.TrimOrNil(c.PostForm("location")),
		EventDate:             helpers.ParseDateOrNil(c.PostForm("event_date")),
		EventTime:             helpers.TrimOrNil(c.PostForm("event_time")),
		PosterURL:             posterURL,
		RegistrationFeeType:   feeType,
		RegistrationFeeAmount: feeAmount,
		MemberLimit:           memberLimit,
		IsUnlimited:           isUnlimited,
		OrganiserName:         helpers.TrimOrNil(c.PostForm("organiser_name")),
		OrganiserPhone:        helpers.TrimOrNil(c.PostForm("organiser_phone")),
		OrganiserEmail:        helpers.TrimOrNil(c.PostForm("organiser_email")),
		Status:                models.StatusPending,
		IsFeatured:            false,
	}

	if err := gormDB.Create(&event).Error; err != nil {
		helpers.RedirectWithError(c, "/admin/events/new", err.Error())
		return
	}

	middleware.GetCache(c).InvalidateEvent(c.Request.Context(), event.ID.String())
	helpers.Redirect(c, "/admin/events")
}

// AdminUpdateEvent is the full moderation edit: every content field plus
// status and the featured flag are overwritten from the form, blanks becoming
// null. A replacement poster is keyed under the OWNER'S namespace, not the
// admin's, and the old blob is removed best-effort.
func AdminUpdateEvent(c *gin.Context) {
	id := c.PostForm("id")
	if id == "" {
		helpers.RedirectWithError(c, "/admin/events", "missing_id")
		return
	}
	eventPath := "/admin/events/" + id

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RedirectWithError(c, eventPath, "Database connection not found.")
		return
	}

	var event models.Event
	if err := gormDB.Where("id = ?", id).First(&event).Error; err != nil {
		helpers.RedirectWithError(c, eventPath, "not_found")
		return
	}

	requested := models.Status(c.PostForm("status"))
	if requested == "" {
		requested = models.StatusPending
	}
	newStatus, err := models.Transition(event.Status, requested)
	if err != nil {
		helpers.RedirectWithError(c, eventPath, err.Error())
		return
	}

	event.Name = strings.TrimSpace(c.PostForm("name"))
	event.OrganizationName = helpers.TrimOrNil(c.PostForm("organization_name"))
	event.Description = helpers.TrimOrNil(c.PostForm("description"))
	event.Category = models.ParseCategories(c.PostForm("category"))
	event.Location = helpers.TrimOrNil(c.PostForm("location"))
	event.EventDate = helpers.ParseDateOrNil(c.PostForm("event_date"))
	event.EventTime = helpers.TrimOrNil(c.PostForm("event_time"))
	event.RegistrationFeeType, event.RegistrationFeeAmount = models.DeriveFee(
		c.PostForm("registration_fee_type"), c.PostForm("registration_fee_amount"))
	event.MemberLimit, event.IsUnlimited = models.DeriveCapacity(c.PostForm("member_limit"))
	event.OrganiserName = helpers.TrimOrNil(c.PostForm("organiser_name"))
	event.OrganiserPhone = helpers.TrimOrNil(c.PostForm("organiser_phone"))
	event.OrganiserEmail = helpers.TrimOrNil(c.PostForm("organiser_email"))
	event.Status = newStatus
	event.IsFeatured = c.PostForm("is_featured") == "on"

	if posterFile, err := c.FormFile("poster"); err == nil {
		replacePoster(c, &event, posterFile, event.UserID.String(), eventPath)
		if c.IsAborted() {
			return
		}
	}

	if err := gormDB.Save(&event).Error; err != nil {
		helpers.RedirectWithError(c, eventPath, err.Error())
		return
	}

	middleware.GetCache(c).InvalidateEvent(c.Request.Context(), id)
	helpers.Redirect(c, eventPath)
}

// AdminDeleteEvent removes any event. The row delete is authoritative: blob
// cleanup afterwards is fire-and-forget.
func AdminDeleteEvent(c *gin.Context) {
	id := c.PostForm("id")
	if id == "" {
		helpers.RedirectWithError(c, "/admin/events", "missing_id")
		return
	}
	eventPath := "/admin/events/" + id

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RedirectWithError(c, eventPath, "Database connection not found.")
		return
	}

	var event models.Event
	if err := gormDB.Where("id = ?", id).First(&event).Error; err != nil {
		helpers.RedirectWithError(c, eventPath, "not_found")
		return
	}

	if err := gormDB.Where("id = ?", id).Delete(&models.Event{}).Error; err != nil {
		helpers.RedirectWithError(c, eventPath, err.Error())
		return
	}

	removePosterBlob(c, event.PosterURL)
	middleware.GetCache(c).InvalidateEvent(c.Request.Context(), id)
	helpers.Redirect(c, "/admin/events")
}
