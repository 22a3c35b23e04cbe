package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Oceanbluesol/cmhindia/internal/helpers"
	"github.com/Oceanbluesol/cmhindia/internal/middleware"
	"github.com/Oceanbluesol/cmhindia/internal/models"
	"github.com/Oceanbluesol/cmhindia/internal/storage"
)

// MyEvents lists the signed-in organizer's submissions, newest first, with the
// same q/status filters the dashboard page exposes as tabs.
func MyEvents(c *gin.Context) {
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

	query := gormDB.Model(&models.Event{}).Where("user_id = ?", userID)

	if status := models.Status(c.Query("status")); status.Valid() {
		query = query.Where("status = ?", status)
	}
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		query = searchFilter(query, q)
	}

	var events []models.Event
	if err := query.Order("created_at DESC").Find(&events).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving events.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// CreateEvent submits a new event for moderation. Everything an attendee sees
// on the card is required up front, including the poster; the event always
// starts out pending and unfeatured.
func CreateEvent(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		helpers.Redirect(c, "/auth/login")
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	organizationName := strings.TrimSpace(c.PostForm("organization_name"))
	description := strings.TrimSpace(c.PostForm("description"))
	eventDate := helpers.ParseDateOrNil(c.PostForm("event_date"))
	eventTime := helpers.TrimOrNil(c.PostForm("event_time"))
	location := strings.TrimSpace(c.PostForm("location"))

	if name == "" || organizationName == "" || description == "" || eventDate == nil || eventTime == nil || location == "" {
		helpers.RedirectWithError(c, "/dashboard/events/new", "Please fill all required fields.")
		return
	}

	categories := c.PostFormArray("category")
	if len(categories) == 0 {
		categories = []string{"general"}
	}

	feeType, feeAmount := models.DeriveFee(c.PostForm("registration_fee_type"), c.PostForm("registration_fee_amount"))

	var memberLimit *int
	isUnlimited := true
	if c.PostForm("is_unlimited") != "on" {
		memberLimit, isUnlimited = models.DeriveCapacity(c.PostForm("member_limit"))
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RedirectWithError(c, "/dashboard/events/new", "Database connection not found.")
		return
	}

	posterFile, err := c.FormFile("poster")
	if err != nil {
		helpers.RedirectWithError(c, "/dashboard/events/new", "Please upload an event poster image.")
		return
	}
	posterURL, err := storage.UploadImage(middleware.GetStore(c), posterFile, storage.BucketEventPosters, userID)
	if err != nil {
		helpers.RedirectWithError(c, "/dashboard/events/new", "Poster upload failed: "+err.Error())
		return
	}

	event := models.Event{
		UserID:                mustParseUUID(userID),
		Name:                  name,
		OrganizationName:      &organizationName,
		Description:           &description,
		Category:              categories,
		Location:              &location,
		EventDate:             eventDate,
		EventTime:             eventTime,
		PosterURL:             &posterURL,
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
		helpers.RedirectWithError(c, "/dashboard/events/new", err.Error())
		return
	}

	middleware.GetCache(c).InvalidateEvent(c.Request.Context(), event.ID.String())
	helpers.RedirectWithSuccess(c, "/dashboard/events", "created")
}

// UpdateEvent lets an owner rework a submission. Content fields are
// overwritten wholesale, blanks becoming null; status and the featured flag
// stay admin-only.
func UpdateEvent(c *gin.Context) {
	eventID := c.Param("id")
	eventPath := "/dashboard/events/" + eventID
	userID := c.GetString("user_id")
	if userID == "" {
		helpers.Redirect(c, "/auth/login")
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		helpers.RedirectWithError(c, eventPath, "Event name is required.")
		return
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RedirectWithError(c, eventPath, "Database connection not found.")
		return
	}

	var event models.Event
	if err := gormDB.Where("id = ? AND user_id = ?", eventID, userID).First(&event).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RedirectWithError(c, "/dashboard/events", "Event not found or you don't have permission to update.")
			return
		}
		helpers.RedirectWithError(c, eventPath, err.Error())
		return
	}

	event.Name = name
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

	if posterFile, err := c.FormFile("poster"); err == nil {
		replacePoster(c, &event, posterFile, userID, eventPath)
		if c.IsAborted() {
			return
		}
	}

	if err := gormDB.Save(&event).Error; err != nil {
		helpers.RedirectWithError(c, eventPath, err.Error())
		return
	}

	middleware.GetCache(c).InvalidateEvent(c.Request.Context(), eventID)
	helpers.RedirectWithSuccess(c, eventPath, "updated")
}

// DeleteEvent removes an owner's event. The row delete is authoritative; the
// poster blob is cleaned up afterwards on a best-effort basis and a failure
// there never fails the request.
func DeleteEvent(c *gin.Context) {
	eventID := c.Param("id")
	userID := c.GetString("user_id")
	if userID == "" {
		helpers.Redirect(c, "/auth/login")
		return
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RedirectWithError(c, "/dashboard/events", "Database connection not found.")
		return
	}

	var event models.Event
	if err := gormDB.Where("id = ? AND user_id = ?", eventID, userID).First(&event).Error; err != nil {
		helpers.RedirectWithError(c, "/dashboard/events", "Event not found or you don't have permission to delete.")
		return
	}

	result := gormDB.Where("id = ? AND user_id = ?", eventID, userID).Delete(&models.Event{})
	if result.Error != nil {
		helpers.RedirectWithError(c, "/dashboard/events", result.Error.Error())
		return
	}
	if result.RowsAffected == 0 {
		helpers.RedirectWithError(c, "/dashboard/events", "Event not found or you don't have permission to delete.")
		return
	}

	removePosterBlob(c, event.PosterURL)
	middleware.GetCache(c).InvalidateEvent(c.Request.Context(), eventID)
	helpers.RedirectWithSuccess(c, "/dashboard/events", "deleted")
}

// MyEventRSVPs lists guest responses across all of the organizer's events.
func MyEventRSVPs(c *gin.Context) {
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

	var rsvps []models.RSVP
	err := gormDB.
		Joins("JOIN events ON events.id = rsvps.event_id").
		Where("events.user_id = ?", userID).
		Order("rsvps.created_at DESC").
		Find(&rsvps).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving RSVPs.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"rsvps": rsvps})
}
