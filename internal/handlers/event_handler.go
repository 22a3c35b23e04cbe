package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Oceanbluesol/cmhindia/internal/cache"
	"github.com/Oceanbluesol/cmhindia/internal/helpers"
	"github.com/Oceanbluesol/cmhindia/internal/middleware"
	"github.com/Oceanbluesol/cmhindia/internal/models"
)

const (
	defaultListLimit  = 100
	featuredListLimit = 48
)

type EventListResponse struct {
	Events []models.Event `json:"events"`
	Total  int64          `json:"total"`
	Offset int            `json:"offset"`
	Limit  int            `json:"limit"`
}

// upcomingApproved scopes a query to the publicly visible slice: approved
// events whose date has not passed. Expiry is purely a query-time filter;
// nothing ever flips a stored status when the date goes by.
func upcomingApproved(gormDB *gorm.DB) *gorm.DB {
	return gormDB.Model(&models.Event{}).
		Where("status = ?", models.StatusApproved).
		Where("event_date >= ?", helpers.Today())
}

// searchFilter adds the free-text OR-match across the public columns.
func searchFilter(query *gorm.DB, q string) *gorm.DB {
	like := "%" + strings.ToLower(q) + "%"
	return query.Where(
		"LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(location) LIKE ?",
		like, like, like,
	)
}

func ListEvents(c *gin.Context) {
	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	q := strings.TrimSpace(c.Query("q"))
	offset, err := helpers.StringToInt(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid offset.")
		return
	}
	limit, err := helpers.StringToInt(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}

	viewCache := middleware.GetCache(c)
	cacheable := q == "" && offset == 0 && limit == defaultListLimit
	if cacheable {
		var cached EventListResponse
		if viewCache.GetJSON(c.Request.Context(), cache.KeyEventList, &cached) {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	query := upcomingApproved(gormDB)
	if q != "" {
		query = searchFilter(query, q)
	}

	var totalCount int64
	query.Count(&totalCount)

	var events []models.Event
	err = query.Order("event_date ASC").Offset(offset).Limit(limit).Find(&events).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving events.")
		return
	}

	resp := EventListResponse{Events: events, Total: totalCount, Offset: offset, Limit: limit}
	if cacheable {
		viewCache.SetJSON(c.Request.Context(), cache.KeyEventList, resp)
	}
	c.JSON(http.StatusOK, resp)
}

// FeaturedEvents backs the landing carousel: featured rows float to the front,
// then soonest-first.
func FeaturedEvents(c *gin.Context) {
	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	viewCache := middleware.GetCache(c)
	var cached EventListResponse
	if viewCache.GetJSON(c.Request.Context(), cache.KeyEventFeatured, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	var events []models.Event
	err := upcomingApproved(gormDB).
		Order("is_featured DESC").
		Order("event_date ASC").
		Limit(featuredListLimit).
		Find(&events).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving events.")
		return
	}

	resp := EventListResponse{Events: events, Total: int64(len(events)), Limit: featuredListLimit}
	viewCache.SetJSON(c.Request.Context(), cache.KeyEventFeatured, resp)
	c.JSON(http.StatusOK, resp)
}

func GetEvent(c *gin.Context) {
	eventID := c.Param("id")

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	viewCache := middleware.GetCache(c)
	var cached models.Event
	if viewCache.GetJSON(c.Request.Context(), cache.KeyEventDetail(eventID), &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	var event models.Event
	err := upcomingApproved(gormDB).Where("id = ?", eventID).First(&event).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			// Inline not-found panel, not a redirect: the event may be
			// pending approval or already completed.
			helpers.RespondWithError(c, http.StatusNotFound, "Event not available.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}

	viewCache.SetJSON(c.Request.Context(), cache.KeyEventDetail(eventID), event)
	c.JSON(http.StatusOK, event)
}

// SubmitRSVP records an anonymous guest response. Guests need no account; the
// form asks for a name, an email and optionally a phone number. Nothing checks
// the RSVP count against the event's member limit.
func SubmitRSVP(c *gin.Context) {
	eventIDStr := c.Param("id")
	eventPath := "/events/" + eventIDStr

	eventID, err := uuid.Parse(eventIDStr)
	if err != nil {
		helpers.RedirectWithError(c, "/events", "Invalid event.")
		return
	}

	guestName := strings.TrimSpace(c.PostForm("guest_name"))
	guestEmail := strings.TrimSpace(c.PostForm("guest_email"))
	guestPhone := helpers.TrimOrNil(c.PostForm("guest_phone"))

	if guestName == "" || guestEmail == "" {
		helpers.RedirectWithError(c, eventPath, "Name and email are required.")
		return
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RedirectWithError(c, eventPath, "Database connection not found.")
		return
	}

	rsvp := models.RSVP{
		EventID:    eventID,
		GuestName:  guestName,
		GuestEmail: guestEmail,
		GuestPhone: guestPhone,
	}
	if err := gormDB.Create(&rsvp).Error; err != nil {
		helpers.RedirectWithError(c, eventPath, err.Error())
		return
	}

	middleware.GetCache(c).InvalidateEvent(c.Request.Context(), eventIDStr)
	helpers.RedirectWithSuccess(c, eventPath, "rsvp")
}

// CountRSVPs reports how many guests responded to an event. The member limit
// is not enforced anywhere; this exists so a capacity policy can be bolted on
// without a new query.
func CountRSVPs(gormDB *gorm.DB, eventID uuid.UUID) (int64, error) {
	var count int64
	err := gormDB.Model(&models.RSVP{}).Where("event_id = ?", eventID).Count(&count).Error
	return count, err
}
