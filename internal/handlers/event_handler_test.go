package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Oceanbluesol/cmhindia/internal/models"
)

func decodeList(t *testing.T, body []byte) EventListResponse {
	t.Helper()
	var resp EventListResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp
}

func TestListEventsOnlyApprovedUpcoming(t *testing.T) {
	env := setupTestEnv(t)
	owner, _ := env.signIn(t, "owner@example.com", models.RoleUser)

	visible := env.createEvent(t, owner.ID, nil)
	env.createEvent(t, owner.ID, func(e *models.Event) {
		e.Name = "Pending Event"
		e.Status = models.StatusPending
	})
	env.createEvent(t, owner.ID, func(e *models.Event) {
		e.Name = "Rejected Event"
		e.Status = models.StatusRejected
	})
	env.createEvent(t, owner.ID, func(e *models.Event) {
		e.Name = "Past Event"
		past := time.Now().UTC().AddDate(0, 0, -3)
		e.EventDate = &past
	})

	w := env.get(t, "/events")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeList(t, w.Body.Bytes())
	require.Len(t, resp.Events, 1)
	assert.Equal(t, visible.ID, resp.Events[0].ID)
	assert.Equal(t, int64(1), resp.Total)
}

func TestListEventsSearchMatchesAcrossColumns(t *testing.T) {
	env := setupTestEnv(t)
	owner, _ := env.signIn(t, "owner@example.com", models.RoleUser)

	env.createEvent(t, owner.ID, func(e *models.Event) { e.Name = "Jazz Night" })
	env.createEvent(t, owner.ID, func(e *models.Event) {
		e.Name = "Other"
		desc := "An evening of jazz standards"
		e.Description = &desc
	})
	env.createEvent(t, owner.ID, func(e *models.Event) {
		e.Name = "Third"
		loc := "Jazz Street 5"
		e.Location = &loc
	})
	env.createEvent(t, owner.ID, func(e *models.Event) { e.Name = "Cooking Class" })

	w := env.get(t, "/events?q=JAZZ")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeList(t, w.Body.Bytes())
	assert.Len(t, resp.Events, 3, "name, description and location all match, case-insensitively")
}

func TestListEventsOrderedByDate(t *testing.T) {
	env := setupTestEnv(t)
	owner, _ := env.signIn(t, "owner@example.com", models.RoleUser)

	later := env.createEvent(t, owner.ID, func(e *models.Event) {
		e.Name = "Later"
		d := time.Now().UTC().AddDate(0, 0, 30)
		e.EventDate = &d
	})
	sooner := env.createEvent(t, owner.ID, func(e *models.Event) {
		e.Name = "Sooner"
		d := time.Now().UTC().AddDate(0, 0, 2)
		e.EventDate = &d
	})

	w := env.get(t, "/events")
	resp := decodeList(t, w.Body.Bytes())
	require.Len(t, resp.Events, 2)
	assert.Equal(t, sooner.ID, resp.Events[0].ID)
	assert.Equal(t, later.ID, resp.Events[1].ID)
}

func TestFeaturedEventsFloatToFront(t *testing.T) {
	env := setupTestEnv(t)
	owner, _ := env.signIn(t, "owner@example.com", models.RoleUser)

	env.createEvent(t, owner.ID, func(e *models.Event) {
		e.Name = "Plain Soon"
		d := time.Now().UTC().AddDate(0, 0, 1)
		e.EventDate = &d
	})
	featured := env.createEvent(t, owner.ID, func(e *models.Event) {
		e.Name = "Featured Later"
		e.IsFeatured = true
		d := time.Now().UTC().AddDate(0, 0, 20)
		e.EventDate = &d
	})

	w := env.get(t, "/events/featured")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeList(t, w.Body.Bytes())
	require.Len(t, resp.Events, 2)
	assert.Equal(t, featured.ID, resp.Events[0].ID, "featured rows come first even with later dates")
}

func TestGetEventHidesUnapproved(t *testing.T) {
	env := setupTestEnv(t)
	owner, _ := env.signIn(t, "owner@example.com", models.RoleUser)

	pending := env.createEvent(t, owner.ID, func(e *models.Event) {
		e.Status = models.StatusPending
	})

	w := env.get(t, "/events/"+pending.ID.String())
	assert.Equal(t, http.StatusNotFound, w.Code)

	approved := env.createEvent(t, owner.ID, nil)
	w = env.get(t, "/events/"+approved.ID.String())
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSubmitRSVPRequiresNameAndEmail(t *testing.T) {
	env := setupTestEnv(t)
	owner, _ := env.signIn(t, "owner@example.com", models.RoleUser)
	event := env.createEvent(t, owner.ID, nil)
	path := "/events/" + event.ID.String() + "/rsvp"

	w := env.postForm(t, path, url.Values{"guest_email": {"guest@example.com"}})
	requireRedirect(t, w, "/events/"+event.ID.String()+"?error=")

	w = env.postForm(t, path, url.Values{"guest_name": {"Guest"}})
	requireRedirect(t, w, "/events/"+event.ID.String()+"?error=")

	w = env.postForm(t, path, url.Values{
		"guest_name":  {"  "},
		"guest_email": {"guest@example.com"},
	})
	requireRedirect(t, w, "/events/"+event.ID.String()+"?error=")

	var count int64
	env.db.Model(&models.RSVP{}).Count(&count)
	assert.Zero(t, count, "no row is inserted on validation failure")
}

func TestSubmitRSVPStoresNullPhoneWhenOmitted(t *testing.T) {
	env := setupTestEnv(t)
	owner, _ := env.signIn(t, "owner@example.com", models.RoleUser)
	event := env.createEvent(t, owner.ID, nil)
	path := "/events/" + event.ID.String() + "/rsvp"

	w := env.postForm(t, path, url.Values{
		"guest_name":  {"Asha"},
		"guest_email": {"asha@example.com"},
	})
	requireRedirect(t, w, "/events/"+event.ID.String()+"?success=rsvp")

	var rsvp models.RSVP
	require.NoError(t, env.db.Where("event_id = ?", event.ID).First(&rsvp).Error)
	assert.Equal(t, "Asha", rsvp.GuestName)
	assert.Equal(t, "asha@example.com", rsvp.GuestEmail)
	assert.Nil(t, rsvp.GuestPhone)

	w = env.postForm(t, path, url.Values{
		"guest_name":  {"Ravi"},
		"guest_email": {"ravi@example.com"},
		"guest_phone": {"+91 98765 43210"},
	})
	requireRedirect(t, w, "/events/"+event.ID.String()+"?success=rsvp")

	require.NoError(t, env.db.Where("guest_email = ?", "ravi@example.com").First(&rsvp).Error)
	require.NotNil(t, rsvp.GuestPhone)
	assert.Equal(t, "+91 98765 43210", *rsvp.GuestPhone)
}

func TestSubmitRSVPDoesNotEnforceCapacity(t *testing.T) {
	env := setupTestEnv(t)
	owner, _ := env.signIn(t, "owner@example.com", models.RoleUser)
	limit := 1
	event := env.createEvent(t, owner.ID, func(e *models.Event) {
		e.MemberLimit = &limit
		e.IsUnlimited = false
	})
	path := "/events/" + event.ID.String() + "/rsvp"

	for _, guest := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		w := env.postForm(t, path, url.Values{
			"guest_name":  {"Guest"},
			"guest_email": {guest},
		})
		requireRedirect(t, w, "/events/"+event.ID.String()+"?success=rsvp")
	}

	count, err := CountRSVPs(env.db, event.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count, "the member limit is tracked but never enforced")
}

func TestSubmitRSVPInvalidEventID(t *testing.T) {
	env := setupTestEnv(t)

	w := env.postForm(t, "/events/not-a-uuid/rsvp", url.Values{
		"guest_name":  {"Guest"},
		"guest_email": {"guest@example.com"},
	})
	requireRedirect(t, w, "/events?error=")
}
