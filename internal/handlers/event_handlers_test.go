package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketline/ticketline/internal/models"
)

func TestCreateEventRequiresOrganizerRole(t *testing.T) {
	srv := newTestServer(t)
	user := srv.register(t, "user@x.com")

	rec := srv.do(t, http.MethodPost, "/api/v1/events", map[string]interface{}{
		"title": "Spring Gala",
	}, user.AccessToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/v1/events", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateEvent(t *testing.T) {
	srv := newTestServer(t)
	org := srv.registerWithRole(t, "org@x.com", models.RoleOrganizer)

	venue := models.Venue{Name: "Main Hall", Address: "1 Main St", City: "Riga", Capacity: 200}
	require.NoError(t, srv.db.Create(&venue).Error)

	rec := srv.do(t, http.MethodPost, "/api/v1/events", map[string]interface{}{
		"title":       "Spring Gala",
		"description": "An evening of music",
		"venue_id":    venue.ID,
		"starts_at":   time.Now().Add(30 * 24 * time.Hour).Format(time.RFC3339),
		"price_cents": 2500,
		"seats_total": 150,
		"published":   true,
	}, org.AccessToken)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var event models.Event
	decodeJSON(t, rec, &event)
	assert.Equal(t, org.User.ID, event.OrganizerID)
	assert.EqualValues(t, 150, event.SeatsAvailable, "available seats start at the total")
}

func TestCreateEventChecksVenue(t *testing.T) {
	srv := newTestServer(t)
	org := srv.registerWithRole(t, "org@x.com", models.RoleOrganizer)

	// Unknown venue.
	rec := srv.do(t, http.MethodPost, "/api/v1/events", map[string]interface{}{
		"title":       "Spring Gala",
		"venue_id":    999,
		"starts_at":   time.Now().Add(time.Hour).Format(time.RFC3339),
		"seats_total": 10,
	}, org.AccessToken)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Seats beyond capacity.
	venue := models.Venue{Name: "Small Room", Address: "2 Side St", City: "Riga", Capacity: 20}
	require.NoError(t, srv.db.Create(&venue).Error)

	rec = srv.do(t, http.MethodPost, "/api/v1/events", map[string]interface{}{
		"title":       "Spring Gala",
		"venue_id":    venue.ID,
		"starts_at":   time.Now().Add(time.Hour).Format(time.RFC3339),
		"seats_total": 50,
	}, org.AccessToken)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// Unpublished events are invisible on the public surface.
func TestGetEventHidesUnpublished(t *testing.T) {
	srv := newTestServer(t)
	hidden := srv.seedEvent(t, "org-1", 10, false)

	rec := srv.do(t, http.MethodGet, eventPath(hidden.ID), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	visible := srv.seedEvent(t, "org-1", 10, true)
	rec = srv.do(t, http.MethodGet, eventPath(visible.ID), nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/events", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Total  int64          `json:"total"`
		Events []models.Event `json:"events"`
	}
	decodeJSON(t, rec, &list)
	assert.EqualValues(t, 1, list.Total)
	require.Len(t, list.Events, 1)
	assert.Equal(t, visible.ID, list.Events[0].ID)
}

// Mutations are owner-or-admin: another organizer gets 403, an admin gets
// through.
func TestPatchEventOwnership(t *testing.T) {
	srv := newTestServer(t)
	owner := srv.registerWithRole(t, "owner@x.com", models.RoleOrganizer)
	other := srv.registerWithRole(t, "other@x.com", models.RoleOrganizer)
	admin := srv.registerWithRole(t, "admin@x.com", models.RoleAdmin)

	event := srv.seedEvent(t, owner.User.ID, 10, true)
	patch := map[string]interface{}{"title": "Renamed"}

	rec := srv.do(t, http.MethodPatch, eventPath(event.ID), patch, other.AccessToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(t, http.MethodPatch, eventPath(event.ID), patch, owner.AccessToken)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodPatch, eventPath(event.ID), map[string]interface{}{"published": false}, admin.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)

	var stored models.Event
	require.NoError(t, srv.db.First(&stored, event.ID).Error)
	assert.Equal(t, "Renamed", stored.Title)
	assert.False(t, stored.Published)
}

func TestDeleteEventOwnership(t *testing.T) {
	srv := newTestServer(t)
	owner := srv.registerWithRole(t, "owner@x.com", models.RoleOrganizer)
	other := srv.registerWithRole(t, "other@x.com", models.RoleOrganizer)

	event := srv.seedEvent(t, owner.User.ID, 10, true)

	rec := srv.do(t, http.MethodDelete, eventPath(event.ID), nil, other.AccessToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(t, http.MethodDelete, eventPath(event.ID), nil, owner.AccessToken)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = srv.do(t, http.MethodGet, eventPath(event.ID), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVenueCRUDAdminOnly(t *testing.T) {
	srv := newTestServer(t)
	user := srv.register(t, "user@x.com")
	admin := srv.registerWithRole(t, "admin@x.com", models.RoleAdmin)

	body := map[string]interface{}{
		"name":     "Main Hall",
		"address":  "1 Main St",
		"city":     "Riga",
		"capacity": 500,
	}

	rec := srv.do(t, http.MethodPost, "/api/v1/venues", body, user.AccessToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/v1/venues", body, admin.AccessToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	var venue models.Venue
	decodeJSON(t, rec, &venue)

	// Reads are public.
	rec = srv.do(t, http.MethodGet, "/api/v1/venues", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var venues []models.Venue
	decodeJSON(t, rec, &venues)
	assert.Len(t, venues, 1)

	rec = srv.do(t, http.MethodGet, "/api/v1/venues?city=Vilnius", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &venues)
	assert.Empty(t, venues)
}
