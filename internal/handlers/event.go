package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ticketline/ticketline/internal/events"
	"github.com/ticketline/ticketline/internal/logging"
	mwauth "github.com/ticketline/ticketline/internal/middleware/auth"
	"github.com/ticketline/ticketline/internal/models"
	"github.com/ticketline/ticketline/internal/service/search"
	"github.com/ticketline/ticketline/internal/util"
)

type EventHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
	ES       *elasticsearch.Client
	Index    string
}

func (h *EventHandler) CreateEvent(c echo.Context) error {
	var req struct {
		Title       string    `json:"title"`
		Description string    `json:"description"`
		VenueID     uint      `json:"venue_id"`
		StartsAt    time.Time `json:"starts_at"`
		PriceCents  int64     `json:"price_cents"`
		SeatsTotal  uint      `json:"seats_total"`
		Published   bool      `json:"published"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Title == "" || req.VenueID == 0 || req.SeatsTotal == 0 || req.StartsAt.IsZero() {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "title, venue_id, seats_total and starts_at are required")
	}

	ctx := c.Request().Context()

	var venue models.Venue
	if err := h.DB.WithContext(ctx).First(&venue, req.VenueID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "venue does not exist")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load venue")
	}
	if req.SeatsTotal > venue.Capacity {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "seats exceed venue capacity")
	}

	event := models.Event{
		Title:          req.Title,
		Description:    req.Description,
		VenueID:        req.VenueID,
		OrganizerID:    mwauth.UserID(c),
		StartsAt:       req.StartsAt,
		PriceCents:     req.PriceCents,
		SeatsTotal:     req.SeatsTotal,
		SeatsAvailable: req.SeatsTotal,
		Published:      req.Published,
	}
	if err := h.DB.WithContext(ctx).Create(&event).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create event")
	}

	h.reindex(c, &event)
	publish(c, h.Producer, "event_events", fmt.Sprint(event.ID), map[string]interface{}{
		"type":     "event_created",
		"event_id": event.ID,
		"user_id":  event.OrganizerID,
	})

	return c.JSON(http.StatusCreated, event)
}

func (h *EventHandler) GetEvent(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	var event models.Event
	if err := h.DB.WithContext(c.Request().Context()).First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "event not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load event")
	}
	if !event.Published {
		return echo.NewHTTPError(http.StatusNotFound, "event not found")
	}
	return c.JSON(http.StatusOK, event)
}

func (h *EventHandler) GetEvents(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	ctx := c.Request().Context()
	q := h.DB.WithContext(ctx).Model(&models.Event{}).Where("published = ?", true)
	if venueID := parseIntDefault(c.QueryParam("venue_id"), 0); venueID > 0 {
		q = q.Where("venue_id = ?", venueID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot count events")
	}

	var items []models.Event
	if err := q.Order("starts_at ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list events")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total":  total,
		"page":   page,
		"events": items,
	})
}

func (h *EventHandler) PatchEvent(c echo.Context) error {
	event, err := h.ownedEvent(c)
	if err != nil {
		return err
	}

	var req struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		StartsAt    *time.Time `json:"starts_at"`
		PriceCents  *int64     `json:"price_cents"`
		Published   *bool      `json:"published"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.StartsAt != nil {
		event.StartsAt = *req.StartsAt
	}
	if req.PriceCents != nil {
		event.PriceCents = *req.PriceCents
	}
	if req.Published != nil {
		event.Published = *req.Published
	}

	if err := h.DB.WithContext(c.Request().Context()).Save(event).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update event")
	}

	h.reindex(c, event)
	publish(c, h.Producer, "event_events", fmt.Sprint(event.ID), map[string]interface{}{
		"type":     "event_updated",
		"event_id": event.ID,
	})

	return c.JSON(http.StatusOK, event)
}

func (h *EventHandler) DeleteEvent(c echo.Context) error {
	event, err := h.ownedEvent(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.DB.WithContext(ctx).Delete(&models.Event{}, event.ID).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete event")
	}

	if err := search.DeleteEvent(ctx, h.ES, h.Index, event.ID); err != nil {
		logging.FromContext(ctx).Error("es delete failed", "event_id", event.ID, "error", err)
	}
	publish(c, h.Producer, "event_events", fmt.Sprint(event.ID), map[string]interface{}{
		"type":     "event_deleted",
		"event_id": event.ID,
	})

	return c.NoContent(http.StatusNoContent)
}

// ownedEvent loads the event and enforces owner-or-admin on mutations.
func (h *EventHandler) ownedEvent(c echo.Context) (*models.Event, error) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return nil, err
	}

	var event models.Event
	if err := h.DB.WithContext(c.Request().Context()).First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "event not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "cannot load event")
	}

	if mwauth.Role(c) != models.RoleAdmin && event.OrganizerID != mwauth.UserID(c) {
		return nil, echo.NewHTTPError(http.StatusForbidden, "not enough rights")
	}
	return &event, nil
}

func (h *EventHandler) reindex(c echo.Context, event *models.Event) {
	ctx := c.Request().Context()
	if err := search.IndexEvent(ctx, h.ES, h.Index, event); err != nil {
		logging.FromContext(ctx).Error("es index failed", "event_id", event.ID, "error", err)
	}
}
