package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ticketline/ticketline/internal/events"
	mwauth "github.com/ticketline/ticketline/internal/middleware/auth"
	"github.com/ticketline/ticketline/internal/models"
)

type BookingHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
}

var errSoldOut = errors.New("not enough seats")

// CreateBooking reserves seats inside one transaction. The conditional
// UPDATE is the oversell guard: a concurrent booking that would take the
// count below zero matches no rows.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	userID := mwauth.UserID(c)

	var req struct {
		EventID  uint `json:"event_id"`
		Quantity uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.EventID == 0 {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "event_id is required")
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	ctx := c.Request().Context()
	var booking models.Booking

	err := h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.First(&event, req.EventID).Error; err != nil {
			return err
		}
		if !event.Published {
			return gorm.ErrRecordNotFound
		}

		res := tx.Model(&models.Event{}).
			Where("id = ? AND seats_available >= ?", event.ID, req.Quantity).
			Update("seats_available", gorm.Expr("seats_available - ?", req.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errSoldOut
		}

		booking = models.Booking{
			Reference:   uuid.NewString(),
			UserID:      userID,
			EventID:     event.ID,
			Quantity:    req.Quantity,
			AmountCents: event.PriceCents * int64(req.Quantity),
			Status:      models.BookingConfirmed,
		}
		return tx.Create(&booking).Error
	})

	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "event not found")
	case errors.Is(err, errSoldOut):
		return echo.NewHTTPError(http.StatusConflict, "not enough seats available")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create booking")
	}

	publish(c, h.Producer, "booking_events", booking.Reference, map[string]interface{}{
		"type":      "booking_created",
		"reference": booking.Reference,
		"event_id":  booking.EventID,
		"user_id":   userID,
		"quantity":  booking.Quantity,
	})

	return c.JSON(http.StatusCreated, booking)
}

func (h *BookingHandler) GetBookings(c echo.Context) error {
	var bookings []models.Booking
	err := h.DB.WithContext(c.Request().Context()).
		Where("user_id = ?", mwauth.UserID(c)).
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list bookings")
	}
	return c.JSON(http.StatusOK, bookings)
}

// CancelBooking flips the status and puts the seats back in one transaction.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}
	userID := mwauth.UserID(c)
	ctx := c.Request().Context()

	var booking models.Booking
	txErr := h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&booking).Error; err != nil {
			return err
		}
		if booking.Status == models.BookingCancelled {
			return nil
		}

		booking.Status = models.BookingCancelled
		if err := tx.Save(&booking).Error; err != nil {
			return err
		}
		return tx.Model(&models.Event{}).
			Where("id = ?", booking.EventID).
			Update("seats_available", gorm.Expr("seats_available + ?", booking.Quantity)).Error
	})

	switch {
	case txErr == nil:
	case errors.Is(txErr, gorm.ErrRecordNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "booking not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot cancel booking")
	}

	publish(c, h.Producer, "booking_events", booking.Reference, map[string]interface{}{
		"type":      "booking_cancelled",
		"reference": booking.Reference,
		"event_id":  booking.EventID,
		"user_id":   userID,
	})

	return c.JSON(http.StatusOK, booking)
}

// GetEventBookings lists every booking of one event; admin only (enforced
// in the router).
func (h *BookingHandler) GetEventBookings(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	var bookings []models.Booking
	dbErr := h.DB.WithContext(c.Request().Context()).
		Where("event_id = ?", id).
		Order("created_at DESC").
		Find(&bookings).Error
	if dbErr != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("cannot list bookings for event %d", id))
	}
	return c.JSON(http.StatusOK, bookings)
}
