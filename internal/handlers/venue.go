package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ticketline/ticketline/internal/models"
)

type VenueHandler struct {
	DB *gorm.DB
}

func (h *VenueHandler) CreateVenue(c echo.Context) error {
	var req struct {
		Name     string `json:"name"`
		Address  string `json:"address"`
		City     string `json:"city"`
		Capacity uint   `json:"capacity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" || req.City == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "name and city are required")
	}

	venue := models.Venue{
		Name:     req.Name,
		Address:  req.Address,
		City:     req.City,
		Capacity: req.Capacity,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&venue).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create venue")
	}
	return c.JSON(http.StatusCreated, venue)
}

func (h *VenueHandler) GetVenue(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	var venue models.Venue
	if err := h.DB.WithContext(c.Request().Context()).First(&venue, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "venue not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load venue")
	}
	return c.JSON(http.StatusOK, venue)
}

func (h *VenueHandler) GetVenues(c echo.Context) error {
	q := h.DB.WithContext(c.Request().Context()).Model(&models.Venue{})
	if city := c.QueryParam("city"); city != "" {
		q = q.Where("city = ?", city)
	}

	var venues []models.Venue
	if err := q.Order("name ASC").Find(&venues).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list venues")
	}
	return c.JSON(http.StatusOK, venues)
}

func (h *VenueHandler) PatchVenue(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	var venue models.Venue
	ctx := c.Request().Context()
	if err := h.DB.WithContext(ctx).First(&venue, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "venue not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load venue")
	}

	var req struct {
		Name     *string `json:"name"`
		Address  *string `json:"address"`
		City     *string `json:"city"`
		Capacity *uint   `json:"capacity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if req.Name != nil {
		venue.Name = *req.Name
	}
	if req.Address != nil {
		venue.Address = *req.Address
	}
	if req.City != nil {
		venue.City = *req.City
	}
	if req.Capacity != nil {
		venue.Capacity = *req.Capacity
	}

	if err := h.DB.WithContext(ctx).Save(&venue).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update venue")
	}
	return c.JSON(http.StatusOK, venue)
}

func (h *VenueHandler) DeleteVenue(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.DB.WithContext(c.Request().Context()).Delete(&models.Venue{}, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete venue")
	}
	return c.NoContent(http.StatusNoContent)
}
