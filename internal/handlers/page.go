package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ticketline/ticketline/internal/models"
)

// PageHandler serves the CMS pages: admins manage them, everyone reads the
// published ones.
type PageHandler struct {
	DB *gorm.DB
}

func (h *PageHandler) CreatePage(c echo.Context) error {
	var req struct {
		Slug      string `json:"slug"`
		Title     string `json:"title"`
		Body      string `json:"body"`
		Published bool   `json:"published"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Slug == "" || req.Title == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "slug and title are required")
	}

	page := models.Page{
		Slug:      req.Slug,
		Title:     req.Title,
		Body:      req.Body,
		Published: req.Published,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&page).Error; err != nil {
		return echo.NewHTTPError(http.StatusConflict, "slug already in use")
	}
	return c.JSON(http.StatusCreated, page)
}

func (h *PageHandler) GetPage(c echo.Context) error {
	slug := c.Param("slug")

	var page models.Page
	err := h.DB.WithContext(c.Request().Context()).
		Where("slug = ? AND published = ?", slug, true).
		First(&page).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "page not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load page")
	}
	return c.JSON(http.StatusOK, page)
}

func (h *PageHandler) GetPages(c echo.Context) error {
	var pages []models.Page
	err := h.DB.WithContext(c.Request().Context()).
		Where("published = ?", true).
		Order("slug ASC").
		Find(&pages).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list pages")
	}
	return c.JSON(http.StatusOK, pages)
}

func (h *PageHandler) PatchPage(c echo.Context) error {
	slug := c.Param("slug")
	ctx := c.Request().Context()

	var page models.Page
	if err := h.DB.WithContext(ctx).Where("slug = ?", slug).First(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "page not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load page")
	}

	var req struct {
		Title     *string `json:"title"`
		Body      *string `json:"body"`
		Published *bool   `json:"published"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if req.Title != nil {
		page.Title = *req.Title
	}
	if req.Body != nil {
		page.Body = *req.Body
	}
	if req.Published != nil {
		page.Published = *req.Published
	}

	if err := h.DB.WithContext(ctx).Save(&page).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update page")
	}
	return c.JSON(http.StatusOK, page)
}

func (h *PageHandler) DeletePage(c echo.Context) error {
	slug := c.Param("slug")

	err := h.DB.WithContext(c.Request().Context()).
		Where("slug = ?", slug).
		Delete(&models.Page{}).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete page")
	}
	return c.NoContent(http.StatusNoContent)
}
