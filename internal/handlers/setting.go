package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ticketline/ticketline/internal/models"
)

type SettingHandler struct {
	DB *gorm.DB
}

// GetSettings returns the public subset only; private keys never leave the
// admin surface.
func (h *SettingHandler) GetSettings(c echo.Context) error {
	var settings []models.Setting
	err := h.DB.WithContext(c.Request().Context()).
		Where("public = ?", true).
		Order("key ASC").
		Find(&settings).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list settings")
	}

	out := make(map[string]string, len(settings))
	for _, s := range settings {
		out[s.Key] = s.Value
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SettingHandler) GetAllSettings(c echo.Context) error {
	var settings []models.Setting
	err := h.DB.WithContext(c.Request().Context()).
		Order("key ASC").
		Find(&settings).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list settings")
	}
	return c.JSON(http.StatusOK, settings)
}

func (h *SettingHandler) UpsertSetting(c echo.Context) error {
	key := c.Param("key")
	if key == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid key")
	}

	var req struct {
		Value  string `json:"value"`
		Public bool   `json:"public"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	setting := models.Setting{Key: key, Value: req.Value, Public: req.Public}
	err := h.DB.WithContext(c.Request().Context()).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "public", "updated_at"}),
		}).
		Create(&setting).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot save setting")
	}
	return c.JSON(http.StatusOK, setting)
}

func (h *SettingHandler) DeleteSetting(c echo.Context) error {
	key := c.Param("key")
	if key == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid key")
	}

	err := h.DB.WithContext(c.Request().Context()).
		Delete(&models.Setting{}, "key = ?", key).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete setting")
	}
	return c.NoContent(http.StatusNoContent)
}
