package handlers

import (
	"errors"
	"net/http"

	"controlling_irrigation/internal/models"
	"controlling_irrigation/internal/service"

	"github.com/gin-gonic/gin"
)

// @Summary      Get settings
// @Tags         settings
// @Produce      json
// @Success      200  {object}  models.Settings
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/settings [get]
func (h *Handler) getSettings(c *gin.Context) {
	s, err := h.services.Configuration.GetSettings(c.Request.Context())
	if errors.Is(err, service.ErrSettingsMissing) {
		c.JSON(http.StatusNotFound, gin.H{"error": "settings not configured"})
		return
	}
	if err != nil {
		h.logAndJSONError(c, errorStatus(err), "failed to load settings", "settings_get_failed", err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// @Summary      Replace settings
// @Description  sequence: 8 durations in seconds (0 keeps the valve open), schedule: 7 flags Monday first, start_at: HH:MM
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        body  body      models.Settings  true  "Settings document"
// @Success      200   {object}  models.Settings
// @Failure      400   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/settings [put]
func (h *Handler) updateSettings(c *gin.Context) {
	var req models.Settings
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if err := h.services.Configuration.UpdateSettings(c.Request.Context(), req); err != nil {
		h.logAndJSONError(c, errorStatus(err), err.Error(), "settings_update_failed", err)
		return
	}
	c.JSON(http.StatusOK, req)
}
