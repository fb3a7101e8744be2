package handlers

import (
	"net/http"

	"pumpsim/internal/config"

	"github.com/gin-gonic/gin"
)

// ConfigUpdateRequest documents the partial update payload; any subset of
// the four parameters may be supplied.
type ConfigUpdateRequest struct {
	FilterDegradationRateMinutes *float64 `json:"filter_degradation_rate_minutes,omitempty" example:"30"`
	AutoResetMinutes             *float64 `json:"auto_reset_minutes,omitempty" example:"3"`
	DefaultOperatingLevel        *float64 `json:"default_operating_level,omitempty" example:"75"`
	UpdateIntervalSeconds        *float64 `json:"update_interval_seconds,omitempty" example:"2"`
}

// @Summary      Get simulation parameters
// @Tags         config
// @Produce      json
// @Success      200  {object}  config.Snapshot
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/config [get]
// @Security     BearerAuth
func (h *Handler) getConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Settings.Get(c.Request.Context()))
}

// @Summary      Update simulation parameters
// @Description  Partial update; validation is all-or-nothing. A new update interval applies from the next tick.
// @Tags         config
// @Accept       json
// @Produce      json
// @Param        body  body   ConfigUpdateRequest  true  "Parameters to change"
// @Success      200   {object}  config.Snapshot
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/config [put]
// @Security     BearerAuth
func (h *Handler) updateConfig(c *gin.Context) {
	var req ConfigUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	snap, err := h.services.Settings.Update(c.Request.Context(), config.Update{
		FilterDegradationRateMinutes: req.FilterDegradationRateMinutes,
		AutoResetMinutes:             req.AutoResetMinutes,
		DefaultOperatingLevel:        req.DefaultOperatingLevel,
		UpdateIntervalSeconds:        req.UpdateIntervalSeconds,
	})
	if err != nil {
		h.writeCommandError(c, "config_update_failed", err)
		return
	}
	c.JSON(http.StatusOK, snap)
}
