package handlers

import (
	"errors"
	"net/http"

	"pumpsim"
	"pumpsim/internal/config"
	"pumpsim/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK          = "ok"
	statusStarted     = "started"
	statusStopped     = "stopped"
	statusLevelSet    = "level_set"
	statusFilterReset = "filter_reset"
	statusOilChanged  = "oil_changed"

	errGetState = "failed to load state"
)

// writeCommandError maps the service error taxonomy to protocol results:
// validation → 400, invalid transition → 409 (no partial effect),
// busy → 503 retryable, anything else → 500.
func (h *Handler) writeCommandError(c *gin.Context, logKey string, err error) {
	if h.log != nil {
		h.log.Errorw(logKey, "err", err)
	}
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, config.ErrInvalidParameter):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrBusy):
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// respondWithStatusAndState answers a successful command with the fresh snapshot.
func respondWithStatusAndState(c *gin.Context, status string, st pumpsim.PumpState) {
	c.JSON(http.StatusOK, gin.H{"status": status, "state": st})
}

// Request DTO for setting the operating level.
type levelRequest struct {
	Level float64 `json:"level" binding:"required"`
}

// SetLevelRequest is an exported model for Swagger docs of the level payload.
type SetLevelRequest struct {
	// Commanded operating level in percent, (0,100]
	Level float64 `json:"level" example:"65"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Start pump
// @Description  Transitions STOPPED → RUNNING at the commanded level. No-op if already running; rejected while alarmed.
// @Tags         pump
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/pump/start [post]
// @Security     BearerAuth
func (h *Handler) startPump(c *gin.Context) {
	st, err := h.services.Pump.Start(c.Request.Context())
	if err != nil {
		h.writeCommandError(c, "pump_start_failed", err)
		return
	}
	respondWithStatusAndState(c, statusStarted, st)
}

// @Summary      Stop pump
// @Tags         pump
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/pump/stop [post]
// @Security     BearerAuth
func (h *Handler) stopPump(c *gin.Context) {
	st, err := h.services.Pump.Stop(c.Request.Context())
	if err != nil {
		h.writeCommandError(c, "pump_stop_failed", err)
		return
	}
	respondWithStatusAndState(c, statusStopped, st)
}

// @Summary      Set operating level
// @Description  Level must be in (0,100]. Valid while stopped or running.
// @Tags         pump
// @Accept       json
// @Produce      json
// @Param        body  body   SetLevelRequest  true  "Level payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/v1/pump/level [put]
// @Security     BearerAuth
func (h *Handler) setOperatingLevel(c *gin.Context) {
	var req levelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	st, err := h.services.Pump.SetOperatingLevel(c.Request.Context(), req.Level)
	if err != nil {
		h.writeCommandError(c, "pump_set_level_failed", err)
		return
	}
	respondWithStatusAndState(c, statusLevelSet, st)
}

// @Summary      Reset filter
// @Description  Restores filter condition to 100. Clears an active alarm and returns the pump to STOPPED.
// @Tags         pump
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/pump/filter/reset [post]
// @Security     BearerAuth
func (h *Handler) resetFilter(c *gin.Context) {
	st, err := h.services.Pump.ResetFilter(c.Request.Context())
	if err != nil {
		h.writeCommandError(c, "pump_reset_filter_failed", err)
		return
	}
	respondWithStatusAndState(c, statusFilterReset, st)
}

// @Summary      Change oil
// @Description  Maintenance action; services the filter like a reset but tracked separately.
// @Tags         pump
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/pump/oil/change [post]
// @Security     BearerAuth
func (h *Handler) changeOil(c *gin.Context) {
	st, err := h.services.Pump.ChangeOil(c.Request.Context())
	if err != nil {
		h.writeCommandError(c, "pump_change_oil_failed", err)
		return
	}
	respondWithStatusAndState(c, statusOilChanged, st)
}

// @Summary      Get pump state
// @Tags         pump
// @Produce      json
// @Success      200  {object}  pumpsim.PumpState
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/pump/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	st, err := h.services.Monitoring.GetState(c.Request.Context())
	if err != nil {
		if h.log != nil {
			h.log.Errorw("pump_get_state_failed", "err", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": errGetState})
		return
	}
	c.JSON(http.StatusOK, st)
}
