package handlers

import (
	"errors"
	"net/http"

	"controlling_irrigation/internal/models"
	"controlling_irrigation/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK = "ok"

	errGetMode         = "failed to load mode"
	errGetStatus       = "failed to load status"
	errGetState        = "failed to load state"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// errorStatus maps controller errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidMode),
		errors.Is(err, service.ErrInvalidIndex),
		errors.Is(err, service.ErrInvalidSettings),
		errors.Is(err, service.ErrInvalidFilter):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNotPaused),
		errors.Is(err, service.ErrNoActiveStep),
		errors.Is(err, service.ErrSettingsMissing),
		errors.Is(err, service.ErrStatusMalformed):
		return http.StatusConflict
	case errors.Is(err, service.ErrDriver):
		return http.StatusBadGateway
	case errors.Is(err, service.ErrPersistence):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ActionResponse is returned by every command endpoint.
type ActionResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	CurrentMode string `json:"current_mode,omitempty"`
	Error       string `json:"error,omitempty"`
}

// respondAction reports the outcome of a command together with the mode
// read back afterwards (best-effort).
func (h *Handler) respondAction(c *gin.Context, err error, okMsg, failMsg, logKey string) {
	resp := ActionResponse{Success: err == nil, Message: okMsg}
	if mode, merr := h.services.ModeControl.GetMode(c.Request.Context()); merr == nil {
		resp.CurrentMode = string(mode)
	}
	if err != nil {
		if h.log != nil {
			h.log.Errorw(logKey, "err", err)
		}
		resp.Message = failMsg
		resp.Error = err.Error()
		c.JSON(errorStatus(err), resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ModeResponse describes the persisted mode.
type ModeResponse struct {
	Current      string            `json:"current" example:"auto"`
	PreviousMode string            `json:"previous_mode,omitempty"`
	PausedAt     *int64            `json:"paused_at,omitempty"`
	ValidModes   []models.ModeName `json:"valid_modes"`
}

func newModeResponse(m models.Mode) ModeResponse {
	doc := m.Document()
	return ModeResponse{
		Current:      doc.Current,
		PreviousMode: doc.PreviousMode,
		PausedAt:     doc.PausedAt,
		ValidModes:   models.ValidModes,
	}
}

// SetModeRequest is the payload of POST /api/v1/mode.
type SetModeRequest struct {
	// Mode to set. Allowed: manual, auto, semi_auto, pause
	Mode string `json:"mode" binding:"required" example:"auto"`
}

// StatusResponse wraps the status document.
type StatusResponse struct {
	Status            *models.Status `json:"status"`
	HasActiveSequence bool           `json:"has_active_sequence"`
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

// @Summary      Get mode
// @Tags         mode
// @Produce      json
// @Success      200  {object}  ModeResponse
// @Failure      404  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/mode [get]
func (h *Handler) getMode(c *gin.Context) {
	m, err := h.services.ModeControl.GetModeState(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, errorStatus(err), errGetMode, "mode_get_failed", err)
		return
	}
	c.JSON(http.StatusOK, newModeResponse(m))
}

// @Summary      Set mode
// @Description  Plain switch; pause metadata is dropped. Use /pause and /resume for a resumable pause.
// @Tags         mode
// @Accept       json
// @Produce      json
// @Param        body  body      SetModeRequest  true  "Mode payload"
// @Success      200   {object}  ModeResponse
// @Failure      400   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/mode [post]
func (h *Handler) setMode(c *gin.Context) {
	var req SetModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	ctx := c.Request.Context()
	if err := h.services.ModeControl.SetMode(ctx, models.ModeName(req.Mode)); err != nil {
		h.logAndJSONError(c, errorStatus(err), err.Error(), "mode_set_failed", err, "mode", req.Mode)
		return
	}
	m, err := h.services.ModeControl.GetModeState(ctx)
	if err != nil {
		h.logAndJSONError(c, errorStatus(err), errGetMode, "mode_get_failed", err)
		return
	}
	c.JSON(http.StatusOK, newModeResponse(m))
}

// @Summary      Get sequence status
// @Tags         sequence
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      409  {object}  map[string]string
// @Router       /api/v1/status [get]
func (h *Handler) getStatus(c *gin.Context) {
	st, err := h.services.Monitoring.GetStatus(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, errorStatus(err), errGetStatus, "status_get_failed", err)
		return
	}
	c.JSON(http.StatusOK, StatusResponse{Status: st, HasActiveSequence: st != nil})
}

// @Summary      Get controller state
// @Description  Mode, status and remaining seconds of the active step.
// @Tags         sequence
// @Produce      json
// @Success      200  {object}  service.State
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/state [get]
func (h *Handler) getState(c *gin.Context) {
	st, err := h.services.Monitoring.GetState(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, errorStatus(err), errGetState, "state_get_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Pause
// @Description  Closes every valve and remembers the mode. Idempotent.
// @Tags         control
// @Produce      json
// @Success      200  {object}  ActionResponse
// @Failure      404  {object}  ActionResponse
// @Failure      502  {object}  ActionResponse
// @Router       /api/v1/pause [post]
func (h *Handler) pause(c *gin.Context) {
	err := h.services.PauseControl.Pause(c.Request.Context())
	h.respondAction(c, err, "System paused successfully", "Failed to pause system", "pause_failed")
}

// @Summary      Resume
// @Description  Reopens the paused valve, shifts its deadline by the pause length and restores the mode.
// @Tags         control
// @Produce      json
// @Success      200  {object}  ActionResponse
// @Failure      409  {object}  ActionResponse
// @Failure      502  {object}  ActionResponse
// @Router       /api/v1/resume [post]
func (h *Handler) resume(c *gin.Context) {
	err := h.services.PauseControl.Resume(c.Request.Context())
	h.respondAction(c, err, "System resumed successfully", "Failed to resume system", "resume_failed")
}

// @Summary      Reset
// @Description  Closes every valve and clears the status. The mode is unchanged.
// @Tags         control
// @Produce      json
// @Success      200  {object}  ActionResponse
// @Failure      502  {object}  ActionResponse
// @Router       /api/v1/reset [post]
func (h *Handler) reset(c *gin.Context) {
	err := h.services.ModeControl.Reset(c.Request.Context())
	h.respondAction(c, err, "System reset successfully", "Failed to reset system", "reset_failed")
}

// @Summary      Manual
// @Description  Closes every valve, clears the status and switches to manual.
// @Tags         control
// @Produce      json
// @Success      200  {object}  ActionResponse
// @Failure      502  {object}  ActionResponse
// @Router       /api/v1/manual [post]
func (h *Handler) manual(c *gin.Context) {
	err := h.services.ModeControl.Manual(c.Request.Context())
	h.respondAction(c, err, "Switched to manual", "Failed to switch to manual", "manual_failed")
}

// @Summary      Start sequence
// @Description  Starts at the first valve immediately; used by semi-automatic flows.
// @Tags         sequence
// @Produce      json
// @Success      200  {object}  ActionResponse
// @Failure      409  {object}  ActionResponse
// @Failure      502  {object}  ActionResponse
// @Router       /api/v1/sequence/start [post]
func (h *Handler) startSequence(c *gin.Context) {
	err := h.services.Sequencer.StartSequence(c.Request.Context())
	h.respondAction(c, err, "Sequence started", "Failed to start sequence", "sequence_start_failed")
}
