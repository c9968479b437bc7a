package handler

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/gtl92/gmail-svelkit/internal/config"
	"github.com/gtl92/gmail-svelkit/internal/scheduler"
	"github.com/gtl92/gmail-svelkit/internal/service"

	"github.com/labstack/echo/v4"
)

type AutomationHandler struct {
	automationService service.AutomationService
	scheduler         *scheduler.Scheduler
	authHandler       *AuthHandler
	config            *config.Config
	logger            echo.Logger
}

func NewAutomationHandler(automationService service.AutomationService, sched *scheduler.Scheduler, authHandler *AuthHandler, config *config.Config, logger echo.Logger) *AutomationHandler {
	return &AutomationHandler{
		automationService: automationService,
		scheduler:         sched,
		authHandler:       authHandler,
		config:            config,
		logger:            logger,
	}
}

// GetStatus reports whether automation is active for the current user and
// at what cadence.
func (h *AutomationHandler) GetStatus(c echo.Context) error {
	user, err := h.authHandler.GetCurrentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "Unauthorized",
		})
	}

	status, err := h.automationService.Status(c.Request().Context(), user.Email)
	if err != nil {
		h.logger.Error("Failed to read automation status:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, status)
}

// Active is a pointer so an omitted field keeps its enable meaning: only an
// explicit {"active": false} disables.
type automationRequest struct {
	Active           *bool `json:"active"`
	FrequencyMinutes int   `json:"frequencyMinutes"`
}

// Configure enables or disables automation for the current user.
func (h *AutomationHandler) Configure(c echo.Context) error {
	user, err := h.authHandler.GetCurrentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "Unauthorized",
		})
	}

	var req automationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	ctx := c.Request().Context()
	if req.Active != nil && !*req.Active {
		if err := h.automationService.Disable(ctx, user.Email); err != nil {
			h.logger.Error("Failed to disable automation:", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"active": false})
	}

	if err := h.automationService.Enable(ctx, user.Email, user.Credentials(), req.FrequencyMinutes); err != nil {
		if errors.Is(err, service.ErrValidation) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		h.logger.Error("Failed to enable automation:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"active":           true,
		"frequencyMinutes": req.FrequencyMinutes,
	})
}

// RunNow runs the current user's automation pipeline immediately, enrolling
// them with the default cadence if needed.
func (h *AutomationHandler) RunNow(c echo.Context) error {
	user, err := h.authHandler.GetCurrentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "Unauthorized",
		})
	}

	result, err := h.automationService.RunNow(c.Request().Context(), user.Email, user.Credentials())
	if err != nil {
		h.logger.Error("Manual automation run failed:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, result)
}

// RunCron is the external trigger for the sweep, guarded by a shared secret
// so hosted cron services can drive it without a session.
func (h *AutomationHandler) RunCron(c echo.Context) error {
	if h.config.CronSecret == "" {
		return c.JSON(http.StatusForbidden, map[string]string{
			"error": "External trigger is not configured",
		})
	}
	key := c.QueryParam("key")
	if subtle.ConstantTimeCompare([]byte(key), []byte(h.config.CronSecret)) != 1 {
		return c.JSON(http.StatusForbidden, map[string]string{
			"error": "Invalid key",
		})
	}

	results := h.scheduler.Tick(time.Now())
	if results == nil {
		results = []*service.SweepResult{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"ranAt":   time.Now().UTC().Format(time.RFC3339),
		"results": results,
	})
}
