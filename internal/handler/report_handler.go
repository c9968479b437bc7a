package handler

import (
	"errors"
	"net/http"

	"github.com/gtl92/gmail-svelkit/internal/artifact"
	"github.com/gtl92/gmail-svelkit/internal/service"

	"github.com/labstack/echo/v4"
)

type ReportHandler struct {
	reportService service.ReportService
	store         *artifact.Store
	authHandler   *AuthHandler
	logger        echo.Logger
}

func NewReportHandler(reportService service.ReportService, store *artifact.Store, authHandler *AuthHandler, logger echo.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		store:         store,
		authHandler:   authHandler,
		logger:        logger,
	}
}

// GenerateReport kicks off an asynchronous generation and returns the job
// handle right away.
func (h *ReportHandler) GenerateReport(c echo.Context) error {
	user, err := h.authHandler.GetCurrentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "Unauthorized",
		})
	}

	var opts service.FilterOptions
	if err := c.Bind(&opts); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	handle, err := h.reportService.StartGeneration(c.Request().Context(), user.Email, user.Credentials(), opts)
	if err != nil {
		return h.reportError(c, err)
	}
	return c.JSON(http.StatusOK, handle)
}

type progressRequest struct {
	JobID string `json:"jobId"`
}

// ReportProgress polls a generation job. Unknown jobs report zero progress
// instead of failing, so stale clients degrade gracefully.
func (h *ReportHandler) ReportProgress(c echo.Context) error {
	user, err := h.authHandler.GetCurrentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "Unauthorized",
		})
	}

	var req progressRequest
	if err := c.Bind(&req); err != nil || req.JobID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "jobId is required",
		})
	}

	progress, result := h.reportService.Progress(c.Request().Context(), user.Email, req.JobID)
	resp := map[string]interface{}{"progress": progress}
	if result != nil {
		resp["result"] = result
	}
	return c.JSON(http.StatusOK, resp)
}

// LastReport returns the most recent finished report for the current user.
func (h *ReportHandler) LastReport(c echo.Context) error {
	user, err := h.authHandler.GetCurrentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "Unauthorized",
		})
	}

	last, err := h.reportService.LastReport(c.Request().Context(), user.Email)
	if err != nil {
		return h.reportError(c, err)
	}
	if last == nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "No report generated yet",
		})
	}
	return c.JSON(http.StatusOK, last)
}

type sendReportRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
}

// SendReport mails the user's latest report to another address.
func (h *ReportHandler) SendReport(c echo.Context) error {
	user, err := h.authHandler.GetCurrentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "Unauthorized",
		})
	}

	var req sendReportRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	reportURL, err := h.reportService.SendReport(c.Request().Context(), user.Email, user.Credentials(), req.To, req.Subject)
	if err != nil {
		return h.reportError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message":   "Report sent",
		"reportUrl": reportURL,
	})
}

// CountEmails estimates how many messages a report with the given filters
// would cover.
func (h *ReportHandler) CountEmails(c echo.Context) error {
	user, err := h.authHandler.GetCurrentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "Unauthorized",
		})
	}

	date := c.QueryParam("date")
	onlyUnread := c.QueryParam("onlyUnread") == "true"

	count, err := h.reportService.CountMessages(c.Request().Context(), user.Credentials(), date, onlyUnread)
	if err != nil {
		return h.reportError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"count": count})
}

// ServeReport is the public artifact endpoint. Possession of a valid token
// is the only credential; the session is never consulted.
func (h *ReportHandler) ServeReport(c echo.Context) error {
	token := c.Param("token")
	if !artifact.ValidToken(token) {
		return c.HTML(http.StatusBadRequest, artifact.MissingHTML())
	}

	html, status, err := h.store.Read(token)
	if err != nil {
		h.logger.Error("Failed to read report artifact:", err)
		return c.HTML(http.StatusInternalServerError, artifact.MissingHTML())
	}

	switch status {
	case artifact.StatusReady:
		return c.HTML(http.StatusOK, html)
	case artifact.StatusPending:
		// 202 tells polling clients to come back; the body reloads itself
		// for plain browsers.
		return c.HTML(http.StatusAccepted, html)
	default:
		return c.HTML(http.StatusNotFound, artifact.MissingHTML())
	}
}

func (h *ReportHandler) reportError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrNotAuthenticated):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Google authorization expired, please sign in again"})
	default:
		h.logger.Error("Report operation failed:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
