package router

import (
	"net/http"

	"github.com/gtl92/gmail-svelkit/internal/handler"
	"github.com/gtl92/gmail-svelkit/internal/middleware"

	"github.com/labstack/echo/v4"
)

func SetupRoutes(
	e *echo.Echo,
	authHandler *handler.AuthHandler,
	reportHandler *handler.ReportHandler,
	automationHandler *handler.AutomationHandler,
) {
	// Public routes
	e.GET("/auth/:provider", authHandler.BeginAuthHandler)
	e.GET("/auth/:provider/callback", authHandler.CallbackHandler)
	e.GET("/auth/logout", authHandler.LogoutHandler)

	// Report artifacts are reachable by token alone, no session required.
	e.GET("/reports/:token", reportHandler.ServeReport)

	// External sweep trigger for hosted cron services.
	e.GET("/cron/run", automationHandler.RunCron)

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	// Protected API routes
	protected := e.Group("/api")
	protected.Use(middleware.AuthMiddleware(authHandler))

	// Report API routes
	protected.POST("/reports", reportHandler.GenerateReport)
	protected.POST("/reports/progress", reportHandler.ReportProgress)
	protected.GET("/reports/last", reportHandler.LastReport)
	protected.POST("/reports/send", reportHandler.SendReport)
	protected.GET("/emails/count", reportHandler.CountEmails)

	// Automation API routes
	protected.GET("/automation", automationHandler.GetStatus)
	protected.POST("/automation", automationHandler.Configure)
	protected.POST("/automation/run-now", automationHandler.RunNow)
}
