package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"ripple/backend/internal/config"
	"ripple/backend/internal/handler"
)

func NewRouter(streamHandler *handler.StreamHandler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(IdentityMiddleware())
	e.Use(RequestLoggerMiddleware())

	e.GET("/api/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"name":    config.AppName,
			"version": config.AppVersion,
		})
	})

	api := e.Group("/api")
	streamHandler.RegisterRoutes(api)

	return e
}
