package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/OFFIS-RIT/genealogy/backend/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

func HealthHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := app.Graph.Health(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "message": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
