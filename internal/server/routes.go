package server

import (
	"github.com/OFFIS-RIT/genealogy/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/genealogy/backend/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	e.GET("/health", routes.HealthHandler)

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Import routes
	apiRoutes.POST("/import/gedcomx", routes.ImportGedcomXHandler, middleware.RequirePermission("import.create"))
	apiRoutes.POST("/import/gedcom", routes.ImportGedcomHandler, middleware.RequirePermission("import.create"))
	apiRoutes.GET("/imports/:id", routes.GetImportHandler, middleware.RequirePermission("import.view"))

	// Tree routes
	apiRoutes.POST("/tree", routes.CreateTreeHandler, middleware.RequirePermission("tree.update"))
	apiRoutes.GET("/tree", routes.GetTreeHandler, middleware.RequirePermission("tree.view"))
	apiRoutes.GET("/persons/:id", routes.GetPersonHandler, middleware.RequirePermission("tree.view"))
}
