package routes

import (
	"io"
	"net/http"
	"strconv"

	"github.com/OFFIS-RIT/genealogy/backend/internal/importer"
	"github.com/OFFIS-RIT/genealogy/backend/internal/jobs"
	"github.com/OFFIS-RIT/genealogy/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/genealogy/backend/pkg/gedcomx"

	"github.com/labstack/echo/v4"
)

// ImportGedcomXHandler imports a GEDCOM X JSON document. With ?async=true
// the document is only checked and queued for the worker.
func ImportGedcomXHandler(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
	}

	if isAsync(c) {
		if _, err := gedcomx.Parse(payload); err != nil {
			return c.JSON(http.StatusBadRequest, messageResponse{Message: importer.ErrInvalidPayload.Error() + ": " + err.Error()})
		}
		return queueImport(c, jobs.FormatGedcomX, "json", payload)
	}

	app := c.(*middleware.AppContext).App
	result, err := app.Importer.ImportGedcomX(c.Request().Context(), payload)
	if err != nil {
		return importError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func isAsync(c echo.Context) bool {
	async, _ := strconv.ParseBool(c.QueryParam("async"))
	return async
}
