package routes

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/OFFIS-RIT/genealogy/backend/internal/importer"
	"github.com/OFFIS-RIT/genealogy/backend/internal/jobs"
	"github.com/OFFIS-RIT/genealogy/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/genealogy/backend/pkg/gedcom"

	"github.com/labstack/echo/v4"
)

// ImportGedcomHandler imports a GEDCOM 5.5 file sent either as the
// multipart field "file" or as the raw request body.
func ImportGedcomHandler(c echo.Context) error {
	payload, err := readGedcomUpload(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
	}

	ctx := c.Request().Context()
	if isAsync(c) {
		if _, err := gedcom.Decode(ctx, bytes.NewReader(payload)); err != nil {
			return c.JSON(http.StatusBadRequest, messageResponse{Message: importer.ErrInvalidPayload.Error() + ": " + err.Error()})
		}
		return queueImport(c, jobs.FormatGedcom, "ged", payload)
	}

	app := c.(*middleware.AppContext).App
	result, err := app.Importer.ImportGedcom(ctx, bytes.NewReader(payload))
	if err != nil {
		return importError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func readGedcomUpload(c echo.Context) ([]byte, error) {
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return io.ReadAll(c.Request().Body)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, err
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	if len(payload) == 0 {
		return nil, errors.New("empty file")
	}
	return payload, nil
}
