package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/genealogy/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/genealogy/backend/pkg/common"

	"github.com/labstack/echo/v4"
)

// CreateTreeHandler ingests persons and relationships that are already in
// canonical form.
func CreateTreeHandler(c echo.Context) error {
	data := new(common.Tree)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
	}

	app := c.(*middleware.AppContext).App
	result, err := app.Importer.ImportTree(c.Request().Context(), *data)
	if err != nil {
		return importError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func GetTreeHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	tree, err := app.Importer.ReadTree(c.Request().Context())
	if err != nil {
		return importError(c, err)
	}
	return c.JSON(http.StatusOK, tree)
}

func GetPersonHandler(c echo.Context) error {
	type getPersonParams struct {
		ID string `param:"id" validate:"required"`
	}

	params := new(getPersonParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid request params"})
	}

	app := c.(*middleware.AppContext).App
	person, err := app.Importer.GetPerson(c.Request().Context(), params.ID)
	if err != nil {
		return importError(c, err)
	}
	return c.JSON(http.StatusOK, person)
}
