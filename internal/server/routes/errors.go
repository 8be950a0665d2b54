package routes

import (
	"errors"
	"net/http"

	"github.com/OFFIS-RIT/genealogy/backend/internal/importer"
	"github.com/OFFIS-RIT/genealogy/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

type messageResponse struct {
	Message string `json:"message"`
}

// importError maps importer errors onto HTTP status codes.
func importError(c echo.Context, err error) error {
	var storeErr *importer.StoreError
	var typeErr *importer.RelationshipTypeError
	switch {
	case errors.As(err, &typeErr):
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid relationship type: " + typeErr.Type})
	case errors.Is(err, importer.ErrInvalidPayload):
		return c.JSON(http.StatusBadRequest, messageResponse{Message: err.Error()})
	case errors.Is(err, importer.ErrPersonNotFound):
		return c.JSON(http.StatusNotFound, messageResponse{Message: "Person not found"})
	case errors.As(err, &storeErr):
		logger.Error("[Server] Graph store failure", "op", storeErr.Op, "err", storeErr.Err)
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: storeErr.Err.Error()})
	}
	logger.Error("[Server] Unexpected error", "err", err)
	return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Internal server error"})
}
