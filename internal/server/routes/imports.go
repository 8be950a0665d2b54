package routes

import (
	"errors"
	"net/http"

	"github.com/OFFIS-RIT/genealogy/backend/internal/jobs"
	"github.com/OFFIS-RIT/genealogy/backend/internal/queue"
	"github.com/OFFIS-RIT/genealogy/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/genealogy/backend/internal/storage"
	"github.com/OFFIS-RIT/genealogy/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

type queuedResponse struct {
	Status string `json:"status"`
	JobID  string `json:"job_id"`
}

// queueImport stores the payload, records a pending job and hands it to
// the worker.
func queueImport(c echo.Context, format, ext string, payload []byte) error {
	app := c.(*middleware.AppContext).App
	if !app.AsyncEnabled() {
		return c.JSON(http.StatusServiceUnavailable, messageResponse{Message: "Asynchronous imports are not configured"})
	}

	ctx := c.Request().Context()
	jobID, err := jobs.NewID()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Internal server error"})
	}
	fileKey := storage.ImportKey(jobID, ext)

	if err := app.Files.PutFile(ctx, fileKey, payload); err != nil {
		logger.Error("[Server] Failed to store import payload", "job_id", jobID, "err", err)
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Failed to store payload"})
	}

	if _, err := app.Jobs.Create(ctx, jobID, format, fileKey); err != nil {
		logger.Error("[Server] Failed to create import job", "job_id", jobID, "err", err)
		_ = app.Files.DeleteFile(ctx, fileKey)
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Failed to create import job"})
	}

	msg := queue.ImportMessage{JobID: jobID, Format: format, FileKey: fileKey}
	if err := queue.PublishImport(ctx, app.Queue, msg); err != nil {
		logger.Error("[Server] Failed to queue import job", "job_id", jobID, "err", err)
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Failed to queue import job"})
	}

	logger.Info("[Server] Import queued", "job_id", jobID, "format", format)
	return c.JSON(http.StatusAccepted, queuedResponse{Status: "queued", JobID: jobID})
}

func GetImportHandler(c echo.Context) error {
	type getImportParams struct {
		ID string `param:"id" validate:"required"`
	}

	params := new(getImportParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid request params"})
	}

	app := c.(*middleware.AppContext).App
	if app.Jobs == nil {
		return c.JSON(http.StatusServiceUnavailable, messageResponse{Message: "Asynchronous imports are not configured"})
	}

	job, err := app.Jobs.Get(c.Request().Context(), params.ID)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			return c.JSON(http.StatusNotFound, messageResponse{Message: "Import job not found"})
		}
		logger.Error("[Server] Failed to load import job", "job_id", params.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Internal server error"})
	}
	return c.JSON(http.StatusOK, job)
}
