package middleware

import (
	"context"

	"github.com/OFFIS-RIT/genealogy/backend/internal/importer"
	"github.com/OFFIS-RIT/genealogy/backend/internal/jobs"
	"github.com/OFFIS-RIT/genealogy/backend/internal/queue"
	"github.com/OFFIS-RIT/genealogy/backend/pkg/store"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/labstack/echo/v4"
)

type AppUser struct {
	UserID      int32
	Role        string
	Permissions []string
}

type JobRepository interface {
	Create(ctx context.Context, id, format, fileKey string) (*jobs.Job, error)
	Get(ctx context.Context, id string) (*jobs.Job, error)
}

type FileStore interface {
	PutFile(ctx context.Context, key string, body []byte) error
	DeleteFile(ctx context.Context, key string) error
}

// App holds the shared dependencies of all handlers. Jobs, Files and Queue
// are nil when asynchronous imports are not configured.
type App struct {
	Graph    store.GraphStorage
	Importer *importer.Importer
	Jobs     JobRepository
	Files    FileStore
	Queue    queue.Publisher
	// Key is nil when no AUTH_URL is configured; only the master key works then.
	Key            keyfunc.Keyfunc
	MasterAPIKey   string
	MasterUserID   int32
	MasterUserRole string
}

// AsyncEnabled reports whether jobs can be queued.
func (a *App) AsyncEnabled() bool {
	return a.Jobs != nil && a.Files != nil && a.Queue != nil
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}
