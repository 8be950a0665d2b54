package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OFFIS-RIT/genealogy/backend/internal/db"
	"github.com/OFFIS-RIT/genealogy/backend/internal/importer"
	"github.com/OFFIS-RIT/genealogy/backend/internal/jobs"
	"github.com/OFFIS-RIT/genealogy/backend/internal/queue"
	mid "github.com/OFFIS-RIT/genealogy/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/genealogy/backend/internal/storage"
	"github.com/OFFIS-RIT/genealogy/backend/internal/util"
	"github.com/OFFIS-RIT/genealogy/backend/pkg/logger"
	graphstorage "github.com/OFFIS-RIT/genealogy/backend/pkg/store/neo4j"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/go-playground/validator"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// New builds the echo instance with all middleware and routes.
func New(app *mid.App) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(util.GetEnvString("IMPORT_BODY_LIMIT", "256M")))

	RegisterRoutes(e)
	return e
}

func Init() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	graph, err := graphstorage.NewNeo4jGraphStorage(ctx, graphstorage.NewNeo4jGraphStorageParams{
		URI:                   util.GetEnvString("NEO4J_URI", "bolt://neo4j:7687"),
		Username:              util.GetEnvString("NEO4J_USER", "neo4j"),
		Password:              util.GetEnvString("NEO4J_PASSWORD", "password"),
		Database:              util.GetEnv("NEO4J_DATABASE"),
		MaxConnectionPoolSize: int(util.GetEnvNumeric("NEO4J_MAX_POOL", 50)),
	})
	if err != nil {
		logger.Fatal("Failed to connect to Neo4j", "err", err)
	}
	defer graph.Close(context.WithoutCancel(ctx))

	if err := graph.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to ensure graph schema", "err", err)
	}

	app := &mid.App{
		Graph:          graph,
		Importer:       importer.New(graph),
		MasterAPIKey:   util.GetEnv("MASTER_API_KEY"),
		MasterUserID:   int32(util.GetEnvNumeric("MASTER_USER_ID", 0)),
		MasterUserRole: util.GetEnv("MASTER_USER_ROLE"),
	}

	if authURL := util.GetEnv("AUTH_URL"); authURL != "" {
		k, err := keyfunc.NewDefault([]string{authURL + "/jwks"})
		if err != nil {
			logger.Fatal("Failed to load jwks keys", "err", err)
		}
		app.Key = k
	}

	if databaseURL := util.GetEnv("DATABASE_URL"); databaseURL != "" {
		if err := db.Migrate(util.GetEnvString("MIGRATIONS_PATH", "file://migrations"), databaseURL); err != nil {
			logger.Fatal("Failed to migrate database", "err", err)
		}

		conn, err := pgxpool.New(ctx, databaseURL)
		if err != nil {
			logger.Fatal("Failed to connect to database", "err", err)
		}
		defer conn.Close()

		que, err := queue.Init()
		if err != nil {
			logger.Fatal("Failed to connect to RabbitMQ", "err", err)
		}
		defer que.Close()
		ch, err := que.Channel()
		if err != nil {
			logger.Fatal("Failed to open channel", "err", err)
		}
		defer ch.Close()
		if err := queue.SetupQueues(ch, []string{queue.ImportQueue}); err != nil {
			logger.Fatal("Failed to declare queues", "err", err)
		}

		s3, err := storage.NewS3Client(ctx)
		if err != nil {
			logger.Fatal("Failed to create S3 client", "err", err)
		}

		app.Jobs = jobs.New(conn)
		app.Files = storage.NewFileStore(s3, util.GetEnvString("AWS_BUCKET", "genealogy"))
		app.Queue = ch
	} else {
		logger.Warn("DATABASE_URL not set, asynchronous imports are disabled")
	}

	e := New(app)

	go func() {
		port := util.GetEnvString("PORT", "8080")
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
