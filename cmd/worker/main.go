package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OFFIS-RIT/genealogy/backend/internal/importer"
	"github.com/OFFIS-RIT/genealogy/backend/internal/jobs"
	"github.com/OFFIS-RIT/genealogy/backend/internal/queue"
	"github.com/OFFIS-RIT/genealogy/backend/internal/storage"
	"github.com/OFFIS-RIT/genealogy/backend/internal/util"
	"github.com/OFFIS-RIT/genealogy/backend/pkg/leaselock"
	"github.com/OFFIS-RIT/genealogy/backend/pkg/logger"
	"github.com/OFFIS-RIT/genealogy/backend/pkg/logger/console"
	graphstorage "github.com/OFFIS-RIT/genealogy/backend/pkg/store/neo4j"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  util.GetEnvBool("DEBUG", false),
		JSON:   util.GetEnv("LOG_FORMAT") == "json",
		Prefix: "worker",
	})
	logger.Init(consoleLogger)

	// graph store
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

	// s3
	s3, err := storage.NewS3Client(ctx)
	if err != nil {
		logger.Fatal("Failed to create S3 client", "err", err)
	}

	// postgres
	pgConn, err := pgxpool.New(ctx, util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Unable to connect to database", "err", err)
	}
	defer pgConn.Close()

	// rabbitmq
	conn, err := queue.Init()
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", "err", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch, []string{queue.ImportQueue}); err != nil {
		logger.Fatal("Failed to declare queues", "err", err)
	}

	// One message at a time per worker.
	if err := ch.Qos(1, 0, false); err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	msgs, err := ch.ConsumeWithContext(
		ctx,
		queue.ImportQueue,
		"import_queue_consumer",
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		logger.Fatal("Failed to start consuming", "queue", queue.ImportQueue, "err", err)
	}

	processor := &queue.ImportProcessor{
		Importer: importer.New(graph),
		Jobs:     jobs.New(pgConn),
		Files:    storage.NewFileStore(s3, util.GetEnvString("AWS_BUCKET", "genealogy")),
		Locks:    leaselock.New(pgConn),
		LeaseTTL: util.GetEnvDuration("IMPORT_LEASE_TTL", 5*time.Minute),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Listening for messages", "queue", queue.ImportQueue)
		for {
			select {
			case <-gctx.Done():
				logger.Info("Stopping consumer", "queue", queue.ImportQueue)
				return nil
			case msg, ok := <-msgs:
				if !ok {
					return errors.New("message channel closed")
				}

				startTime := time.Now()
				if err := processor.Process(gctx, msg.Body); err != nil {
					logger.Error("Error processing message", "queue", queue.ImportQueue, "err", err)
					queue.HandleProcessingError(context.WithoutCancel(gctx), ch, msg, queue.ImportQueue)
					continue
				}
				if err := msg.Ack(false); err != nil {
					logger.Error("Failed to ack message", "err", err)
				}
				logger.Info("Message processed", "queue", queue.ImportQueue, "duration", time.Since(startTime).Round(time.Millisecond))
			}
		}
	})

	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := graph.Health(gctx); err != nil {
					logger.Warn("Graph store health check failed", "err", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("Worker stopped", "err", err)
	}
	logger.Info("Shutdown signal received, exiting...")
}
