package neo4j

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/OFFIS-RIT/genealogy/backend/internal/util"
	"github.com/OFFIS-RIT/genealogy/backend/pkg/logger"
	"github.com/OFFIS-RIT/genealogy/backend/pkg/store"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

var ErrNotConnected = errors.New("neo4j driver not connected")

// Neo4jGraphStorage implements store.GraphStorage on top of the official
// Neo4j driver. The driver pools connections; sessions are cheap and are
// opened per import call.
type Neo4jGraphStorage struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewNeo4jGraphStorageParams contains configuration for connecting to Neo4j.
type NewNeo4jGraphStorageParams struct {
	URI      string
	Username string
	Password string
	// Database is optional; empty selects the server's default database.
	Database string

	MaxConnectionPoolSize   int
	ConnectionTimeout       time.Duration
	MaxTransactionRetryTime time.Duration
	// ConnectAttempts bounds the start-up connectivity check.
	ConnectAttempts int
}

func (p *NewNeo4jGraphStorageParams) validate() error {
	if p.URI == "" {
		return errors.New("neo4j URI is required")
	}
	if p.Username == "" {
		return errors.New("neo4j username is required")
	}
	if p.MaxConnectionPoolSize <= 0 {
		p.MaxConnectionPoolSize = 50
	}
	if p.ConnectionTimeout <= 0 {
		p.ConnectionTimeout = 30 * time.Second
	}
	if p.MaxTransactionRetryTime <= 0 {
		p.MaxTransactionRetryTime = 15 * time.Second
	}
	if p.ConnectAttempts <= 0 {
		p.ConnectAttempts = 5
	}
	return nil
}

// NewNeo4jGraphStorage creates the driver and waits until the server
// answers, retrying with exponential backoff.
func NewNeo4jGraphStorage(ctx context.Context, params NewNeo4jGraphStorageParams) (*Neo4jGraphStorage, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	driver, err := neo4j.NewDriverWithContext(
		params.URI,
		neo4j.BasicAuth(params.Username, params.Password, ""),
		func(config *neo4j.Config) {
			config.MaxConnectionPoolSize = params.MaxConnectionPoolSize
			config.ConnectionAcquisitionTimeout = params.ConnectionTimeout
			config.MaxTransactionRetryTime = params.MaxTransactionRetryTime
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	attempt := 0
	err = util.RetryErrWithBackoff(ctx, params.ConnectAttempts, 100*time.Millisecond, params.ConnectionTimeout, func(ctx context.Context) error {
		attempt++
		err := driver.VerifyConnectivity(ctx)
		if err != nil {
			logger.Warn("[Neo4j] Connectivity check failed", "attempt", attempt, "uri", params.URI, "err", err)
		}
		return err
	})
	if err != nil {
		_ = driver.Close(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("failed to connect to neo4j after %d attempts: %w", attempt, err)
	}

	logger.Info("[Neo4j] Connected", "uri", params.URI, "database", params.Database)

	return &Neo4jGraphStorage{
		driver:   driver,
		database: params.Database,
	}, nil
}

// NewSession opens a driver session. Statements run through the returned
// session are executed as managed transactions so transient cluster errors
// are retried by the driver.
func (g *Neo4jGraphStorage) NewSession(ctx context.Context, mode store.AccessMode) (store.Session, error) {
	if g == nil || g.driver == nil {
		return nil, ErrNotConnected
	}

	accessMode := neo4j.AccessModeWrite
	if mode == store.AccessRead {
		accessMode = neo4j.AccessModeRead
	}

	s := g.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   accessMode,
		DatabaseName: g.database,
	})
	return &session{session: s, mode: mode}, nil
}

// Health verifies that the server is reachable.
func (g *Neo4jGraphStorage) Health(ctx context.Context) error {
	if g == nil || g.driver == nil {
		return ErrNotConnected
	}

	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := g.driver.VerifyConnectivity(healthCtx); err != nil {
		return fmt.Errorf("neo4j connectivity check failed: %w", err)
	}
	return nil
}

// EnsureSchema creates the uniqueness constraint on Person.id.
func (g *Neo4jGraphStorage) EnsureSchema(ctx context.Context) error {
	s, err := g.NewSession(ctx, store.AccessWrite)
	if err != nil {
		return err
	}
	defer s.Close(context.WithoutCancel(ctx))

	if _, err := s.Run(ctx, store.EnsurePersonConstraintStatement, nil); err != nil {
		return fmt.Errorf("failed to create person constraint: %w", err)
	}
	return nil
}

// Close releases every pooled connection.
func (g *Neo4jGraphStorage) Close(ctx context.Context) error {
	if g == nil || g.driver == nil {
		return nil
	}
	err := g.driver.Close(ctx)
	g.driver = nil
	return err
}

type session struct {
	session neo4j.SessionWithContext
	mode    store.AccessMode
}

func (s *session) Run(ctx context.Context, cypher string, params map[string]any) ([]store.Record, error) {
	work := func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		return convertRecords(records), nil
	}

	var (
		out any
		err error
	)
	if s.mode == store.AccessRead {
		out, err = s.session.ExecuteRead(ctx, work)
	} else {
		out, err = s.session.ExecuteWrite(ctx, work)
	}
	if err != nil {
		return nil, err
	}
	return out.([]store.Record), nil
}

func (s *session) Close(ctx context.Context) error {
	return s.session.Close(ctx)
}

func convertRecords(records []*neo4j.Record) []store.Record {
	out := make([]store.Record, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		row := make(store.Record, len(record.Keys))
		for i, key := range record.Keys {
			if i < len(record.Values) {
				row[key] = record.Values[i]
			}
		}
		out = append(out, row)
	}
	return out
}
