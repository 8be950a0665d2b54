package store

import (
	"context"
)

// AccessMode selects whether a session routes statements to a writer or
// may use a read replica.
type AccessMode int

const (
	AccessWrite AccessMode = iota
	AccessRead
)

// Record is one result row keyed by column name.
type Record map[string]any

// String returns the column as a string, or "" if it is missing or not a string.
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// OptionalString returns nil for missing and null columns.
func (r Record) OptionalString(key string) *string {
	s, ok := r[key].(string)
	if !ok {
		return nil
	}
	return &s
}

// Session is a scoped connection to the graph store. Every Run is its own
// unit of work; there is no transaction spanning several calls.
// Callers must Close the session on every exit path.
type Session interface {
	Run(ctx context.Context, cypher string, params map[string]any) ([]Record, error)
	Close(ctx context.Context) error
}

// GraphStorage hands out sessions against the property graph that holds
// Person nodes and the typed relationships between them.
type GraphStorage interface {
	NewSession(ctx context.Context, mode AccessMode) (Session, error)
	Health(ctx context.Context) error
}
