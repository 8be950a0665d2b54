// Package importer writes genealogical data into the person graph.
//
// Every Import call opens one write session, upserts all persons, then all
// relationships, and releases the session on every exit path. Writes are
// idempotent, so a failed import can simply be run again.
package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/OFFIS-RIT/genealogy/backend/pkg/store"

	"github.com/go-playground/validator"
)

const StatusSuccess = "success"

var (
	ErrInvalidPayload          = errors.New("invalid payload")
	ErrInvalidRelationshipType = errors.New("invalid relationship type")
	ErrPersonNotFound          = errors.New("person not found")
)

// StoreError wraps any failure reported by the graph store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// RelationshipTypeError names a relationship type that is not a valid
// graph label. It matches ErrInvalidRelationshipType.
type RelationshipTypeError struct {
	Type string
}

func (e *RelationshipTypeError) Error() string {
	return ErrInvalidRelationshipType.Error() + ": " + e.Type
}

func (e *RelationshipTypeError) Is(target error) bool {
	return target == ErrInvalidRelationshipType
}

// Result reports what an import wrote and what it skipped.
type Result struct {
	Status                string `json:"status"`
	PersonsImported       int    `json:"persons_imported"`
	PersonsSkipped        int    `json:"persons_skipped"`
	RelationshipsImported int    `json:"relationships_imported"`
	RelationshipsSkipped  int    `json:"relationships_skipped"`
}

type Importer struct {
	storage  store.GraphStorage
	validate *validator.Validate
}

func New(storage store.GraphStorage) *Importer {
	return &Importer{
		storage:  storage,
		validate: validator.New(),
	}
}

// withSession runs fn inside a session and closes it afterwards, even when
// ctx has been cancelled in the meantime.
func (i *Importer) withSession(ctx context.Context, mode store.AccessMode, fn func(store.Session) error) (err error) {
	session, err := i.storage.NewSession(ctx, mode)
	if err != nil {
		return &StoreError{Op: "open session", Err: err}
	}
	defer func() {
		closeErr := session.Close(context.WithoutCancel(ctx))
		if err == nil && closeErr != nil {
			err = &StoreError{Op: "close session", Err: closeErr}
		}
	}()
	return fn(session)
}

func run(ctx context.Context, session store.Session, op, cypher string, params map[string]any) ([]store.Record, error) {
	rows, err := session.Run(ctx, cypher, params)
	if err != nil {
		return nil, &StoreError{Op: op, Err: err}
	}
	return rows, nil
}

func optional(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
