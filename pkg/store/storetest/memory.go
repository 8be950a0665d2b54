// Package storetest provides an in-memory store.GraphStorage that
// understands the statements in package store. It records every statement
// it receives and can inject failures.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/OFFIS-RIT/genealogy/backend/pkg/store"
)

var ErrUnknownStatement = errors.New("storetest: unknown statement")

// Query is one statement received by a session.
type Query struct {
	Cypher string
	Params map[string]any
}

type person struct {
	name  any
	birth any
	gxID  any
}

type edgeKey struct {
	start, end, relType string
}

// MemoryGraph is safe for concurrent use.
type MemoryGraph struct {
	mu      sync.Mutex
	persons map[string]person
	edges   map[edgeKey]map[string]any
	queries []Query
	opened  int
	closed  int

	// FailOnRun, when set, is consulted before each statement. A non-nil
	// return value is returned from Run and nothing is written.
	FailOnRun func(call int, q Query) error
	// FailNewSession makes NewSession fail.
	FailNewSession error
	// HealthErr is returned by Health.
	HealthErr error
}

func NewMemoryGraph() *MemoryGraph {
	return &MemoryGraph{
		persons: make(map[string]person),
		edges:   make(map[edgeKey]map[string]any),
	}
}

func (m *MemoryGraph) NewSession(ctx context.Context, mode store.AccessMode) (store.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNewSession != nil {
		return nil, m.FailNewSession
	}
	m.opened++
	return &memorySession{graph: m}, nil
}

func (m *MemoryGraph) Health(ctx context.Context) error {
	return m.HealthErr
}

// Queries returns a copy of every statement received so far.
func (m *MemoryGraph) Queries() []Query {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Query(nil), m.queries...)
}

// QueriesContaining counts received statements containing fragment.
func (m *MemoryGraph) QueriesContaining(fragment string) int {
	n := 0
	for _, q := range m.Queries() {
		if strings.Contains(q.Cypher, fragment) {
			n++
		}
	}
	return n
}

// Sessions reports how many sessions were opened and closed.
func (m *MemoryGraph) Sessions() (opened, closed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opened, m.closed
}

// PersonCount is the number of distinct Person nodes.
func (m *MemoryGraph) PersonCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.persons)
}

// Person returns the stored properties of a node.
func (m *MemoryGraph) Person(id string) (store.Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.persons[id]
	if !ok {
		return nil, false
	}
	return personRecord(id, p), true
}

// Edge returns the properties of the edge start-[relType]->end.
func (m *MemoryGraph) Edge(start, end, relType string) (map[string]any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	props, ok := m.edges[edgeKey{start, end, relType}]
	return props, ok
}

// EdgeCount is the number of distinct edges.
func (m *MemoryGraph) EdgeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.edges)
}

// AddPerson seeds a node without recording a query.
func (m *MemoryGraph) AddPerson(id, name string, birth *string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var b any
	if birth != nil {
		b = *birth
	}
	m.persons[id] = person{name: name, birth: b}
}

// AddEdge seeds an edge without recording a query.
func (m *MemoryGraph) AddEdge(start, end, relType string, props map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if props == nil {
		props = map[string]any{}
	}
	m.edges[edgeKey{start, end, relType}] = props
}

type memorySession struct {
	graph  *MemoryGraph
	closed bool
}

func (s *memorySession) Close(ctx context.Context) error {
	s.graph.mu.Lock()
	defer s.graph.mu.Unlock()
	if !s.closed {
		s.closed = true
		s.graph.closed++
	}
	return nil
}

func (s *memorySession) Run(ctx context.Context, cypher string, params map[string]any) ([]store.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := s.graph
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.closed {
		return nil, errors.New("storetest: session closed")
	}

	q := Query{Cypher: cypher, Params: params}
	m.queries = append(m.queries, q)
	if m.FailOnRun != nil {
		if err := m.FailOnRun(len(m.queries), q); err != nil {
			return nil, err
		}
	}

	switch {
	case cypher == store.EnsurePersonConstraintStatement:
		return nil, nil
	case cypher == store.UpsertPersonStatement:
		m.persons[str(params["id"])] = person{name: params["name"], birth: params["birth"], gxID: params["gx_id"]}
		return nil, nil
	case cypher == store.UpsertTreePersonStatement:
		id := str(params["id"])
		existing := m.persons[id]
		m.persons[id] = person{name: params["name"], birth: params["birth"], gxID: existing.gxID}
		return nil, nil
	case strings.Contains(cypher, "MERGE (a)-[rel:"):
		return nil, m.mergeEdge(cypher, params)
	case cypher == store.ListPersonsStatement:
		return m.listPersons(), nil
	case cypher == store.GetPersonStatement:
		id := str(params["id"])
		p, ok := m.persons[id]
		if !ok {
			return nil, nil
		}
		return []store.Record{personRecord(id, p)}, nil
	case cypher == store.ListRelationshipsStatement:
		return m.listEdges(func(edgeKey) bool { return true }), nil
	case cypher == store.PersonRelationshipsStatement:
		id := str(params["id"])
		return m.listEdges(func(k edgeKey) bool { return k.start == id || k.end == id }), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownStatement, cypher)
}

func (m *MemoryGraph) mergeEdge(cypher string, params map[string]any) error {
	start := strings.Index(cypher, "[rel:`")
	if start < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownStatement, cypher)
	}
	rest := cypher[start+len("[rel:`"):]
	end := strings.Index(rest, "`")
	if end < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownStatement, cypher)
	}
	relType := rest[:end]

	a, b := str(params["start_id"]), str(params["end_id"])
	_, okA := m.persons[a]
	_, okB := m.persons[b]
	if !okA || !okB {
		// MATCH found nothing, so MERGE has nothing to attach to.
		return nil
	}

	key := edgeKey{a, b, relType}
	props, ok := m.edges[key]
	if !ok {
		props = map[string]any{}
		m.edges[key] = props
	}
	if extra, ok := params["props"].(map[string]any); ok {
		for k, v := range extra {
			props[k] = v
		}
	}
	return nil
}

func (m *MemoryGraph) listPersons() []store.Record {
	ids := make([]string, 0, len(m.persons))
	for id := range m.persons {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	rows := make([]store.Record, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, personRecord(id, m.persons[id]))
	}
	return rows
}

func (m *MemoryGraph) listEdges(keep func(edgeKey) bool) []store.Record {
	keys := make([]edgeKey, 0, len(m.edges))
	for k := range m.edges {
		if keep(k) {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].start != keys[j].start {
			return keys[i].start < keys[j].start
		}
		if keys[i].end != keys[j].end {
			return keys[i].end < keys[j].end
		}
		return keys[i].relType < keys[j].relType
	})
	rows := make([]store.Record, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, store.Record{
			"start_id": k.start,
			"end_id":   k.end,
			"type":     k.relType,
			"gx_type":  m.edges[k]["gx_type"],
		})
	}
	return rows
}

func personRecord(id string, p person) store.Record {
	return store.Record{"id": id, "name": p.name, "birth": p.birth, "gx_id": p.gxID}
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
