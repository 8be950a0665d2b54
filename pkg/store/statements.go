package store

import (
	"errors"
	"fmt"

	"github.com/OFFIS-RIT/genealogy/backend/pkg/common"
)

var ErrInvalidRelationshipType = errors.New("invalid relationship type")

const EnsurePersonConstraintStatement = `
CREATE CONSTRAINT person_id IF NOT EXISTS
FOR (p:Person) REQUIRE p.id IS UNIQUE
`

// UpsertPersonStatement creates or updates an imported person.
// Params: id, name, birth (nullable), gx_id.
const UpsertPersonStatement = `
MERGE (n:Person {id: $id})
SET n.name = $name,
    n.birth = $birth,
    n.gx_id = $gx_id
`

// UpsertTreePersonStatement is UpsertPersonStatement without provenance.
// Params: id, name, birth (nullable).
const UpsertTreePersonStatement = `
MERGE (n:Person {id: $id})
SET n.name = $name,
    n.birth = $birth
`

const ListPersonsStatement = `
MATCH (p:Person)
RETURN p.id AS id, p.name AS name, p.birth AS birth, p.gx_id AS gx_id
ORDER BY p.id
`

const ListRelationshipsStatement = `
MATCH (a:Person)-[r]->(b:Person)
RETURN a.id AS start_id, b.id AS end_id, type(r) AS type, r.gx_type AS gx_type
ORDER BY a.id, b.id, type(r)
`

// Params: id.
const GetPersonStatement = `
MATCH (p:Person {id: $id})
RETURN p.id AS id, p.name AS name, p.birth AS birth, p.gx_id AS gx_id
`

// Params: id.
const PersonRelationshipsStatement = `
MATCH (a:Person)-[r]->(b:Person)
WHERE a.id = $id OR b.id = $id
RETURN a.id AS start_id, b.id AS end_id, type(r) AS type, r.gx_type AS gx_type
ORDER BY a.id, b.id, type(r)
`

// UpsertRelationshipStatement builds the statement that merges a directed
// edge of type relType between two existing persons. Cypher cannot bind
// relationship types as parameters, so this is the only place where a
// label is written into statement text; anything outside
// [A-Za-z_][A-Za-z0-9_]* is rejected. Params: start_id, end_id, props.
func UpsertRelationshipStatement(relType string) (string, error) {
	if !common.IsValidRelationshipType(relType) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRelationshipType, relType)
	}
	return fmt.Sprintf(`
MATCH (a:Person {id: $start_id}), (b:Person {id: $end_id})
MERGE (a)-[rel:`+"`%s`"+`]->(b)
SET rel += $props
`, relType), nil
}
