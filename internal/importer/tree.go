package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/genealogy/backend/pkg/common"
	"github.com/OFFIS-RIT/genealogy/backend/pkg/store"
)

// ImportTree writes a tree of already canonical persons and relationships.
// The whole tree is validated first; a missing field or a type that is not
// a valid label rejects the request without any write.
func (i *Importer) ImportTree(ctx context.Context, tree common.Tree) (*Result, error) {
	if err := i.validate.Struct(tree); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	statements := make([]string, len(tree.Relationships))
	for idx, rel := range tree.Relationships {
		cypher, err := store.UpsertRelationshipStatement(strings.ToUpper(rel.Type))
		if err != nil {
			return nil, &RelationshipTypeError{Type: rel.Type}
		}
		statements[idx] = cypher
	}

	result := &Result{Status: StatusSuccess}
	err := i.withSession(ctx, store.AccessWrite, func(session store.Session) error {
		for _, person := range tree.Persons {
			params := map[string]any{
				"id":    person.ID,
				"name":  person.Name,
				"birth": optional(person.Birth),
			}
			if _, err := run(ctx, session, "upsert person "+person.ID, store.UpsertTreePersonStatement, params); err != nil {
				return err
			}
			result.PersonsImported++
		}

		for idx, rel := range tree.Relationships {
			params := map[string]any{
				"start_id": rel.StartID,
				"end_id":   rel.EndID,
				"props":    map[string]any{},
			}
			if _, err := run(ctx, session, "upsert relationship "+rel.StartID+"->"+rel.EndID, statements[idx], params); err != nil {
				return err
			}
			result.RelationshipsImported++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReadTree returns every person and every edge between persons.
func (i *Importer) ReadTree(ctx context.Context) (*common.Tree, error) {
	tree := &common.Tree{
		Persons:       []common.Person{},
		Relationships: []common.Relationship{},
	}
	err := i.withSession(ctx, store.AccessRead, func(session store.Session) error {
		rows, err := run(ctx, session, "list persons", store.ListPersonsStatement, nil)
		if err != nil {
			return err
		}
		for _, row := range rows {
			tree.Persons = append(tree.Persons, personFromRecord(row))
		}

		rows, err = run(ctx, session, "list relationships", store.ListRelationshipsStatement, nil)
		if err != nil {
			return err
		}
		for _, row := range rows {
			tree.Relationships = append(tree.Relationships, relationshipFromRecord(row))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tree, nil
}

// GetPerson returns one person with its outgoing and incoming edges.
func (i *Importer) GetPerson(ctx context.Context, id string) (*common.PersonDetail, error) {
	var detail *common.PersonDetail
	err := i.withSession(ctx, store.AccessRead, func(session store.Session) error {
		params := map[string]any{"id": id}
		rows, err := run(ctx, session, "get person "+id, store.GetPersonStatement, params)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return ErrPersonNotFound
		}

		detail = &common.PersonDetail{
			Person:   personFromRecord(rows[0]),
			Outgoing: []common.Relationship{},
			Incoming: []common.Relationship{},
		}

		rows, err = run(ctx, session, "get relationships "+id, store.PersonRelationshipsStatement, params)
		if err != nil {
			return err
		}
		for _, row := range rows {
			rel := relationshipFromRecord(row)
			if rel.StartID == id {
				detail.Outgoing = append(detail.Outgoing, rel)
			}
			if rel.EndID == id {
				detail.Incoming = append(detail.Incoming, rel)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func personFromRecord(row store.Record) common.Person {
	return common.Person{
		ID:    row.String("id"),
		Name:  row.String("name"),
		Birth: row.OptionalString("birth"),
		GxID:  row.String("gx_id"),
	}
}

func relationshipFromRecord(row store.Record) common.Relationship {
	return common.Relationship{
		StartID: row.String("start_id"),
		EndID:   row.String("end_id"),
		Type:    row.String("type"),
		GxType:  row.String("gx_type"),
	}
}
