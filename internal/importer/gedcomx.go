package importer

import (
	"context"
	"fmt"

	"github.com/OFFIS-RIT/genealogy/backend/pkg/gedcomx"
	"github.com/OFFIS-RIT/genealogy/backend/pkg/logger"
	"github.com/OFFIS-RIT/genealogy/backend/pkg/store"
)

// ImportGedcomX imports a GEDCOM X JSON document. A payload that is not a
// JSON object fails with ErrInvalidPayload before the store is touched.
// Persons without an id and relationships with an unresolvable endpoint
// are skipped and counted.
func (i *Importer) ImportGedcomX(ctx context.Context, payload []byte) (*Result, error) {
	doc, err := gedcomx.Parse(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	result := &Result{Status: StatusSuccess}
	err = i.withSession(ctx, store.AccessWrite, func(session store.Session) error {
		for _, person := range doc.Persons() {
			id, ok := person.ID()
			if !ok {
				result.PersonsSkipped++
				continue
			}

			var birth any
			if b, ok := person.Birth(); ok {
				birth = b
			}
			params := map[string]any{
				"id":    id,
				"name":  person.Name(),
				"birth": birth,
				"gx_id": id,
			}
			if _, err := run(ctx, session, "upsert person "+id, store.UpsertPersonStatement, params); err != nil {
				return err
			}
			result.PersonsImported++
		}

		for _, rel := range doc.Relationships() {
			source, target, ok := rel.Endpoints()
			if !ok {
				result.RelationshipsSkipped++
				continue
			}

			cypher, err := store.UpsertRelationshipStatement(rel.Label())
			if err != nil {
				// unreachable: CanonicalizeType only yields valid labels
				return err
			}
			params := map[string]any{
				"start_id": source,
				"end_id":   target,
				"props":    map[string]any{"gx_type": rel.Type()},
			}
			if _, err := run(ctx, session, "upsert relationship "+source+"->"+target, cypher, params); err != nil {
				return err
			}
			result.RelationshipsImported++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("[Import] GEDCOM X import finished",
		"persons", result.PersonsImported,
		"persons_skipped", result.PersonsSkipped,
		"relationships", result.RelationshipsImported,
		"relationships_skipped", result.RelationshipsSkipped,
	)
	return result, nil
}
