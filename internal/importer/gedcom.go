package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/OFFIS-RIT/genealogy/backend/pkg/gedcom"
	"github.com/OFFIS-RIT/genealogy/backend/pkg/logger"
	"github.com/OFFIS-RIT/genealogy/backend/pkg/store"
)

// ImportGedcom decodes a GEDCOM 5.5 or 7 file and writes it with the same
// statements as ImportGedcomX.
func (i *Importer) ImportGedcom(ctx context.Context, r io.Reader) (*Result, error) {
	g, err := gedcom.Decode(ctx, r)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	result := &Result{
		Status:               StatusSuccess,
		PersonsSkipped:       g.PersonsSkipped,
		RelationshipsSkipped: g.RelationshipsSkipped,
	}
	err = i.withSession(ctx, store.AccessWrite, func(session store.Session) error {
		for _, person := range g.Persons {
			params := map[string]any{
				"id":    person.ID,
				"name":  person.Name,
				"birth": optional(person.Birth),
				"gx_id": person.GxID,
			}
			if _, err := run(ctx, session, "upsert person "+person.ID, store.UpsertPersonStatement, params); err != nil {
				return err
			}
			result.PersonsImported++
		}

		for _, rel := range g.Relationships {
			cypher, err := store.UpsertRelationshipStatement(rel.Type)
			if err != nil {
				return err
			}
			params := map[string]any{
				"start_id": rel.StartID,
				"end_id":   rel.EndID,
				"props":    map[string]any{"gx_type": rel.GxType},
			}
			if _, err := run(ctx, session, "upsert relationship "+rel.StartID+"->"+rel.EndID, cypher, params); err != nil {
				return err
			}
			result.RelationshipsImported++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("[Import] GEDCOM import finished",
		"persons", result.PersonsImported,
		"relationships", result.RelationshipsImported,
	)
	return result, nil
}
