// Package gedcom maps decoded GEDCOM 5.5/7 documents onto the canonical
// person and relationship schema used by the GEDCOM X importer.
package gedcom

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/OFFIS-RIT/genealogy/backend/pkg/common"
	"github.com/OFFIS-RIT/genealogy/backend/pkg/gedcomx"

	"github.com/cacack/gedcom-go/decoder"
	"github.com/cacack/gedcom-go/gedcom"
)

var ErrInvalidEncoding = errors.New("gedcom text is not valid UTF-8")

const (
	CoupleURI      = "http://gedcomx.org/Couple"
	ParentChildURI = "http://gedcomx.org/ParentChild"
)

// Graph is the canonical view of a GEDCOM document.
type Graph struct {
	Persons              []common.Person
	Relationships        []common.Relationship
	PersonsSkipped       int
	RelationshipsSkipped int
}

// Decode parses r and maps the result with Map. Parsing stops when ctx is
// cancelled.
func Decode(ctx context.Context, r io.Reader) (*Graph, error) {
	opts := decoder.DefaultOptions()
	opts.Context = ctx
	doc, err := decoder.DecodeWithOptions(r, opts)
	if err != nil {
		return nil, fmt.Errorf("decode gedcom: %w", err)
	}
	g := Map(doc)
	if err := checkEncoding(g); err != nil {
		return nil, err
	}
	return g, nil
}

// checkEncoding rejects graphs carrying text the decoder passed through
// without transcoding.
func checkEncoding(g *Graph) error {
	for _, p := range g.Persons {
		if !utf8.ValidString(p.ID) || !utf8.ValidString(p.Name) || !utf8.ValidString(p.GxID) {
			return fmt.Errorf("%w: person %q", ErrInvalidEncoding, p.ID)
		}
		if p.Birth != nil && !utf8.ValidString(*p.Birth) {
			return fmt.Errorf("%w: person %q", ErrInvalidEncoding, p.ID)
		}
	}
	for _, r := range g.Relationships {
		if !utf8.ValidString(r.StartID) || !utf8.ValidString(r.EndID) {
			return fmt.Errorf("%w: relationship %q -> %q", ErrInvalidEncoding, r.StartID, r.EndID)
		}
	}
	return nil
}

// Map converts individuals into persons and families into COUPLE and
// PARENT_CHILD relationships. Individuals without an xref are skipped, as
// are family links whose partner side is empty.
func Map(doc *gedcom.Document) *Graph {
	g := &Graph{
		Persons:       []common.Person{},
		Relationships: []common.Relationship{},
	}
	if doc == nil {
		return g
	}

	for _, individual := range doc.Individuals() {
		if individual == nil {
			continue
		}
		id := StripXRef(individual.XRef)
		if id == "" {
			g.PersonsSkipped++
			continue
		}
		g.Persons = append(g.Persons, common.Person{
			ID:    id,
			Name:  personName(individual, id),
			Birth: birthDate(individual),
			GxID:  id,
		})
	}

	for _, family := range doc.Families() {
		if family == nil {
			continue
		}
		husband := StripXRef(family.Husband)
		wife := StripXRef(family.Wife)

		if husband != "" && wife != "" {
			g.addRelationship(husband, wife, gedcomx.LabelCouple, CoupleURI)
		} else if husband != "" || wife != "" {
			g.RelationshipsSkipped++
		}

		for _, childRef := range family.Children {
			child := StripXRef(childRef)
			if child == "" {
				g.RelationshipsSkipped++
				continue
			}
			parents := 0
			for _, parent := range []string{husband, wife} {
				if parent == "" {
					continue
				}
				parents++
				g.addRelationship(parent, child, gedcomx.LabelParentChild, ParentChildURI)
			}
			if parents == 0 {
				g.RelationshipsSkipped++
			}
		}
	}

	return g
}

func (g *Graph) addRelationship(start, end, label, uri string) {
	g.Relationships = append(g.Relationships, common.Relationship{
		StartID: start,
		EndID:   end,
		Type:    label,
		GxType:  uri,
	})
}

// StripXRef removes the surrounding @ delimiters of a cross reference.
func StripXRef(xref string) string {
	return strings.Trim(strings.TrimSpace(xref), "@")
}

func personName(individual *gedcom.Individual, id string) string {
	for _, name := range individual.Names {
		if name == nil {
			continue
		}
		if full := cleanName(name.Full); full != "" {
			return full
		}
		if parts := cleanName(name.Given + " " + name.Surname); parts != "" {
			return parts
		}
	}
	if id != "" {
		return id
	}
	return gedcomx.UnknownName
}

// cleanName drops the surname slashes and collapses whitespace.
func cleanName(raw string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(raw, "/", " ")), " ")
}

func birthDate(individual *gedcom.Individual) *string {
	for _, event := range individual.Events {
		if event == nil || event.Type != gedcom.EventBirth {
			continue
		}
		if event.Date == "" {
			return nil
		}
		date := event.Date
		return &date
	}
	return nil
}
