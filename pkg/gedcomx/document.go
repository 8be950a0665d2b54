package gedcomx

import (
	"errors"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

var (
	ErrInvalidJSON = errors.New("payload is not valid JSON")
	ErrNotObject   = errors.New("payload must be a JSON object")
)

// Document is a parsed GEDCOM X payload.
type Document struct {
	root gjson.Result
}

// Parse validates the envelope of a GEDCOM X payload. The payload must be
// UTF-8 encoded JSON; nothing below the top level object is checked here.
//
// When an object repeats a key, lookups return the first occurrence.
func Parse(payload []byte) (*Document, error) {
	if !utf8.Valid(payload) || !gjson.ValidBytes(payload) {
		return nil, ErrInvalidJSON
	}
	root := gjson.ParseBytes(payload)
	if !root.IsObject() {
		return nil, ErrNotObject
	}
	return &Document{root: root}, nil
}

// Persons returns the entries of the "persons" array in document order.
// A missing or non-array field yields no persons.
func (d *Document) Persons() []Person {
	items := elements(d.root.Get("persons"))
	persons := make([]Person, 0, len(items))
	for _, item := range items {
		persons = append(persons, Person{raw: item})
	}
	return persons
}

// Relationships returns the entries of the "relationships" array in
// document order. A missing or non-array field yields no relationships.
func (d *Document) Relationships() []Relationship {
	items := elements(d.root.Get("relationships"))
	rels := make([]Relationship, 0, len(items))
	for _, item := range items {
		rels = append(rels, Relationship{raw: item})
	}
	return rels
}

func elements(r gjson.Result) []gjson.Result {
	if !r.IsArray() {
		return nil
	}
	return r.Array()
}

func first(r gjson.Result) gjson.Result {
	items := elements(r)
	if len(items) == 0 {
		return gjson.Result{}
	}
	return items[0]
}

// scalar reads strings and numbers. Objects, arrays, booleans and null are
// treated as absent.
func scalar(r gjson.Result) (string, bool) {
	switch r.Type {
	case gjson.String:
		return r.Str, true
	case gjson.Number:
		return r.Raw, true
	default:
		return "", false
	}
}

// nonEmpty is scalar with the empty string treated as absent.
func nonEmpty(r gjson.Result) (string, bool) {
	s, ok := scalar(r)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
