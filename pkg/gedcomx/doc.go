// Package gedcomx normalizes GEDCOM X JSON documents into the canonical
// person and relationship records of the genealogy graph.
//
// GEDCOM X is loosely structured: every nested object and array may be
// missing or have an unexpected shape. All accessors in this package are
// total. A missing or mistyped field reads as absent, never as an error,
// so a single malformed record can only ever cause that record to be
// skipped.
//
// Only the document envelope is validated: Parse rejects input that is
// not a JSON object.
package gedcomx
