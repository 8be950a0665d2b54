package store

import (
	"errors"
	"strings"
	"testing"
)

func TestUpsertRelationshipStatement(t *testing.T) {
	stmt, err := UpsertRelationshipStatement("PARENT_CHILD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stmt, "MERGE (a)-[rel:`PARENT_CHILD`]->(b)") {
		t.Fatalf("label not spliced as expected:\n%s", stmt)
	}
	if !strings.Contains(stmt, "$props") || !strings.Contains(stmt, "$start_id") || !strings.Contains(stmt, "$end_id") {
		t.Fatalf("statement must bind ids and properties:\n%s", stmt)
	}
}

func TestUpsertRelationshipStatementRejectsUnsafeTypes(t *testing.T) {
	for _, relType := range []string{"", "MARRIED TO", "1ST", "A`]->(b) DELETE b //", "rel:X"} {
		stmt, err := UpsertRelationshipStatement(relType)
		if !errors.Is(err, ErrInvalidRelationshipType) {
			t.Fatalf("%q: expected ErrInvalidRelationshipType, got %v", relType, err)
		}
		if stmt != "" {
			t.Fatalf("%q: expected no statement, got %q", relType, stmt)
		}
	}
}

func TestRecordAccessors(t *testing.T) {
	r := Record{"name": "Jane", "birth": nil, "count": int64(3)}

	if r.String("name") != "Jane" {
		t.Fatalf("unexpected name %q", r.String("name"))
	}
	if r.String("count") != "" || r.String("missing") != "" {
		t.Fatal("non-string columns must read as empty")
	}
	if r.OptionalString("birth") != nil {
		t.Fatal("null column must be nil")
	}
	if got := r.OptionalString("name"); got == nil || *got != "Jane" {
		t.Fatalf("unexpected optional name %v", got)
	}
}
