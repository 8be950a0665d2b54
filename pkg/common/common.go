package common

// Tree is the canonical genealogical graph: persons as nodes and typed,
// directed relationships between them.
//
// It is both the body of the plain tree endpoints and the shape every
// import format is normalized into before it reaches the graph store.
type Tree struct {
	Persons       []Person       `json:"persons" validate:"required,dive"`
	Relationships []Relationship `json:"relationships" validate:"required,dive"`
}

// Person is a node keyed by a stable ID. Re-importing the same ID updates
// the node in place.
//
// GxID is the identifier in the originating interchange document and is
// only set by the import pipelines.
type Person struct {
	ID    string  `json:"id" validate:"required"`
	Name  string  `json:"name" validate:"required"`
	Birth *string `json:"birth"`
	GxID  string  `json:"gx_id,omitempty"`
}

// Relationship is a directed edge from StartID to EndID. Type is the edge
// label in the graph and must be a valid relationship-type token before it
// is written.
//
// GxType keeps the relationship type exactly as it appeared in the import
// document.
type Relationship struct {
	StartID string `json:"start_id" validate:"required"`
	EndID   string `json:"end_id" validate:"required"`
	Type    string `json:"type" validate:"required"`
	GxType  string `json:"gx_type,omitempty"`
}

// PersonDetail is a single person with the edges touching it.
type PersonDetail struct {
	Person
	Outgoing []Relationship `json:"outgoing"`
	Incoming []Relationship `json:"incoming"`
}

// IsValidRelationshipType reports whether s can be spliced into a Cypher
// statement as a relationship type: an ASCII letter or underscore followed
// by ASCII letters, digits or underscores.
func IsValidRelationshipType(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
