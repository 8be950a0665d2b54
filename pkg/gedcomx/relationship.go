package gedcomx

import (
	"strings"

	"github.com/OFFIS-RIT/genealogy/backend/pkg/common"

	"github.com/tidwall/gjson"
)

// Canonical relationship labels of the graph schema.
const (
	LabelCouple      = "COUPLE"
	LabelParentChild = "PARENT_CHILD"
	// LabelRelated replaces any type that cannot be turned into a valid label.
	LabelRelated = "RELATED"
)

// Relationship is one entry of a document's "relationships" array.
type Relationship struct {
	raw gjson.Result
}

// Type returns the raw "type" value, or "" when it is missing.
func (r Relationship) Type() string {
	t, _ := scalar(r.raw.Get("type"))
	return t
}

// Label is the canonical graph label for Type.
func (r Relationship) Label() string {
	return CanonicalizeType(r.Type())
}

// Endpoints resolves person1.resource and person2.resource. ok is false when
// either side is missing or resolves to an empty identifier.
func (r Relationship) Endpoints() (source, target string, ok bool) {
	source = r.endpoint("person1")
	target = r.endpoint("person2")
	return source, target, source != "" && target != ""
}

func (r Relationship) endpoint(field string) string {
	ref, _ := scalar(r.raw.Get(field).Get("resource"))
	return ResolveReference(ref)
}

// CanonicalizeType maps a GEDCOM X relationship type URI onto a graph label.
// The last path segment is upper-cased; COUPLE and PARENTCHILD/PARENT_CHILD
// map to the canonical labels. Any other token has every character outside
// [A-Za-z0-9] replaced by '_' and is used as-is if it is then a valid label,
// otherwise LabelRelated is returned. The result always satisfies
// common.IsValidRelationshipType.
func CanonicalizeType(gxType string) string {
	token := ""
	if gxType != "" {
		token = strings.ToUpper(gxType[strings.LastIndex(gxType, "/")+1:])
	}

	switch token {
	case "COUPLE":
		return LabelCouple
	case "PARENTCHILD", "PARENT_CHILD":
		return LabelParentChild
	case "":
		return LabelRelated
	}

	sanitized := strings.Map(func(r rune) rune {
		if r < 0x80 && (r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, token)
	if !common.IsValidRelationshipType(sanitized) {
		return LabelRelated
	}
	return sanitized
}
