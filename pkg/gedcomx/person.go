package gedcomx

import (
	"strings"

	"github.com/tidwall/gjson"
)

// UnknownName is used when a person carries no usable name and no id.
const UnknownName = "Unknown"

// Person is one entry of a document's "persons" array.
type Person struct {
	raw gjson.Result
}

// ID returns the person's identifier. Records without one are not imported.
func (p Person) ID() (string, bool) {
	return nonEmpty(p.raw.Get("id"))
}

// Name picks the display name, first match wins:
// names[0].nameForms[0].fullText, display.name, the id, "Unknown".
func (p Person) Name() string {
	fullText := first(first(p.raw.Get("names")).Get("nameForms")).Get("fullText")
	if name, ok := nonEmpty(fullText); ok {
		return name
	}
	if name, ok := nonEmpty(p.raw.Get("display").Get("name")); ok {
		return name
	}
	if id, ok := p.ID(); ok {
		return id
	}
	return UnknownName
}

// Birth returns date.original of the first fact whose type ends in "/birth"
// (case-insensitive). Later birth facts are ignored even when the first one
// has no date.
func (p Person) Birth() (string, bool) {
	for _, fact := range elements(p.raw.Get("facts")) {
		factType, _ := scalar(fact.Get("type"))
		if !strings.HasSuffix(strings.ToLower(factType), "/birth") {
			continue
		}
		return scalar(fact.Get("date").Get("original"))
	}
	return "", false
}
