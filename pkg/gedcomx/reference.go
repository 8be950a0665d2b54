package gedcomx

import "strings"

// ResolveReference turns a GEDCOM X resource reference such as "#I1" into
// the bare identifier "I1". References without the leading '#' are
// returned unchanged. An empty result means the reference is unresolved.
func ResolveReference(ref string) string {
	return strings.TrimPrefix(ref, "#")
}
