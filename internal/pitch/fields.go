package pitch

import "strings"

// RawFields is the multipart field map as parsed from the request body.
// A field may be absent, appear once, or arrive duplicated; First resolves
// every case to one canonical string.
type RawFields map[string][]string

// First returns the first value of the named field, trimmed, or the empty
// string when the field is absent.
func (f RawFields) First(name string) string {
	values := f[name]
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}
