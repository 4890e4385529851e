// internal/domain/query/intent.go
package query

import (
	"strings"

	"attendance_dashboard/internal/domain/attendance"
)

// IntentKind classifies a search query.
type IntentKind int

const (
	ClassSummary IntentKind = iota
	StudentLookup
)

func (k IntentKind) String() string {
	switch k {
	case ClassSummary:
		return "class_summary"
	case StudentLookup:
		return "student_lookup"
	}
	return "unknown"
}

// Intent is the classified meaning of a search query.
// Key is set only for StudentLookup.
type Intent struct {
	Kind IntentKind
	Key  string
}

// classAliases resolve to the class-wide summary.
var classAliases = map[string]struct{}{
	"":      {},
	"class": {},
	"all":   {},
}

// Normalize trims surrounding whitespace and lower-cases the query.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Parse classifies raw into an intent. For StudentLookup the key is the
// normalized query; the resolver may replace it with the matched directory key.
func Parse(raw string) Intent {
	q := Normalize(raw)
	if _, ok := classAliases[q]; ok {
		return Intent{Kind: ClassSummary}
	}
	return Intent{Kind: StudentLookup, Key: q}
}

// Resolved is a successfully resolved query.
type Resolved struct {
	Intent Intent
	Report attendance.Record
}
