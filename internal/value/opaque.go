// opaque.go holds the value variants whose bodies are stdlib-owned opaque
// handles (spec §3.1): JsonValue, Regex, DateTime. Their construction and
// manipulation lives in internal/stdlib; this file only defines the Value
// wrapper and the standard-library types they're built on.
//
// None of the third-party libraries surfaced anywhere in the retrieval pack
// ground a choice of regex/datetime/JSON engine (see DESIGN.md), so these
// three lean on regexp, time and encoding/json — the same standard library
// the teacher itself reaches for everywhere it needs ad hoc text or time
// handling.
package value

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"
)

// JSON is an immutable JSON tree, isolated from regular Values per §3.1.
// Data holds the encoding/json-decoded shape: nil, bool, float64, string,
// []any, or map[string]any.
type JSON struct {
	Data any
}

func (*JSON) Kind() Kind { return KindJSON }
func (j *JSON) String() string {
	b, err := json.Marshal(j.Data)
	if err != nil {
		return "null"
	}
	return string(b)
}

// Regex is a compiled, opaque regular expression.
type Regex struct {
	Re     *regexp.Regexp
	Source string
}

func (*Regex) Kind() Kind       { return KindRegex }
func (r *Regex) String() string { return fmt.Sprintf("/%s/", r.Source) }

// DateTime is a timezone-aware instant.
type DateTime struct {
	T time.Time
}

func (*DateTime) Kind() Kind       { return KindDateTime }
func (d *DateTime) String() string { return d.T.Format(time.RFC3339) }
