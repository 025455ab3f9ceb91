package matcherr

import "fmt"

// Kind identifies a structural pattern diagnostic.
type Kind int

const (
	KindDuplicateCapture Kind = iota + 1
	KindAlternativeNames
	KindTooManyPositionals
	KindGenericAlias
	KindTypeRequired
	KindKeywordMatchesPositional
	KindDuplicateKeyword
	KindUnknownKeyword
	KindMissingMatchArgs
)

var kindNames = map[Kind]string{
	KindDuplicateCapture:         "duplicate-capture",
	KindAlternativeNames:         "alternative-names",
	KindTooManyPositionals:       "too-many-positionals",
	KindGenericAlias:             "generic-alias",
	KindTypeRequired:             "type-required",
	KindKeywordMatchesPositional: "keyword-matches-positional",
	KindDuplicateKeyword:         "duplicate-keyword",
	KindUnknownKeyword:           "unknown-keyword",
	KindMissingMatchArgs:         "missing-match-args",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Message templates, one per Kind.
const (
	MsgDuplicateCapture         = "Multiple assignments to name %q in pattern"
	MsgAlternativeNames         = "Alternative patterns bind different names"
	MsgTooManyPositionals       = "Too many positional patterns for class pattern"
	MsgGenericAlias             = "Class pattern class must not be a type alias with type parameters"
	MsgTypeRequired             = "Expected type in class pattern; found %q"
	MsgKeywordMatchesPositional = "Keyword %q already matches a positional pattern"
	MsgDuplicateKeyword         = "Duplicate keyword pattern %q"
	MsgUnknownKeyword           = "Class %q has no attribute %q"
	MsgMissingMatchArgs         = "Class %q does not define \"__match_args__\""
)

// Reporter is the diagnostic channel. It accumulates and never blocks.
type Reporter interface {
	Report(err *PatternError)
}

// Collector is a Reporter that keeps every diagnostic in report order.
type Collector struct {
	Errors []*PatternError
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Report(err *PatternError) {
	c.Errors = append(c.Errors, err)
}

// HasErrors reports whether anything was collected.
func (c *Collector) HasErrors() bool {
	return len(c.Errors) > 0
}

// Count returns how many diagnostics of the given kind were collected.
func (c *Collector) Count(kind Kind) int {
	n := 0
	for _, e := range c.Errors {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Err returns the collected diagnostics as a MultiError, or nil.
func (c *Collector) Err() error {
	if len(c.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(c.Errors))
	for i, e := range c.Errors {
		errs[i] = e
	}
	return &MultiError{Errors: errs}
}

// Discard drops every diagnostic.
type Discard struct{}

func (Discard) Report(*PatternError) {}
