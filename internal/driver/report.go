package driver

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/exp/slices"

	"martianoff/matchcore/internal/checker"
	"martianoff/matchcore/internal/pattern"
)

// WriteReport prints the clause-by-clause narrowing of a checked fixture.
func WriteReport(w io.Writer, res *Result) error {
	var sb strings.Builder
	for i, clause := range res.Report.Clauses {
		header := fmt.Sprintf("case %d: %s", i+1, pattern.Format(clause.Clause.Pattern))
		if clause.Clause.Guard != nil {
			header += " if " + clause.Clause.Guard.String()
		}
		if clause.Unreachable {
			header += " (unreachable)"
		}
		sb.WriteString(header + "\n")
		fmt.Fprintf(&sb, "  subject:  %s\n", clause.Subject)
		if captures := formatCaptures(clause.Captures); captures != "" {
			fmt.Fprintf(&sb, "  captures: %s\n", captures)
		}
		fmt.Fprintf(&sb, "  rest:     %s\n", clause.Rest)
	}
	fmt.Fprintf(&sb, "residual: %s\n", res.Report.Residual)
	if res.Report.Exhaustive() {
		sb.WriteString("exhaustive: yes\n")
	} else {
		sb.WriteString("exhaustive: no\n")
	}

	locals := res.Fixture.Match.Locals
	if len(res.Report.Bindings) > 0 {
		sb.WriteString("bindings:\n")
		for _, id := range sortedIDs(res.Report.Bindings) {
			fmt.Fprintf(&sb, "  %s: %s\n", locals.Name(id), res.Report.Bindings[id])
		}
	}

	if len(res.Diagnostics) > 0 {
		sb.WriteString("diagnostics:\n")
		for _, d := range res.Diagnostics {
			fmt.Fprintf(&sb, "  %d:%d %s [%s]\n", d.Line, d.Column, d.Msg, d.Kind)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func formatCaptures(c *checker.Captures) string {
	byName := c.ByName()
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	slices.Sort(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s: %s", name, byName[name])
	}
	return strings.Join(parts, ", ")
}

func sortedIDs[V any](m map[pattern.LocalID]V) []pattern.LocalID {
	ids := make([]pattern.LocalID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
