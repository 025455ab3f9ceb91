package checker

import (
	"martianoff/matchcore/internal/pattern"
	"martianoff/matchcore/internal/types"
)

// ClauseReport is what one case clause contributes to a match statement.
type ClauseReport struct {
	Clause *pattern.Clause
	// Subject is the subject type inside the clause body.
	Subject types.Type
	// Rest is the subject type for the clauses that follow.
	Rest     types.Type
	Captures *Captures
	// Unreachable is set when the pattern can never match here.
	Unreachable bool
}

// MatchReport is the result of checking a whole match statement.
type MatchReport struct {
	Clauses []ClauseReport
	// Bindings joins the capture types of each local across clauses.
	Bindings map[pattern.LocalID]types.Type
	// Residual is the subject type when no clause matched.
	Residual types.Type
}

// Exhaustive reports whether some clause always matches.
func (r *MatchReport) Exhaustive() bool {
	return types.IsUninhabited(r.Residual)
}

// CheckMatch checks the clauses of a match statement in order, each against
// what the previous clauses left of the subject.
func (c *Checker) CheckMatch(subject types.Type, clauses []pattern.Clause) *MatchReport {
	report := &MatchReport{Bindings: make(map[pattern.LocalID]types.Type)}
	current := subject
	for i := range clauses {
		clause := &clauses[i]
		res := c.Evaluate(clause.Pattern, current)
		rest := res.Rest
		if clause.Guard != nil {
			// a failing guard falls through with the matched value
			rest = c.oracle.Union([]types.Type{rest, res.Type})
		}
		report.Clauses = append(report.Clauses, ClauseReport{
			Clause:      clause,
			Subject:     res.Type,
			Rest:        rest,
			Captures:    res.Captures,
			Unreachable: types.IsUninhabited(res.Type),
		})
		for _, id := range res.Captures.IDs() {
			t, _ := res.Captures.Get(id)
			if prev, ok := report.Bindings[id]; ok {
				t = c.oracle.Join(prev, t)
			}
			report.Bindings[id] = t
		}
		current = rest
	}
	report.Residual = current
	return report
}
