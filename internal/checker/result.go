package checker

import (
	"fmt"

	set "github.com/hashicorp/go-set/v3"

	"martianoff/matchcore/internal/pattern"
	"martianoff/matchcore/internal/types"
	"martianoff/matchcore/matcherr"
)

// Result is what checking one pattern against a subject type yields.
//
// Type is Never iff the pattern can never match. Rest is the subject type
// assuming the pattern did not match.
type Result struct {
	Type     types.Type
	Rest     types.Type
	Captures *Captures
}

// Captures maps bound locals to their inferred types in binding order. The
// first binding site of each local is kept for diagnostics.
type Captures struct {
	order []pattern.LocalID
	sites map[pattern.LocalID]*pattern.Target
	types map[pattern.LocalID]types.Type
}

// NewCaptures creates an empty capture map.
func NewCaptures() *Captures {
	return &Captures{
		sites: make(map[pattern.LocalID]*pattern.Target),
		types: make(map[pattern.LocalID]types.Type),
	}
}

// Set records a binding, replacing the type of an existing one.
func (c *Captures) Set(target *pattern.Target, t types.Type) {
	if _, ok := c.types[target.ID]; !ok {
		c.order = append(c.order, target.ID)
		c.sites[target.ID] = target
	}
	c.types[target.ID] = t
}

// Get returns the type bound to id.
func (c *Captures) Get(id pattern.LocalID) (types.Type, bool) {
	t, ok := c.types[id]
	return t, ok
}

// Site returns the first binding site of id.
func (c *Captures) Site(id pattern.LocalID) *pattern.Target {
	return c.sites[id]
}

// Len returns the number of bound locals.
func (c *Captures) Len() int {
	return len(c.order)
}

// IDs returns the bound locals in binding order.
func (c *Captures) IDs() []pattern.LocalID {
	out := make([]pattern.LocalID, len(c.order))
	copy(out, c.order)
	return out
}

// IDSet returns the bound locals as a set.
func (c *Captures) IDSet() *set.Set[pattern.LocalID] {
	return set.From(c.order)
}

// ByName returns the captured types keyed by local name.
func (c *Captures) ByName() map[string]types.Type {
	out := make(map[string]types.Type, len(c.order))
	for _, id := range c.order {
		out[c.sites[id].Name] = c.types[id]
	}
	return out
}

// earlyNonMatch is the result of a pattern that cannot match ctx.
func earlyNonMatch(ctx types.Type) Result {
	return Result{Type: types.NewNever(), Rest: ctx, Captures: NewCaptures()}
}

// merge adds extra into into. Binding a local twice within one conjunctive
// pattern is reported once per repeated site.
func (c *Checker) merge(into, extra *Captures) {
	for _, id := range extra.order {
		site := extra.sites[id]
		if _, taken := into.types[id]; taken {
			c.report(matcherr.KindDuplicateCapture, site.Pos, fmt.Sprintf(matcherr.MsgDuplicateCapture, site.Name))
			continue
		}
		into.Set(site, extra.types[id])
	}
}
