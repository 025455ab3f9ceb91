package typeops

import "martianoff/matchcore/internal/types"

// Narrow splits current by the candidate ranges. matched is what current
// becomes if the value is one of the ranges, rest what it becomes
// otherwise. def replaces current as the matched type when every value of
// current is covered. Without ranges nothing is known about the value and
// both sides stay current.
func (e *Env) Narrow(current types.Type, ranges []types.TypeRange, def types.Type) (matched, rest types.Type) {
	if len(ranges) == 0 {
		return current, current
	}
	if def == nil {
		def = current
	}
	if len(ranges) == 1 {
		if lit, ok := ranges[0].Item.(*types.Literal); ok {
			if _, isBool := lit.Value.(bool); isBool {
				current = e.expandBool(current)
			}
		}
	}

	items := make([]types.Type, len(ranges))
	upper := false
	var precise []types.Type
	for i, r := range ranges {
		items[i] = r.Item
		if r.IsUpperBound {
			upper = true
		} else {
			precise = append(precise, r.Item)
		}
	}
	proposed := e.Union(items)

	switch {
	case types.IsAny(proposed):
		return proposed, current
	case !upper && e.IsProperSubtype(current, proposed):
		return def, types.NewNever()
	case !e.IsOverlapping(current, proposed):
		return e.intersect(current, proposed)
	}

	var yes []types.Type
	for _, item := range types.UnionItems(current) {
		if e.IsOverlapping(item, proposed) {
			yes = append(yes, e.meet(item, proposed))
		}
	}
	return e.Union(yes), e.restrict(current, e.Union(precise))
}

// intersect handles a current type with no declared overlap: a value of two
// unrelated non-final user classes can still exist through a subclass of
// both, which is approximated by the proposed type.
func (e *Env) intersect(current, proposed types.Type) (types.Type, types.Type) {
	var out []types.Type
	for _, c := range types.UnionItems(current) {
		ci, ok := c.(*types.Instance)
		if !ok || !e.extensible(ci.Class) {
			continue
		}
		for _, p := range types.UnionItems(proposed) {
			pi, ok := p.(*types.Instance)
			if ok && e.extensible(pi.Class) {
				out = append(out, pi)
			}
		}
	}
	if len(out) == 0 {
		return types.NewNever(), current
	}
	return e.Union(out), current
}

func (e *Env) extensible(c *types.Class) bool {
	return !c.Final && !c.IsBuiltin() && c.TupleType == nil
}

// meet narrows a single overlapping item by proposed.
func (e *Env) meet(item, proposed types.Type) types.Type {
	if e.IsProperSubtype(item, proposed) {
		return item
	}
	if types.IsAny(item) {
		return proposed
	}
	var out []types.Type
	for _, p := range types.UnionItems(proposed) {
		if !e.IsOverlapping(item, p) {
			continue
		}
		if e.IsSubtype(item, p) {
			out = append(out, item)
		} else {
			out = append(out, p)
		}
	}
	return e.Union(out)
}

// restrict removes from current every union item that is fully covered by
// precise.
func (e *Env) restrict(current, precise types.Type) types.Type {
	if types.IsNever(precise) {
		return current
	}
	var out []types.Type
	for _, item := range types.UnionItems(current) {
		if !e.IsProperSubtype(item, precise) {
			out = append(out, item)
		}
	}
	return e.Union(out)
}

// NarrowDeclared refines a declared type with narrowed information while
// keeping the declared type arguments where they are more precise.
func (e *Env) NarrowDeclared(declared, narrowed types.Type) types.Type {
	if types.Equal(declared, narrowed) {
		return declared
	}
	if u, ok := declared.(*types.Union); ok {
		var out []types.Type
		for _, item := range u.Items {
			if e.IsOverlapping(item, narrowed) {
				out = append(out, e.NarrowDeclared(item, narrowed))
			}
		}
		return e.Union(out)
	}
	if types.IsAny(narrowed) || types.IsAny(declared) {
		return narrowed
	}
	if u, ok := narrowed.(*types.Union); ok {
		out := make([]types.Type, len(u.Items))
		for i, item := range u.Items {
			out[i] = e.NarrowDeclared(declared, item)
		}
		return e.Union(out)
	}
	if e.IsProperSubtype(declared, narrowed) {
		return declared
	}
	return narrowed
}
