package typeops

import (
	"golang.org/x/exp/slices"

	"martianoff/matchcore/internal/types"
)

// Union builds a simplified union: nested unions are flattened, Never and
// items subsumed by another item are dropped, and Literal[True] together
// with Literal[False] collapses to bool.
func (e *Env) Union(items []types.Type) types.Type {
	flat := make([]types.Type, 0, len(items))
	for _, it := range items {
		for _, sub := range types.UnionItems(it) {
			if !types.IsNever(sub) {
				flat = append(flat, sub)
			}
		}
	}
	flat = e.mergeBoolLiterals(flat)

	var out []types.Type
	for i, it := range flat {
		subsumed := false
		for j, other := range flat {
			if i == j {
				continue
			}
			if types.Equal(it, other) {
				// keep the first of equal items
				if j < i {
					subsumed = true
					break
				}
				continue
			}
			if types.IsAny(other) {
				continue
			}
			if e.IsProperSubtype(it, other) && !e.IsProperSubtype(other, it) {
				subsumed = true
				break
			}
		}
		if !subsumed {
			out = append(out, it)
		}
	}

	switch len(out) {
	case 0:
		return types.NewNever()
	case 1:
		return out[0]
	}
	return &types.Union{Items: out}
}

func (e *Env) mergeBoolLiterals(items []types.Type) []types.Type {
	isBoolLit := func(t types.Type, v bool) bool {
		lit, ok := t.(*types.Literal)
		if !ok {
			return false
		}
		b, ok := lit.Value.(bool)
		return ok && b == v
	}
	ti := slices.IndexFunc(items, func(t types.Type) bool { return isBoolLit(t, true) })
	fi := slices.IndexFunc(items, func(t types.Type) bool { return isBoolLit(t, false) })
	if ti == -1 || fi == -1 {
		return items
	}
	first := min(ti, fi)
	out := make([]types.Type, 0, len(items))
	for i, it := range items {
		switch {
		case i == first:
			out = append(out, e.instance(types.BoolClassName))
		case isBoolLit(it, true), isBoolLit(it, false):
		default:
			out = append(out, it)
		}
	}
	return out
}

// Join computes the least upper bound of a and b. None and unions join to a
// union; unrelated classes join to their closest common base.
func (e *Env) Join(a, b types.Type) types.Type {
	switch {
	case types.IsNever(a):
		return b
	case types.IsNever(b):
		return a
	case types.IsAny(a):
		return a
	case types.IsAny(b):
		return b
	}
	if e.IsProperSubtype(a, b) {
		return b
	}
	if e.IsProperSubtype(b, a) {
		return a
	}

	_, aUnion := a.(*types.Union)
	_, bUnion := b.(*types.Union)
	_, aNone := a.(*types.None)
	_, bNone := b.(*types.None)
	if aUnion || bUnion || aNone || bNone {
		return e.Union([]types.Type{a, b})
	}

	switch x := a.(type) {
	case *types.TypeVar:
		if x.UpperBound != nil {
			return e.Join(x.UpperBound, b)
		}
	case *types.Literal:
		if y, ok := b.(*types.Literal); ok && y.Fallback.Class == x.Fallback.Class {
			return x.Fallback
		}
		return e.Join(x.Fallback, b)
	case *types.Tuple:
		if y, ok := b.(*types.Tuple); ok && x.UnpackIndex() == -1 && y.UnpackIndex() == -1 && len(x.Items) == len(y.Items) {
			items := make([]types.Type, len(x.Items))
			for i := range x.Items {
				items[i] = e.Join(x.Items[i], y.Items[i])
			}
			return types.NewTuple(items, x.Fallback)
		}
		if y, ok := b.(*types.Tuple); ok {
			return e.Join(e.TupleFallback(x), e.TupleFallback(y))
		}
		return e.Join(e.TupleFallback(x), b)
	case *types.TypedDict:
		if x.Fallback != nil {
			return e.Join(x.Fallback, b)
		}
	case *types.Instance:
		switch y := b.(type) {
		case *types.Instance:
			return e.joinInstances(x, y)
		case *types.TypeVar, *types.Literal, *types.Tuple, *types.TypedDict:
			return e.Join(b, a)
		}
	}
	return e.instance(types.ObjectClassName)
}

func (e *Env) joinInstances(a, b *types.Instance) types.Type {
	for _, k := range a.Class.MRO() {
		if !b.Class.HasBase(k) {
			continue
		}
		ma := types.MapToSupertype(a, k)
		mb := types.MapToSupertype(b, k)
		args := make([]types.Type, len(k.TypeParams))
		for i := range args {
			if types.Equal(ma.Args[i], mb.Args[i]) {
				args[i] = ma.Args[i]
			} else {
				args[i] = e.Join(ma.Args[i], mb.Args[i])
			}
		}
		return &types.Instance{Class: k, Args: args}
	}
	return e.instance(types.ObjectClassName)
}
