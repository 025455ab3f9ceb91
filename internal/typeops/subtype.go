package typeops

import "martianoff/matchcore/internal/types"

// IsSubtype reports whether a is a subtype of b. Any is compatible in both
// directions.
func (e *Env) IsSubtype(a, b types.Type) bool {
	return e.subtype(a, b, false)
}

// IsProperSubtype is IsSubtype without treating Any as a subtype of
// everything.
func (e *Env) IsProperSubtype(a, b types.Type) bool {
	return e.subtype(a, b, true)
}

func (e *Env) subtype(a, b types.Type, proper bool) bool {
	if _, ok := a.(*types.Never); ok {
		return true
	}
	if _, ok := b.(*types.Any); ok {
		return true
	}
	if _, ok := a.(*types.Any); ok {
		return !proper
	}
	if inst, ok := b.(*types.Instance); ok && inst.Class.FullName == types.ObjectClassName {
		return true
	}

	if u, ok := a.(*types.Union); ok {
		for _, item := range u.Items {
			if !e.subtype(item, b, proper) {
				return false
			}
		}
		return true
	}
	if u, ok := b.(*types.Union); ok {
		for _, item := range u.Items {
			if e.subtype(a, item, proper) {
				return true
			}
		}
		if e.isBoolInstance(a) {
			return e.subtype(e.expandBool(a), b, proper)
		}
		return false
	}

	switch a := a.(type) {
	case *types.TypeVar:
		if a == b {
			return true
		}
		if _, ok := b.(*types.TypeVar); ok {
			return false
		}
		return a.UpperBound != nil && e.subtype(a.UpperBound, b, proper)
	case *types.TypeVarTuple:
		return a == b
	case *types.None:
		_, ok := b.(*types.None)
		return ok
	case *types.Literal:
		if lb, ok := b.(*types.Literal); ok {
			return types.Equal(a, lb)
		}
		return e.subtype(a.Fallback, b, proper)
	case *types.Unpack:
		ub, ok := b.(*types.Unpack)
		return ok && e.subtype(a.Inner, ub.Inner, proper)
	case *types.Tuple:
		switch b := b.(type) {
		case *types.Tuple:
			return e.tupleSubtype(a, b, proper)
		case *types.Instance:
			return e.subtype(e.TupleFallback(a), b, proper)
		}
		return false
	case *types.TypedDict:
		switch b := b.(type) {
		case *types.TypedDict:
			for _, k := range b.Keys {
				at, ok := a.Items[k]
				if !ok || !types.Equal(at, b.Items[k]) {
					return false
				}
			}
			return true
		case *types.Instance:
			return a.Fallback != nil && e.subtype(a.Fallback, b, proper)
		}
		return false
	case *types.Instance:
		switch b := b.(type) {
		case *types.Instance:
			mapped := types.MapToSupertype(a, b.Class)
			if mapped == nil {
				return false
			}
			for i := range b.Args {
				if i >= len(mapped.Args) || !e.subtype(mapped.Args[i], b.Args[i], proper) {
					return false
				}
			}
			return true
		case *types.Tuple:
			// tuple[X, ...] fits only a tuple that is a single variadic slot
			if a.Class.FullName != types.TupleClassName || len(a.Args) != 1 || len(b.Items) != 1 {
				return false
			}
			u, ok := b.Items[0].(*types.Unpack)
			if !ok {
				return false
			}
			elem, ok := types.UnpackedElement(u)
			return ok && e.subtype(a.Args[0], elem, proper)
		}
		return false
	}
	return false
}

func (e *Env) tupleSubtype(a, b *types.Tuple, proper bool) bool {
	ua, ub := a.UnpackIndex(), b.UnpackIndex()
	if ub == -1 {
		if ua != -1 || len(a.Items) != len(b.Items) {
			return false
		}
		for i := range a.Items {
			if !e.subtype(a.Items[i], b.Items[i], proper) {
				return false
			}
		}
		return true
	}

	prefix, suffix := ub, len(b.Items)-ub-1
	if ua != -1 && (ua != prefix || len(a.Items)-ua-1 != suffix) {
		return false
	}
	if len(a.Items) < prefix+suffix {
		return false
	}
	for i := 0; i < prefix; i++ {
		if !e.subtype(a.Items[i], b.Items[i], proper) {
			return false
		}
	}
	for i := 0; i < suffix; i++ {
		if !e.subtype(a.Items[len(a.Items)-1-i], b.Items[len(b.Items)-1-i], proper) {
			return false
		}
	}
	slot := b.Items[ub].(*types.Unpack)
	if ua != -1 {
		return e.subtype(a.Items[ua], slot, proper)
	}
	elem, ok := types.UnpackedElement(slot)
	if !ok {
		return false
	}
	for _, item := range a.Items[prefix : len(a.Items)-suffix] {
		if !e.subtype(item, elem, proper) {
			return false
		}
	}
	return true
}

// IsOverlapping reports whether some value may inhabit both a and b.
func (e *Env) IsOverlapping(a, b types.Type) bool {
	if types.IsAny(a) || types.IsAny(b) {
		return true
	}
	if types.IsNever(a) || types.IsNever(b) {
		return false
	}
	if u, ok := a.(*types.Union); ok {
		for _, item := range u.Items {
			if e.IsOverlapping(item, b) {
				return true
			}
		}
		return false
	}
	if _, ok := b.(*types.Union); ok {
		return e.IsOverlapping(b, a)
	}
	if e.IsSubtype(a, b) || e.IsSubtype(b, a) {
		return true
	}

	if tv, ok := a.(*types.TypeVar); ok && tv.UpperBound != nil {
		return e.IsOverlapping(tv.UpperBound, b)
	}
	if tv, ok := b.(*types.TypeVar); ok && tv.UpperBound != nil {
		return e.IsOverlapping(a, tv.UpperBound)
	}

	switch a := a.(type) {
	case *types.Literal:
		if _, ok := b.(*types.Literal); ok {
			return false
		}
		return e.IsOverlapping(a.Fallback, b)
	case *types.Tuple:
		switch b := b.(type) {
		case *types.Tuple:
			if a.UnpackIndex() == -1 && b.UnpackIndex() == -1 {
				if len(a.Items) != len(b.Items) {
					return false
				}
				for i := range a.Items {
					if !e.IsOverlapping(a.Items[i], b.Items[i]) {
						return false
					}
				}
				return true
			}
			return e.IsOverlapping(e.TupleFallback(a), e.TupleFallback(b))
		case *types.Instance:
			return e.IsOverlapping(e.TupleFallback(a), b)
		}
	case *types.Instance:
		switch b := b.(type) {
		case *types.Literal, *types.Tuple:
			return e.IsOverlapping(b, a)
		case *types.Instance:
			return e.instancesOverlap(a, b)
		}
	case *types.TypedDict:
		if a.Fallback != nil {
			return e.IsOverlapping(a.Fallback, b)
		}
	}
	if _, ok := b.(*types.TypedDict); ok {
		return e.IsOverlapping(b, a)
	}
	return false
}

// instancesOverlap checks related classes argument by argument.
func (e *Env) instancesOverlap(a, b *types.Instance) bool {
	if !a.Class.HasBase(b.Class) {
		if !b.Class.HasBase(a.Class) {
			return false
		}
		a, b = b, a
	}
	mapped := types.MapToSupertype(a, b.Class)
	for i := range b.Args {
		if i < len(mapped.Args) && !e.IsOverlapping(mapped.Args[i], b.Args[i]) {
			return false
		}
	}
	return true
}
