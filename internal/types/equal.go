package types

// Equal reports structural equality. Union members are compared as sets.
func Equal(a, b Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	switch a := a.(type) {
	case *Never:
		_, ok := b.(*Never)
		return ok
	case *Any:
		_, ok := b.(*Any)
		return ok
	case *None:
		_, ok := b.(*None)
		return ok
	case *Instance:
		bi, ok := b.(*Instance)
		return ok && a.Class == bi.Class && equalAll(a.Args, bi.Args)
	case *Literal:
		bl, ok := b.(*Literal)
		return ok && a.Value == bl.Value && sameFallback(a.Fallback, bl.Fallback)
	case *Union:
		bu, ok := b.(*Union)
		if !ok || len(a.Items) != len(bu.Items) {
			return false
		}
		for _, x := range a.Items {
			if !containsType(bu.Items, x) {
				return false
			}
		}
		return true
	case *Tuple:
		bt, ok := b.(*Tuple)
		return ok && equalAll(a.Items, bt.Items) && sameFallback(a.Fallback, bt.Fallback)
	case *Unpack:
		bu, ok := b.(*Unpack)
		return ok && Equal(a.Inner, bu.Inner)
	case *TypeVar:
		return false
	case *TypeVarTuple:
		return false
	case *TypedDict:
		bt, ok := b.(*TypedDict)
		if !ok || len(a.Items) != len(bt.Items) {
			return false
		}
		for k, v := range a.Items {
			if !Equal(v, bt.Items[k]) {
				return false
			}
		}
		return true
	}
	return false
}

func equalAll(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func sameFallback(a, b *Instance) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Class == b.Class
}

func containsType(ts []Type, t Type) bool {
	for _, x := range ts {
		if Equal(x, t) {
			return true
		}
	}
	return false
}
