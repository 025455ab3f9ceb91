package types

// Substitution is a mapping from type parameters to types.
type Substitution map[*TypeVar]Type

// BindArgs maps the type parameters of c to args. Missing args become Any.
func BindArgs(c *Class, args []Type) Substitution {
	s := make(Substitution, len(c.TypeParams))
	for i, tv := range c.TypeParams {
		if i < len(args) && args[i] != nil {
			s[tv] = args[i]
		} else {
			s[tv] = NewAny()
		}
	}
	return s
}

// Compose returns a substitution applying other first, then s.
func (s Substitution) Compose(other Substitution) Substitution {
	res := make(Substitution)
	for k, v := range other {
		res[k] = s.Apply(v)
	}
	for k, v := range s {
		if _, ok := res[k]; !ok {
			res[k] = v
		}
	}
	return res
}

// Apply substitutes every bound type parameter in t.
func (s Substitution) Apply(t Type) Type {
	if len(s) == 0 {
		return t
	}
	switch t := t.(type) {
	case *TypeVar:
		if next, ok := s[t]; ok {
			return next
		}
		return t
	case *Instance:
		if len(t.Args) == 0 {
			return t
		}
		return &Instance{Class: t.Class, Args: s.applyAll(t.Args), LastKnown: t.LastKnown}
	case *Union:
		return &Union{Items: s.applyAll(t.Items)}
	case *Tuple:
		var fb *Instance
		if t.Fallback != nil {
			fb = s.Apply(t.Fallback).(*Instance)
		}
		return &Tuple{Items: s.applyAll(t.Items), Fallback: fb}
	case *Unpack:
		return &Unpack{Inner: s.Apply(t.Inner)}
	case *TypedDict:
		items := make(map[string]Type, len(t.Items))
		for k, v := range t.Items {
			items[k] = s.Apply(v)
		}
		return &TypedDict{Name: t.Name, Keys: t.Keys, Items: items, Fallback: t.Fallback}
	default:
		return t
	}
}

func (s Substitution) applyAll(ts []Type) []Type {
	out := make([]Type, len(ts))
	for i, t := range ts {
		out[i] = s.Apply(t)
	}
	return out
}
