package typeops

import (
	"fmt"

	"martianoff/matchcore/internal/pattern"
	"martianoff/matchcore/internal/types"
)

// MemberType returns the type of attribute name on values of receiver.
// Class type arguments are substituted into the declared member type.
// original is the receiver before any narrowing and is used only for error
// messages.
func (e *Env) MemberType(name string, receiver, original types.Type) (types.Type, error) {
	if original == nil {
		original = receiver
	}
	switch r := receiver.(type) {
	case *types.Any:
		return types.NewAny(), nil
	case *types.Never:
		return types.NewNever(), nil
	case *types.Instance:
		declared, owner, ok := r.Class.Lookup(name)
		if !ok {
			return nil, e.noAttribute(original, name)
		}
		mapped := types.MapToSupertype(r, owner)
		return types.BindArgs(owner, mapped.Args).Apply(declared), nil
	case *types.Literal:
		return e.MemberType(name, r.Fallback, original)
	case *types.Tuple:
		return e.MemberType(name, e.TupleFallback(r), original)
	case *types.TypedDict:
		if r.Fallback != nil {
			return e.MemberType(name, r.Fallback, original)
		}
	case *types.TypeVar:
		if r.UpperBound != nil {
			return e.MemberType(name, r.UpperBound, original)
		}
	case *types.Union:
		out := make([]types.Type, 0, len(r.Items))
		for _, item := range r.Items {
			t, err := e.MemberType(name, item, original)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		}
		return e.Union(out), nil
	}
	return nil, e.noAttribute(original, name)
}

func (e *Env) noAttribute(t types.Type, name string) error {
	return fmt.Errorf("%s has no attribute %q", t, name)
}

// ItemType returns the type of receiver[key]. TypedDicts are looked up by
// literal key, mappings yield their value type, sequences and tuples accept
// integer keys.
func (e *Env) ItemType(receiver types.Type, key pattern.Expr) (types.Type, error) {
	switch r := receiver.(type) {
	case *types.Any:
		return types.NewAny(), nil
	case *types.TypedDict:
		c, ok := key.(*pattern.Const)
		if !ok {
			return nil, fmt.Errorf("TypedDict %s key must be a string literal", r)
		}
		s, ok := c.Value.(string)
		if !ok {
			return nil, fmt.Errorf("TypedDict %s key must be a string literal", r)
		}
		t, ok := r.Items[s]
		if !ok {
			return nil, fmt.Errorf("TypedDict %s has no key %q", r, s)
		}
		return t, nil
	case *types.Union:
		out := make([]types.Type, 0, len(r.Items))
		for _, item := range r.Items {
			t, err := e.ItemType(item, key)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		}
		return e.Union(out), nil
	case *types.Tuple:
		if idx, ok := intKey(key); ok && r.UnpackIndex() == -1 {
			if idx < 0 {
				idx += int64(len(r.Items))
			}
			if idx < 0 || idx >= int64(len(r.Items)) {
				return nil, fmt.Errorf("tuple index out of range")
			}
			return r.Items[idx], nil
		}
		return e.ItemType(e.TupleFallback(r), key)
	case *types.TypeVar:
		if r.UpperBound != nil {
			return e.ItemType(r.UpperBound, key)
		}
	case *types.Instance:
		if mapping := e.Class(types.MappingClassName); mapping != nil {
			if m := types.MapToSupertype(r, mapping); m != nil {
				return m.Args[1], nil
			}
		}
		if seq := e.Class(types.SequenceClassName); seq != nil {
			if s := types.MapToSupertype(r, seq); s != nil {
				if _, ok := intKey(key); ok {
					return s.Args[0], nil
				}
			}
		}
	}
	return nil, fmt.Errorf("value of type %s is not indexable by %s", receiver, key)
}

func intKey(key pattern.Expr) (int64, bool) {
	c, ok := key.(*pattern.Const)
	if !ok {
		return 0, false
	}
	n, ok := c.Value.(int64)
	return n, ok
}

// IterableElement infers the element type produced by iterating t.
func (e *Env) IterableElement(t types.Type) (types.Type, bool) {
	switch x := t.(type) {
	case *types.Any:
		return types.NewAny(), true
	case *types.Literal:
		return e.IterableElement(x.Fallback)
	case *types.Tuple:
		return e.tupleElement(x), true
	case *types.TypedDict:
		return e.instance(types.StrClassName), true
	case *types.TypeVar:
		if x.UpperBound != nil {
			return e.IterableElement(x.UpperBound)
		}
	case *types.Union:
		out := make([]types.Type, 0, len(x.Items))
		for _, item := range x.Items {
			elem, ok := e.IterableElement(item)
			if !ok {
				return nil, false
			}
			out = append(out, elem)
		}
		return e.Union(out), true
	case *types.Instance:
		iterable := e.Class(types.IterableClassName)
		if iterable == nil {
			return nil, false
		}
		if m := types.MapToSupertype(x, iterable); m != nil {
			return m.Args[0], true
		}
	}
	return nil, false
}
