package checker

import (
	"martianoff/matchcore/internal/pattern"
	"martianoff/matchcore/internal/types"
)

func (c *Checker) VisitMapping(p *pattern.Mapping, ctx types.Type) Result {
	canMatch := true
	captures := NewCaptures()
	for i, key := range p.Keys {
		inner, ok := c.mappingItemType(ctx, key)
		if !ok {
			canMatch = false
			inner = c.named(types.ObjectClassName)
		}
		res := c.Evaluate(p.Values[i], inner)
		if types.IsNever(res.Type) {
			canMatch = false
			continue
		}
		c.merge(captures, res.Captures)
	}

	if p.Rest != nil {
		rest := NewCaptures()
		rest.Set(p.Rest, c.mappingRestType(ctx))
		c.merge(captures, rest)
	}

	// Mapping keys are invariant, so a match never narrows the subject.
	matched := ctx
	if !canMatch {
		matched = types.NewNever()
	}
	return Result{Type: matched, Rest: ctx, Captures: captures}
}

// mappingItemType infers the type of subject[key] without reporting. A
// TypedDict falls back to its generic item access; if both fail the key
// cannot be present. Other subjects degrade to an error-marked Any.
func (c *Checker) mappingItemType(subject types.Type, key pattern.Expr) (types.Type, bool) {
	if td, ok := subject.(*types.TypedDict); ok {
		if t, ok := bestEffort(c.oracle.ItemType(td, key)); ok {
			return t, true
		}
		if td.Fallback != nil {
			if t, ok := bestEffort(c.oracle.ItemType(td.Fallback, key)); ok {
				return t, true
			}
		}
		return nil, false
	}
	if t, ok := bestEffort(c.oracle.ItemType(subject, key)); ok {
		return t, true
	}
	return types.NewErrorAny(), true
}

// mappingRestType is the dict type bound by "**rest".
func (c *Checker) mappingRestType(subject types.Type) types.Type {
	mapping, ok := c.named(types.MappingClassName).(*types.Instance)
	if inst, isInst := subject.(*types.Instance); ok && isInst && c.oracle.IsSubtype(subject, mapping) {
		if m := types.MapToSupertype(inst, mapping.Class); m != nil {
			return c.namedGeneric(types.DictClassName, m.Args...)
		}
	}
	object := c.named(types.ObjectClassName)
	return c.namedGeneric(types.DictClassName, object, object)
}
