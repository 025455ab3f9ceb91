package checker

import (
	"golang.org/x/exp/slices"

	"martianoff/matchcore/internal/pattern"
	"martianoff/matchcore/internal/types"
)

func (c *Checker) VisitSequence(p *pattern.Sequence, ctx types.Type) Result {
	if !c.canMatchSequence(ctx) {
		return earlyNonMatch(ctx)
	}
	star, _, _ := pattern.SplitGather(p)
	required := len(p.Items)
	if star >= 0 {
		required--
	}

	current := ctx
	var items []types.Type
	unpack := -1
	tuple, isTuple := ctx.(*types.Tuple)
	if isTuple {
		items = tuple.Items
		unpack = types.FindUnpack(items)
		if unpack == -1 {
			diff := len(items) - required
			if diff < 0 || (diff > 0 && star < 0) {
				return earlyNonMatch(ctx)
			}
		} else {
			items = normalizeUnpack(items)
			tuple = types.NewTuple(items, tuple.Fallback)
			current = tuple
			if len(items)-1 > required && star < 0 {
				return earlyNonMatch(ctx)
			}
		}
	} else {
		elem, ok := c.sequenceElement(ctx)
		if !ok {
			elem = c.named(types.ObjectClassName)
		}
		items = make([]types.Type, len(p.Items))
		for i := range items {
			items[i] = elem
		}
	}

	contracted := c.shape.Contract(items, star, required)
	matchedItems := make([]types.Type, len(p.Items))
	restItems := make([]types.Type, len(p.Items))
	captures := NewCaptures()
	for i, sub := range p.Items {
		res := c.Evaluate(sub, contracted[i])
		matchedItems[i] = res.Type
		restItems[i] = res.Rest
		c.merge(captures, res.Captures)
	}
	hadUnpack := unpack != -1
	newItems := c.shape.Expand(matchedItems, star, len(items), hadUnpack)
	restItems = c.shape.Expand(restItems, star, len(items), hadUnpack)

	switch {
	case isTuple && !hadUnpack:
		return c.fixedTupleResult(tuple, newItems, restItems, captures)
	case isTuple:
		candidate := types.NewTuple(newItems, tuple.Fallback)
		matched, rest := c.narrowTo(candidate, current, candidate)
		return Result{Type: matched, Rest: rest, Captures: captures}
	}

	elem := types.NewNever()
	for _, t := range newItems {
		elem = c.oracle.Join(elem, t)
	}
	var matched types.Type
	if tv, ok := ctx.(*types.TypeVar); ok {
		matched = &types.TypeVar{Name: tv.Name, UpperBound: c.narrowSequenceChild(tv.UpperBound, elem)}
	} else {
		matched = c.narrowSequenceChild(ctx, elem)
	}
	return Result{Type: matched, Rest: ctx, Captures: captures}
}

// fixedTupleResult narrows every position of a tuple without a variadic
// slot. The rest type is only narrowed when at most one position can fail.
func (c *Checker) fixedTupleResult(tuple *types.Tuple, newItems, restItems []types.Type, captures *Captures) Result {
	narrowed := make([]types.Type, len(tuple.Items))
	innerRests := make([]types.Type, len(tuple.Items))
	for i, item := range tuple.Items {
		narrowed[i], innerRests[i] = c.narrowTo(item, newItems[i], item)
	}

	var matched types.Type = types.NewTuple(narrowed, tuple.Fallback)
	if slices.ContainsFunc(narrowed, types.IsNever) {
		matched = types.NewNever()
	}

	var rest types.Type = tuple
	failing := 0
	for _, r := range innerRests {
		if !types.IsNever(r) {
			failing++
		}
	}
	switch failing {
	case 0:
		rest = types.NewTuple(restItems, tuple.Fallback)
	case 1:
		items := make([]types.Type, len(tuple.Items))
		for i, item := range tuple.Items {
			if types.IsNever(innerRests[i]) {
				items[i] = item
			} else {
				items[i] = innerRests[i]
			}
		}
		rest = types.NewTuple(items, tuple.Fallback)
	}
	return Result{Type: matched, Rest: rest, Captures: captures}
}

// canMatchSequence reports whether a value of type t may be a sequence
// matched by a sequence pattern. Text-like types never are.
func (c *Checker) canMatchSequence(t types.Type) bool {
	switch x := t.(type) {
	case *types.Any:
		return true
	case *types.Union:
		return slices.ContainsFunc(x.Items, c.canMatchSequence)
	}
	for _, other := range c.nonSequenceTypes {
		if c.oracle.IsSubtype(t, other) {
			return false
		}
	}
	sequence := c.named(types.SequenceClassName)
	return c.oracle.IsSubtype(t, sequence) || c.oracle.IsSubtype(sequence, t)
}

// sequenceElement infers the item type of a homogeneous sequence subject.
func (c *Checker) sequenceElement(t types.Type) (types.Type, bool) {
	switch x := t.(type) {
	case *types.Any:
		return types.NewAny(), true
	case *types.Union:
		var elems []types.Type
		for _, item := range x.Items {
			if elem, ok := c.sequenceElement(item); ok {
				elems = append(elems, elem)
			}
		}
		if len(elems) == 0 {
			return nil, false
		}
		return c.oracle.Union(elems), true
	case *types.Instance, *types.Tuple:
		if !c.oracle.IsSubtype(t, c.named(types.IterableClassName)) {
			return nil, false
		}
		return c.oracle.IterableElement(t)
	}
	return nil, false
}

// narrowSequenceChild narrows outer to a sequence of inner, keeping outer
// when the reconstructed container is not one of its subtypes.
func (c *Checker) narrowSequenceChild(outer, inner types.Type) types.Type {
	child := c.constructSequenceChild(outer, inner)
	if !c.oracle.IsSubtype(child, outer) {
		return outer
	}
	matched, _ := c.narrowTo(outer, child, outer)
	return matched
}

// constructSequenceChild rebuilds outer with inner as its element type.
// Containers that are not sequences become typing.Sequence[inner].
func (c *Checker) constructSequenceChild(outer, inner types.Type) types.Type {
	switch x := outer.(type) {
	case *types.Any:
		return outer
	case *types.Union:
		var out []types.Type
		for _, item := range x.Items {
			if c.canMatchSequence(item) {
				out = append(out, c.constructSequenceChild(item, inner))
			}
		}
		return c.oracle.Union(out)
	}

	sequence := c.namedGeneric(types.SequenceClassName, inner)
	if !c.oracle.IsSubtype(outer, c.named(types.SequenceClassName)) {
		return sequence
	}
	var inst *types.Instance
	switch x := outer.(type) {
	case *types.Instance:
		inst = x
	case *types.Tuple:
		if x.Fallback == nil || x.Fallback.Class.FullName == types.TupleClassName {
			return c.namedGeneric(types.TupleClassName, inner)
		}
		inst = x.Fallback
	case *types.Literal:
		inst = x.Fallback
	default:
		return sequence
	}
	return c.replaceElementParam(inst, inner)
}

// replaceElementParam substitutes inner for the type parameter of inst that
// feeds the element type of typing.Sequence.
func (c *Checker) replaceElementParam(inst *types.Instance, inner types.Type) types.Type {
	seq, ok := c.named(types.SequenceClassName).(*types.Instance)
	if !ok {
		return inst
	}
	mapped := types.MapToSupertype(types.FillTypeVars(inst.Class), seq.Class)
	if mapped == nil || len(mapped.Args) == 0 {
		return inst
	}
	param, ok := mapped.Args[0].(*types.TypeVar)
	if !ok {
		return inst
	}
	args := slices.Clone(inst.Args)
	for i, tv := range inst.Class.TypeParams {
		if tv == param && i < len(args) {
			args[i] = inner
		}
	}
	return &types.Instance{Class: inst.Class, Args: args}
}
