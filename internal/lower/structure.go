package lower

import (
	"martianoff/matchcore/internal/ir"
	"martianoff/matchcore/internal/pattern"
	"martianoff/matchcore/internal/types"
	"martianoff/matchcore/matcherr"
)

func (l *Lowerer) lowerSequence(subject ir.Value, p *pattern.Sequence, success, fail *ir.BasicBlock) error {
	gathers := 0
	for _, item := range p.Items {
		if _, ok := item.(*pattern.Gather); ok {
			gathers++
		}
	}
	if gathers > 1 {
		return matcherr.NewInvariantError("sequence pattern at %d:%d has %d gather patterns", p.Line, p.Column, gathers)
	}
	star, capture, items := pattern.SplitGather(p)
	l.test(l.b.Primitive(ir.PrimSupportsSequence, subject), fail)

	length := l.b.Primitive(ir.PrimLen, subject)
	required := len(items)
	op := "=="
	if star >= 0 {
		op = ">="
	}
	l.test(l.b.BinaryOp(op, length, l.b.LoadInt(required)), fail)

	for i, item := range items {
		var index ir.Value
		if star >= 0 && i >= star {
			index = l.b.BinaryOp("-", length, l.b.LoadInt(required-i))
		} else {
			index = l.b.LoadInt(i)
		}
		elem := l.b.Primitive(ir.PrimSequenceGetItem, subject, index)
		if err := l.then(elem, item, fail); err != nil {
			return err
		}
	}

	if capture != nil {
		end := l.b.BinaryOp("-", length, l.b.LoadInt(required-star))
		rest := l.b.Primitive(ir.PrimSequenceGetSlice, subject, l.b.LoadInt(star), end)
		l.b.Assign(capture, rest)
	}
	l.b.Goto(success)
	return nil
}

func (l *Lowerer) lowerMapping(subject ir.Value, p *pattern.Mapping, success, fail *ir.BasicBlock) error {
	if len(p.Keys) != len(p.Values) {
		return matcherr.NewInvariantError("mapping pattern at %d:%d has %d keys and %d values", p.Line, p.Column, len(p.Keys), len(p.Values))
	}
	l.test(l.b.Primitive(ir.PrimSupportsMapping, subject), fail)

	keys := make([]ir.Value, len(p.Keys))
	for i, key := range p.Keys {
		keys[i] = l.b.Expr(key)
		l.test(l.b.Primitive(ir.PrimMappingHasKey, subject, keys[i]), fail)
		item := l.b.Primitive(ir.PrimMappingGetItem, subject, keys[i])
		if err := l.then(item, p.Values[i], fail); err != nil {
			return err
		}
	}

	if p.Rest != nil {
		rest := l.b.Primitive(ir.PrimDictCopy, subject)
		l.b.Assign(p.Rest, rest)
		for _, key := range keys {
			l.b.Primitive(ir.PrimDictDelItem, rest, key)
		}
	}
	l.b.Goto(success)
	return nil
}

func (l *Lowerer) lowerClass(subject ir.Value, p *pattern.Class, success, fail *ir.BasicBlock) error {
	if p.Ref == nil || p.Ref.Node == nil {
		return matcherr.NewInvariantError("class pattern at %d:%d refers to an unresolved name", p.Line, p.Column)
	}
	if len(p.KeywordKeys) != len(p.KeywordValues) {
		return matcherr.NewInvariantError("class pattern at %d:%d has %d keywords and %d values", p.Line, p.Column, len(p.KeywordKeys), len(p.KeywordValues))
	}
	class := resolvedClass(p.Ref.Node)

	isInstance := ir.PrimSlowIsInstance
	if class != nil && (class.IsBuiltin() || class.Final) {
		isInstance = ir.PrimFastIsInstance
	}
	ref := l.b.Expr(&pattern.Name{Name: p.Ref.Name})
	l.test(l.b.Primitive(isInstance, subject, ref), fail)

	if len(p.Positionals) > 0 {
		if l.selfMatches(class) {
			if err := l.then(subject, p.Positionals[0], fail); err != nil {
				return err
			}
		} else {
			names, err := matchArgNames(p, class)
			if err != nil {
				return err
			}
			for i, pos := range p.Positionals {
				if err := l.then(l.b.GetAttr(subject, names[i]), pos, fail); err != nil {
					return err
				}
			}
		}
	}

	for i, key := range p.KeywordKeys {
		if err := l.then(l.b.GetAttr(subject, key), p.KeywordValues[i], fail); err != nil {
			return err
		}
	}
	l.b.Goto(success)
	return nil
}

// selfMatches reports whether positional 0 of a class pattern on class is
// matched against the subject: class derives from a self-matching builtin
// and declares no __match_args__ of its own.
func (l *Lowerer) selfMatches(class *types.Class) bool {
	if class == nil {
		return false
	}
	if _, _, declared := class.Lookup(types.MatchArgsName); declared {
		return false
	}
	for _, base := range class.MRO() {
		if l.selfMatch.Contains(base.FullName) {
			return true
		}
	}
	return false
}

// resolvedClass returns the class a class pattern tests for, or nil for a
// dynamic reference.
func resolvedClass(sym types.Symbol) *types.Class {
	switch s := sym.(type) {
	case *types.Class:
		return s
	case *types.Alias:
		switch t := s.Target.(type) {
		case *types.Instance:
			return t.Class
		case *types.Tuple:
			if t.Fallback != nil {
				return t.Fallback.Class
			}
		}
	}
	return nil
}

// matchArgNames reads the literal __match_args__ names of class.
func matchArgNames(p *pattern.Class, class *types.Class) ([]string, error) {
	if class == nil {
		return nil, matcherr.NewInvariantError("class pattern %s at %d:%d has positionals but no class", p.Ref.Name, p.Line, p.Column)
	}
	declared, _, ok := class.Lookup(types.MatchArgsName)
	if !ok {
		return nil, matcherr.NewInvariantError("class %s has no %s", class.Name(), types.MatchArgsName)
	}
	tuple, ok := declared.(*types.Tuple)
	if !ok {
		return nil, matcherr.NewInvariantError("class %s: %s is %s, not a tuple", class.Name(), types.MatchArgsName, declared)
	}
	if len(p.Positionals) > len(tuple.Items) {
		return nil, matcherr.NewInvariantError("class %s accepts %d positional patterns, got %d", class.Name(), len(tuple.Items), len(p.Positionals))
	}
	names := make([]string, len(tuple.Items))
	for i, item := range tuple.Items {
		if inst, ok := item.(*types.Instance); ok && inst.LastKnown != nil {
			item = inst.LastKnown
		}
		lit, ok := item.(*types.Literal)
		if !ok {
			return nil, matcherr.NewInvariantError("class %s: unrecognized %s item %s", class.Name(), types.MatchArgsName, item)
		}
		name, ok := lit.Value.(string)
		if !ok {
			return nil, matcherr.NewInvariantError("class %s: unrecognized %s item %s", class.Name(), types.MatchArgsName, item)
		}
		names[i] = name
	}
	return names, nil
}
